package yaml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigParser_Parse_Valid(t *testing.T) {
	parser := NewConfigParser()
	yamlData := []byte(`upload_url: https://tpa.example.com/some-very-special-uuid/upload
api_key: secret
app_identifier: com.theperfectapp.Awesome-App
timeout: 90s
mismatch_policy: skip
signature_key: keys/ci.asc
dsym_paths:
  - build/App-1.0-1.dSYM.zip
  - ""
  - /abs/App-1.0-2.dSYM.zip
`)

	settings, err := parser.Parse(yamlData)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if settings.UploadURL != "https://tpa.example.com/some-very-special-uuid/upload" {
		t.Errorf("UploadURL = %v", settings.UploadURL)
	}
	if settings.APIKey != "secret" {
		t.Errorf("APIKey = %v, want secret", settings.APIKey)
	}
	if settings.AppIdentifier != "com.theperfectapp.Awesome-App" {
		t.Errorf("AppIdentifier = %v", settings.AppIdentifier)
	}
	if settings.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", settings.Timeout)
	}
	if settings.MismatchPolicy != "skip" {
		t.Errorf("MismatchPolicy = %v, want skip", settings.MismatchPolicy)
	}
	if len(settings.DSYMPaths) != 2 {
		t.Errorf("DSYMPaths count = %d, want 2 (empty entries dropped)", len(settings.DSYMPaths))
	}
}

func TestConfigParser_Parse_Empty(t *testing.T) {
	settings, err := NewConfigParser().Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if settings.UploadURL != "" || settings.Timeout != 0 || len(settings.DSYMPaths) != 0 {
		t.Errorf("settings = %+v, want zero value", settings)
	}
}

func TestConfigParser_Parse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "unknown key", yaml: "upload_ulr: https://x/y/z\n", wantErr: "failed to parse YAML"},
		{name: "bad timeout", yaml: "timeout: soon\n", wantErr: "invalid timeout"},
		{name: "negative timeout", yaml: "timeout: -5s\n", wantErr: "must be positive"},
		{name: "wrong type", yaml: "dsym_paths: 3\n", wantErr: "failed to parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfigParser().Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigParser_ParseFile_ResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".tpa.yml")
	content := "signature_key: ci.asc\ndsym_paths:\n  - out/App-1.0-1.dSYM.zip\n  - /abs/App-1.0-2.dSYM.zip\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	settings, err := NewConfigParser().ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	if want := filepath.Join(dir, "out", "App-1.0-1.dSYM.zip"); settings.DSYMPaths[0] != want {
		t.Errorf("DSYMPaths[0] = %s, want %s", settings.DSYMPaths[0], want)
	}
	if settings.DSYMPaths[1] != "/abs/App-1.0-2.dSYM.zip" {
		t.Errorf("DSYMPaths[1] = %s, want absolute path unchanged", settings.DSYMPaths[1])
	}
	if want := filepath.Join(dir, "ci.asc"); settings.SignatureKey != want {
		t.Errorf("SignatureKey = %s, want %s", settings.SignatureKey, want)
	}
}

func TestConfigParser_ParseFile_NotFound(t *testing.T) {
	if _, err := NewConfigParser().ParseFile("/nonexistent/.tpa.yml"); err == nil {
		t.Error("ParseFile() should fail for missing file")
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()

	if _, ok := FindConfigFile(dir); ok {
		t.Error("FindConfigFile() found a file in an empty directory")
	}

	yamlPath := filepath.Join(dir, ".tpa.yaml")
	if err := os.WriteFile(yamlPath, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	if got, ok := FindConfigFile(dir); !ok || got != yamlPath {
		t.Errorf("FindConfigFile() = %s, %v; want %s", got, ok, yamlPath)
	}

	ymlPath := filepath.Join(dir, ".tpa.yml")
	if err := os.WriteFile(ymlPath, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	if got, _ := FindConfigFile(dir); got != ymlPath {
		t.Errorf("FindConfigFile() = %s, want %s to take precedence", got, ymlPath)
	}
}
