package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ochairo/tpa-symbols/internal/domain/entities"
)

const testUploadURL = "https://tpa.example.com/some-very-special-uuid/upload"

var allEnv = []string{
	EnvUploadURL, EnvAPIKey, EnvAppIdentifier, EnvDSYMPath, EnvDSYMPaths,
	EnvTimeout, EnvMismatchPolicy, EnvSignatureKey,
}

// clearEnv blanks every variable Load reads for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnv {
		t.Setenv(key, "")
	}
}

// unsetEnv removes key entirely so a .env file may supply it
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_FromFlags(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(Options{
		WorkDir:       t.TempDir(),
		UploadURL:     testUploadURL,
		APIKey:        "flag-key",
		AppIdentifier: "com.theperfectapp.Awesome-App",
		DryRun:        true,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := entities.Project{
		Host:          "https://tpa.example.com",
		ProjectUUID:   "some-very-special-uuid",
		AppIdentifier: "com.theperfectapp.Awesome-App",
	}
	if cfg.Project != want {
		t.Errorf("Project = %+v, want %+v", cfg.Project, want)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.MismatchPolicy != entities.MismatchAbort {
		t.Errorf("MismatchPolicy = %s, want abort", cfg.MismatchPolicy)
	}
	if !cfg.DryRun {
		t.Error("DryRun should be true")
	}
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ".tpa.yml", `upload_url: https://file.example.com/file-uuid/upload
api_key: file-key
app_identifier: com.file.App
timeout: 30s
mismatch_policy: skip
`)
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvTimeout, "45s")

	cfg, err := Load(Options{WorkDir: dir, AppIdentifier: "com.flag.App"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.UploadURL != "https://file.example.com/file-uuid/upload" {
		t.Errorf("UploadURL = %s, want value from file", cfg.UploadURL)
	}
	if cfg.APIKey != "env-key" {
		t.Errorf("APIKey = %s, want env over file", cfg.APIKey)
	}
	if cfg.AppIdentifier != "com.flag.App" {
		t.Errorf("AppIdentifier = %s, want flag over file", cfg.AppIdentifier)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want env over file", cfg.Timeout)
	}
	if cfg.MismatchPolicy != entities.MismatchSkip {
		t.Errorf("MismatchPolicy = %s, want skip from file", cfg.MismatchPolicy)
	}
	if cfg.ConfigFile != filepath.Join(dir, ".tpa.yml") {
		t.Errorf("ConfigFile = %s", cfg.ConfigFile)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	unsetEnv(t, EnvAPIKey)
	unsetEnv(t, EnvUploadURL)
	t.Setenv(EnvAppIdentifier, "com.env.App")
	dir := t.TempDir()
	writeFile(t, dir, ".env", "FL_TPA_API_KEY=dotenv-key\nFL_TPA_UPLOAD_URL="+testUploadURL+"\nFL_TPA_APP_IDENTIFIER=com.dotenv.App\n")

	cfg, err := Load(Options{WorkDir: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIKey != "dotenv-key" {
		t.Errorf("APIKey = %s, want value from .env", cfg.APIKey)
	}
	if cfg.AppIdentifier != "com.env.App" {
		t.Errorf("AppIdentifier = %s, want real env over .env", cfg.AppIdentifier)
	}
}

func TestLoad_ExplicitEnvFileMissing(t *testing.T) {
	clearEnv(t)

	_, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	if kind := entities.KindOf(err); kind != entities.KindConfig {
		t.Errorf("kind = %s, want config (err: %v)", kind, err)
	}
}

func TestLoad_PipelinePaths(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "tpa.yml", "dsym_paths:\n  - c.dSYM.zip\n")
	t.Setenv(EnvDSYMPaths, strings.Join([]string{"/a.dSYM.zip", "", "/b.dSYM.zip"}, string(os.PathListSeparator)))
	t.Setenv(EnvDSYMPath, "/single.dSYM.zip")

	cfg, err := Load(Options{
		ConfigFile:    filepath.Join(dir, "tpa.yml"),
		UploadURL:     testUploadURL,
		APIKey:        "k",
		AppIdentifier: "app",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"/a.dSYM.zip", "/b.dSYM.zip", filepath.Join(dir, "c.dSYM.zip")}
	if strings.Join(cfg.PipelinePaths, ",") != strings.Join(want, ",") {
		t.Errorf("PipelinePaths = %v, want %v", cfg.PipelinePaths, want)
	}
	if cfg.DSYMPath != "/single.dSYM.zip" {
		t.Errorf("DSYMPath = %s, want value from env", cfg.DSYMPath)
	}
}

func TestLoad_ValidationJoinsErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvMismatchPolicy, "ignore")

	_, err := Load(Options{WorkDir: t.TempDir(), UploadURL: "not a url"})
	if err == nil {
		t.Fatal("Load() should fail")
	}
	if kind := entities.KindOf(err); kind != entities.KindConfig {
		t.Errorf("kind = %s, want config", kind)
	}
	if !strings.Contains(err.Error(), "unknown mismatch policy") {
		t.Errorf("error should mention policy: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			UploadURL:      testUploadURL,
			APIKey:         "k",
			AppIdentifier:  "app",
			Timeout:        time.Minute,
			MismatchPolicy: entities.MismatchAbort,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr []string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing api key", mutate: func(c *Config) { c.APIKey = "" }, wantErr: []string{"api key is required"}},
		{
			name:    "several problems",
			mutate:  func(c *Config) { c.AppIdentifier = ""; c.UploadURL = "https://host/"; c.Timeout = 0 },
			wantErr: []string{"app identifier is required", "timeout must be positive", "upload"},
		},
		{name: "missing signature key", mutate: func(c *Config) { c.SignatureKeyFile = "/nonexistent/key.asc" }, wantErr: []string{"signature key"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()

			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				if cfg.Project.ProjectUUID != "some-very-special-uuid" {
					t.Errorf("Project = %+v, want derived from upload url", cfg.Project)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q should contain %q", err, want)
				}
			}
		})
	}
}

func TestLoad_PromptsForAPIKey(t *testing.T) {
	clearEnv(t)
	origRead, origTerm := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = origRead, origTerm })

	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) { return []byte("prompted-key\n"), nil }

	var prompt bytes.Buffer
	cfg, err := Load(Options{
		WorkDir:       t.TempDir(),
		UploadURL:     testUploadURL,
		AppIdentifier: "app",
		Prompt:        &prompt,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIKey != "prompted-key" {
		t.Errorf("APIKey = %q, want prompted-key", cfg.APIKey)
	}
	if !strings.Contains(prompt.String(), "API key") {
		t.Errorf("prompt = %q", prompt.String())
	}
}

func TestLoad_PromptError(t *testing.T) {
	clearEnv(t)
	origRead, origTerm := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = origRead, origTerm })

	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) { return nil, errors.New("tty gone") }

	_, err := Load(Options{WorkDir: t.TempDir(), UploadURL: testUploadURL, AppIdentifier: "app", Prompt: &bytes.Buffer{}})
	if err == nil || !strings.Contains(err.Error(), "failed to read api key") {
		t.Errorf("Load() error = %v, want prompt failure", err)
	}
}

func TestLoad_NoPromptWithoutTerminal(t *testing.T) {
	clearEnv(t)
	origTerm := isTerminal
	t.Cleanup(func() { isTerminal = origTerm })
	isTerminal = func(int) bool { return false }

	_, err := Load(Options{WorkDir: t.TempDir(), UploadURL: testUploadURL, AppIdentifier: "app", Prompt: &bytes.Buffer{}})
	if err == nil || !strings.Contains(err.Error(), "api key is required") {
		t.Errorf("Load() error = %v, want missing api key", err)
	}
}
