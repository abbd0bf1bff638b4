// Package yaml provides YAML-based configuration file parsing.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileNames are looked up, in order, when no config file is given
var DefaultFileNames = []string{".tpa.yml", ".tpa.yaml"}

// yamlConfig represents the raw YAML structure
type yamlConfig struct {
	UploadURL      string   `yaml:"upload_url"`
	APIKey         string   `yaml:"api_key"`
	AppIdentifier  string   `yaml:"app_identifier"`
	Timeout        string   `yaml:"timeout"`
	MismatchPolicy string   `yaml:"mismatch_policy"`
	SignatureKey   string   `yaml:"signature_key"`
	DSYMPaths      []string `yaml:"dsym_paths"`
}

// Settings holds the values read from a config file. Zero values mean unset.
type Settings struct {
	UploadURL      string
	APIKey         string
	AppIdentifier  string
	Timeout        time.Duration
	MismatchPolicy string
	SignatureKey   string
	DSYMPaths      []string
}

// ConfigParser parses YAML config files
type ConfigParser struct{}

// NewConfigParser creates a new YAML parser
func NewConfigParser() *ConfigParser {
	return &ConfigParser{}
}

// ParseFile parses a YAML config file. Relative dsym_paths and signature_key
// are resolved against the file's directory.
func (p *ConfigParser) ParseFile(filePath string) (*Settings, error) {
	//nolint:gosec // G304: filePath is the user-selected config file
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	settings, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	base := filepath.Dir(filePath)
	for i, path := range settings.DSYMPaths {
		settings.DSYMPaths[i] = resolve(base, path)
	}
	if settings.SignatureKey != "" {
		settings.SignatureKey = resolve(base, settings.SignatureKey)
	}

	return settings, nil
}

// Parse parses YAML bytes. Unknown keys are rejected.
func (p *ConfigParser) Parse(data []byte) (*Settings, error) {
	var raw yamlConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	settings := &Settings{
		UploadURL:      raw.UploadURL,
		APIKey:         raw.APIKey,
		AppIdentifier:  raw.AppIdentifier,
		MismatchPolicy: raw.MismatchPolicy,
		SignatureKey:   raw.SignatureKey,
	}

	if raw.Timeout != "" {
		timeout, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", raw.Timeout, err)
		}
		if timeout <= 0 {
			return nil, fmt.Errorf("timeout must be positive, got %s", raw.Timeout)
		}
		settings.Timeout = timeout
	}

	for _, path := range raw.DSYMPaths {
		if path != "" {
			settings.DSYMPaths = append(settings.DSYMPaths, path)
		}
	}

	return settings, nil
}

// FindConfigFile returns the first of DefaultFileNames present in dir
func FindConfigFile(dir string) (string, bool) {
	for _, name := range DefaultFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
