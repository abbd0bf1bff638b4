// Package config assembles the typed run configuration from a YAML file,
// a .env file, the environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/ochairo/tpa-symbols/internal/domain/entities"
	"github.com/ochairo/tpa-symbols/internal/domain/services"
	"github.com/ochairo/tpa-symbols/internal/external-adapters/yaml"
)

// Environment variables
const (
	EnvUploadURL      = "FL_TPA_UPLOAD_URL"
	EnvAPIKey         = "FL_TPA_API_KEY"
	EnvAppIdentifier  = "FL_TPA_APP_IDENTIFIER"
	EnvDSYMPath       = "FL_UPLOAD_SYMBOLS_TO_TPA_DSYM_PATH"
	EnvDSYMPaths      = "DSYM_PATHS"
	EnvDSYMOutputPath = "DSYM_OUTPUT_PATH"
	EnvTimeout        = "TPA_TIMEOUT"
	EnvMismatchPolicy = "TPA_MISMATCH_POLICY"
	EnvSignatureKey   = "TPA_SIGNATURE_KEY"
)

// DefaultTimeout applies when no timeout is configured anywhere
const DefaultTimeout = 5 * time.Minute

// DefaultEnvFile is loaded from the working directory when present
const DefaultEnvFile = ".env"

// Test seams for the API key prompt
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// Options carries flag values. Empty or zero fields are unset and fall
// through to the environment, then the config file.
type Options struct {
	ConfigFile     string
	EnvFile        string
	WorkDir        string
	UploadURL      string
	APIKey         string
	AppIdentifier  string
	Timeout        time.Duration
	MismatchPolicy string
	SignatureKey   string
	DryRun         bool

	// Prompt receives the API key prompt; nil disables prompting
	Prompt io.Writer
}

// Config is the validated configuration for one run
type Config struct {
	UploadURL        string
	APIKey           string
	AppIdentifier    string
	Project          entities.Project
	Timeout          time.Duration
	MismatchPolicy   entities.MismatchPolicy
	SignatureKeyFile string
	DryRun           bool

	// DSYMPath is the single archive named by FL_UPLOAD_SYMBOLS_TO_TPA_DSYM_PATH
	DSYMPath string
	// PipelinePaths come from DSYM_PATHS and the config file's dsym_paths
	PipelinePaths []string
	// ConfigFile is the YAML file that was read, if any
	ConfigFile string
}

// Load builds a Config with precedence flags > environment > .env > YAML file
func Load(opts Options) (*Config, error) {
	if err := loadEnvFile(opts); err != nil {
		return nil, err
	}

	settings, configFile, err := loadSettings(opts)
	if err != nil {
		return nil, entities.NewError(entities.KindConfig, "failed to load config file", configFile, err)
	}

	cfg := &Config{
		UploadURL:        firstNonEmpty(opts.UploadURL, os.Getenv(EnvUploadURL), settings.UploadURL),
		APIKey:           firstNonEmpty(opts.APIKey, os.Getenv(EnvAPIKey), settings.APIKey),
		AppIdentifier:    firstNonEmpty(opts.AppIdentifier, os.Getenv(EnvAppIdentifier), settings.AppIdentifier),
		SignatureKeyFile: firstNonEmpty(opts.SignatureKey, os.Getenv(EnvSignatureKey), settings.SignatureKey),
		DSYMPath:         strings.TrimSpace(os.Getenv(EnvDSYMPath)),
		DryRun:           opts.DryRun,
		ConfigFile:       configFile,
	}

	var errs []error

	cfg.Timeout, err = resolveTimeout(opts.Timeout, settings.Timeout)
	if err != nil {
		errs = append(errs, err)
	}

	policy := firstNonEmpty(opts.MismatchPolicy, os.Getenv(EnvMismatchPolicy), settings.MismatchPolicy)
	cfg.MismatchPolicy, err = entities.ParseMismatchPolicy(policy)
	if err != nil {
		errs = append(errs, err)
	}

	cfg.PipelinePaths = append(splitPathList(os.Getenv(EnvDSYMPaths)), settings.DSYMPaths...)

	if cfg.APIKey == "" && opts.Prompt != nil {
		key, err := promptAPIKey(opts.Prompt)
		if err != nil {
			errs = append(errs, err)
		}
		cfg.APIKey = key
	}

	if len(errs) > 0 {
		return nil, entities.NewError(entities.KindConfig, "invalid configuration", "", errors.Join(errs...))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every required value and derives Project. All problems
// are reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.APIKey == "" {
		errs = append(errs, fmt.Errorf("api key is required (--api-key or %s)", EnvAPIKey))
	}
	if c.AppIdentifier == "" {
		errs = append(errs, fmt.Errorf("app identifier is required (--app-identifier or %s)", EnvAppIdentifier))
	}
	if c.UploadURL == "" {
		errs = append(errs, fmt.Errorf("upload url is required (--upload-url or %s)", EnvUploadURL))
	} else {
		project, err := services.ParseUploadURL(c.UploadURL, c.AppIdentifier)
		if err != nil {
			errs = append(errs, err)
		}
		c.Project = project
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if _, err := entities.ParseMismatchPolicy(string(c.MismatchPolicy)); err != nil {
		errs = append(errs, err)
	}
	if c.SignatureKeyFile != "" {
		if _, err := os.Stat(c.SignatureKeyFile); err != nil {
			errs = append(errs, fmt.Errorf("signature key: %w", err))
		}
	}

	if len(errs) > 0 {
		return entities.NewError(entities.KindConfig, "invalid configuration", "", errors.Join(errs...))
	}
	return nil
}

func loadEnvFile(opts Options) error {
	path := opts.EnvFile
	explicit := path != ""
	if !explicit {
		path = filepath.Join(opts.WorkDir, DefaultEnvFile)
	}

	// godotenv never overrides variables that are already set
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return entities.NewError(entities.KindConfig, "failed to load env file", path, err)
	}
	return nil
}

func loadSettings(opts Options) (*yaml.Settings, string, error) {
	parser := yaml.NewConfigParser()

	path := opts.ConfigFile
	if path == "" {
		found, ok := yaml.FindConfigFile(opts.WorkDir)
		if !ok {
			return &yaml.Settings{}, "", nil
		}
		path = found
	}

	settings, err := parser.ParseFile(path)
	if err != nil {
		return nil, path, err
	}
	return settings, path, nil
}

func resolveTimeout(flagValue, fileValue time.Duration) (time.Duration, error) {
	if flagValue != 0 {
		return flagValue, nil
	}
	if raw := strings.TrimSpace(os.Getenv(EnvTimeout)); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q: %w", EnvTimeout, raw, err)
		}
		return d, nil
	}
	if fileValue != 0 {
		return fileValue, nil
	}
	return DefaultTimeout, nil
}

func promptAPIKey(w io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return "", nil
	}

	if _, err := fmt.Fprint(w, "TPA API key: "); err != nil {
		return "", err
	}
	key, err := readPassword(fd)
	_, _ = fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("failed to read api key: %w", err)
	}
	return strings.TrimSpace(string(key)), nil
}

func splitPathList(value string) []string {
	var paths []string
	for _, p := range filepath.SplitList(value) {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
