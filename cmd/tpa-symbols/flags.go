package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ochairo/tpa-symbols/internal/config"
	"github.com/ochairo/tpa-symbols/internal/domain-adapters/gateways"
	"github.com/ochairo/tpa-symbols/internal/domain/entities"
	"github.com/ochairo/tpa-symbols/internal/domain/interfaces"
	"github.com/ochairo/tpa-symbols/internal/external-adapters/logging"
)

// stringList is a repeatable string flag
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// connectionFlags are shared by every command that talks to the backend
type connectionFlags struct {
	configFile    string
	envFile       string
	uploadURL     string
	apiKey        string
	appIdentifier string
	timeout       time.Duration
	verbose       bool
	logFormat     string
}

func addConnectionFlags(fs *flag.FlagSet) *connectionFlags {
	c := &connectionFlags{}
	fs.StringVar(&c.configFile, "config", "", "YAML config file (default: .tpa.yml in the working directory)")
	fs.StringVar(&c.envFile, "env-file", "", "Env file to load (default: .env in the working directory)")
	fs.StringVar(&c.uploadURL, "upload-url", "", "TPA upload URL, https://{host}/{projectUUID}/upload ("+config.EnvUploadURL+")")
	fs.StringVar(&c.apiKey, "api-key", "", "TPA API key ("+config.EnvAPIKey+")")
	fs.StringVar(&c.appIdentifier, "app-identifier", "", "App identifier, e.g. com.example.App ("+config.EnvAppIdentifier+")")
	fs.DurationVar(&c.timeout, "timeout", 0, "HTTP timeout per request ("+config.EnvTimeout+", default 5m)")
	fs.BoolVar(&c.verbose, "verbose", false, "Enable debug logging")
	fs.StringVar(&c.logFormat, "log-format", logging.FormatText, "Log format: text or json")
	return c
}

func (c *connectionFlags) options(prompt io.Writer) config.Options {
	workDir, _ := os.Getwd()
	return config.Options{
		ConfigFile:    c.configFile,
		EnvFile:       c.envFile,
		WorkDir:       workDir,
		UploadURL:     c.uploadURL,
		APIKey:        c.apiKey,
		AppIdentifier: c.appIdentifier,
		Timeout:       c.timeout,
		Prompt:        prompt,
	}
}

func (c *connectionFlags) logger(stderr io.Writer) (interfaces.Logger, error) {
	return logging.New(stderr, c.logFormat, c.verbose)
}

func newGateway(cfg *config.Config, runID string) *gateways.HTTPTPAGateway {
	return gateways.NewHTTPTPAGateway(gateways.HTTPTPAGatewayConfig{
		APIKey:    cfg.APIKey,
		Timeout:   cfg.Timeout,
		UserAgent: "tpa-symbols/" + Version,
		RequestID: runID,
	})
}

// parseFlags parses args and reports the exit code to use when parsing stops the command
func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK, false
		}
		return exitUsage, false
	}
	return exitOK, true
}

// exitCode maps an error to the process exit code
func exitCode(err error) int {
	switch entities.KindOf(err) {
	case entities.KindConfig, entities.KindUserInput:
		return exitUsage
	default:
		return exitFatal
	}
}

func printError(stderr io.Writer, err error) {
	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
}
