package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/ochairo/tpa-symbols/internal/config"
	"github.com/ochairo/tpa-symbols/internal/domain/interfaces"
)

func runList(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	conn := addConnectionFlags(fs)
	asJSON := fs.Bool("json", false, "Print the inventory as JSON")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, `Usage: tpa-symbols list [options]

List the dSYM archives TPA already has for the configured app.

Options:
`)
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(stderr, `
Examples:
  tpa-symbols list
  tpa-symbols list --json | jq '.[].filename'
`)
	}

	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	logger, err := conn.logger(stderr)
	if err != nil {
		printError(stderr, err)
		return exitUsage
	}

	cfg, err := config.Load(conn.options(stderr))
	if err != nil {
		printError(stderr, err)
		return exitCode(err)
	}

	runID := uuid.NewString()
	logger.Debug("listing symbols", interfaces.F("run_id", runID), interfaces.F("project", cfg.Project.ProjectUUID))

	inventory, err := newGateway(cfg, runID).ListSymbols(ctx, cfg.Project)
	if err != nil {
		printError(stderr, err)
		return exitCode(err)
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(inventory); err != nil {
			printError(stderr, err)
			return exitFatal
		}
		return exitOK
	}

	_, _ = fmt.Fprintf(stdout, "dSYM files for %s (%d total):\n\n", cfg.AppIdentifier, len(inventory))
	for _, d := range inventory {
		_, _ = fmt.Fprintf(stdout, "  %-50s %-10s %-8s %s\n", d.Filename, d.VersionString, d.VersionNumber, d.ContentHash)
	}
	return exitOK
}
