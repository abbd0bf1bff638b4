package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/ochairo/tpa-symbols/internal/domain-adapters/gateways"
	"github.com/ochairo/tpa-symbols/internal/domain/entities"
	"github.com/ochairo/tpa-symbols/internal/domain/services"
)

type inspection struct {
	Path          string `json:"path"`
	AppIdentifier string `json:"app_identifier,omitempty"`
	entities.SymbolArchiveDescriptor
	Error string `json:"error,omitempty"`
}

func runInspect(_ context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "Print results as JSON")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, `Usage: tpa-symbols inspect [options] <archive.dSYM.zip> ...

Show the metadata parsed from each archive name and the descriptor TPA would
record for it. Works offline.

Options:
`)
		fs.PrintDefaults()
	}

	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	if fs.NArg() < 1 {
		_, _ = fmt.Fprintf(stderr, "Error: at least one archive path is required\n\n")
		fs.Usage()
		return exitUsage
	}

	decider := services.NewDecider(gateways.NewContentHasher())
	results := make([]inspection, 0, fs.NArg())
	failed := 0

	for _, path := range fs.Args() {
		res := inspection{Path: path}
		desc, meta, err := decider.Describe(path)
		if err != nil {
			res.Error = err.Error()
			failed++
		} else {
			res.AppIdentifier = meta.AppIdentifier
			res.SymbolArchiveDescriptor = desc
		}
		results = append(results, res)
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			printError(stderr, err)
			return exitFatal
		}
	} else {
		for _, res := range results {
			if res.Error != "" {
				_, _ = fmt.Fprintf(stdout, "❌ %s\n   %s\n\n", res.Path, res.Error)
				continue
			}
			_, _ = fmt.Fprintf(stdout, "📦 %s\n", res.Path)
			_, _ = fmt.Fprintf(stdout, "   App:     %s\n", res.AppIdentifier)
			_, _ = fmt.Fprintf(stdout, "   Version: %s\n", res.VersionString)
			_, _ = fmt.Fprintf(stdout, "   Build:   %s\n", res.VersionNumber)
			_, _ = fmt.Fprintf(stdout, "   MD5:     %s\n\n", res.ContentHash)
		}
	}

	if failed > 0 {
		return exitFatal
	}
	return exitOK
}
