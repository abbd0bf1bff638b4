package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/ochairo/tpa-symbols/internal/config"
	orchestrators "github.com/ochairo/tpa-symbols/internal/domain-orchestrators"
	"github.com/ochairo/tpa-symbols/internal/domain-adapters/gateways"
	"github.com/ochairo/tpa-symbols/internal/domain/entities"
	domaingateways "github.com/ochairo/tpa-symbols/internal/domain/interfaces/gateways"
	"github.com/ochairo/tpa-symbols/internal/domain/services"
)

func runUpload(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.SetOutput(stderr)
	conn := addConnectionFlags(fs)
	var (
		dsymPaths      stringList
		pathsFile      = fs.String("dsym-paths-file", "", "File listing archive paths, one per line")
		mismatchPolicy = fs.String("mismatch-policy", "", "On app identifier mismatch: abort or skip ("+config.EnvMismatchPolicy+", default abort)")
		signatureKey   = fs.String("signature-key", "", "Require a detached .sig/.asc signature by this public key ("+config.EnvSignatureKey+")")
		dryRun         = fs.Bool("dry-run", false, "Decide what would be uploaded without uploading")
	)
	fs.Var(&dsymPaths, "dsym-path", "dSYM archive to upload, repeatable ("+config.EnvDSYMPath+")")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, `Usage: tpa-symbols upload [options] [archive.dSYM.zip ...]

Upload dSYM archives to The Perfect App, skipping archives the backend already
has. Archives must be named {appIdentifier}-{version}-{build}.dSYM.zip.

When no archive is given, %s, %s and %s are consulted,
then the newest *.dSYM.zip under the working directory.

Options:
`, config.EnvDSYMPath, config.EnvDSYMPaths, config.EnvDSYMOutputPath)
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(stderr, `
Examples:
  # Upload one archive
  tpa-symbols upload --upload-url https://tpa.example.com/<uuid>/upload \
    --api-key $KEY --app-identifier com.example.App build/com.example.App-1.0-42.dSYM.zip

  # See what would be uploaded
  tpa-symbols upload --dry-run --dsym-paths-file dsyms.txt
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

	opts := conn.options(stderr)
	opts.MismatchPolicy = *mismatchPolicy
	opts.SignatureKey = *signatureKey
	opts.DryRun = *dryRun

	cfg, err := config.Load(opts)
	if err != nil {
		printError(stderr, err)
		return exitCode(err)
	}

	targets, err := collectTargets(cfg, append(dsymPaths, fs.Args()...), *pathsFile)
	if err != nil {
		printError(stderr, err)
		return exitCode(err)
	}

	var verifier domaingateways.SignatureVerifier
	if cfg.SignatureKeyFile != "" {
		v, err := gateways.NewSignatureVerifier(cfg.SignatureKeyFile)
		if err != nil {
			err = entities.NewError(entities.KindConfig, "invalid signature key", cfg.SignatureKeyFile, err)
			printError(stderr, err)
			return exitCode(err)
		}
		verifier = v
	}

	runID := uuid.NewString()
	orch := orchestrators.NewUploadOrchestrator(
		newGateway(cfg, runID),
		services.NewDecider(gateways.NewContentHasher()),
		verifier,
		logger,
		orchestrators.UploadOrchestratorConfig{
			Project:        cfg.Project,
			MismatchPolicy: cfg.MismatchPolicy,
			DryRun:         cfg.DryRun,
			RunID:          runID,
		},
	)

	_, _ = fmt.Fprintf(stdout, "🔍 Checking %d dSYM file(s) against TPA\n", len(targets))
	report, err := orch.Run(ctx, targets)
	printReport(stdout, report)
	if err != nil {
		printError(stderr, err)
		return exitCode(err)
	}

	switch {
	case cfg.DryRun:
		_, _ = fmt.Fprintln(stdout, "🧪 Dry run, nothing was uploaded")
	case report.Failed() > 0:
		_, _ = fmt.Fprintf(stdout, "⚠️  Finished with %d failed upload(s)\n", report.Failed())
	default:
		_, _ = fmt.Fprintln(stdout, "Successfully uploaded dSYM files to TPA 🎉")
	}
	return exitOK
}

// collectTargets gathers explicit and pipeline paths, falling back to the
// default archive when neither names one
func collectTargets(cfg *config.Config, explicit []string, pathsFile string) ([]entities.UploadTarget, error) {
	finder := gateways.NewArchiveFinder()

	if len(explicit) == 0 && cfg.DSYMPath != "" {
		explicit = []string{cfg.DSYMPath}
	}

	pipeline := append([]string(nil), cfg.PipelinePaths...)
	if pathsFile != "" {
		listed, err := finder.ReadPathList(pathsFile)
		if err != nil {
			return nil, entities.NewError(entities.KindUserInput, "invalid --dsym-paths-file", pathsFile, err)
		}
		pipeline = append(pipeline, listed...)
	}

	if len(explicit) == 0 && len(pipeline) == 0 {
		path, err := defaultArchive(finder)
		if err != nil {
			return nil, entities.NewError(entities.KindUserInput, "failed to find a default dSYM", "", err)
		}
		if path != "" {
			explicit = []string{path}
		}
	}

	for _, path := range explicit {
		if err := finder.ValidateArchive(path); err != nil {
			return nil, entities.NewError(entities.KindUserInput, "invalid dSYM path", "", err)
		}
	}

	return services.ResolveTargets(explicit, pipeline)
}

func defaultArchive(finder *gateways.ArchiveFinder) (string, error) {
	if path := os.Getenv(config.EnvDSYMOutputPath); path != "" {
		return path, nil
	}
	workDir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return finder.Latest(workDir)
}

func printReport(w io.Writer, report *entities.UploadReport) {
	if report == nil {
		return
	}

	for _, res := range report.Results {
		switch res.State {
		case entities.StateUploaded:
			if res.Signer != "" {
				_, _ = fmt.Fprintf(w, "✅ Uploaded: %s (signed by %s)\n", res.Target.Path, res.Signer)
			} else {
				_, _ = fmt.Fprintf(w, "✅ Uploaded: %s\n", res.Target.Path)
			}
		case entities.StateSkipped:
			if res.Reason == "dry run" {
				_, _ = fmt.Fprintf(w, "🧪 Would upload: %s\n", res.Target.Path)
			} else {
				_, _ = fmt.Fprintf(w, "⏭️  Already uploaded: %s\n", res.Target.Path)
			}
		case entities.StateFailed:
			_, _ = fmt.Fprintf(w, "❌ Failed: %s: %v\n", res.Target.Path, res.Err)
		}
	}

	_, _ = fmt.Fprintf(w, "\n📊 Summary: %d uploaded, %d skipped, %d failed (run %s)\n",
		report.Uploaded(), report.Skipped(), report.Failed(), report.RunID)
}
