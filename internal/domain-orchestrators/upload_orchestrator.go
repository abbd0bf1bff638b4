// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ochairo/tpa-symbols/internal/domain/entities"
	"github.com/ochairo/tpa-symbols/internal/domain/interfaces"
	"github.com/ochairo/tpa-symbols/internal/domain/interfaces/gateways"
	"github.com/ochairo/tpa-symbols/internal/domain/services"
)

// UploadOrchestrator runs one batch: fetch the inventory once, then decide
// and upload each target in order
type UploadOrchestrator struct {
	tpa      gateways.TPAGateway
	decider  *services.Decider
	verifier gateways.SignatureVerifier
	logger   interfaces.Logger
	project  entities.Project
	policy   entities.MismatchPolicy
	dryRun   bool
	runID    string
}

// UploadOrchestratorConfig holds configuration for the orchestrator
type UploadOrchestratorConfig struct {
	Project        entities.Project
	MismatchPolicy entities.MismatchPolicy
	DryRun         bool
	RunID          string
}

// NewUploadOrchestrator creates a new upload orchestrator. verifier may be nil
// to skip signature checks.
func NewUploadOrchestrator(
	tpa gateways.TPAGateway,
	decider *services.Decider,
	verifier gateways.SignatureVerifier,
	logger interfaces.Logger,
	config UploadOrchestratorConfig,
) *UploadOrchestrator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	policy := config.MismatchPolicy
	if policy == "" {
		policy = entities.MismatchAbort
	}

	return &UploadOrchestrator{
		tpa:      tpa,
		decider:  decider,
		verifier: verifier,
		logger:   logger.With(interfaces.F("run_id", config.RunID)),
		project:  config.Project,
		policy:   policy,
		dryRun:   config.DryRun,
		runID:    config.RunID,
	}
}

// Run processes targets sequentially. The returned error is non-nil only for
// conditions that abort the batch; per-file failures are in the report.
func (o *UploadOrchestrator) Run(ctx context.Context, targets []entities.UploadTarget) (*entities.UploadReport, error) {
	report := &entities.UploadReport{RunID: o.runID}

	if len(targets) == 0 {
		return report, entities.Errorf(entities.KindUserInput, "",
			"couldn't find any dSYMs, please pass them using the --dsym-path option")
	}

	o.logger.Info("downloading list of dSYMs already uploaded to TPA",
		interfaces.F("project", o.project.ProjectUUID),
		interfaces.F("app", o.project.AppIdentifier))

	inventory, err := o.tpa.ListSymbols(ctx, o.project)
	if err != nil {
		return report, fmt.Errorf("failed to fetch known symbols: %w", err)
	}
	o.logger.Debug("inventory fetched", interfaces.F("count", len(inventory)))

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("upload interrupted: %w", err)
		}

		result := o.processTarget(ctx, inventory, target)
		report.Results = append(report.Results, result)
		if result.Err != nil && o.fatal(result.Err) {
			return report, result.Err
		}
	}

	return report, nil
}

// fatal reports whether err stops the batch. Kinds decide by default; an
// app identifier mismatch follows the configured policy.
func (o *UploadOrchestrator) fatal(err error) bool {
	kind := entities.KindOf(err)
	if kind == entities.KindConsistency {
		return o.policy == entities.MismatchAbort
	}
	return kind.Fatal()
}

// processTarget moves one target to a terminal state
func (o *UploadOrchestrator) processTarget(ctx context.Context, inventory entities.RemoteInventory, target entities.UploadTarget) entities.FileResult {
	result := entities.NewFileResult(target)
	log := o.logger.With(interfaces.F("path", target.Path))

	meta, err := services.ParseMetadata(target.Path)
	if err != nil {
		log.Error("failed to parse archive name", interfaces.F("error", err))
		result.Fail(err)
		return result
	}
	result.Advance(entities.StateParsed)

	desc, err := o.decider.DescriptorFor(target.Path, meta)
	if err != nil {
		log.Error("failed to hash archive", interfaces.F("error", err))
		result.Fail(err)
		return result
	}
	result.Descriptor = desc
	result.Advance(entities.StateHashedAndCompared)

	if inventory.Contains(desc) {
		result.Reason = "already uploaded"
		result.Advance(entities.StateSkipped)
		log.Info("already uploaded")
		return result
	}

	if meta.AppIdentifier != o.project.AppIdentifier {
		mismatch := entities.NewError(entities.KindConsistency, "app identifier mismatch", target.Path,
			fmt.Errorf("archive has %q, configured %q", meta.AppIdentifier, o.project.AppIdentifier))
		result.Fail(mismatch)
		log.Warn("app identifier mismatch", interfaces.F("policy", o.policy))
		return result
	}

	if o.verifier != nil {
		signer, err := o.verifier.VerifyArchive(target.Path)
		if err != nil {
			result.Fail(entities.NewError(entities.KindSignature, "signature check failed", target.Path, err))
			log.Error("signature check failed", interfaces.F("error", err))
			return result
		}
		result.Signer = signer
		log = log.With(interfaces.F("signer", signer))
		log.Debug("signature verified")
	}

	if o.dryRun {
		result.Reason = "dry run"
		result.Advance(entities.StateSkipped)
		log.Info("would upload", interfaces.F("build", meta.Build), interfaces.F("version", meta.Version))
		return result
	}

	log.Info("uploading", interfaces.F("build", meta.Build), interfaces.F("version", meta.Version))
	if err := o.upload(ctx, meta, target.Path); err != nil {
		result.Fail(err)
		log.Error("upload failed", interfaces.F("error", err))
		return result
	}

	result.Advance(entities.StateUploaded)
	log.Info("uploaded")
	return result
}

func (o *UploadOrchestrator) upload(ctx context.Context, meta entities.ArchiveMetadata, path string) error {
	//nolint:gosec // G304: path is a resolved upload target
	f, err := os.Open(path)
	if err != nil {
		return entities.NewError(entities.KindIO, "failed to open", path, err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	return o.tpa.UploadSymbols(ctx, o.project, meta, filepath.Base(path), f)
}
