package pipeline

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/clusslin/exdicom/config"
	"github.com/clusslin/exdicom/dispatch"
	"github.com/clusslin/exdicom/internal/ident"
	"github.com/clusslin/exdicom/internal/models"
	"github.com/clusslin/exdicom/notify"
	"github.com/clusslin/exdicom/storage/blob"
	"github.com/clusslin/exdicom/storage/ledger"
)

// Ledger timestamps use the gateway's local timezone, matching what the
// downstream relay and the operators read off the spreadsheet.
const creationTimeLayout = "2006-01-02 15:04:05"

// proofSuffix is the fixed tail of a relabeled proof-of-upload screenshot.
const proofSuffix = "_upload_evidence.png"

// Orchestrator runs the upload-completion pipeline: assign an identifier,
// relabel the stored artifacts, record the submission, confirm to the
// uploader and announce the upload downstream.
//
// Failure isolation is the point of this type. Once an identifier is
// assigned the pipeline always runs to the end: each later stage is invoked
// behind its own error check, a failed stage degrades into a logged warning
// and the next stage still runs. Only identifier assignment itself can
// produce Success=false, because an upload without a durable identifier is
// the one thing this service must never let through.
type Orchestrator struct {
	cfg        config.PipelineConfig
	blobs      blob.Store
	ledger     ledger.Ledger
	notifier   notify.Notifier
	dispatcher dispatch.Dispatcher
	logger     *log.Logger

	generate func() string
}

// New creates an Orchestrator wired to its collaborators.
func New(cfg config.PipelineConfig, blobs blob.Store, led ledger.Ledger, notifier notify.Notifier, dispatcher dispatch.Dispatcher, logger *log.Logger) *Orchestrator {
	if cfg.MaxIdentifierAttempts <= 0 {
		cfg.MaxIdentifierAttempts = 5
	}
	return &Orchestrator{
		cfg:        cfg,
		blobs:      blobs,
		ledger:     led,
		notifier:   notifier,
		dispatcher: dispatcher,
		logger:     logger,
		generate:   ident.Generate,
	}
}

// Complete runs the pipeline for one submission and always returns an
// outcome. The submission is not retained after the call returns.
func (o *Orchestrator) Complete(ctx context.Context, sub *models.UploadSubmission) *models.PipelineOutcome {
	if sub == nil || sub.ArtifactRef == "" {
		return &models.PipelineOutcome{
			Success: false,
			Message: "upload completion aborted: no artifact reference",
			Err:     "artifact reference is required",
		}
	}

	creationTime := time.Now().Format(creationTimeLayout)

	// 1. Identifier assignment. The only fatal stage.
	identifier, err := o.assignIdentifier(ctx)
	if err != nil {
		o.logger.Printf("Identifier assignment failed for '%s': %v", sub.Filename, err)
		o.alertOperator(ctx, "identifier assignment failed", err.Error(), map[string]string{
			"filename":     sub.Filename,
			"artifact_ref": sub.ArtifactRef,
		})
		return &models.PipelineOutcome{
			Success:     false,
			Message:     "upload completion aborted: no identifier could be assigned",
			ArtifactRef: sub.ArtifactRef,
			Err:         err.Error(),
		}
	}
	o.logger.Printf("Identifier %s assigned to upload '%s'", identifier, sub.Filename)

	var warnings []string

	// 2. Relabel the primary artifact. The identifier stays valid even when
	// the stored name could not be changed.
	ext := path.Ext(sub.Filename)
	if ext == "" {
		// Submission carried no usable filename; fall back to the name the
		// blob store has on record.
		if name, err := o.blobs.ArtifactName(ctx, sub.ArtifactRef); err != nil {
			o.logger.Printf("Stored artifact name lookup failed (ref: %s): %v", sub.ArtifactRef, err)
		} else {
			ext = path.Ext(name)
		}
	}
	newName := identifier + ext
	if err := o.blobs.Rename(ctx, sub.ArtifactRef, newName); err != nil {
		o.logger.Printf("Artifact relabel failed (ref: %s): %v", sub.ArtifactRef, err)
		warnings = append(warnings, fmt.Sprintf("artifact relabel failed: %v", err))
	}

	// Proof screenshot is auxiliary: failures here are logged, never surfaced.
	if sub.ProofRef != "" {
		if err := o.blobs.Rename(ctx, sub.ProofRef, identifier+proofSuffix); err != nil {
			o.logger.Printf("Proof artifact relabel failed (ref: %s): %v", sub.ProofRef, err)
		}
		desc := fmt.Sprintf("Upload evidence for %s", identifier)
		if err := o.blobs.SetDescription(ctx, sub.ProofRef, desc); err != nil {
			o.logger.Printf("Proof artifact description failed (ref: %s): %v", sub.ProofRef, err)
		}
	}

	// 3. Ledger append. The artifact is already identified and stored, so a
	// dead ledger degrades the outcome instead of failing it.
	var rowNumber int64
	if row, err := o.ledger.AppendRow(ctx, ledger.Columns(sub, identifier, creationTime)); err != nil {
		o.logger.Printf("Ledger append failed (identifier: %s): %v", identifier, err)
		warnings = append(warnings, fmt.Sprintf("ledger append failed: %v", err))
		o.alertOperator(ctx, "ledger append failed", err.Error(), map[string]string{
			"identifier": identifier,
			"filename":   sub.Filename,
		})
	} else {
		rowNumber = row
	}

	// 4. Confirmation mail, only for recorded uploads with a reply address.
	if rowNumber > 0 && sub.UploaderEmail != "" {
		if err := o.notifier.NotifySubmitter(ctx, sub.UploaderEmail, identifier, sub.HospitalName); err != nil {
			o.logger.Printf("Submitter notification failed (identifier: %s): %v", identifier, err)
		}
	}

	// 5. Downstream announcement. A missed event is recovered by the relay's
	// polling fallback, so dispatch failure is log-only.
	event := &models.WebhookEvent{
		Identifier:    identifier,
		Filename:      sub.Filename,
		RowNumber:     rowNumber,
		CreationTime:  creationTime,
		HospitalName:  sub.HospitalName,
		ExamType:      sub.ExamType,
		UploaderName:  sub.UploaderName,
		UploaderPhone: sub.UploaderPhone,
		UploaderEmail: sub.UploaderEmail,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := o.dispatcher.Dispatch(ctx, event); err != nil {
		o.logger.Printf("Upload event dispatch failed (identifier: %s): %v", identifier, err)
	}

	return &models.PipelineOutcome{
		Success:     true,
		Message:     fmt.Sprintf("Upload completed. Reference ID: %s", identifier),
		Identifier:  identifier,
		ArtifactRef: sub.ArtifactRef,
		RowNumber:   rowNumber,
		Warning:     strings.Join(warnings, "; "),
	}
}

// assignIdentifier generates identifiers until one passes the ledger probe,
// bounded by MaxIdentifierAttempts. A failing probe is tolerated: identifier
// collisions are a birthday-bound risk, an unprobed identifier is still far
// better than a refused upload.
func (o *Orchestrator) assignIdentifier(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= o.cfg.MaxIdentifierAttempts; attempt++ {
		id := o.generate()
		if !ident.Valid(id) {
			return "", fmt.Errorf("identifier generator produced malformed value %q", id)
		}
		exists, err := o.ledger.HasIdentifier(ctx, id)
		if err != nil {
			o.logger.Printf("Identifier collision probe failed, accepting %s unprobed: %v", id, err)
			return id, nil
		}
		if !exists {
			return id, nil
		}
		o.logger.Printf("Identifier collision on %s (attempt %d/%d), regenerating", id, attempt, o.cfg.MaxIdentifierAttempts)
	}
	return "", fmt.Errorf("exhausted %d attempts without a collision-free identifier", o.cfg.MaxIdentifierAttempts)
}

// alertOperator is best-effort by contract: a failed alert is only logged.
func (o *Orchestrator) alertOperator(ctx context.Context, kind, message string, details map[string]string) {
	if err := o.notifier.NotifyOperator(ctx, kind, message, details); err != nil {
		o.logger.Printf("Operator alert failed (%s): %v", kind, err)
	}
}
