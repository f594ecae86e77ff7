package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/svm0n/ttscli/internal/session"
)

// OutcomeKind classifies how a dispatch ended.
type OutcomeKind int

const (
	// Refused means validation failed and the pipeline was never called.
	Refused OutcomeKind = iota
	Succeeded
	// RestartRequired means the known incompatibility was hit and the
	// upgrade succeeded. It only takes effect in a new process.
	RestartRequired
	// RemediationFailed means the known incompatibility was hit and the
	// upgrade did not work.
	RemediationFailed
	Failed
	Canceled
)

func (k OutcomeKind) String() string {
	switch k {
	case Refused:
		return "refused"
	case Succeeded:
		return "succeeded"
	case RestartRequired:
		return "restart required"
	case RemediationFailed:
		return "remediation failed"
	case Failed:
		return "failed"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Outcome is the result of a Dispatch.
type Outcome struct {
	Kind  OutcomeKind
	RunID string
	// Reason is the validation message for Refused outcomes.
	Reason  string
	Result  Result
	Err     error
	Elapsed time.Duration
}

// Dispatcher runs conversions for sessions.
type Dispatcher struct {
	Pipeline   Pipeline
	Remediator Remediator

	// Timeout bounds a whole conversion. Zero means no limit.
	Timeout time.Duration

	newRunID func() string
}

// NewDispatcher returns a dispatcher for p. r may be nil, in which case the
// known incompatibility is reported as RemediationFailed.
func NewDispatcher(p Pipeline, r Remediator) *Dispatcher {
	return &Dispatcher{Pipeline: p, Remediator: r}
}

// Dispatch validates s and, when it is valid, installs dependencies,
// initializes the pipeline and runs the conversion. s is only read.
func (d *Dispatcher) Dispatch(ctx context.Context, s *session.Session, progress Progress) (out Outcome) {
	if ok, reason := s.Validate(); !ok {
		log.Debug("Dispatch refused", "reason", reason)
		return Outcome{Kind: Refused, Reason: reason}
	}

	runID := d.runID()
	logger := log.With("run", runID)
	out.RunID = runID
	start := time.Now()
	defer func() {
		out.Elapsed = time.Since(start)
	}()

	if err := s.EnsureOutputDir(); err != nil {
		out.Kind, out.Err = Failed, err
		return out
	}

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	logger.Info("Starting conversion", "kind", s.Kind, "model", s.Model, "format", s.Format, "device", s.Device)

	res, err := d.run(ctx, runID, s, progress)
	if err == nil {
		out.Kind, out.Result = Succeeded, res
		logger.Info("Conversion finished", "files", res.Files(), "elapsed", time.Since(start))
		return out
	}

	out.Err = err
	switch {
	case canceled(ctx, err):
		out.Kind = Canceled
		logger.Info("Conversion canceled")
	case IsIncompatible(err):
		logger.Warn("Known incompatibility in pipeline", "error", err)
		out.Kind, out.Err = d.remediate(ctx, progress, err)
	default:
		out.Kind = Failed
		logger.Error("Conversion failed", "error", err, "trace", TraceOf(err))
	}
	return out
}

func (d *Dispatcher) run(ctx context.Context, runID string, s *session.Session, progress Progress) (Result, error) {
	var extractor string
	if s.Kind == session.KindPDF {
		extractor = string(s.Extractor)
	}

	err := d.Pipeline.InstallDependencies(ctx, Requirements{
		RunID:     runID,
		Model:     string(s.Model),
		Extractor: string(s.Extractor),
		Kind:      s.Kind.PipelineID(),
		Format:    string(s.Format),
	}, progress)
	if err != nil {
		return Result{}, err
	}

	sys, err := d.Pipeline.Initialize(ctx, InitOptions{
		RunID:     runID,
		Model:     string(s.Model),
		OutputDir: s.OutputDir,
		Device:    string(s.Device),
		Extractor: extractor,
		Kind:      s.Kind.PipelineID(),
	}, progress)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := sys.Close(); err != nil {
			log.Debug("Unable to close pipeline", "run", runID, "error", err)
		}
	}()

	return sys.Run(ctx, jobFor(runID, s), progress)
}

func jobFor(runID string, s *session.Session) Job {
	job := Job{
		RunID:  runID,
		Kind:   s.Kind.PipelineID(),
		Model:  string(s.Model),
		Format: string(s.Format),
		Voice:  s.Voice,
	}
	if s.Model.SupportsSpeed() {
		job.Speed = s.Speed
	}
	switch s.Kind {
	case session.KindPDF:
		job.PDFPath = s.PDFPath
		job.Pages = s.Pages
	case session.KindEPUB:
		job.EPUBPath = s.EPUBPath
	case session.KindText:
		job.Text = s.Text
	}
	return job
}

func (d *Dispatcher) remediate(ctx context.Context, progress Progress, cause error) (OutcomeKind, error) {
	if d.Remediator == nil {
		return RemediationFailed, errors.Join(cause, ErrNoRemediation)
	}

	progress.emit(StageRemediate, "Attempting to fix by upgrading dependencies")
	if err := d.Remediator.Upgrade(ctx); err != nil {
		if canceled(ctx, err) {
			return Canceled, err
		}
		log.Error("Upgrade failed", "error", err)
		return RemediationFailed, errors.Join(cause, err)
	}
	log.Info("Dependencies upgraded, restart required")
	return RestartRequired, cause
}

func (d *Dispatcher) runID() string {
	if d.newRunID != nil {
		return d.newRunID()
	}
	return uuid.NewString()
}

func canceled(ctx context.Context, err error) bool {
	return CodeOf(err) == ErrorCodeCanceled ||
		errors.Is(err, context.Canceled) ||
		errors.Is(ctx.Err(), context.Canceled)
}
