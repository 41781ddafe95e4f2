// Package workflow runs the grading workflow against the autograder service.
//
// A run is a fixed pipeline of four steps: register the team, schedule a
// grading run, fetch the latest result, download that result's log. Each
// step's output (or a subset of it) is the next step's input. Steps run one
// after another, are never reordered or retried, and the first failure stops
// the run.
//
// Key types:
//   - [Runner] executes the pipeline or any single step
//   - [State] tracks how far the pipeline got
//
// The [Runner] depends on a [Client] for network calls and an [ArtifactWriter]
// for the output files; both are interfaces so tests can inject fakes.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"autograder/internal/grader"
	"autograder/internal/output"
)

// Step names, in pipeline order.
const (
	StepRegister    = "register"
	StepSchedule    = "schedule"
	StepLastRun     = "last-run"
	StepDownloadLog = "download-log"
)

// Client is the interface for the grading service calls.
//
// The [grader.Client] type implements this interface.
type Client interface {
	Register(ctx context.Context, req grader.RegistrationRequest) (*grader.Response, error)
	Schedule(ctx context.Context, req grader.ScheduleRequest) (*grader.Response, error)
	LastRun(ctx context.Context, req grader.ScheduleRequest) (*grader.Response, error)
	BestRun(ctx context.Context, req grader.ScheduleRequest) (*grader.Response, error)
	DownloadLog(ctx context.Context, req grader.LogRequest) (*grader.Response, error)
}

// ArtifactWriter is the interface for persisting run output files.
//
// The [artifact.Writer] type implements this interface.
type ArtifactWriter interface {
	WriteResult(body []byte) error
	WriteRunLog(data []byte) error
	ResultPath() string
	RunLogPath() string
}

// ProgressCallback is invoked before each pipeline step begins.
//
// stepIndex is 1-based.
type ProgressCallback func(stepIndex, totalSteps int, step string)

// Runner executes the grading workflow.
//
// A Runner serves one process run. It carries a run id, attached to every
// log line, and the [State] reached so far.
type Runner struct {
	client           Client
	artifacts        ArtifactWriter
	printer          output.Printer
	logger           *zap.Logger
	progressCallback ProgressCallback
	runID            string
	state            State
}

// NewRunner creates a Runner. A nil logger discards diagnostics.
func NewRunner(client Client, artifacts ArtifactWriter, printer output.Printer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	return &Runner{
		client:    client,
		artifacts: artifacts,
		printer:   printer,
		logger:    logger.With(zap.String("run_id", runID)),
		runID:     runID,
		state:     StateInit,
	}
}

// SetProgressCallback configures an optional callback fired before each step of [Runner.Run].
func (r *Runner) SetProgressCallback(cb ProgressCallback) {
	r.progressCallback = cb
}

// RunID returns the id attached to this runner's log lines.
func (r *Runner) RunID() string {
	return r.runID
}

// State returns the furthest state reached.
func (r *Runner) State() State {
	return r.state
}

type step struct {
	name string
	run  func(ctx context.Context) error
}

// Run executes the full pipeline for reg.
//
// The schedule payload is derived from reg, and the log request from the
// schedule payload plus the fetched result. Run stops at the first failing
// step and returns its error wrapped with the step name; a summary of the
// steps attempted is printed either way.
func (r *Runner) Run(ctx context.Context, reg grader.RegistrationRequest) error {
	sched := reg.Schedule()
	var result grader.RunResult

	steps := []step{
		{
			name: StepRegister,
			run:  func(ctx context.Context) error { return r.Register(ctx, reg) },
		},
		{
			name: StepSchedule,
			run:  func(ctx context.Context) error { return r.ScheduleRun(ctx, sched) },
		},
		{
			name: StepLastRun,
			run: func(ctx context.Context) error {
				var err error
				result, err = r.FetchLatestResult(ctx, sched)
				return err
			},
		},
		{
			name: StepDownloadLog,
			run:  func(ctx context.Context) error { return r.DownloadLog(ctx, sched, result) },
		},
	}

	r.logger.Info("run started", zap.Int("group", reg.Group))
	runStart := time.Now()
	results := make([]output.StepResult, 0, len(steps))

	for i, s := range steps {
		if r.progressCallback != nil {
			r.progressCallback(i+1, len(steps), s.name)
		}
		r.printer.StepStart(i+1, len(steps), s.name)

		stepStart := time.Now()
		err := s.run(ctx)
		results = append(results, output.StepResult{
			Name:     s.name,
			Duration: time.Since(stepStart),
			Err:      err,
		})

		if err != nil {
			r.logger.Error("step failed", zap.String("step", s.name), zap.Stringer("state", r.state), zap.Error(err))
			r.printer.Error(fmt.Sprintf("%s failed: %v", s.name, err))
			r.printer.Summary(results, time.Since(runStart))
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}

	r.logger.Info("run complete", zap.Duration("duration", time.Since(runStart)))
	r.printer.Summary(results, time.Since(runStart))
	return nil
}

// Register posts the registration payload and prints the response.
//
// The response is never parsed and its status never halts the workflow.
func (r *Runner) Register(ctx context.Context, reg grader.RegistrationRequest) error {
	r.printer.Field("Register body JSON", redactedJSON(reg))

	resp, err := r.client.Register(ctx, reg)
	if err != nil {
		return err
	}
	r.reportResponse(StepRegister, resp)

	r.state = StateRegistered
	return nil
}

// ScheduleRun asks the service to grade the group. Handled like [Runner.Register].
func (r *Runner) ScheduleRun(ctx context.Context, sched grader.ScheduleRequest) error {
	resp, err := r.client.Schedule(ctx, sched)
	if err != nil {
		return err
	}
	r.reportResponse(StepSchedule, resp)

	r.state = StateScheduled
	return nil
}

// FetchLatestResult fetches the group's latest run result and saves it,
// re-indented, to the result file.
//
// A body that is not valid JSON fails with [grader.ErrMalformedResult] and
// nothing is written. Any valid JSON body is saved, even one that is not an
// object; [Runner.DownloadLog] then rejects it for lack of a log name.
func (r *Runner) FetchLatestResult(ctx context.Context, sched grader.ScheduleRequest) (grader.RunResult, error) {
	resp, err := r.client.LastRun(ctx, sched)
	if err != nil {
		return nil, err
	}
	r.printer.StatusCode(resp.StatusCode)
	r.logger.Debug("last run fetched", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(resp.Body)))

	result, err := grader.ParseRunResult(resp.Body)
	if err != nil {
		return nil, err
	}

	if err := r.artifacts.WriteResult(resp.Body); err != nil {
		return nil, err
	}
	r.printer.Written(r.artifacts.ResultPath())

	r.state = StateResultFetched
	return result, nil
}

// DownloadLog downloads the log named in result and writes it verbatim to
// the run log file.
//
// A result without the log name, including a nil result from a non-object
// body, fails with [grader.ErrLogNameMissing] before any request is sent.
func (r *Runner) DownloadLog(ctx context.Context, sched grader.ScheduleRequest, result grader.RunResult) error {
	name, err := result.LogName()
	if err != nil {
		return err
	}
	r.printer.Field("Log file", string(name))

	resp, err := r.client.DownloadLog(ctx, sched.WithLog(name))
	if err != nil {
		return err
	}
	r.printer.StatusCode(resp.StatusCode)

	if err := r.artifacts.WriteRunLog(resp.Body); err != nil {
		return err
	}
	r.printer.Written(r.artifacts.RunLogPath())
	r.logger.Debug("run log saved", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(resp.Body)))

	r.state = StateLogDownloaded
	return nil
}

// FetchBestResult fetches the group's best scoring run and prints it.
// It is not part of [Runner.Run] and does not change the state.
func (r *Runner) FetchBestResult(ctx context.Context, sched grader.ScheduleRequest) error {
	resp, err := r.client.BestRun(ctx, sched)
	if err != nil {
		return err
	}
	r.reportResponse("best-run", resp)
	return nil
}

func (r *Runner) reportResponse(step string, resp *grader.Response) {
	r.printer.StatusCode(resp.StatusCode)
	r.printer.Body(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.logger.Warn("non-success status, continuing",
			zap.String("step", step),
			zap.Int("status", resp.StatusCode),
		)
	}
}

// redactedJSON renders the registration body with the token masked.
func redactedJSON(reg grader.RegistrationRequest) string {
	if reg.Token != "" {
		reg.Token = "****"
	}
	data, err := json.Marshal(reg)
	if err != nil {
		return fmt.Sprintf("<unprintable: %v>", err)
	}
	return string(data)
}

// IsResultError reports whether err came from a malformed or incomplete run
// result rather than from the network.
func IsResultError(err error) bool {
	return errors.Is(err, grader.ErrMalformedResult) || errors.Is(err, grader.ErrLogNameMissing)
}
