package herostats

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"owstats/lib/scrapers/owrates"
	"owstats/lib/telemetry"
	"owstats/services/herostats/db"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("owstats.services.herostats")

// Tuple processing states. A tuple starts pending, moves through
// fetching and normalizing, and ends in exactly one of the terminal
// states recorded in the run ledger.
const (
	StatePending     = "pending"
	StateFetching    = "fetching"
	StateRetrying    = "retrying"
	StateFetched     = "fetched"
	StateNormalizing = "normalizing"
	StateWritten     = "written"
	StateFetchFailed = "fetch_failed"
	StateWriteFailed = "write_failed"
)

type SmtpConfig struct {
	Server       string
	Port         int
	EmailAddress string
	Password     string
}

type Options struct {
	OutputDir string
	// Workers caps how many tuples are in flight at once. Zero or one
	// keeps the run strictly sequential; higher values still share the
	// client's single rate gate.
	Workers  int
	Smtp     SmtpConfig
	NotifyTo []string
}

type Service struct {
	db     *sql.DB
	qry    *db.Queries
	client *owrates.Client
	opts   Options
}

func NewService(database *sql.DB, client *owrates.Client, opts Options) Service {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return Service{
		db:     database,
		qry:    db.New(database),
		client: client,
		opts:   opts,
	}
}

// RunSummary reports the outcome counts of one completed (or aborted)
// run.
type RunSummary struct {
	RunID    string
	Total    int
	Written  int
	Failed   int
	Duration time.Duration
}

// Run fetches every tuple in the sequence, writes one artifact per
// successful fetch and records each tuple's terminal state in the run
// ledger. A failed tuple never aborts the run; it is counted and the
// run moves on. The returned error is non-nil only for ledger failures
// and cancellation.
func (s Service) Run(ctx context.Context, seq *owrates.Sequence) (RunSummary, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	runId, err := random.String(8)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate run id")
		return RunSummary{}, err
	}
	span.SetAttributes(attribute.String("run_id", runId))

	tuples := seq.All()
	started := time.Now()

	err = s.qry.CreateRun(ctx, db.CreateRunParams{
		ID:        runId,
		StartedAt: started.Unix(),
		Total:     int64(len(tuples)),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create run row")
		return RunSummary{}, err
	}

	slog.InfoContext(
		ctx, "starting run",
		"run_id", runId,
		"tuples", len(tuples),
		"workers", s.opts.Workers,
	)

	type job struct {
		position int
		tuple    owrates.FilterTuple
	}
	jobs := make(chan job)

	mu := sync.Mutex{}
	written := 0
	failed := 0

	wg := sync.WaitGroup{}
	for i := 0; i < s.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				state := s.processTuple(ctx, runId, j.position, j.tuple)
				mu.Lock()
				switch state {
				case StateWritten:
					written++
				case StateFetchFailed, StateWriteFailed:
					failed++
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for i, tuple := range tuples {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- job{position: i, tuple: tuple}:
		}
	}
	close(jobs)
	wg.Wait()

	finished := time.Now()
	// the final ledger write still happens when the run was cancelled
	err = s.qry.FinishRun(context.WithoutCancel(ctx), db.FinishRunParams{
		FinishedAt: sql.NullInt64{Int64: finished.Unix(), Valid: true},
		Written:    int64(written),
		Failed:     int64(failed),
		ID:         runId,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to finish run row")
		return RunSummary{}, err
	}

	summary := RunSummary{
		RunID:    runId,
		Total:    len(tuples),
		Written:  written,
		Failed:   failed,
		Duration: finished.Sub(started),
	}

	if ctx.Err() != nil {
		span.SetStatus(codes.Error, "cancelled")
		slog.WarnContext(
			ctx, "run cancelled",
			"run_id", runId,
			"written", written,
			"failed", failed,
			"remaining", len(tuples)-written-failed,
		)
		return summary, ctx.Err()
	}

	slog.InfoContext(
		ctx, "run complete",
		"run_id", runId,
		"written", written,
		"failed", failed,
		"duration", summary.Duration.String(),
	)
	return summary, nil
}

// processTuple drives one tuple to a terminal state and records it in
// the ledger. Returns the terminal state, or "" when the run was
// cancelled before this tuple finished.
func (s Service) processTuple(ctx context.Context, runId string, position int, tuple owrates.FilterTuple) string {
	ctx, span := tracer.Start(ctx, "processTuple")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", runId),
		attribute.Int("position", position),
		attribute.String("tuple", tuple.String()),
	)

	slog.DebugContext(ctx, "tuple state", "tuple", tuple.String(), "state", StateFetching)
	res, err := s.client.Fetch(ctx, tuple)
	if ctx.Err() != nil {
		span.SetStatus(codes.Error, "cancelled")
		return ""
	}
	if err != nil {
		s.recordOutcome(ctx, runId, position, tuple, outcome{
			State:    StateFetchFailed,
			Attempts: res.Attempts,
			Error:    err.Error(),
		})
		return StateFetchFailed
	}

	slog.DebugContext(ctx, "tuple state", "tuple", tuple.String(), "state", StateNormalizing)
	artifact, err := NormalizeAndWrite(tuple, res.Body, s.opts.OutputDir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write artifact")
		slog.ErrorContext(ctx, "write failed", "tuple", tuple.String(), "err", err)
		s.recordOutcome(ctx, runId, position, tuple, outcome{
			State:    StateWriteFailed,
			Attempts: res.Attempts,
			Error:    err.Error(),
		})
		return StateWriteFailed
	}

	slog.InfoContext(
		ctx, "artifact written",
		"tuple", tuple.String(),
		"artifact", artifact.Name,
		"rows", artifact.Rows,
	)
	s.recordOutcome(ctx, runId, position, tuple, outcome{
		State:    StateWritten,
		Attempts: res.Attempts,
		Artifact: artifact.Name,
		Rows:     artifact.Rows,
	})
	return StateWritten
}

// outcome is one tuple's terminal result, destined for the ledger.
type outcome struct {
	State    string
	Attempts int
	Artifact string
	Rows     int
	Error    string
}

// recordOutcome inserts one ledger row. A ledger failure is logged but
// never fails the tuple, the artifact on disk is the source of truth.
func (s Service) recordOutcome(ctx context.Context, runId string, position int, tuple owrates.FilterTuple, o outcome) {
	err := s.qry.RecordOutcome(context.WithoutCancel(ctx), db.RecordOutcomeParams{
		RunID:      runId,
		Position:   int64(position),
		Tuple:      tuple.String(),
		State:      o.State,
		Attempts:   int64(o.Attempts),
		Artifact:   o.Artifact,
		RowCount:   int64(o.Rows),
		Error:      o.Error,
		RecordedAt: time.Now().Unix(),
	})
	if err != nil {
		slog.WarnContext(
			ctx, "failed to record tuple outcome",
			"run_id", runId,
			"tuple", tuple.String(),
			"err", err,
		)
	}
}

// Runs returns the most recent runs, newest first.
func (s Service) Runs(ctx context.Context, limit int) ([]db.Run, error) {
	return s.qry.ListRuns(ctx, int64(limit))
}

// Outcomes returns every recorded tuple outcome for one run in
// sequence order.
func (s Service) Outcomes(ctx context.Context, runId string) ([]db.TupleOutcome, error) {
	return s.qry.ListOutcomes(ctx, runId)
}

// RunDetail returns one run's ledger row along with its recorded
// outcomes.
func (s Service) RunDetail(ctx context.Context, runId string) (db.Run, []db.TupleOutcome, error) {
	run, err := s.qry.GetRun(ctx, runId)
	if err != nil {
		return db.Run{}, nil, err
	}
	outcomes, err := s.qry.ListOutcomes(ctx, runId)
	if err != nil {
		return db.Run{}, nil, err
	}
	return run, outcomes, nil
}
