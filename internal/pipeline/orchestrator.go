package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rareminds/skillhub/internal/apperrors"
	"github.com/rareminds/skillhub/internal/embed"
)

// Batch defaults. One entity is embedded at a time and the orchestrator sleeps
// between batches; the sizing keeps a full pass polite toward the provider
// even without a token-bucket limiter in front of the client.
const (
	DefaultBatchSize  = 10
	DefaultBatchDelay = 2 * time.Second
)

// Orchestrator runs embedding passes for one entity kind. A single run
// processes entities strictly sequentially: within a batch in worklist order,
// across batches in partition order, with a delay between batches. Two
// concurrent Run calls on the same Orchestrator are rejected; point updates
// make overlapping runs from separate processes idempotent rather than
// corrupting, but there is no exactly-once guarantee across processes.
type Orchestrator struct {
	store      Store
	embedder   embed.Client
	dimensions int
	batchSize  int
	batchDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *slog.Logger
	running    atomic.Bool
}

// OrchestratorParams configures an Orchestrator. Store, Embedder and
// Dimensions are required; zero batch settings fall back to defaults and a
// nil Logger falls back to slog.Default().
type OrchestratorParams struct {
	Store      Store
	Embedder   embed.Client
	Dimensions int
	BatchSize  int
	BatchDelay time.Duration
	Logger     *slog.Logger

	// Sleep overrides the inter-batch sleep; tests inject a recorder here.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewOrchestrator creates an orchestrator for the given store and embedder.
func NewOrchestrator(p OrchestratorParams) *Orchestrator {
	o := &Orchestrator{
		store:      p.Store,
		embedder:   p.Embedder,
		dimensions: p.Dimensions,
		batchSize:  p.BatchSize,
		batchDelay: p.BatchDelay,
		sleep:      p.Sleep,
		logger:     p.Logger,
	}

	if o.batchSize <= 0 {
		o.batchSize = DefaultBatchSize
	}

	if o.batchDelay <= 0 {
		o.batchDelay = DefaultBatchDelay
	}

	if o.sleep == nil {
		o.sleep = sleepCtx
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}

	return o
}

// Run executes one embedding pass and returns its summary.
//
// Per-entity failures (provider errors after retries, persistence errors) are
// recorded in the summary and never abort the run. Only listing the worklist
// or computing coverage is run-fatal. Context cancellation aborts between
// entities and is returned with the progress made so far.
func (o *Orchestrator) Run(ctx context.Context) (*RunSummary, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, apperrors.ErrRunInProgress
	}
	defer o.running.Store(false)

	start := time.Now()
	kind := o.store.Kind()

	coverageBefore, err := o.store.Coverage(ctx)
	if err != nil {
		return nil, fmt.Errorf("coverage before run: %w", err)
	}

	worklist, err := o.store.ListMissingEmbedding(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entities missing embedding: %w", err)
	}

	summary := &RunSummary{
		Kind:           kind,
		CoverageBefore: coverageBefore,
	}

	if len(worklist) == 0 {
		o.logger.Info("embedding run: nothing to do", "kind", kind)

		summary.CoverageAfter = coverageBefore
		summary.Duration = time.Since(start)

		return summary, nil
	}

	batches := partition(worklist, o.batchSize)

	o.logger.Info("embedding run started",
		"kind", kind,
		"entities", len(worklist),
		"batches", len(batches),
		"batch_size", o.batchSize,
	)

	for i, batch := range batches {
		if err := o.processBatch(ctx, batch, summary); err != nil {
			summary.Duration = time.Since(start)

			return summary, err
		}

		o.logger.Info("batch processed",
			"kind", kind,
			"batch", i+1,
			"batches", len(batches),
			"succeeded", summary.SuccessCount,
			"failed", summary.FailedCount,
			"skipped", summary.SkippedCount,
		)

		if i < len(batches)-1 {
			if err := o.sleep(ctx, o.batchDelay); err != nil {
				summary.Duration = time.Since(start)

				return summary, err
			}
		}
	}

	coverageAfter, err := o.store.Coverage(ctx)
	if err != nil {
		summary.Duration = time.Since(start)

		return summary, fmt.Errorf("coverage after run: %w", err)
	}

	summary.CoverageAfter = coverageAfter
	summary.Duration = time.Since(start)

	o.logger.Info("embedding run finished",
		"kind", kind,
		"succeeded", summary.SuccessCount,
		"failed", summary.FailedCount,
		"skipped", summary.SkippedCount,
		"embedded_total", coverageAfter.Embedded,
		"duration", summary.Duration,
	)

	return summary, nil
}

// processBatch embeds one batch sequentially. Only context cancellation is
// returned as an error; everything else is accounted per entity.
func (o *Orchestrator) processBatch(ctx context.Context, batch []Candidate, summary *RunSummary) error {
	for _, candidate := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}

		if strings.TrimSpace(candidate.Text) == "" {
			summary.SkippedCount++

			o.logger.Info("entity skipped, no embeddable data",
				"kind", summary.Kind,
				"entity_id", candidate.ID,
			)

			continue
		}

		vec, err := o.embedder.CreateEmbedding(ctx, candidate.Text)
		if err != nil {
			o.recordFailure(summary, candidate, "generate embedding", err)

			continue
		}

		vec = embed.NormalizeDimension(vec, o.dimensions)

		if err := o.store.UpdateEmbedding(ctx, candidate.ID, vec); err != nil {
			o.recordFailure(summary, candidate, "persist embedding", err)

			continue
		}

		summary.SuccessCount++
	}

	return nil
}

func (o *Orchestrator) recordFailure(summary *RunSummary, candidate Candidate, stage string, err error) {
	summary.FailedCount++
	summary.Errors = append(summary.Errors, EntityError{
		EntityID: candidate.ID,
		Reason:   err.Error(),
	})

	o.logger.Warn("entity embedding failed",
		"kind", summary.Kind,
		"entity_id", candidate.ID,
		"stage", stage,
		"error", err,
	)
}

// partition splits the worklist into batches of at most size entries.
func partition(items []Candidate, size int) [][]Candidate {
	batches := make([][]Candidate, 0, (len(items)+size-1)/size)

	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}

		batches = append(batches, items[start:end])
	}

	return batches
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
