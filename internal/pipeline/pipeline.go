package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/firefront/internal/domain"
	"github.com/couchcryptid/firefront/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BatchExtractor reads up to batchSize simulation requests. An empty batch
// with a nil error means the source was idle.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer turns a raw request into a serialized result.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader publishes results.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline consumes simulation requests, runs them, and publishes the fronts.
// Requests are simulated one at a time, in order.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has completed a poll of the
// source topic, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not polled the source topic yet")
	}
	return nil
}

// Run polls, simulates and publishes until the context is cancelled. Failed
// cycles are retried with exponential backoff. It always returns nil.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("request pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	wait := initialBackoff
	for ctx.Err() == nil {
		if err := p.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			p.logger.Error("pipeline cycle failed", "error", err, "retry_in", wait)
			if !retry.SleepWithContext(ctx, wait) {
				break
			}
			wait = retry.NextBackoff(wait, maxBackoff)
			continue
		}
		wait = initialBackoff
	}

	p.logger.Info("request pipeline stopping", "reason", ctx.Err())
	return nil
}

// batchOutcome splits a batch by what happens to each request.
type batchOutcome struct {
	results  []domain.OutputEvent
	accepted []domain.RawEvent
	rejected []domain.RawEvent
}

// cycle runs one poll-simulate-publish-commit round.
func (p *Pipeline) cycle(ctx context.Context) error {
	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	p.ready.Store(true)
	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	p.metrics.MessagesConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))

	out, err := p.simulate(ctx, batch)
	if err != nil {
		return err
	}

	// Rejected requests will never succeed; acknowledge them now.
	p.commit(ctx, out.rejected)

	if len(out.results) > 0 {
		if err := p.loader.LoadBatch(ctx, out.results); err != nil {
			return fmt.Errorf("load %d results: %w", len(out.results), err)
		}
		p.metrics.MessagesProduced.Add(float64(len(out.results)))
		p.commit(ctx, out.accepted)
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	}

	p.logger.Info("batch processed",
		"consumed", len(batch),
		"published", len(out.results),
		"rejected", len(out.rejected),
		"duration", time.Since(start),
	)
	return nil
}

// simulate transforms every request of the batch. A request interrupted by
// cancellation aborts the batch without acknowledging anything.
func (p *Pipeline) simulate(ctx context.Context, batch []domain.RawEvent) (batchOutcome, error) {
	out := batchOutcome{
		results:  make([]domain.OutputEvent, 0, len(batch)),
		accepted: make([]domain.RawEvent, 0, len(batch)),
	}
	for _, raw := range batch {
		res, err := p.transformer.Transform(ctx, raw)
		switch {
		case err == nil:
			out.results = append(out.results, res)
			out.accepted = append(out.accepted, raw)
		case ctx.Err() != nil:
			return batchOutcome{}, fmt.Errorf("simulate %s: %w", raw.Source(), ctx.Err())
		default:
			p.logger.Warn("request rejected, skipping message",
				"error", err,
				"source", raw.Source(),
				"run_id", raw.RunIDHint(),
			)
			p.metrics.TransformErrors.Inc()
			out.rejected = append(out.rejected, raw)
		}
	}
	return out, nil
}

func (p *Pipeline) commit(ctx context.Context, raws []domain.RawEvent) {
	for _, raw := range raws {
		if raw.Commit == nil {
			continue
		}
		if err := raw.Commit(ctx); err != nil {
			p.logger.Warn("commit offset failed", "error", err, "source", raw.Source())
		}
	}
}
