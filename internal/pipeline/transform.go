package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/firefront/internal/domain"
)

// Runner executes a resolved simulation.
type Runner interface {
	Run(ctx context.Context, cfg domain.SimulationConfig) (domain.Result, error)
}

// SimulationTransformer implements Transformer by decoding the request,
// running it, and serializing the resulting fronts.
type SimulationTransformer struct {
	runner Runner
	logger *slog.Logger
}

// NewTransformer creates a SimulationTransformer.
func NewTransformer(runner Runner, logger *slog.Logger) *SimulationTransformer {
	return &SimulationTransformer{
		runner: runner,
		logger: logger,
	}
}

func (t *SimulationTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	cfg, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	res, err := t.runner.Run(ctx, cfg)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	t.logger.Debug("simulation ready for sink", "run_id", res.Meta.RunID, "fronts", len(res.Fronts))
	return domain.SerializeResult(res)
}
