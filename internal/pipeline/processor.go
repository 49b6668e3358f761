// Package pipeline wires the rename and combine stages together.
package pipeline

import (
	"context"
	"log/slog"
)

// Processor coordinates rename (STFCS -> state dir) then combine (state dir -> combined PDFs).
type Processor struct {
	logger   *slog.Logger
	renamer  *Renamer
	combiner *Combiner
}

func NewProcessor(logger *slog.Logger, renamer *Renamer, combiner *Combiner) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, renamer: renamer, combiner: combiner}
}

// Run executes both stages under a single run ID. A fatal rename error stops
// the run before combine starts.
func (p *Processor) Run(ctx context.Context) (RenameReport, CombineReport, error) {
	ctx, runID := ensureRun(ctx)

	renamed, err := p.renamer.Run(ctx)
	if err != nil {
		p.logger.Error("processor.rename.failed", "run_id", runID, "error", err)
		return renamed, CombineReport{RunID: runID}, err
	}
	p.logger.Debug("processor rename stage success", "run_id", runID, "renamed", len(renamed.Renamed))

	combined, err := p.combiner.Run(ctx)
	if err != nil {
		p.logger.Error("processor.combine.failed", "run_id", runID, "error", err)
		return renamed, combined, err
	}
	p.logger.Debug("processor combine stage success", "run_id", runID, "artifacts", len(combined.Artifacts))
	return renamed, combined, nil
}
