package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/formbatch/constants"
	"github.com/joseph-ayodele/formbatch/internal/assemble"
	"github.com/joseph-ayodele/formbatch/internal/common"
	"github.com/joseph-ayodele/formbatch/internal/entity"
	"github.com/joseph-ayodele/formbatch/internal/export"
	"github.com/joseph-ayodele/formbatch/internal/overrides"
	"github.com/joseph-ayodele/formbatch/internal/pdf"
	"github.com/joseph-ayodele/formbatch/internal/reconcile"
)

// ZipReader reads the postal code printed on a document page.
type ZipReader interface {
	ZipOf(ctx context.Context, path string, pageIndex int) (string, error)
}

type CombinerConfig struct {
	StateDir     string
	CombinedDir  string
	IgnoreFile   string
	OrderFile    string
	BatchSize    int
	IdentityPage int
	Manifest     bool
}

// CombineStats counts documents through the combine stage.
type CombineStats struct {
	Scanned     int
	Eligible    int
	Prioritized int
	Residual    int
	Merged      int
	Artifacts   int
}

// CombineReport is the outcome of one combine run.
type CombineReport struct {
	RunID        string
	Artifacts    []entity.CombinedArtifact
	Skips        []entity.Skip
	Stats        CombineStats
	ManifestPath string
}

// Combiner reassembles the state directory into combined PDFs.
type Combiner struct {
	cfg      CombinerConfig
	engine   pdf.Engine
	zips     ZipReader
	exporter *export.Service
	logger   *slog.Logger
	now      func() time.Time
}

func NewCombiner(cfg CombinerConfig, engine pdf.Engine, zips ZipReader, logger *slog.Logger) *Combiner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = constants.BatchCapacity
	}
	return &Combiner{
		cfg:      cfg,
		engine:   engine,
		zips:     zips,
		exporter: export.NewService(logger),
		logger:   logger,
		now:      time.Now,
	}
}

// Run scans, reconciles, batches and merges. Only a missing state directory,
// an unusable combined directory or an unreadable override workbook abort it.
func (c *Combiner) Run(ctx context.Context) (CombineReport, error) {
	ctx, runID := ensureRun(ctx)
	logger := c.logger.With("run_id", runID, "stage", common.StageCombine)
	ctx = common.WithLogger(ctx, logger)
	report := CombineReport{RunID: runID}

	population, skips, dirStats, err := ScanState(c.cfg.StateDir)
	if err != nil {
		return report, err
	}
	report.Skips = append(report.Skips, skips...)
	report.Stats.Scanned = dirStats.Matched
	report.Stats.Eligible = dirStats.Eligible
	for _, s := range skips {
		logger.Info("skipping file", "path", s.Path, "reason", s.Reason)
	}

	if err := os.MkdirAll(c.cfg.CombinedDir, 0o755); err != nil {
		return report, common.NewAppError(common.CodeOutput, "create combined directory", err)
	}
	logger.Info("ensured combined directory exists", "path", c.cfg.CombinedDir)

	registry, err := overrides.Load(ctx, c.cfg.IgnoreFile, c.cfg.OrderFile, logger)
	if err != nil {
		return report, err
	}

	used := entity.NewUsedSet()
	rec := reconcile.New(registry, c.zipLookup(), logger)
	res := rec.Reconcile(ctx, population, used)
	report.Skips = append(report.Skips, res.Skips...)
	report.Stats.Prioritized = len(res.Prioritized)
	report.Stats.Residual = len(res.Residual)

	batches := assemble.Plan(res.Prioritized, res.Residual, c.cfg.BatchSize)
	asm := assemble.New(c.engine, c.cfg.CombinedDir, logger)
	artifacts, mergeSkips := asm.Assemble(ctx, batches, used)
	report.Artifacts = artifacts
	report.Skips = append(report.Skips, mergeSkips...)
	report.Stats.Artifacts = len(artifacts)
	for _, a := range artifacts {
		report.Stats.Merged += len(a.Names)
	}

	if c.cfg.Manifest && len(artifacts) > 0 {
		path, err := c.writeManifest(runID, report)
		if err != nil {
			logger.Error("failed to write manifest", "error", err)
		} else {
			report.ManifestPath = path
		}
	}

	logger.Info("all files combined",
		"artifacts", report.Stats.Artifacts,
		"merged", report.Stats.Merged,
		"eligible", report.Stats.Eligible,
		"skips", len(report.Skips),
	)
	return report, nil
}

func (c *Combiner) zipLookup() reconcile.ZipLookup {
	if c.zips == nil {
		return nil
	}
	page := c.cfg.IdentityPage
	return func(ctx context.Context, doc entity.DocumentRecord) (string, error) {
		return c.zips.ZipOf(ctx, doc.Path, page)
	}
}

func (c *Combiner) writeManifest(runID string, report CombineReport) (string, error) {
	data, err := c.exporter.ManifestXLSX(runID, report.Artifacts, report.Skips)
	if err != nil {
		return "", err
	}
	path := filepath.Join(c.cfg.CombinedDir, constants.ManifestPrefix+assemble.Timestamp(c.now())+".xlsx")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ensureRun returns a context carrying a run ID, creating one if needed.
func ensureRun(ctx context.Context) (context.Context, string) {
	if id := common.RunIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := common.NewRunID()
	return common.WithRunID(ctx, id), id
}
