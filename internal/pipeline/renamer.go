package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/formbatch/constants"
	"github.com/joseph-ayodele/formbatch/internal/common"
	"github.com/joseph-ayodele/formbatch/internal/entity"
	"github.com/joseph-ayodele/formbatch/internal/filename"
	"github.com/joseph-ayodele/formbatch/internal/pdf"
)

// IdentityReader extracts a full identity from a document page.
type IdentityReader interface {
	Extract(ctx context.Context, path string, pageIndex int) (entity.IdentityKey, error)
}

type RenamerConfig struct {
	CompanyDir   string
	StateDir     string
	IdentityPage int
}

// Renamed is one form written to the state directory.
type Renamed struct {
	Source string
	Output string
	Key    entity.IdentityKey
}

// RenameReport is the outcome of one rename run.
type RenameReport struct {
	RunID   string
	Renamed []Renamed
	Skips   []entity.Skip
	Folders int
	Forms   int
}

// Renamer turns raw STFCS forms into canonical state-directory documents
// without their first two pages.
type Renamer struct {
	cfg      RenamerConfig
	engine   pdf.Engine
	identity IdentityReader
	logger   *slog.Logger
}

func NewRenamer(cfg RenamerConfig, engine pdf.Engine, identity IdentityReader, logger *slog.Logger) *Renamer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renamer{cfg: cfg, engine: engine, identity: identity, logger: logger}
}

// Run walks company subfolders in name order. Per-form failures become skips.
func (r *Renamer) Run(ctx context.Context) (RenameReport, error) {
	ctx, runID := ensureRun(ctx)
	logger := r.logger.With("run_id", runID, "stage", common.StageRename)
	ctx = common.WithLogger(ctx, logger)
	report := RenameReport{RunID: runID}

	folders, err := readDir(r.cfg.CompanyDir)
	if err != nil {
		return report, err
	}
	if err := os.MkdirAll(r.cfg.StateDir, 0o755); err != nil {
		return report, common.NewAppError(common.CodeOutput, "create state directory", err)
	}

	alloc := filename.NewSuffixAllocator(r.cfg.StateDir)
	for _, folder := range folders {
		if !folder.IsDir() || isHidden(folder.Name()) {
			continue
		}
		report.Folders++
		dir := filepath.Join(r.cfg.CompanyDir, folder.Name())
		logger.Info("processing subfolder", "folder", folder.Name())

		forms, err := os.ReadDir(dir)
		if err != nil {
			logger.Error("failed to read subfolder", "folder", folder.Name(), "error", err)
			continue
		}
		for _, form := range forms {
			if form.IsDir() || !constants.IsStateForm(form.Name()) {
				continue
			}
			report.Forms++
			out, skip := r.renameOne(ctx, logger, alloc, filepath.Join(dir, form.Name()))
			if skip != nil {
				report.Skips = append(report.Skips, *skip)
				continue
			}
			report.Renamed = append(report.Renamed, out)
		}
	}

	logger.Info("rename complete",
		"folders", report.Folders,
		"forms", report.Forms,
		"renamed", len(report.Renamed),
		"skips", len(report.Skips),
	)
	return report, nil
}

func (r *Renamer) renameOne(ctx context.Context, logger *slog.Logger, alloc *filename.SuffixAllocator, src string) (Renamed, *entity.Skip) {
	logger.Debug("processing form", "path", src)

	key, err := r.identity.Extract(ctx, src, r.cfg.IdentityPage)
	if err != nil {
		if common.IsDocumentError(err) {
			logger.Warn("skipping form", "path", src, "error", err)
		} else {
			logger.Error("identity extraction failed", "path", src, "error", err)
		}
		return Renamed{}, &entity.Skip{Path: src, Reason: extractionReason(err), Err: err}
	}

	name, err := alloc.Allocate(key.Last, key.First)
	if err != nil {
		logger.Error("no output name", "path", src, "error", err)
		return Renamed{}, &entity.Skip{Path: src, Reason: constants.SkipWriteFailed, Key: key, Err: err}
	}
	dst := filepath.Join(r.cfg.StateDir, name)

	if err := r.engine.DropLeadingPages(ctx, src, dst, constants.LeadingPagesToDrop); err != nil {
		reason := constants.SkipWriteFailed
		if errors.Is(err, common.ErrInsufficientPages) {
			reason = constants.SkipInsufficientPages
		}
		logger.Error("error processing form", "path", src, "error", err)
		return Renamed{}, &entity.Skip{Path: src, Reason: reason, Key: key, Err: err}
	}

	logger.Info("saved form to state directory", "path", src, "output", name)
	return Renamed{Source: src, Output: dst, Key: key}, nil
}

func extractionReason(err error) constants.SkipReason {
	if errors.Is(err, common.ErrInsufficientPages) {
		return constants.SkipInsufficientPages
	}
	return constants.SkipExtractionFailed
}
