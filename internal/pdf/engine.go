// Package pdf is the document engine: page counting, validation, merging
// and page trimming on top of pdfcpu.
package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/formbatch/internal/common"
)

// Engine is the document capability the pipeline depends on.
type Engine interface {
	PageCount(ctx context.Context, path string) (int, error)
	Validate(ctx context.Context, path string) error
	Merge(ctx context.Context, inputs []string, out string) error
	DropLeadingPages(ctx context.Context, in, out string, n int) error
}

// PDFCPU implements Engine with pdfcpu in relaxed validation mode.
type PDFCPU struct {
	conf   *model.Configuration
	logger *slog.Logger
}

func NewPDFCPU(logger *slog.Logger) *PDFCPU {
	if logger == nil {
		logger = slog.Default()
	}
	api.DisableConfigDir()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCPU{conf: conf, logger: logger}
}

func (e *PDFCPU) PageCount(_ context.Context, path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("page count %s: %w: %v", filepath.Base(path), common.ErrDocumentRead, err)
	}
	return n, nil
}

func (e *PDFCPU) Validate(_ context.Context, path string) error {
	if err := api.ValidateFile(path, e.conf); err != nil {
		return fmt.Errorf("validate %s: %w: %v", filepath.Base(path), common.ErrDocumentRead, err)
	}
	return nil
}

// Merge concatenates all pages of inputs, in order, into out. The result is
// written beside out and renamed into place so a failed merge leaves nothing behind.
func (e *PDFCPU) Merge(_ context.Context, inputs []string, out string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("merge %s: no inputs: %w", filepath.Base(out), common.ErrInvalidInput)
	}
	tmp := out + ".partial"
	if err := api.MergeCreateFile(inputs, tmp, false, e.conf); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("merge %s: %w", filepath.Base(out), err)
	}
	if err := os.Rename(tmp, out); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize %s: %w", filepath.Base(out), err)
	}
	e.logger.Debug("pdf merged", "output", out, "inputs", len(inputs))
	return nil
}

// DropLeadingPages writes in minus its first n pages to out. The document must
// keep at least one page.
func (e *PDFCPU) DropLeadingPages(ctx context.Context, in, out string, n int) error {
	count, err := e.PageCount(ctx, in)
	if err != nil {
		return err
	}
	if count <= n {
		return fmt.Errorf("%s has %d pages, need more than %d: %w", filepath.Base(in), count, n, common.ErrInsufficientPages)
	}
	tmp := out + ".partial"
	keep := []string{strconv.Itoa(n+1) + "-"}
	if err := api.TrimFile(in, tmp, keep, e.conf); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("trim %s: %w: %v", filepath.Base(in), common.ErrDocumentRead, err)
	}
	if err := os.Rename(tmp, out); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize %s: %w", filepath.Base(out), err)
	}
	return nil
}
