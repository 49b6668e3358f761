package ocr

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/joseph-ayodele/formbatch/internal/common"
)

func (e *Extractor) extractPage(ctx context.Context, path string, pageIndex int) (PageText, error) {
	if pageIndex < 0 {
		return PageText{}, fmt.Errorf("page index %d: %w", pageIndex, common.ErrInvalidInput)
	}
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	page := strconv.Itoa(pageIndex + 1)
	// pdftotext -f N -l N -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-f", page, "-l", page, "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		e.logger.Debug("pdftotext failed", "path", path, "page", pageIndex, "stderr", truncate(string(errb), 512))
		return PageText{}, fmt.Errorf("pdftotext %s page %d: %w: %v", path, pageIndex, common.ErrDocumentRead, err)
	}

	return PageText{
		Path:      path,
		PageIndex: pageIndex,
		Text:      Normalize(string(out)),
		Duration:  time.Since(start),
	}, nil
}
