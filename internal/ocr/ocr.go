// Package ocr reads the text layer of scanned PDF pages through poppler's pdftotext.
package ocr

import (
	"context"
	"log/slog"
	"time"
)

type Config struct {
	Pdftotext string        // binary name or absolute path; if empty -> "pdftotext"
	Timeout   time.Duration // per page; 0 = no limit
}

// PageText is the text read from a single page.
type PageText struct {
	Path      string
	PageIndex int // zero-based
	Text      string
	Duration  time.Duration
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	return NewExtractorWithRunner(cfg, execRunner{logger: logger}, logger)
}

// NewExtractorWithRunner is NewExtractor with an injected command runner.
func NewExtractorWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Extractor{cfg: cfg, runner: runner, logger: logger}
}

// PageText returns the normalized text of the zero-based page.
func (e *Extractor) PageText(ctx context.Context, path string, pageIndex int) (string, error) {
	res, err := e.extractPage(ctx, path, pageIndex)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
