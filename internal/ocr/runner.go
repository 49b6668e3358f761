package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// maxStderr caps how much tool stderr ends up in a log line.
const maxStderr = 4 << 10

// Runner executes an external text tool and returns its output streams.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// execRunner runs the tool as a child process.
type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	logger := r.logger
	if logger == nil {
		logger = slog.Default()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, exec.ErrNotFound):
		return nil, stderr.Bytes(), fmt.Errorf("%s not installed: %w", name, err)
	case ctx.Err() != nil:
		logger.Warn("text tool cancelled", "cmd", name, "elapsed_ms", elapsed.Milliseconds(), "error", ctx.Err())
		return nil, stderr.Bytes(), ctx.Err()
	case err != nil:
		logger.Debug("text tool failed",
			"cmd", name,
			"args", args,
			"elapsed_ms", elapsed.Milliseconds(),
			"error", err,
			"stderr", truncate(stderr.String(), maxStderr),
		)
		return nil, stderr.Bytes(), err
	}
	logger.Debug("text tool ok", "cmd", name, "elapsed_ms", elapsed.Milliseconds(), "stdout_bytes", stdout.Len())
	return stdout.Bytes(), stderr.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
