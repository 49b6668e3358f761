package assemble

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/formbatch/constants"
	"github.com/joseph-ayodele/formbatch/internal/common"
	"github.com/joseph-ayodele/formbatch/internal/entity"
)

// Engine is the slice of the document engine the assembler needs.
type Engine interface {
	Validate(ctx context.Context, path string) error
	Merge(ctx context.Context, inputs []string, out string) error
}

type Assembler struct {
	engine Engine
	outDir string
	now    func() time.Time
	last   time.Time
	logger *slog.Logger
}

func New(engine Engine, outDir string, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{engine: engine, outDir: outDir, now: time.Now, logger: logger}
}

// Assemble emits one artifact per batch that still has at least one readable
// document. Documents that fail validation or merging are skipped without
// failing their batch.
// Documents that land in an artifact are added to used.
func (a *Assembler) Assemble(ctx context.Context, batches []entity.Batch, used *entity.UsedSet) ([]entity.CombinedArtifact, []entity.Skip) {
	logger := common.LoggerFromContext(ctx, a.logger)
	var artifacts []entity.CombinedArtifact
	var skips []entity.Skip

	for i, batch := range batches {
		art, batchSkips, ok := a.assembleBatch(ctx, logger, batch)
		skips = append(skips, batchSkips...)
		if !ok {
			logger.Warn("batch produced no artifact", "batch", i, "kind", batch.Kind, "documents", batch.Len())
			continue
		}
		for _, n := range art.Names {
			used.Add(n.Source)
		}
		artifacts = append(artifacts, art)
	}
	return artifacts, skips
}

func (a *Assembler) assembleBatch(ctx context.Context, logger *slog.Logger, batch entity.Batch) (entity.CombinedArtifact, []entity.Skip, bool) {
	var skips []entity.Skip
	kept := make([]entity.DocumentRecord, 0, batch.Len())

	for _, doc := range batch.Documents {
		if err := a.engine.Validate(ctx, doc.Path); err != nil {
			logger.Error("failed to add document", "path", doc.Path, "error", err)
			skips = append(skips, mergeSkip(doc, err))
			continue
		}
		kept = append(kept, doc)
		logger.Debug("added document", "path", doc.Path)
	}
	if len(kept) == 0 {
		return entity.CombinedArtifact{}, skips, false
	}

	out, err := a.nextOutputPath()
	if err != nil {
		logger.Error("no output name", "error", err)
		return entity.CombinedArtifact{}, append(skips, mergeSkips(kept, err)...), false
	}

	err = a.engine.Merge(ctx, paths(kept), out)
	if err != nil && len(kept) > 1 {
		logger.Warn("merge failed, checking documents one by one", "output", out, "documents", len(kept), "error", err)
		var bad []entity.Skip
		kept, bad = a.isolate(ctx, logger, kept, out)
		skips = append(skips, bad...)
		if len(kept) == 0 {
			return entity.CombinedArtifact{}, skips, false
		}
		if len(bad) > 0 {
			err = a.engine.Merge(ctx, paths(kept), out)
		}
	}
	if err != nil {
		logger.Error("failed to save combined pdf", "output", out, "error", err)
		return entity.CombinedArtifact{}, append(skips, mergeSkips(kept, err)...), false
	}

	names := make([]entity.NameEntry, 0, len(kept))
	for _, doc := range kept {
		names = append(names, entity.NameEntry{Last: doc.Last, First: doc.First, Source: doc.Name})
	}
	logger.Info("saved combined pdf", "output", out, "kind", batch.Kind, "documents", len(kept))
	return entity.CombinedArtifact{Path: out, Kind: batch.Kind, Names: names}, skips, true
}

// isolate merges each document on its own into a scratch file beside out.
// Documents that cannot be merged alone come back as skips.
func (a *Assembler) isolate(ctx context.Context, logger *slog.Logger, docs []entity.DocumentRecord, out string) ([]entity.DocumentRecord, []entity.Skip) {
	scratch := out + ".single"
	defer func() { _ = os.Remove(scratch) }()

	var good []entity.DocumentRecord
	var bad []entity.Skip
	for _, doc := range docs {
		if err := a.engine.Merge(ctx, []string{doc.Path}, scratch); err != nil {
			logger.Error("failed to merge document", "path", doc.Path, "error", err)
			bad = append(bad, mergeSkip(doc, err))
			continue
		}
		good = append(good, doc)
	}
	return good, bad
}

func paths(docs []entity.DocumentRecord) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Path
	}
	return out
}

func mergeSkip(doc entity.DocumentRecord, err error) entity.Skip {
	return entity.Skip{Path: doc.Path, Reason: constants.SkipMergeFailed, Key: doc.Key(), Err: err}
}

func mergeSkips(docs []entity.DocumentRecord, err error) []entity.Skip {
	out := make([]entity.Skip, 0, len(docs))
	for _, d := range docs {
		out = append(out, mergeSkip(d, err))
	}
	return out
}

// nextOutputPath returns combined_{stamp}.pdf with a microsecond stamp that is
// strictly increasing within the run and not already on disk.
func (a *Assembler) nextOutputPath() (string, error) {
	stamp := a.now().Truncate(time.Microsecond)
	for attempt := 0; attempt < 1000; attempt++ {
		if !stamp.After(a.last) {
			stamp = a.last.Add(time.Microsecond)
		}
		a.last = stamp
		path := filepath.Join(a.outDir, constants.CombinedPrefix+Timestamp(stamp)+"."+constants.PDF)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		} else if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no free combined filename in %s", a.outDir)
}

// Timestamp renders t as YYYYMMDD_HHMMSS_ffffff.
func Timestamp(t time.Time) string {
	return fmt.Sprintf("%s_%06d", t.Format(constants.TimestampLayout), t.Nanosecond()/int(time.Microsecond))
}
