// Package reconcile partitions the scanned population into the prioritized
// stream (order list hits, in order) and the residual stream.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/joseph-ayodele/formbatch/constants"
	"github.com/joseph-ayodele/formbatch/internal/common"
	"github.com/joseph-ayodele/formbatch/internal/entity"
	"github.com/joseph-ayodele/formbatch/internal/overrides"
)

// ZipLookup returns the postal code printed inside the document.
type ZipLookup func(ctx context.Context, doc entity.DocumentRecord) (string, error)

var errOnIgnoreList = errors.New("identity is on the ignore list")
var errNoUnusedDocument = errors.New("no unused document with this name")

// Result is the reconciled population.
type Result struct {
	Prioritized []entity.DocumentRecord
	Residual    []entity.DocumentRecord
	Skips       []entity.Skip
}

type Reconciler struct {
	registry *overrides.Registry
	zips     ZipLookup
	logger   *slog.Logger
}

func New(registry *overrides.Registry, zips ZipLookup, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = overrides.Empty()
	}
	return &Reconciler{registry: registry, zips: zips, logger: logger}
}

// Reconcile runs the prioritized pass then the residual pass. population must
// be in scan order. Every prioritized document is added to used.
func (r *Reconciler) Reconcile(ctx context.Context, population []entity.DocumentRecord, used *entity.UsedSet) Result {
	logger := common.LoggerFromContext(ctx, r.logger)
	var res Result

	// Prioritized pass: each order entry claims at most one document.
	for _, entry := range r.registry.OrderList() {
		if r.registry.Ignored(entry) {
			res.Skips = append(res.Skips, entity.Skip{Reason: constants.SkipOrderEntryUnmatched, Key: entry, Err: errOnIgnoreList})
			continue
		}
		doc, ok := firstUnused(population, entry, used)
		if !ok {
			logger.Debug("order entry unmatched", "first", entry.First, "last", entry.Last, "zip", entry.Zip)
			res.Skips = append(res.Skips, entity.Skip{Reason: constants.SkipOrderEntryUnmatched, Key: entry, Err: errNoUnusedDocument})
			continue
		}
		used.Add(doc.Name)
		res.Prioritized = append(res.Prioritized, doc)
	}

	// Residual pass.
	for _, doc := range population {
		if used.Has(doc.Name) {
			continue
		}
		key := doc.Key()
		if r.registry.Ignored(key) {
			res.Skips = append(res.Skips, entity.Skip{Path: doc.Path, Reason: constants.SkipIgnored, Key: key})
			continue
		}
		if r.registry.OrderedName(key) && r.zips != nil {
			zip, err := r.zips(ctx, doc)
			if err != nil {
				// no zip: the fine key cannot match, the document stays
				if common.IsDocumentError(err) {
					logger.Warn("zip lookup failed", "path", doc.Path, "error", err)
				} else {
					logger.Error("zip lookup failed", "path", doc.Path, "error", err)
				}
				res.Skips = append(res.Skips, entity.Skip{Path: doc.Path, Reason: constants.SkipZipUnavailable, Key: key, Err: err})
			} else if fine := key.WithZip(zip); r.registry.Ordered(fine) {
				res.Skips = append(res.Skips, entity.Skip{Path: doc.Path, Reason: constants.SkipOrderedIdentityInResidual, Key: fine})
				continue
			}
		}
		res.Residual = append(res.Residual, doc)
	}

	sort.SliceStable(res.Residual, func(i, j int) bool {
		a, b := res.Residual[i], res.Residual[j]
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		return a.ScanIndex < b.ScanIndex
	})

	logger.Info("reconciled",
		"population", len(population),
		"prioritized", len(res.Prioritized),
		"residual", len(res.Residual),
		"skips", len(res.Skips),
	)
	return res
}

func firstUnused(population []entity.DocumentRecord, entry entity.IdentityKey, used *entity.UsedSet) (entity.DocumentRecord, bool) {
	for _, doc := range population {
		if used.Has(doc.Name) {
			continue
		}
		if doc.Key().CoarseEqual(entry) {
			return doc, true
		}
	}
	return entity.DocumentRecord{}, false
}
