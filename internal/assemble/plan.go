// Package assemble cuts the reconciled streams into fixed-capacity batches
// and merges each batch into one combined PDF.
package assemble

import (
	"github.com/joseph-ayodele/formbatch/constants"
	"github.com/joseph-ayodele/formbatch/internal/entity"
)

// Plan groups prioritized documents first and residual documents after them.
// The residual stream always starts a new batch, so a partial prioritized
// batch is never topped up with residual documents. capacity < 1 means the default.
func Plan(prioritized, residual []entity.DocumentRecord, capacity int) []entity.Batch {
	if capacity < 1 {
		capacity = constants.BatchCapacity
	}
	var out []entity.Batch
	out = appendChunks(out, constants.BatchPrioritized, prioritized, capacity)
	out = appendChunks(out, constants.BatchResidual, residual, capacity)
	return out
}

func appendChunks(out []entity.Batch, kind constants.BatchKind, docs []entity.DocumentRecord, capacity int) []entity.Batch {
	for start := 0; start < len(docs); start += capacity {
		end := min(start+capacity, len(docs))
		chunk := make([]entity.DocumentRecord, end-start)
		copy(chunk, docs[start:end])
		out = append(out, entity.Batch{Kind: kind, Documents: chunk})
	}
	return out
}
