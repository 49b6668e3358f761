package entity

import "github.com/joseph-ayodele/formbatch/constants"

// Batch is an ordered group of documents destined for one combined artifact.
type Batch struct {
	Kind      constants.BatchKind `json:"kind"`
	Documents []DocumentRecord    `json:"documents"`
}

func (b Batch) Len() int { return len(b.Documents) }

// NameEntry is one subject listed in a combined artifact.
type NameEntry struct {
	Last   string `json:"last"`
	First  string `json:"first"`
	Source string `json:"source"`
}

// CombinedArtifact is a merged PDF produced from a single non-empty batch.
type CombinedArtifact struct {
	Path  string              `json:"path"`
	Kind  constants.BatchKind `json:"kind"`
	Names []NameEntry         `json:"names"`
}

// Skip records why a document or order entry did not make it into output.
type Skip struct {
	Path   string               `json:"path,omitempty"`
	Reason constants.SkipReason `json:"reason"`
	Key    IdentityKey          `json:"key"`
	Err    error                `json:"-"`
}

// Detail returns the error text, if any.
func (s Skip) Detail() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}
