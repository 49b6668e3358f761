package assemble

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/formbatch/constants"
	"github.com/joseph-ayodele/formbatch/internal/entity"
)

type fakeEngine struct {
	broken   map[string]bool
	poison   map[string]bool // validates but breaks any merge it joins
	mergeErr error
	merges   [][]string
	outputs  []string
}

func (f *fakeEngine) Validate(_ context.Context, path string) error {
	if f.broken[path] {
		return errors.New("corrupt xref table")
	}
	return nil
}

func (f *fakeEngine) Merge(_ context.Context, inputs []string, out string) error {
	if f.mergeErr != nil {
		return f.mergeErr
	}
	for _, in := range inputs {
		if f.poison[in] {
			return fmt.Errorf("%s: malformed page tree", filepath.Base(in))
		}
	}
	f.merges = append(f.merges, append([]string(nil), inputs...))
	f.outputs = append(f.outputs, out)
	return os.WriteFile(out, []byte("%PDF"), 0o644)
}

func docs(prefix string, n, startSeq int) []entity.DocumentRecord {
	out := make([]entity.DocumentRecord, n)
	for i := range out {
		name := fmt.Sprintf("%s_Doc_%06d.pdf", prefix, startSeq+i)
		out[i] = entity.DocumentRecord{
			Path:     "/state/" + name,
			Name:     name,
			Last:     prefix,
			First:    "Doc",
			Sequence: startSeq + i,
		}
	}
	return out
}

func sizes(batches []entity.Batch) []int {
	out := make([]int, len(batches))
	for i, b := range batches {
		out[i] = b.Len()
	}
	return out
}

func TestPlan_ThirtyOneResidual(t *testing.T) {
	batches := Plan(nil, docs("Res", 31, 1), 30)

	assert.Equal(t, []int{30, 1}, sizes(batches))
	for _, b := range batches {
		assert.Equal(t, constants.BatchResidual, b.Kind)
	}
}

func TestPlan_PrioritizedFlushedBeforeResidual(t *testing.T) {
	batches := Plan(docs("Pri", 31, 1), docs("Res", 5, 1), 30)

	assert.Equal(t, []int{30, 1, 5}, sizes(batches))
	assert.Equal(t, constants.BatchPrioritized, batches[0].Kind)
	assert.Equal(t, constants.BatchPrioritized, batches[1].Kind)
	assert.Equal(t, constants.BatchResidual, batches[2].Kind)
}

func TestPlan_EmptyAndDefaultCapacity(t *testing.T) {
	assert.Empty(t, Plan(nil, nil, 30))
	assert.Equal(t, []int{30, 30, 5}, sizes(Plan(nil, docs("Res", 65, 1), 0)))
}

func TestPlan_BoundsAndOrder(t *testing.T) {
	residual := docs("Res", 95, 1)
	batches := Plan(nil, residual, 30)

	total, prev := 0, -1
	for _, b := range batches {
		assert.GreaterOrEqual(t, b.Len(), 1)
		assert.LessOrEqual(t, b.Len(), 30)
		for _, d := range b.Documents {
			assert.GreaterOrEqual(t, d.Sequence, prev)
			prev = d.Sequence
		}
		total += b.Len()
	}
	assert.Equal(t, 95, total)
}

func newAssembler(t *testing.T, engine Engine) (*Assembler, string) {
	t.Helper()
	dir := t.TempDir()
	a := New(engine, dir, nil)
	fixed := time.Date(2024, 3, 5, 14, 7, 9, 123456789, time.UTC)
	a.now = func() time.Time { return fixed }
	return a, dir
}

func TestAssemble_OneArtifactPerBatchWithUniqueNames(t *testing.T) {
	engine := &fakeEngine{}
	a, dir := newAssembler(t, engine)
	used := entity.NewUsedSet()

	arts, skips := a.Assemble(context.Background(), Plan(nil, docs("Res", 31, 1), 30), used)

	require.Len(t, arts, 2)
	assert.Empty(t, skips)
	assert.Equal(t, filepath.Join(dir, "combined_20240305_140709_123456.pdf"), arts[0].Path)
	assert.Equal(t, filepath.Join(dir, "combined_20240305_140709_123457.pdf"), arts[1].Path)
	assert.Len(t, arts[0].Names, 30)
	assert.Len(t, arts[1].Names, 1)
	assert.Equal(t, entity.NameEntry{Last: "Res", First: "Doc", Source: "Res_Doc_000031.pdf"}, arts[1].Names[0])
	assert.Equal(t, 31, used.Len())
}

func TestAssemble_SkipsUnreadableDocumentButKeepsBatch(t *testing.T) {
	batch := docs("Res", 3, 1)
	engine := &fakeEngine{broken: map[string]bool{batch[1].Path: true}}
	a, _ := newAssembler(t, engine)
	used := entity.NewUsedSet()

	arts, skips := a.Assemble(context.Background(), Plan(nil, batch, 30), used)

	require.Len(t, arts, 1)
	assert.Equal(t, [][]string{{batch[0].Path, batch[2].Path}}, engine.merges)
	require.Len(t, skips, 1)
	assert.Equal(t, constants.SkipMergeFailed, skips[0].Reason)
	assert.Equal(t, batch[1].Path, skips[0].Path)
	assert.False(t, used.Has(batch[1].Name))
}

func TestAssemble_AllDocumentsFailMeansNoArtifact(t *testing.T) {
	batch := docs("Res", 2, 1)
	engine := &fakeEngine{broken: map[string]bool{batch[0].Path: true, batch[1].Path: true}}
	a, _ := newAssembler(t, engine)

	arts, skips := a.Assemble(context.Background(), Plan(nil, batch, 30), entity.NewUsedSet())

	assert.Empty(t, arts)
	assert.Len(t, skips, 2)
	assert.Empty(t, engine.merges)
}

func TestAssemble_MergeFailureIsolatesBadDocument(t *testing.T) {
	batch := docs("Res", 3, 1)
	engine := &fakeEngine{poison: map[string]bool{batch[1].Path: true}}
	a, dir := newAssembler(t, engine)
	used := entity.NewUsedSet()

	arts, skips := a.Assemble(context.Background(), Plan(nil, batch, 30), used)

	require.Len(t, arts, 1)
	assert.Equal(t, []string{batch[0].Name, batch[2].Name}, []string{arts[0].Names[0].Source, arts[0].Names[1].Source})
	require.NotEmpty(t, engine.merges)
	assert.Equal(t, []string{batch[0].Path, batch[2].Path}, engine.merges[len(engine.merges)-1])
	assert.Equal(t, arts[0].Path, engine.outputs[len(engine.outputs)-1])

	require.Len(t, skips, 1)
	assert.Equal(t, constants.SkipMergeFailed, skips[0].Reason)
	assert.Equal(t, batch[1].Path, skips[0].Path)
	assert.False(t, used.Has(batch[1].Name))
	assert.Equal(t, 2, used.Len())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "scratch output is removed")
}

func TestAssemble_MergeFailureOnEveryDocumentDropsBatch(t *testing.T) {
	engine := &fakeEngine{mergeErr: errors.New("disk full")}
	a, _ := newAssembler(t, engine)

	arts, skips := a.Assemble(context.Background(), Plan(nil, docs("Res", 4, 1), 30), entity.NewUsedSet())

	assert.Empty(t, arts)
	assert.Len(t, skips, 4)
}

func TestAssemble_DoesNotOverwriteExistingArtifact(t *testing.T) {
	engine := &fakeEngine{}
	a, dir := newAssembler(t, engine)
	taken := filepath.Join(dir, "combined_20240305_140709_123456.pdf")
	require.NoError(t, os.WriteFile(taken, []byte("old"), 0o644))

	arts, _ := a.Assemble(context.Background(), Plan(nil, docs("Res", 1, 1), 30), entity.NewUsedSet())

	require.Len(t, arts, 1)
	assert.Equal(t, filepath.Join(dir, "combined_20240305_140709_123457.pdf"), arts[0].Path)
	data, err := os.ReadFile(taken)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestTimestamp(t *testing.T) {
	ts := time.Date(2023, 12, 31, 23, 59, 58, 1000, time.UTC)
	assert.Equal(t, "20231231_235958_000001", Timestamp(ts))
}
