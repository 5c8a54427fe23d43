package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

func unit(text string) domain.Unit {
	return domain.Unit{Text: text, Meta: domain.Metadata{Type: "text", Source: "doc"}}
}

func TestFlat_SearchAscendingDistance(t *testing.T) {
	f := NewFlat()
	require.NoError(t, f.Init(2))
	require.NoError(t, f.Upsert(
		[]domain.Unit{unit("far"), unit("near"), unit("mid")},
		[][]float32{{10, 0}, {1, 0}, {5, 0}},
	))

	results, err := f.Search([]float32{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "near", results[0].Unit.Text)
	assert.Equal(t, "mid", results[1].Unit.Text)
	assert.Equal(t, "far", results[2].Unit.Text)
	assert.Less(t, results[0].Distance, results[1].Distance)
	assert.Less(t, results[1].Distance, results[2].Distance)
}

func TestFlat_KLargerThanIndexReturnsAll(t *testing.T) {
	f := NewFlat()
	require.NoError(t, f.Init(1))
	require.NoError(t, f.Upsert(
		[]domain.Unit{unit("a"), unit("b"), unit("c")},
		[][]float32{{1}, {2}, {3}},
	))

	results, err := f.Search([]float32{0}, 6)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestFlat_UpsertRejectsMismatches(t *testing.T) {
	f := NewFlat()
	require.NoError(t, f.Init(2))

	err := f.Upsert([]domain.Unit{unit("a")}, nil)
	require.Error(t, err)

	err = f.Upsert([]domain.Unit{unit("a")}, [][]float32{{1, 2, 3}})
	require.Error(t, err)
}

func TestFlat_RestoreRoundTrip(t *testing.T) {
	f := NewFlat()
	require.NoError(t, f.Init(1))
	require.NoError(t, f.Upsert([]domain.Unit{unit("a"), unit("b")}, [][]float32{{1}, {2}}))

	units, vectors, dim := f.Snapshot()
	require.Len(t, units, 2)
	require.Len(t, vectors, 2)
	assert.Equal(t, 1, dim)

	restored := NewFlat()
	require.NoError(t, restored.Restore(units, vectors, dim))
	results, err := restored.Search([]float32{0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Unit.Text)
}

func TestFlat_EmptyRestoreSearchesEmpty(t *testing.T) {
	f := NewFlat()
	require.NoError(t, f.Restore(nil, nil, 0))
	results, err := f.Search([]float32{1, 2}, 6)
	require.NoError(t, err)
	assert.Empty(t, results)
}
