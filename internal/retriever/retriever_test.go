package retriever

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
	"docqa/internal/vectorstore"
)

type fixedEmbedder struct {
	vector []float32
}

func (f *fixedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func threeUnitIndex(t *testing.T) *vectorstore.Flat {
	t.Helper()
	f := vectorstore.NewFlat()
	require.NoError(t, f.Init(1))
	require.NoError(t, f.Upsert(
		[]domain.Unit{
			{Text: "close", Meta: domain.Metadata{Type: "text", Source: "doc", Chunk: 0}},
			{Text: "closer", Meta: domain.Metadata{Type: "image", Source: "a.png"}},
			{Text: "closest", Meta: domain.Metadata{Type: "table", Source: "t.json"}},
		},
		[][]float32{{3}, {2}, {1}},
	))
	return f
}

func TestRetriever_KLargerThanIndex(t *testing.T) {
	r := New(&fixedEmbedder{vector: []float32{0}}, threeUnitIndex(t), 6)

	results, err := r.Retrieve(context.Background(), "anything", 6)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "closest", results[0].Unit.Text)
	assert.Equal(t, "closer", results[1].Unit.Text)
	assert.Equal(t, "close", results[2].Unit.Text)
}

func TestRetriever_DefaultTopK(t *testing.T) {
	r := New(&fixedEmbedder{vector: []float32{0}}, threeUnitIndex(t), 0)
	assert.Equal(t, DefaultTopK, r.topK)

	results, err := r.Retrieve(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestRetriever_ExplicitKLimitsResults(t *testing.T) {
	r := New(&fixedEmbedder{vector: []float32{0}}, threeUnitIndex(t), 6)

	results, err := r.Retrieve(context.Background(), "anything", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "closest", results[0].Unit.Text)
}
