// Package index merges normalized text, image descriptions and table rows
// into retrievable units, embeds them and builds the vector index.
package index

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"docqa/internal/domain"
	"docqa/internal/tables"
)

// DocumentText is one document's plain text, identified by its stem.
type DocumentText struct {
	ID   string
	Text string
}

// TableFile is one canonicalized row-record collection, identified by its
// export filename.
type TableFile struct {
	Name string
	Rows []tables.Row
}

// Builder produces the index from the three normalized sources.
type Builder struct {
	chunker  *Chunker
	embedder domain.Embedder
	index    domain.VectorIndex
	log      *zap.Logger
}

// NewBuilder wires the index-building stage.
func NewBuilder(chunker *Chunker, embedder domain.Embedder, index domain.VectorIndex, log *zap.Logger) *Builder {
	return &Builder{chunker: chunker, embedder: embedder, index: index, log: log}
}

// Build assembles units in fixed concatenation order (text chunks, then
// image descriptions, then table rows), embeds them in one batch call and
// upserts everything into the index. The returned bundle mirrors the
// index content; units and vectors correspond position-for-position at
// every stage, so neither slice may be reordered without the other.
func (b *Builder) Build(ctx context.Context, texts []DocumentText, captions map[string]domain.ImageDescription, tableFiles []TableFile) (*Bundle, error) {
	units := b.assemble(texts, captions, tableFiles)
	if len(units) == 0 {
		b.log.Warn("no retrievable units, writing empty bundle")
		return &Bundle{}, nil
	}

	sentences := make([]string, len(units))
	for i, u := range units {
		sentences[i] = u.Text
	}
	vectors, err := b.embedder.EmbedBatch(ctx, sentences)
	if err != nil {
		return nil, err
	}

	dim := len(vectors[0])
	if err := b.index.Init(dim); err != nil {
		return nil, err
	}
	if err := b.index.Upsert(units, vectors); err != nil {
		return nil, err
	}
	b.log.Info("index built", zap.Int("units", len(units)), zap.Int("dimension", dim))
	return &Bundle{Units: units, Vectors: vectors, Dimension: dim}, nil
}

func (b *Builder) assemble(texts []DocumentText, captions map[string]domain.ImageDescription, tableFiles []TableFile) []domain.Unit {
	var units []domain.Unit

	for _, doc := range texts {
		chunks := b.chunker.Chunk(doc.Text)
		for i, ch := range chunks {
			units = append(units, domain.Unit{
				Text: ch,
				Meta: domain.Metadata{Type: "text", Source: doc.ID, Chunk: i},
			})
		}
		b.log.Info("chunked document", zap.String("id", doc.ID), zap.Int("chunks", len(chunks)))
	}

	// map iteration order is random; sort filenames so the bundle is
	// deterministic across runs
	imgNames := make([]string, 0, len(captions))
	for name := range captions {
		imgNames = append(imgNames, name)
	}
	sort.Strings(imgNames)
	for _, name := range imgNames {
		info := captions[name]
		text := info.Long
		if text == "" {
			text = info.Short
		}
		units = append(units, domain.Unit{
			Text: text,
			Meta: domain.Metadata{Type: "image", Source: name},
		})
	}

	for _, tf := range tableFiles {
		for _, row := range tf.Rows {
			vals := make([]string, 0, len(row.Columns))
			for _, col := range row.Columns {
				vals = append(vals, row.Values[col])
			}
			units = append(units, domain.Unit{
				Text: strings.Join(vals, " | "),
				Meta: domain.Metadata{Type: "table", Source: tf.Name},
			})
		}
	}
	return units
}
