package domain

import (
	"context"
	"encoding/json"
)

// ConvertOptions controls what the document converter extracts.
type ConvertOptions struct {
	GenerateImages bool
	GenerateTables bool
}

// Picture is one embedded picture discovered while walking the structured
// export. Err is set when the image payload could not be read; callers
// skip such pictures instead of failing the document.
type Picture struct {
	Data []byte
	Err  error
}

// Table is one detected table. Err is set when the markdown export failed
// for this table; callers skip such tables instead of failing the document.
type Table struct {
	Markdown string
	Err      error
}

// Conversion is the structured export of one PDF.
type Conversion struct {
	Text     string
	HTML     string
	Doc      json.RawMessage
	Pictures []Picture
	Tables   []Table
}

// Converter turns raw PDF bytes into text, tables and pictures. It is an
// external collaborator; implementations wrap a conversion engine.
type Converter interface {
	Convert(ctx context.Context, pdfPath string, opts ConvertOptions) (*Conversion, error)
}

// PageRenderer rasterizes every page of a PDF into outDir following the
// {stem}_page{N}.png naming scheme and returns the written paths in page
// order.
type PageRenderer interface {
	RenderPages(ctx context.Context, pdfPath, outDir string) ([]string, error)
}

// Captioner produces one short caption for an image. It may fail on
// unreadable images.
type Captioner interface {
	Caption(ctx context.Context, imagePath string) (string, error)
}

// OCREngine extracts text from an image; an image without text yields an
// empty string, not an error.
type OCREngine interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// Embedder converts a batch of strings into fixed-length vectors, one per
// input, in input order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer sends one prompt to the external text-completion service and
// returns its raw output.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// VectorIndex persists vectors with their units and supports exact
// nearest-neighbor search by ascending L2 distance.
type VectorIndex interface {
	Init(dimension int) error
	Upsert(units []Unit, vectors [][]float32) error
	Search(vector []float32, topK int) ([]SearchResult, error)
}
