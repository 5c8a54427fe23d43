package domain

import "strconv"

// Document is one source PDF tracked through ingestion. It is created when
// a worker claims the file and fully populated by the time the worker
// finishes; nothing mutates it afterwards within a run.
type Document struct {
	ID         string // filename stem, e.g. "report" for report.pdf
	Path       string
	Text       string
	PagePaths  []string
	ImagePaths []string
	TablePaths []string
}

// ImageDescription is the three-part description of one extracted image.
// Long is always derived from Short plus OCR; it is never produced on its
// own when a short caption exists.
type ImageDescription struct {
	Short string `json:"short"`
	OCR   string `json:"ocr"`
	Long  string `json:"long"`
}

// Metadata tags one retrievable unit with its provenance. Type is one of
// "text", "image" or "table". Chunk is only meaningful for text units.
type Metadata struct {
	Type   string `json:"type"`
	Source string `json:"source"`
	Chunk  int    `json:"chunk,omitempty"`
}

// Unit is the atomic object indexed for search: the literal string that
// gets embedded plus its metadata tag. The ordinal position of a unit in
// the index is permanently tied to the ordinal position of its embedding
// vector; the two parallel collections must never be reordered
// independently.
type Unit struct {
	Text string   `json:"text"`
	Meta Metadata `json:"meta"`
}

// SearchResult is one retrieved unit with its L2 distance to the query.
type SearchResult struct {
	Unit     Unit
	Distance float32
}

func (m Metadata) String() string {
	if m.Type == "text" {
		return "{type=text, source=" + m.Source + ", chunk=" + strconv.Itoa(m.Chunk) + "}"
	}
	return "{type=" + m.Type + ", source=" + m.Source + "}"
}
