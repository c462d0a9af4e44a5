package domain

// Document is a single ingested unit of content. The raw text is held only
// long enough to chunk it and is not persisted.
type Document struct {
	ID     string
	Source string
	Text   string
}

// Passage is the atomic retrievable unit: a bounded span of a document's
// text. StartChar/EndChar are character offsets into the original document
// text, with StartChar < EndChar.
type Passage struct {
	ID        string
	DocID     string
	Text      string
	StartChar int
	EndChar   int
}

// PassageMeta is the attribute record a metadata store keeps per external
// id. Text must always be resolvable so retrieval never needs to re-parse
// the source document.
type PassageMeta struct {
	DocID     string `json:"doc_id"`
	Source    string `json:"source"`
	StartChar int    `json:"start_char"`
	EndChar   int    `json:"end_char"`
	Text      string `json:"text"`
	Preview   string `json:"preview"`
}

// Hit is a raw nearest-neighbor result from a vector index. Score is an
// inner-product similarity in [-1, 1] for normalized vectors, not a
// probability.
type Hit struct {
	ID    string  `json:"passage_id"`
	Score float64 `json:"score"`
}

// RankedPassage is a search hit resolved through the metadata store.
type RankedPassage struct {
	Hit
	Meta PassageMeta `json:"-"`
}

// Provenance lets a generated answer be traced back to its source span.
type Provenance struct {
	DocID     string `json:"doc_id"`
	StartChar int    `json:"start_char"`
	EndChar   int    `json:"end_char"`
}

// Answer is the result of a grounded question: the generated text plus the
// raw hits and the provenance of every context that conditioned it.
type Answer struct {
	Answer     string       `json:"answer"`
	Retrieved  []Hit        `json:"retrieved"`
	Provenance []Provenance `json:"provenance"`
}

// IngestResult reports the outcome of ingesting one document. Zero
// extractable text is not an error; it is a zero-count result with a note.
type IngestResult struct {
	File         string `json:"file"`
	Accepted     bool   `json:"accepted"`
	PassageCount int    `json:"passage_count"`
	Note         string `json:"note,omitempty"`
}
