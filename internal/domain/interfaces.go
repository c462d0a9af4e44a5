package domain

import "context"

// Extractor converts raw uploaded bytes into plain text. Formats without a
// text path return ErrExtractionFailure, which callers surface as a
// per-document note rather than a request failure.
type Extractor interface {
	Extract(filename string, data []byte) (string, error)
}

// Embedder converts texts into fixed-width, L2-normalized vectors, one per
// input, in input order.
type Embedder interface {
	Name() string
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
}

// Chunker splits document text into an ordered sequence of overlapping
// passages carrying their character offsets.
type Chunker interface {
	Chunk(text string) ([]Passage, error)
}

// VectorIndex is an append-only store of vectors keyed by a caller-supplied
// external id, with exact nearest-neighbor search by inner product.
//
// Add serializes with itself: internal slot assignment is order-dependent
// and the slot -> external id mapping must stay total and injective.
type VectorIndex interface {
	Add(vectors [][]float64, ids []string) error
	Search(query []float64, topK int) ([]Hit, error)
	Count() int
	Save(path string) error
	Load(path string) error
}

// MetadataStore maps an external id to the passage attributes retrieval
// needs. Put is an idempotent overwrite. GetMany omits missing ids rather
// than erroring.
type MetadataStore interface {
	Put(id string, meta PassageMeta) error
	Get(id string) (PassageMeta, error)
	GetMany(ids []string) (map[string]PassageMeta, error)
	Close() error
}

// Generator produces an answer to a question conditioned on ordered
// contexts, highest-salience first. An empty context set is valid input.
type Generator interface {
	Name() string
	Generate(ctx context.Context, question string, contexts []string) (string, error)
}

// Retriever turns a query into ranked passages.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]RankedPassage, error)
}

// Pipeline answers a question grounded in retrieved passages.
type Pipeline interface {
	Answer(ctx context.Context, question string, topK int) (*Answer, error)
}

// Ingestor accepts one uploaded document and indexes its passages.
type Ingestor interface {
	IngestFile(ctx context.Context, filename string, data []byte) (*IngestResult, error)
}
