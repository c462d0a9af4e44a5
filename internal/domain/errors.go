package domain

import "errors"

// Sentinel errors for the failure taxonomy. Infrastructure errors wrap
// these with fmt.Errorf("...: %w", ...) so callers can branch with
// errors.Is at the request boundary.
var (
	// ErrInvalidArgument indicates malformed or missing required input:
	// an empty query, a non-positive top_k, or a bad chunker config.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDimensionMismatch indicates the embedding width disagrees with
	// the index dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrDuplicateID indicates an external id was added twice.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyIndex indicates a search against an index with no vectors.
	ErrEmptyIndex = errors.New("empty index")

	// ErrExtractionFailure indicates no text could be extracted from an
	// uploaded document. Not fatal: surfaced as a per-document note.
	ErrExtractionFailure = errors.New("no extractable text")

	// ErrDownstream indicates an embedding or generation collaborator
	// failure. Propagated to the caller, never retried by the core.
	ErrDownstream = errors.New("downstream collaborator failure")
)
