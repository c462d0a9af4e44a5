// Package metadata provides the passage metadata store backends. A store
// maps the external id used by the vector index to the attributes retrieval
// needs, passage text included, so answering never re-parses a source
// document.
package metadata

import "ragh/internal/domain"

// Store persists passage attributes keyed by external id.
type Store interface {
	Put(id string, meta domain.PassageMeta) error
	Get(id string) (domain.PassageMeta, error)
	GetMany(ids []string) (map[string]domain.PassageMeta, error)
	Close() error
}
