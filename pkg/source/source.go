// Package source loads raw roadmap documents from local files or MongoDB.
// A document is the nested hierarchy as authored; turning it into typed
// nodes is the roadmap package's job.
package source

import (
	"context"
	"strconv"
)

// Document is a raw roadmap document plus its dataset identity.
type Document struct {
	// ID is the dataset identifier, taken from the document's top-level
	// "id" field when present. It scopes persisted layout overrides.
	ID string
	// Raw is the decoded nested hierarchy.
	Raw map[string]any
}

// Loader fetches a document by dataset id. Implementations exist for local
// files (the id is ignored) and MongoDB.
type Loader interface {
	Load(ctx context.Context, datasetID string) (*Document, error)
}

// documentID extracts the dataset id from a decoded document.
func documentID(raw map[string]any) string {
	switch v := raw["id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}
