package core

import (
	"context"
	"time"
)

// Timestamp fields stamped server-side by Store implementations.
const (
	DocCreatedAt = "createdAt"
	DocUpdatedAt = "updatedAt"
)

// Document is a schemaless record held in a Store collection.
type Document map[string]interface{}

func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

func (d Document) Strings(key string) []string {
	switch v := d[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (d Document) Time(key string) time.Time {
	switch v := d[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (d Document) Float(key string) float64 {
	switch v := d[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// DocQuery selects documents in a collection by a single-field equality match
// and orders them by a single field.
type DocQuery struct {
	Field      string      // equality filter; empty matches all
	Equals     interface{} //
	OrderBy    string
	Descending bool
}

// DocWatch is a standing observation over a filtered collection. Every time
// the underlying set changes, the full current ordered list is delivered on
// Updates. Stop is idempotent and permanently ends delivery.
type DocWatch interface {
	Updates() <-chan []Document
	Stop()
}

// Store is the document database this system is built against. Each call is
// independently atomic at single-document granularity; there are no
// transactions across documents.
//
// Failures are classified at minimum as ErrPermissionDenied vs ErrDocNotFound
// vs other; see IsPermissionDenied and IsDocNotFound.
type Store interface {
	// Get returns the document or ErrDocNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Set writes a document under a caller-chosen id. With merge, existing
	// fields not present in fields are left untouched (create-or-merge).
	Set(ctx context.Context, collection, id string, fields Document, merge bool) error
	// Add appends a document under a server-generated id and returns that id.
	Add(ctx context.Context, collection string, fields Document) (string, error)
	// Update modifies fields of an existing document; ErrDocNotFound if absent.
	Update(ctx context.Context, collection, id string, fields Document) error
	// Query returns the current matching documents.
	Query(ctx context.Context, collection string, q DocQuery) ([]Document, error)
	// Watch establishes a DocWatch over the query. The initial list is
	// delivered as the first update.
	Watch(ctx context.Context, collection string, q DocQuery) (DocWatch, error)
}
