// Package store persists form submissions and events as schema-less documents.
//
// Three backends share the Store interface: PocketBase collections (the
// default), MongoDB, and an in-process map for local development.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// ErrNotFound is returned when a document id does not resolve.
var ErrNotFound = errors.New("document not found")

// IDField is the key under which every backend exposes the generated id.
const IDField = "id"

// Document is a flat field-name-to-value mapping.
type Document map[string]any

// ID returns the store generated identifier.
func (d Document) ID() string {
	return d.GetString(IDField)
}

// GetString returns the field as a string, or "" when absent.
func (d Document) GetString(key string) string {
	switch v := d[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// GetBool returns the field as a bool, or false when absent.
func (d Document) GetBool(key string) bool {
	v, _ := d[key].(bool)
	return v
}

// GetFloat returns the field as a float64, or 0 when absent.
func (d Document) GetFloat(key string) float64 {
	switch v := d[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// GetTime returns the field as a time, or the zero time when absent.
func (d Document) GetTime(key string) time.Time {
	v, _ := d[key].(time.Time)
	return v
}

// ListOptions pages a List call. Zero values mean no limit and no offset.
type ListOptions struct {
	Limit  int
	Offset int
}

// Store is the persistence contract shared by every backend.
type Store interface {
	// Exists reports whether a document whose field exactly equals value exists.
	Exists(ctx context.Context, collection, field, value string) (bool, error)
	// Insert persists doc as a new document and returns its generated id.
	Insert(ctx context.Context, collection string, doc Document) (string, error)
	// Find returns the document with the given id or ErrNotFound.
	Find(ctx context.Context, collection, id string) (Document, error)
	// List returns documents newest first.
	List(ctx context.Context, collection string, opts ListOptions) ([]Document, error)
	// Count returns the number of documents in the collection.
	Count(ctx context.Context, collection string) (int64, error)
	// Close releases backend resources.
	Close(ctx context.Context) error
}

// Open selects a backend from a STORE_URL value.
func Open(ctx context.Context, url, mongoDatabase string, app core.App) (Store, error) {
	switch {
	case url == "" || url == "pocketbase":
		return NewPocketBaseStore(app), nil
	case url == "memory://":
		return NewMemoryStore(), nil
	case strings.HasPrefix(url, "mongodb://"), strings.HasPrefix(url, "mongodb+srv://"):
		return NewMongoStore(ctx, url, mongoDatabase)
	}
	return nil, fmt.Errorf("unsupported store url %q", url)
}
