package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// PocketBaseStore stores documents as records of PocketBase base collections.
// Fields missing from a collection schema are dropped by PocketBase on save.
type PocketBaseStore struct {
	app core.App
}

// NewPocketBaseStore creates a store over app's collections.
func NewPocketBaseStore(app core.App) *PocketBaseStore {
	return &PocketBaseStore{app: app}
}

func (s *PocketBaseStore) Exists(_ context.Context, collection, field, value string) (bool, error) {
	total, err := s.app.CountRecords(collection, dbx.HashExp{field: value})
	if err != nil {
		return false, fmt.Errorf("count %s by %s: %w", collection, field, err)
	}
	return total > 0, nil
}

func (s *PocketBaseStore) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	coll, err := s.app.FindCachedCollectionByNameOrId(collection)
	if err != nil {
		return "", fmt.Errorf("find collection %s: %w", collection, err)
	}

	record := core.NewRecord(coll)
	for field, value := range doc {
		if field == IDField {
			continue
		}
		record.Set(field, value)
	}

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return "", fmt.Errorf("save %s record: %w", collection, err)
	}
	return record.Id, nil
}

func (s *PocketBaseStore) Find(_ context.Context, collection, id string) (Document, error) {
	record, err := s.app.FindRecordById(collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find %s/%s: %w", collection, id, err)
	}
	return recordToDocument(record), nil
}

func (s *PocketBaseStore) List(ctx context.Context, collection string, opts ListOptions) ([]Document, error) {
	query := s.app.RecordQuery(collection).
		WithContext(ctx).
		OrderBy("created DESC", "id DESC")
	if opts.Limit > 0 {
		query = query.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		query = query.Offset(int64(opts.Offset))
	}

	var records []*core.Record
	if err := query.All(&records); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	docs := make([]Document, len(records))
	for i, r := range records {
		docs[i] = recordToDocument(r)
	}
	return docs, nil
}

func (s *PocketBaseStore) Count(_ context.Context, collection string) (int64, error) {
	total, err := s.app.CountRecords(collection)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return total, nil
}

// Close is a no-op; the PocketBase app owns its database handle.
func (s *PocketBaseStore) Close(context.Context) error {
	return nil
}

func recordToDocument(record *core.Record) Document {
	doc := Document{}
	for field, value := range record.FieldsData() {
		if dt, ok := value.(types.DateTime); ok {
			if dt.IsZero() {
				doc[field] = nil
				continue
			}
			doc[field] = dt.Time()
			continue
		}
		doc[field] = value
	}
	doc[IDField] = record.Id
	return doc
}
