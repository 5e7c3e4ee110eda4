package domain

import "context"

// Column is one inferred SQL column.
type Column struct {
	Name string
	Type string
}

type Schema []Column

func (s Schema) Has(name string) bool {
	for _, c := range s {
		if c.Name == name {
			return true
		}
	}
	return false
}

type RecordRepository interface {
	// Write paths
	EnsureTable(ctx context.Context, table string, schema Schema) error
	UpsertRows(ctx context.Context, table string, schema Schema, rows []Row) error

	// Read paths
	GetRow(ctx context.Context, table, keyCol, id string) (Row, error)
	ListRows(ctx context.Context, table, keyCol string, pg PageQuery) (RowsPage, error)
}

// VectorObject is one object pushed into a vector-store collection.
type VectorObject struct {
	ID         string
	Properties map[string]any
}

type VectorStore interface {
	Ready(ctx context.Context) error
	ListCollections(ctx context.Context) ([]string, error)
	CreateCollection(ctx context.Context, name string) error
	DeleteCollection(ctx context.Context, name string) error
	InsertObjects(ctx context.Context, collection string, objs []VectorObject) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models & queries
type PageQuery struct {
	Limit int
	After string
}

type RowsPage struct {
	Items      []Row   `json:"items"`
	NextCursor *string `json:"next_cursor,omitempty"`
}
