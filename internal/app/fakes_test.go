package app_test

import (
	"context"
	"encoding/json"
	"sync"

	"tripextract/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	mu      sync.Mutex
	rows    map[string]domain.Row
	page    domain.RowsPage
	schemas []domain.Schema
	upserts int
}

func (f *fakeRepo) EnsureTable(ctx context.Context, table string, schema domain.Schema) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schemas = append(f.schemas, schema)
	return nil
}

func (f *fakeRepo) UpsertRows(ctx context.Context, table string, schema domain.Schema, rows []domain.Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows == nil {
		f.rows = map[string]domain.Row{}
	}
	key := table + "_id"
	for _, r := range rows {
		id, _ := r.Get(key).(string)
		f.rows[id] = r
	}
	f.upserts++
	return nil
}

func (f *fakeRepo) GetRow(ctx context.Context, table, keyCol, id string) (domain.Row, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeRepo) ListRows(ctx context.Context, table, keyCol string, pg domain.PageQuery) (domain.RowsPage, error) {
	return f.page, nil
}

// fakeCache stores JSON like the redis adapter, so values round-trip through
// the same codecs.
type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

type fakeStore struct {
	mu          sync.Mutex
	collections []string
	created     []string
	deleted     []string
	objects     map[string][]domain.VectorObject
}

func (s *fakeStore) Ready(ctx context.Context) error { return nil }

func (s *fakeStore) ListCollections(ctx context.Context) ([]string, error) {
	return s.collections, nil
}

func (s *fakeStore) CreateCollection(ctx context.Context, name string) error {
	s.created = append(s.created, name)
	return nil
}

func (s *fakeStore) DeleteCollection(ctx context.Context, name string) error {
	s.deleted = append(s.deleted, name)
	return nil
}

func (s *fakeStore) InsertObjects(ctx context.Context, collection string, objs []domain.VectorObject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = map[string][]domain.VectorObject{}
	}
	s.objects[collection] = append(s.objects[collection], objs...)
	return nil
}

func ptr[T any](v T) *T { return &v }
