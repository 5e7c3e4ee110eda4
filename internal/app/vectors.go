package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"tripextract/internal/adapters/observability"
	"tripextract/internal/domain"
)

// VectorService pushes extracted records into the vector store as two
// projections per category: Embedded (vectorized text) and Bridge (ids).
type VectorService struct {
	store   domain.VectorStore
	workers int64
}

func NewVectorService(store domain.VectorStore, workers int) *VectorService {
	if workers <= 0 {
		workers = 1
	}
	return &VectorService{store: store, workers: int64(workers)}
}

// Reset drops the Embedded and Bridge collections of every category given
// and creates them again empty.
func (s *VectorService) Reset(ctx context.Context, cats []domain.Category) error {
	if err := s.store.Ready(ctx); err != nil {
		return fmt.Errorf("vector store not ready: %w", err)
	}
	existing, err := s.store.ListCollections(ctx)
	if err != nil {
		return err
	}
	for _, c := range cats {
		for _, name := range []string{c.EmbeddedCollection(), c.BridgeCollection()} {
			if hasCollection(existing, name) {
				if err := s.store.DeleteCollection(ctx, name); err != nil {
					return fmt.Errorf("delete %s: %w", name, err)
				}
				log.Info().Str("collection", name).Msg("collection deleted")
			}
			if err := s.store.CreateCollection(ctx, name); err != nil {
				return fmt.Errorf("create %s: %w", name, err)
			}
			log.Info().Str("collection", name).Msg("collection created")
		}
	}
	return nil
}

// Collection names are case-insensitive on their first letter in the store.
func hasCollection(existing []string, name string) bool {
	for _, e := range existing {
		if strings.EqualFold(e, name) {
			return true
		}
	}
	return false
}

// LoadDir pushes every *.json file in dir, at most workers files at a time.
func (s *VectorService) LoadDir(ctx context.Context, c domain.Category, dir string) (DirResult, error) {
	var res DirResult
	files, err := listFiles(dir, ".json")
	if err != nil {
		return res, err
	}

	sem := semaphore.NewWeighted(s.workers)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, f := range files {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer sem.Release(1)

			n, err := s.LoadFile(ctx, c, path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				observability.ObserveFile("load_vector", "error")
				logFileError(path, err)
				return
			}
			res.Processed++
			res.Records += n
			observability.ObserveFile("load_vector", "ok")
			log.Info().Str("file", path).Int("objects", n).Msg("vectors loaded")
		}(f)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, res.Err("load-vector")
}

// LoadFile inserts both projections of every record in one file.
func (s *VectorService) LoadFile(ctx context.Context, c domain.Category, path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	rows, err := domain.DecodeRows(b)
	if err != nil {
		return 0, fmt.Errorf("decode rows: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	embedded := make([]domain.VectorObject, 0, len(rows))
	bridge := make([]domain.VectorObject, 0, len(rows))
	for _, r := range rows {
		embedded = append(embedded, EmbeddedObject(c, r))
		bridge = append(bridge, BridgeObject(c, r))
	}
	if err := s.store.InsertObjects(ctx, c.EmbeddedCollection(), embedded); err != nil {
		return 0, err
	}
	if err := s.store.InsertObjects(ctx, c.BridgeCollection(), bridge); err != nil {
		return 0, err
	}
	observability.ObserveRows(c.EmbeddedCollection(), len(embedded))
	observability.ObserveRows(c.BridgeCollection(), len(bridge))
	return len(rows), nil
}

// EmbeddedObject projects a record onto the vectorized collection: name,
// about text, coordinates and reviews. Null fields are left out.
func EmbeddedObject(c domain.Category, r domain.Row) domain.VectorObject {
	props := map[string]any{}
	putString(props, c.NameKey(), r.Get(c.NameKey()))
	if about := toStrings(r.Get("about_and_tags")); len(about) > 0 {
		props["about_and_tags"] = strings.Join(about, " ")
	}
	putNumber(props, "latitude", r.Get("latitude"))
	putNumber(props, "longitude", r.Get("longitude"))
	if reviews := toStrings(r.Get("reviews")); len(reviews) > 0 {
		props["reviews"] = reviews
	}
	return domain.VectorObject{ID: objectID(c.EmbeddedCollection(), r, c), Properties: props}
}

// BridgeObject projects a record onto the lookup collection joining vector
// hits back to relational rows.
func BridgeObject(c domain.Category, r domain.Row) domain.VectorObject {
	props := map[string]any{}
	putString(props, c.IDKey(), r.Get(c.IDKey()))
	putString(props, c.NameKey(), r.Get(c.NameKey()))
	putNumber(props, "latitude", r.Get("latitude"))
	putNumber(props, "longitude", r.Get("longitude"))
	return domain.VectorObject{ID: objectID(c.BridgeCollection(), r, c), Properties: props}
}

// objectID is a UUIDv5 of collection/record id so reloading a record
// overwrites its object. Rows without an id get a random one.
func objectID(collection string, r domain.Row, c domain.Category) string {
	id, _ := r.Get(c.IDKey()).(string)
	if id == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(collection+"/"+id)).String()
}

func putString(props map[string]any, key string, v any) {
	if s, ok := v.(string); ok {
		props[key] = s
	}
}

func putNumber(props map[string]any, key string, v any) {
	switch x := v.(type) {
	case float64:
		props[key] = x
	case int64:
		props[key] = float64(x)
	}
}

func toStrings(v any) []string {
	switch x := v.(type) {
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if x != "" {
			return []string{x}
		}
	}
	return nil
}
