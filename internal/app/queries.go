package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tripextract/internal/domain"
)

type QueryService struct {
	repo     domain.RecordRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.RecordRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func recordKey(c domain.Category, id string) string {
	return fmt.Sprintf("record:%s:%s", c.Table(), id)
}

func generationKey(c domain.Category) string {
	return "records-gen:" + c.Table()
}

// pageKey folds the table's list generation into the key; a load bumps the
// generation, which retires every cached page of that table at once.
func (s *QueryService) pageKey(ctx context.Context, c domain.Category, limit int, after string) string {
	var gen string
	_, _ = s.cache.Get(ctx, generationKey(c), &gen)
	return fmt.Sprintf("records:%s:%s:%d:%s", c.Table(), gen, limit, after)
}

func (s *QueryService) GetRecord(ctx context.Context, c domain.Category, id string) (domain.Row, error) {
	key := recordKey(c, id)
	var row domain.Row
	if ok, _ := s.cache.Get(ctx, key, &row); ok {
		return row, nil
	}
	row, err := s.repo.GetRow(ctx, c.Table(), c.IDKey(), id)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, row, int(s.cacheTTL.Seconds()))
	return row, nil
}

func (s *QueryService) ListRecords(ctx context.Context, c domain.Category, pg domain.PageQuery) (domain.RowsPage, error) {
	key := s.pageKey(ctx, c, pg.Limit, pg.After)
	var out domain.RowsPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	page, err := s.repo.ListRows(ctx, c.Table(), c.IDKey(), pg)
	if err != nil {
		return domain.RowsPage{}, err
	}

	// copy slice to avoid aliasing the repo's backing array
	cp := domain.RowsPage{NextCursor: page.NextCursor, Items: make([]domain.Row, len(page.Items))}
	copy(cp.Items, page.Items)

	// optional size guard
	if b, _ := json.Marshal(cp); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	}
	return cp, nil
}
