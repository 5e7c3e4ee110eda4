package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tripextract/internal/app"
	"tripextract/internal/domain"
)

func TestGetRecord_CacheMissThenHit(t *testing.T) {
	repo := &fakeRepo{rows: map[string]domain.Row{
		"H0001": {{Key: "accommodation_id", Value: "H0001"}, {Key: "accommodation_name", Value: "Grand"}},
	}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	row, err := q.GetRecord(context.Background(), domain.Accommodation, "H0001")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if row.Get("accommodation_name") != "Grand" {
		t.Fatalf("unexpected row: %+v", row)
	}

	// Mutate repo to ensure second read indeed comes from cache
	repo.rows["H0001"] = domain.Row{{Key: "accommodation_name", Value: "SHOULD NOT SEE THIS"}}

	// Hit (served from cache)
	row, err = q.GetRecord(context.Background(), domain.Accommodation, "H0001")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if row.Get("accommodation_name") != "Grand" {
		t.Fatalf("expected cached name, got %v", row.Get("accommodation_name"))
	}
	if keys := row.Keys(); len(keys) != 2 || keys[0] != "accommodation_id" {
		t.Fatalf("cached row lost key order: %v", keys)
	}
}

func TestGetRecord_NotFound(t *testing.T) {
	q := app.NewQueryService(&fakeRepo{}, &fakeCache{}, time.Minute)
	if _, err := q.GetRecord(context.Background(), domain.Activity, "A0404"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListRecords_Cache(t *testing.T) {
	repo := &fakeRepo{page: domain.RowsPage{
		Items:      []domain.Row{{{Key: "activity_id", Value: "A0001"}}},
		NextCursor: ptr("A0001"),
	}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	out, err := q.ListRecords(context.Background(), domain.Activity, domain.PageQuery{Limit: 1})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out.Items) != 1 || out.NextCursor == nil || *out.NextCursor != "A0001" {
		t.Fatalf("unexpected page: %+v", out)
	}

	// Change repo, call again -> should come from cache
	repo.page.Items[0] = domain.Row{{Key: "activity_id", Value: "Changed"}}
	out2, _ := q.ListRecords(context.Background(), domain.Activity, domain.PageQuery{Limit: 1})
	if out2.Items[0].Get("activity_id") != "A0001" {
		t.Fatalf("expected cached id A0001, got %v", out2.Items[0].Get("activity_id"))
	}
}
