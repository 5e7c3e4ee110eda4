//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"tripextract/internal/domain"
	mysqlrepo "tripextract/internal/storage/mysql"
)

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=tripextract",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "tripextract")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRepo_MySQL_EnsureUpsertAndRead(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	first, err := domain.DecodeRows([]byte(`[
		{"activity_id":"A0001","activity_name":"Harbour Cruise","latitude":-33.85,"start_time":"09:00:00","reviews":["Great trip"]},
		{"activity_id":"A0002","activity_name":"Museum","latitude":null,"start_time":null,"reviews":null}
	]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	schema := mysqlrepo.InferSchema(first)
	if err := repo.EnsureTable(ctx, "activity", schema); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	if err := repo.UpsertRows(ctx, "activity", schema, first); err != nil {
		t.Fatalf("UpsertRows: %v", err)
	}

	// a later file brings a new column and rewrites A0002
	second, _ := domain.DecodeRows([]byte(`[{"activity_id":"A0002","activity_name":"City Museum","duration":2}]`))
	schema2 := mysqlrepo.InferSchema(second)
	if err := repo.EnsureTable(ctx, "activity", schema2); err != nil {
		t.Fatalf("EnsureTable (new column): %v", err)
	}
	if err := repo.UpsertRows(ctx, "activity", schema2, second); err != nil {
		t.Fatalf("UpsertRows (second): %v", err)
	}

	row, err := repo.GetRow(ctx, "activity", "activity_id", "A0001")
	if err != nil {
		t.Fatalf("GetRow: %v", err)
	}
	if got := row.Get("activity_name"); got != "Harbour Cruise" {
		t.Fatalf("name: %#v", got)
	}
	if got := row.Get("latitude"); got != -33.85 {
		t.Fatalf("latitude: %#v", got)
	}
	if got, ok := row.Get("reviews").(json.RawMessage); !ok || string(got) != `["Great trip"]` {
		t.Fatalf("reviews: %#v", row.Get("reviews"))
	}

	row, err = repo.GetRow(ctx, "activity", "activity_id", "A0002")
	if err != nil {
		t.Fatalf("GetRow A0002: %v", err)
	}
	if got := row.Get("activity_name"); got != "City Museum" {
		t.Fatalf("upsert did not overwrite: %#v", got)
	}
	if got := row.Get("duration"); got != int64(2) {
		t.Fatalf("duration: %#v", got)
	}

	if _, err := repo.GetRow(ctx, "activity", "activity_id", "A9999"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	page, err := repo.ListRows(ctx, "activity", "activity_id", domain.PageQuery{Limit: 1})
	if err != nil {
		t.Fatalf("ListRows: %v", err)
	}
	if len(page.Items) != 1 || page.NextCursor == nil || *page.NextCursor != "A0001" {
		t.Fatalf("first page: %+v", page)
	}
	page, err = repo.ListRows(ctx, "activity", "activity_id", domain.PageQuery{Limit: 1, After: *page.NextCursor})
	if err != nil {
		t.Fatalf("ListRows page 2: %v", err)
	}
	if len(page.Items) != 1 || page.NextCursor != nil || page.Items[0].Get("activity_id") != "A0002" {
		t.Fatalf("second page: %+v", page)
	}

	// a later file outgrows VARCHAR(255); the column is widened to TEXT
	long := strings.Repeat("y", 400)
	third, _ := domain.DecodeRows([]byte(`[{"activity_id":"A0003","activity_name":"` + long + `"}]`))
	schema3 := mysqlrepo.InferSchema(third)
	if err := repo.EnsureTable(ctx, "activity", schema3); err != nil {
		t.Fatalf("EnsureTable (widen): %v", err)
	}
	if err := repo.UpsertRows(ctx, "activity", schema3, third); err != nil {
		t.Fatalf("UpsertRows (long name): %v", err)
	}
	row, err = repo.GetRow(ctx, "activity", "activity_id", "A0003")
	if err != nil {
		t.Fatalf("GetRow A0003: %v", err)
	}
	if got, _ := row.Get("activity_name").(string); got != long {
		t.Fatalf("long name truncated to %d chars", len(got))
	}
}
