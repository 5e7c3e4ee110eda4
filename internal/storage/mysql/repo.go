package mysql

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"tripextract/internal/domain"
)

// rows per INSERT statement; keeps placeholders well under the server limit.
const upsertBatch = 200

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// EnsureTable creates table when missing, adds any schema column the existing
// table lacks and widens columns whose stored type is narrower than the
// inferred one (VARCHAR to TEXT, INT to DOUBLE). Columns are never narrowed.
func (r *Repo) EnsureTable(ctx context.Context, table string, schema domain.Schema) error {
	if len(schema) == 0 {
		return fmt.Errorf("ensure %s: empty schema", table)
	}
	if _, err := r.db.ExecContext(ctx, createTableSQL(table, schema)); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	rows, err := r.db.QueryContext(ctx, existingColumnsSQL, table)
	if err != nil {
		return fmt.Errorf("list columns %s: %w", table, err)
	}
	have := map[string]string{}
	for rows.Next() {
		var name, ct string
		if err := rows.Scan(&name, &ct); err != nil {
			rows.Close()
			return err
		}
		have[name] = ct
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, stmt := range alterStatements(table, schema, have) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("alter %s: %w", table, err)
		}
		log.Info().Str("table", table).Str("stmt", stmt).Msg("table altered")
	}
	return nil
}

// UpsertRows writes rows in multi-row statements. Keys missing from a row are
// written as NULL; lists and objects are stored as JSON text.
func (r *Repo) UpsertRows(ctx context.Context, table string, schema domain.Schema, rows []domain.Row) error {
	if len(rows) == 0 || len(schema) == 0 {
		return nil
	}
	for start := 0; start < len(rows); start += upsertBatch {
		end := min(start+upsertBatch, len(rows))
		chunk := rows[start:end]
		args := make([]any, 0, len(chunk)*len(schema))
		for _, row := range chunk {
			for _, c := range schema {
				v, err := sqlValue(row.Get(c.Name))
				if err != nil {
					return fmt.Errorf("column %s: %w", c.Name, err)
				}
				args = append(args, v)
			}
		}
		if _, err := r.db.ExecContext(ctx, upsertSQL(table, schema, len(chunk)), args...); err != nil {
			return fmt.Errorf("upsert %s: %w", table, err)
		}
	}
	return nil
}

func sqlValue(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, int64, float64, string:
		return x, nil
	case int:
		return int64(x), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func (r *Repo) GetRow(ctx context.Context, table, keyCol, id string) (domain.Row, error) {
	rows, err := r.db.QueryContext(ctx, getRowSQL(table, keyCol), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out[0], nil
}

func (r *Repo) ListRows(ctx context.Context, table, keyCol string, pg domain.PageQuery) (domain.RowsPage, error) {
	if pg.Limit <= 0 {
		pg.Limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listRowsSQL(table, keyCol), pg.After, pg.Limit+1)
	if err != nil {
		return domain.RowsPage{}, err
	}
	defer rows.Close()

	items, err := scanRows(rows)
	if err != nil {
		return domain.RowsPage{}, err
	}
	page := domain.RowsPage{Items: items}
	if len(items) > pg.Limit {
		page.Items = items[:pg.Limit]
		if last, ok := page.Items[pg.Limit-1].Get(keyCol).(string); ok {
			page.NextCursor = &last
		}
	}
	if page.Items == nil {
		page.Items = []domain.Row{}
	}
	return page, nil
}

// scanRows reads every result row into an ordered domain.Row, in column order.
func scanRows(rows *sql.Rows) ([]domain.Row, error) {
	cols, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	var out []domain.Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(domain.Row, len(cols))
		for i, c := range cols {
			row[i] = domain.Field{Key: c.Name(), Value: fromSQL(c.DatabaseTypeName(), vals[i])}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// fromSQL maps driver values back to JSON-friendly ones. TEXT columns that
// hold a JSON list or object are returned as raw JSON.
func fromSQL(dbType string, v any) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	switch dbType {
	case "TEXT", "MEDIUMTEXT", "LONGTEXT":
		t := bytes.TrimSpace(b)
		if len(t) > 0 && (t[0] == '[' || t[0] == '{') && json.Valid(t) {
			return json.RawMessage(append([]byte(nil), t...))
		}
	case "DOUBLE", "FLOAT", "DECIMAL":
		var f float64
		if err := json.Unmarshal(b, &f); err == nil {
			return f
		}
	case "INT", "BIGINT", "TINYINT", "SMALLINT", "MEDIUMINT":
		var n int64
		if err := json.Unmarshal(b, &n); err == nil {
			return n
		}
	}
	return string(b)
}
