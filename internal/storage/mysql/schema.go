package mysql

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"tripextract/internal/domain"
)

const (
	typeInt     = "INT"
	typeDouble  = "DOUBLE"
	typeBool    = "BOOLEAN"
	typeVarchar = "VARCHAR(255)"
	typeText    = "TEXT"
	typeTime    = "TIME"

	varcharMax = 255
)

var clockRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)

// InferSchema derives column types from decoded rows. Columns keep the order
// in which their keys first appear; null values never decide a type. Later
// rows widen earlier decisions (INT+DOUBLE is DOUBLE, long strings are TEXT,
// a non-clock value in a *_time column demotes it from TIME).
func InferSchema(rows []domain.Row) domain.Schema {
	var schema domain.Schema
	idx := map[string]int{}
	for _, row := range rows {
		for _, f := range row {
			if f.Value == nil {
				continue
			}
			t := columnType(f.Key, f.Value)
			if i, ok := idx[f.Key]; ok {
				schema[i].Type = widen(schema[i].Type, t)
				continue
			}
			idx[f.Key] = len(schema)
			schema = append(schema, domain.Column{Name: f.Key, Type: t})
		}
	}
	return schema
}

func columnType(key string, v any) string {
	switch x := v.(type) {
	case bool:
		return typeBool
	case int, int32, int64:
		return typeInt
	case float32, float64:
		return typeDouble
	case string:
		if utf8.RuneCountInString(x) > varcharMax {
			return typeText
		}
		if strings.HasSuffix(key, "_time") && clockRe.MatchString(x) {
			return typeTime
		}
		return typeVarchar
	}
	return typeText
}

func widen(cur, next string) string {
	if cur == next {
		return cur
	}
	pair := func(a, b string) bool {
		return (cur == a && next == b) || (cur == b && next == a)
	}
	switch {
	case cur == typeText || next == typeText:
		return typeText
	case pair(typeInt, typeDouble):
		return typeDouble
	case pair(typeBool, typeInt):
		return typeInt
	case pair(typeTime, typeVarchar):
		return typeVarchar
	}
	return typeText
}

// KeyColumn is the primary key column for a category table, e.g. activity_id.
func KeyColumn(table string) string { return table + "_id" }
