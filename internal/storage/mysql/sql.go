package mysql

import (
	"fmt"
	"strings"

	"tripextract/internal/domain"
)

const tableOptions = " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"

const existingColumnsSQL = `
SELECT column_name, column_type
FROM information_schema.columns
WHERE table_schema = DATABASE() AND table_name = ?
`

// Identifiers come from JSON keys, so they are always quoted.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func createTableSQL(table string, schema domain.Schema) string {
	key := KeyColumn(table)
	defs := make([]string, 0, len(schema)+1)
	for _, c := range schema {
		def := quoteIdent(c.Name) + " " + c.Type
		if c.Name == key {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	if schema.Has(key) {
		defs = append(defs, "PRIMARY KEY ("+quoteIdent(key)+")")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)%s",
		quoteIdent(table), strings.Join(defs, ",\n  "), tableOptions)
}

func addColumnSQL(table string, c domain.Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", quoteIdent(table), quoteIdent(c.Name), c.Type)
}

func modifyColumnSQL(table string, c domain.Column) string {
	return fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s %s", quoteIdent(table), quoteIdent(c.Name), c.Type)
}

// storedColumnType maps information_schema.column_type back onto the inferred
// types. Unknown types map to "" and are left alone.
func storedColumnType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	switch {
	case ct == "tinyint(1)":
		return typeBool
	case strings.HasPrefix(ct, "varchar"):
		return typeVarchar
	case strings.HasPrefix(ct, "int"):
		return typeInt
	case strings.HasPrefix(ct, "double"):
		return typeDouble
	case strings.HasSuffix(ct, "text"):
		return typeText
	case ct == "time":
		return typeTime
	}
	return ""
}

// alterStatements lists the ALTERs that make an existing table (columns
// name → column_type) hold schema: missing columns are added, narrower ones
// widened. The key column is never touched and nothing is narrowed.
func alterStatements(table string, schema domain.Schema, existing map[string]string) []string {
	var out []string
	for _, c := range schema {
		ct, ok := existing[c.Name]
		if !ok {
			out = append(out, addColumnSQL(table, c))
			continue
		}
		cur := storedColumnType(ct)
		if cur == "" || c.Name == KeyColumn(table) {
			continue
		}
		if w := widen(cur, c.Type); w != cur {
			out = append(out, modifyColumnSQL(table, domain.Column{Name: c.Name, Type: w}))
		}
	}
	return out
}

// upsertSQL builds one multi-row INSERT for n rows. Rows already present by
// primary key get every non-key column overwritten.
func upsertSQL(table string, schema domain.Schema, n int) string {
	cols := make([]string, len(schema))
	marks := make([]string, len(schema))
	var updates []string
	key := KeyColumn(table)
	for i, c := range schema {
		q := quoteIdent(c.Name)
		cols[i] = q
		marks[i] = "?"
		if c.Name != key {
			updates = append(updates, q+" = VALUES("+q+")")
		}
	}
	if len(updates) == 0 {
		updates = append(updates, quoteIdent(key)+" = "+quoteIdent(key))
	}
	tuple := "(" + strings.Join(marks, ",") + ")"
	values := make([]string, n)
	for i := range values {
		values[i] = tuple
	}
	return "INSERT INTO " + quoteIdent(table) +
		"\n  (" + strings.Join(cols, ", ") + ")\nVALUES " + strings.Join(values, ",") +
		"\nON DUPLICATE KEY UPDATE\n  " + strings.Join(updates, ",\n  ")
}

func getRowSQL(table, keyCol string) string {
	return "SELECT * FROM " + quoteIdent(table) + " WHERE " + quoteIdent(keyCol) + " = ?"
}

// Keyset pagination on the primary key.
func listRowsSQL(table, keyCol string) string {
	return "SELECT * FROM " + quoteIdent(table) +
		" WHERE " + quoteIdent(keyCol) + " > ?" +
		" ORDER BY " + quoteIdent(keyCol) + " LIMIT ?"
}
