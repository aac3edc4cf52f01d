// Package introspect reads the live structure of the connected MySQL
// database from information_schema into the core schema model. It never
// returns a partial result: any failure aborts the whole read, because a
// plan computed from a half-read schema would drop everything it missed.
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"schemasync/internal/core"
)

const listTablesQuery = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
	ORDER BY table_name`

const listColumnsQuery = `
	SELECT column_name, column_type, is_nullable, column_default, extra
	FROM information_schema.columns
	WHERE table_schema = DATABASE() AND table_name = ?
	ORDER BY ordinal_position`

// Introspect returns the current schema of the database the connection is
// bound to. Tables are enumerated in catalog (alphabetical) order and
// columns in ordinal position, so repeated runs over an unchanged database
// produce identical schemas and therefore identical diffs.
func Introspect(ctx context.Context, db *sql.DB) (*core.Schema, error) {
	names, err := listTables(ctx, db)
	if err != nil {
		return nil, &core.IntrospectionError{Stage: "listing tables", Err: err}
	}

	schema := &core.Schema{Tables: make([]*core.Table, 0, len(names))}
	for _, name := range names {
		t, err := introspectTable(ctx, db, name)
		if err != nil {
			return nil, &core.IntrospectionError{
				Stage: fmt.Sprintf("reading columns of table %q", name),
				Err:   err,
			}
		}
		schema.AddTable(t)
	}

	return schema, nil
}

func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, listTablesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func introspectTable(ctx context.Context, db *sql.DB, name string) (*core.Table, error) {
	rows, err := db.QueryContext(ctx, listColumnsQuery, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t := &core.Table{Name: name}
	for rows.Next() {
		var colName, colType, nullable string
		var defaultVal, extra sql.NullString
		if err := rows.Scan(&colName, &colType, &nullable, &defaultVal, &extra); err != nil {
			return nil, err
		}

		col := &core.Column{
			Name:     colName,
			Type:     colType,
			Nullable: nullable == "YES",
			Extra:    classifyExtra(extra.String),
		}
		if defaultVal.Valid {
			v := defaultVal.String
			col.Default = &v
		}

		t.AddColumn(col)
	}

	return t, rows.Err()
}

// classifyExtra keeps only the auto_increment flag. The engine reports
// other extras here too (ON UPDATE clauses, invisibility, generated
// columns); those are outside the model and are dropped, not errored.
func classifyExtra(raw string) core.Extra {
	if strings.Contains(strings.ToLower(raw), string(core.ExtraAutoIncrement)) {
		return core.ExtraAutoIncrement
	}
	return core.ExtraNone
}
