// Package target provides the parser for the declared target schema format:
// a JSON document mapping table names to column sets, where each column is a
// positional 4-element array [type, allow_null, default_value, extra].
// It converts that document into the canonical core.Schema representation
// that the rest of the schemasync toolchain operates on.
//
// Key order in the document is meaningful: it fixes the order in which
// columns are declared and therefore the order of generated DDL. The parser
// walks the decoder token stream instead of unmarshalling into maps, which
// would discard order.
package target

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"schemasync/internal/core"
)

const columnArity = 4

// Parser reads target schema documents.
type Parser struct{}

// NewParser creates a new target schema parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile opens the file at the given path and parses it as a target schema.
func (p *Parser) ParseFile(path string) (*core.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("target: open file %q: %w", path, err)
	}
	defer f.Close()

	return p.Parse(f)
}

// Parse reads a target schema document from r and returns the corresponding
// core.Schema. Validation is exhaustive: every malformed entry in the
// document is collected and returned in one *core.ValidationError, so the
// file can be fixed in a single edit cycle.
func (p *Parser) Parse(r io.Reader) (*core.Schema, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, invalid(core.ValidationIssue{Message: fmt.Sprintf("document is not valid JSON: %v", err)})
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, invalid(core.ValidationIssue{Message: "top level must be an object mapping table names to column sets"})
	}

	schema := &core.Schema{}
	var issues []core.ValidationIssue
	seen := make(map[string]bool)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			issues = append(issues, core.ValidationIssue{Message: fmt.Sprintf("document is not valid JSON: %v", err)})
			return nil, invalid(issues...)
		}
		name := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			issues = append(issues, core.ValidationIssue{Table: name, Message: fmt.Sprintf("unreadable table value: %v", err)})
			return nil, invalid(issues...)
		}

		if strings.TrimSpace(name) == "" {
			issues = append(issues, core.ValidationIssue{Message: "table name is empty"})
			continue
		}
		if seen[name] {
			issues = append(issues, core.ValidationIssue{Table: name, Message: "duplicate table name"})
			continue
		}
		seen[name] = true

		table, tableIssues := parseTable(name, raw)
		issues = append(issues, tableIssues...)
		if table != nil {
			schema.AddTable(table)
		}
	}

	// Closing brace of the top-level object.
	if _, err := dec.Token(); err != nil {
		issues = append(issues, core.ValidationIssue{Message: fmt.Sprintf("document is not valid JSON: %v", err)})
	}

	if len(issues) > 0 {
		return nil, invalid(issues...)
	}
	return schema, nil
}

// parseTable converts one table value into a core.Table, preserving column
// declaration order. A nil table is returned when the value itself is not
// an object; column-level problems still yield a table so later entries
// keep their context.
func parseTable(name string, raw json.RawMessage) (*core.Table, []core.ValidationIssue) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))

	tok, err := dec.Token()
	if err != nil {
		return nil, []core.ValidationIssue{{Table: name, Message: fmt.Sprintf("unreadable table value: %v", err)}}
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, []core.ValidationIssue{{Table: name, Message: "table value must be an object mapping column names to attribute arrays"}}
	}

	table := &core.Table{Name: name}
	var issues []core.ValidationIssue
	seen := make(map[string]bool)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			issues = append(issues, core.ValidationIssue{Table: name, Message: fmt.Sprintf("unreadable column entry: %v", err)})
			return table, issues
		}
		colName := tok.(string)

		var rawCol json.RawMessage
		if err := dec.Decode(&rawCol); err != nil {
			issues = append(issues, core.ValidationIssue{Table: name, Column: colName, Message: fmt.Sprintf("unreadable column value: %v", err)})
			return table, issues
		}

		if strings.TrimSpace(colName) == "" {
			issues = append(issues, core.ValidationIssue{Table: name, Message: "column name is empty"})
			continue
		}
		if seen[colName] {
			issues = append(issues, core.ValidationIssue{Table: name, Column: colName, Message: "duplicate column name"})
			continue
		}
		seen[colName] = true

		col, colIssues := parseColumn(name, colName, rawCol)
		issues = append(issues, colIssues...)
		if col != nil {
			table.AddColumn(col)
		}
	}

	if n := table.CountAutoIncrement(); n > 1 {
		issues = append(issues, core.ValidationIssue{
			Table:   name,
			Message: fmt.Sprintf("declares %d auto_increment columns; at most one per table is allowed", n),
		})
	}

	return table, issues
}

// parseColumn validates one positional attribute array
// [type, allow_null, default_value, extra] and converts it into a
// core.Column with named, typed fields.
func parseColumn(table, name string, raw json.RawMessage) (*core.Column, []core.ValidationIssue) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, []core.ValidationIssue{{
			Table: table, Column: name,
			Message: "column value must be an array [type, allow_null, default_value, extra]",
		}}
	}
	if len(elems) != columnArity {
		return nil, []core.ValidationIssue{{
			Table: table, Column: name,
			Message: fmt.Sprintf("column array must have exactly %d elements, got %d", columnArity, len(elems)),
		}}
	}

	var issues []core.ValidationIssue
	add := func(msg string) {
		issues = append(issues, core.ValidationIssue{Table: table, Column: name, Message: msg})
	}
	col := &core.Column{Name: name}

	var typ string
	if err := json.Unmarshal(elems[0], &typ); err != nil {
		add("type (element 1) must be a string")
	} else if strings.TrimSpace(typ) == "" {
		add("type (element 1) is empty")
	} else {
		col.Type = typ
	}

	var allowNull string
	if err := json.Unmarshal(elems[1], &allowNull); err != nil || (allowNull != "YES" && allowNull != "NO") {
		add(`allow_null (element 2) must be "YES" or "NO"`)
	} else {
		col.Nullable = allowNull == "YES"
	}

	if string(elems[2]) != "null" {
		var def string
		if err := json.Unmarshal(elems[2], &def); err != nil {
			add("default_value (element 3) must be a string or null")
		} else {
			col.Default = &def
		}
	}

	var extra string
	if err := json.Unmarshal(elems[3], &extra); err != nil || !core.IsValidExtra(extra) {
		add(`extra (element 4) must be "" or "auto_increment"`)
	} else {
		col.Extra = core.Extra(extra)
	}

	if len(issues) > 0 {
		return nil, issues
	}
	return col, nil
}

func invalid(issues ...core.ValidationIssue) *core.ValidationError {
	return &core.ValidationError{Issues: issues}
}
