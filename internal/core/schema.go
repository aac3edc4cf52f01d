// Package core contains the single source of truth for a database schema.
// It provides the normalized representation of tables and columns that the
// introspector, target parser, differencer, and executor all operate on.
package core

import (
	"fmt"
	"strings"
)

// Extra classifies the engine-assigned column attribute we track.
// Anything other than auto_increment reported by the engine is dropped
// during introspection, not errored.
type Extra string

const (
	ExtraNone          Extra = ""
	ExtraAutoIncrement Extra = "auto_increment"
)

// IsValidExtra reports whether raw is a recognized extra token.
func IsValidExtra(raw string) bool {
	switch Extra(raw) {
	case ExtraNone, ExtraAutoIncrement:
		return true
	}
	return false
}

// Schema represents the full structure of one database: an ordered set of
// tables. Order is insertion order for parsed targets and catalog order for
// introspected schemas, so enumeration is deterministic within one source.
//
// A Schema is built once per source and treated as immutable afterwards;
// the differencer only reads it.
type Schema struct {
	Tables []*Table
}

// Table represents a single table as an ordered sequence of columns.
// Column order matters for DDL generation but not for equality.
type Table struct {
	Name    string
	Columns []*Column
}

// Column represents a single column definition.
//
// Type is the raw DDL type expression (e.g. "varchar(100)") and is treated
// as an opaque token: "int" and "int(11)" compare unequal even though the
// engine treats them the same. Default distinguishes only "has a literal
// default" (non-nil) from "no explicit default" (nil); MySQL's
// information_schema reports DEFAULT NULL on a nullable column the same way
// as no default, so a third state is not representable.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Default  *string
	Extra    Extra
}

// Table looks up a table by name. Lookups are case-sensitive: table names
// are unique per the database collation and the target file must spell
// them exactly.
func (s *Schema) Table(name string) *Table {
	for _, t := range s.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// HasTable reports whether a table with the exact name exists.
func (s *Schema) HasTable(name string) bool {
	return s.Table(name) != nil
}

// AddTable appends a table to the schema.
func (s *Schema) AddTable(t *Table) {
	s.Tables = append(s.Tables, t)
}

// Column looks up a column by exact name.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// AddColumn appends a column to the table.
func (t *Table) AddColumn(c *Column) {
	t.Columns = append(t.Columns, c)
}

// RemoveColumn deletes the named column, preserving the order of the rest.
// It reports whether the column was present.
func (t *Table) RemoveColumn(name string) bool {
	for i, c := range t.Columns {
		if c.Name == name {
			t.Columns = append(t.Columns[:i], t.Columns[i+1:]...)
			return true
		}
	}
	return false
}

// ReplaceColumn swaps the named column for c in place.
// It reports whether the column was present.
func (t *Table) ReplaceColumn(name string, c *Column) bool {
	for i, old := range t.Columns {
		if old.Name == name {
			t.Columns[i] = c
			return true
		}
	}
	return false
}

// AutoIncrementColumn returns the table's auto_increment column, or nil.
// Valid tables have at most one; when the invariant is already broken this
// returns the first in column order.
func (t *Table) AutoIncrementColumn() *Column {
	for _, c := range t.Columns {
		if c.Extra == ExtraAutoIncrement {
			return c
		}
	}
	return nil
}

// CountAutoIncrement returns how many auto_increment columns the table has.
func (t *Table) CountAutoIncrement() int {
	n := 0
	for _, c := range t.Columns {
		if c.Extra == ExtraAutoIncrement {
			n++
		}
	}
	return n
}

// SameDefinition reports whether two columns are structurally identical:
// same type token, nullability, default, and extra. Names and positions are
// not compared. Type comparison is strict string equality; semantically
// equivalent spellings like "int" vs "int(11)" are reported as different.
func SameDefinition(a, b *Column) bool {
	return a.Type == b.Type &&
		a.Nullable == b.Nullable &&
		ptrEq(a.Default, b.Default) &&
		a.Extra == b.Extra
}

// Clone returns a deep copy of the schema. The plan validator simulates
// plans on a clone so the introspected schema stays untouched.
func (s *Schema) Clone() *Schema {
	out := &Schema{Tables: make([]*Table, len(s.Tables))}
	for i, t := range s.Tables {
		out.Tables[i] = t.Clone()
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{Name: t.Name, Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		out.Columns[i] = c.Clone()
	}
	return out
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	out := &Column{Name: c.Name, Type: c.Type, Nullable: c.Nullable, Extra: c.Extra}
	if c.Default != nil {
		v := *c.Default
		out.Default = &v
	}
	return out
}

// String returns a compact single-line description of the column
// definition, used in plan output and error messages.
func (c *Column) String() string {
	var sb strings.Builder
	sb.WriteString(c.Type)
	if c.Nullable {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}
	if c.Default != nil {
		fmt.Fprintf(&sb, " DEFAULT %q", *c.Default)
	}
	if c.Extra != ExtraNone {
		sb.WriteByte(' ')
		sb.WriteString(strings.ToUpper(string(c.Extra)))
	}
	return sb.String()
}

// String returns a short summary of the table.
func (t *Table) String() string {
	return fmt.Sprintf("Table: %s (%d cols)", t.Name, len(t.Columns))
}

func ptrEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
