package core

import "fmt"

// OpKind identifies what kind of change a single plan operation performs.
type OpKind string

const (
	OpCreateTable  OpKind = "CREATE_TABLE"
	OpDropTable    OpKind = "DROP_TABLE"
	OpAddColumn    OpKind = "ADD_COLUMN"
	OpDropColumn   OpKind = "DROP_COLUMN"
	OpModifyColumn OpKind = "MODIFY_COLUMN"
)

// ChangeOp is one fully self-describing operation of a change plan.
// TableDef carries the complete definition for table-level operations
// (CREATE_TABLE creates the table with all its columns in one statement);
// Before/After carry the column snapshots for column-level operations.
type ChangeOp struct {
	Kind   OpKind `json:"kind"`
	Table  string `json:"table"`
	Column string `json:"column,omitempty"`

	TableDef *Table  `json:"-"`
	Before   *Column `json:"before,omitempty"`
	After    *Column `json:"after,omitempty"`
}

// Plan is the ordered sequence of operations that converges the current
// schema onto the target. It is produced by the differencer, checked by the
// plan validator, and consumed exactly once by the executor.
type Plan struct {
	Ops []ChangeOp
}

// IsEmpty reports whether the plan contains no operations, meaning current
// and target already match.
func (p *Plan) IsEmpty() bool {
	return p == nil || len(p.Ops) == 0
}

// String returns a one-line human description of the operation, including
// before/after definitions for column changes.
func (op ChangeOp) String() string {
	switch op.Kind {
	case OpCreateTable:
		n := 0
		if op.TableDef != nil {
			n = len(op.TableDef.Columns)
		}
		return fmt.Sprintf("CREATE TABLE %s (%d columns)", op.Table, n)
	case OpDropTable:
		return fmt.Sprintf("DROP TABLE %s", op.Table)
	case OpAddColumn:
		return fmt.Sprintf("ADD COLUMN %s.%s (%s)", op.Table, op.Column, op.After)
	case OpDropColumn:
		return fmt.Sprintf("DROP COLUMN %s.%s (was %s)", op.Table, op.Column, op.Before)
	case OpModifyColumn:
		return fmt.Sprintf("MODIFY COLUMN %s.%s (%s -> %s)", op.Table, op.Column, op.Before, op.After)
	default:
		return fmt.Sprintf("%s %s.%s", op.Kind, op.Table, op.Column)
	}
}

// RemovesAutoIncrement reports whether applying this operation strips the
// auto_increment flag from an existing column. The differencer sequences
// these ahead of any operation introducing auto_increment on the same table
// so the at-most-one invariant holds at every intermediate state.
func (op ChangeOp) RemovesAutoIncrement() bool {
	if op.Before == nil || op.Before.Extra != ExtraAutoIncrement {
		return false
	}
	switch op.Kind {
	case OpDropColumn:
		return true
	case OpModifyColumn:
		return op.After == nil || op.After.Extra != ExtraAutoIncrement
	}
	return false
}

// AddsAutoIncrement reports whether applying this operation introduces an
// auto_increment flag on a column that did not carry it before.
func (op ChangeOp) AddsAutoIncrement() bool {
	if op.After == nil || op.After.Extra != ExtraAutoIncrement {
		return false
	}
	switch op.Kind {
	case OpAddColumn:
		return true
	case OpModifyColumn:
		return op.Before == nil || op.Before.Extra != ExtraAutoIncrement
	}
	return false
}
