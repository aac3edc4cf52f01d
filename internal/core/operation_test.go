package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanIsEmpty(t *testing.T) {
	var p *Plan
	assert.True(t, p.IsEmpty())
	assert.True(t, (&Plan{}).IsEmpty())
	assert.False(t, (&Plan{Ops: []ChangeOp{{Kind: OpDropTable, Table: "t"}}}).IsEmpty())
}

func TestRemovesAutoIncrement(t *testing.T) {
	ai := &Column{Name: "id", Type: "int", Extra: ExtraAutoIncrement}
	plain := &Column{Name: "id", Type: "int"}

	t.Run("drop of an auto increment column", func(t *testing.T) {
		op := ChangeOp{Kind: OpDropColumn, Table: "t", Column: "id", Before: ai}
		assert.True(t, op.RemovesAutoIncrement())
	})

	t.Run("modify that strips the flag", func(t *testing.T) {
		op := ChangeOp{Kind: OpModifyColumn, Table: "t", Column: "id", Before: ai, After: plain}
		assert.True(t, op.RemovesAutoIncrement())
	})

	t.Run("modify that keeps the flag", func(t *testing.T) {
		bigger := &Column{Name: "id", Type: "bigint", Extra: ExtraAutoIncrement}
		op := ChangeOp{Kind: OpModifyColumn, Table: "t", Column: "id", Before: ai, After: bigger}
		assert.False(t, op.RemovesAutoIncrement())
	})

	t.Run("drop of a plain column", func(t *testing.T) {
		op := ChangeOp{Kind: OpDropColumn, Table: "t", Column: "id", Before: plain}
		assert.False(t, op.RemovesAutoIncrement())
	})
}

func TestAddsAutoIncrement(t *testing.T) {
	ai := &Column{Name: "id", Type: "int", Extra: ExtraAutoIncrement}
	plain := &Column{Name: "id", Type: "int"}

	t.Run("add with the flag", func(t *testing.T) {
		op := ChangeOp{Kind: OpAddColumn, Table: "t", Column: "id", After: ai}
		assert.True(t, op.AddsAutoIncrement())
	})

	t.Run("modify that introduces the flag", func(t *testing.T) {
		op := ChangeOp{Kind: OpModifyColumn, Table: "t", Column: "id", Before: plain, After: ai}
		assert.True(t, op.AddsAutoIncrement())
	})

	t.Run("modify that already had the flag", func(t *testing.T) {
		op := ChangeOp{Kind: OpModifyColumn, Table: "t", Column: "id", Before: ai, After: ai}
		assert.False(t, op.AddsAutoIncrement())
	})

	t.Run("add without the flag", func(t *testing.T) {
		op := ChangeOp{Kind: OpAddColumn, Table: "t", Column: "id", After: plain}
		assert.False(t, op.AddsAutoIncrement())
	})
}

func TestChangeOpString(t *testing.T) {
	def := &Table{Name: "users", Columns: []*Column{{Name: "id", Type: "int"}, {Name: "name", Type: "varchar(50)"}}}
	assert.Equal(t, "CREATE TABLE users (2 columns)",
		ChangeOp{Kind: OpCreateTable, Table: "users", TableDef: def}.String())
	assert.Equal(t, "DROP TABLE legacy",
		ChangeOp{Kind: OpDropTable, Table: "legacy"}.String())

	after := &Column{Name: "age", Type: "int", Nullable: true}
	assert.Equal(t, "ADD COLUMN users.age (int NULL)",
		ChangeOp{Kind: OpAddColumn, Table: "users", Column: "age", After: after}.String())
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Issues: []ValidationIssue{
		{Table: "users", Column: "id", Message: "unknown extra \"primary\""},
		{Table: "users", Message: "more than one auto_increment column"},
		{Message: "target must be a JSON object"},
	}}

	msg := err.Error()
	assert.Contains(t, msg, "target schema is invalid (3 problems):")
	assert.Contains(t, msg, `table "users", column "id": unknown extra "primary"`)
	assert.Contains(t, msg, `table "users": more than one auto_increment column`)
	assert.Contains(t, msg, "\n  - target must be a JSON object")
}

func TestExecutionErrorMessage(t *testing.T) {
	op := ChangeOp{Kind: OpDropTable, Table: "legacy"}
	err := &ExecutionError{OpIndex: 2, Op: op, SQL: "DROP TABLE `legacy`;", Err: assert.AnError}
	assert.Contains(t, err.Error(), "operation 3 failed (DROP TABLE legacy)")
	assert.Contains(t, err.Error(), "statement: DROP TABLE `legacy`;")
	assert.ErrorIs(t, err, assert.AnError)
}
