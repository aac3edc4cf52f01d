package diff

import (
	"fmt"

	"schemasync/internal/core"
)

// ValidatePlan walks the plan simulating its cumulative effect on a working
// copy of the current schema. It rejects the whole plan with a
// *core.PlanError if any operation is structurally inapplicable, if an
// added or modified column declares auto_increment together with
// nullability (the engine refuses that), or if any intermediate state
// would leave a table with more than one auto_increment column.
//
// This is a dry run over the plan, not the database: it completes before
// the executor issues a single statement.
func ValidatePlan(current *core.Schema, plan *core.Plan) error {
	work := current.Clone()

	for i, op := range plan.Ops {
		if err := checkNullableAutoIncrement(i, op); err != nil {
			return err
		}
		if err := applyOp(work, op); err != nil {
			return &core.PlanError{OpIndex: i, Op: op, Message: err.Error()}
		}
		if err := checkAutoIncrementInvariant(work, i, op); err != nil {
			return err
		}
	}

	return nil
}

// checkNullableAutoIncrement rejects operations that would declare an
// auto_increment column as nullable; MySQL requires auto_increment columns
// to be NOT NULL.
func checkNullableAutoIncrement(i int, op core.ChangeOp) error {
	switch op.Kind {
	case core.OpAddColumn, core.OpModifyColumn:
		if op.After != nil && op.After.Extra == core.ExtraAutoIncrement && op.After.Nullable {
			return &core.PlanError{
				OpIndex: i,
				Op:      op,
				Message: "auto_increment column cannot be nullable",
			}
		}
	case core.OpCreateTable:
		if op.TableDef == nil {
			return nil
		}
		for _, c := range op.TableDef.Columns {
			if c.Extra == core.ExtraAutoIncrement && c.Nullable {
				return &core.PlanError{
					OpIndex: i,
					Op:      op,
					Message: fmt.Sprintf("auto_increment column %q cannot be nullable", c.Name),
				}
			}
		}
	}
	return nil
}

// checkAutoIncrementInvariant verifies that the table touched by op still
// has at most one auto_increment column after the simulated step.
func checkAutoIncrementInvariant(work *core.Schema, i int, op core.ChangeOp) error {
	t := work.Table(op.Table)
	if t == nil {
		return nil
	}
	if n := t.CountAutoIncrement(); n > 1 {
		return &core.PlanError{
			OpIndex: i,
			Op:      op,
			Message: fmt.Sprintf("table %q would have %d auto_increment columns", op.Table, n),
		}
	}
	return nil
}

// applyOp applies a single operation to the working schema. It is also used
// by tests to verify the idempotence property: simulating the full plan and
// re-diffing against the target must yield an empty plan.
func applyOp(work *core.Schema, op core.ChangeOp) error {
	switch op.Kind {
	case core.OpCreateTable:
		if work.HasTable(op.Table) {
			return fmt.Errorf("table %q already exists", op.Table)
		}
		if op.TableDef == nil {
			return fmt.Errorf("create of table %q carries no definition", op.Table)
		}
		work.AddTable(op.TableDef.Clone())

	case core.OpDropTable:
		if !removeTable(work, op.Table) {
			return fmt.Errorf("table %q does not exist", op.Table)
		}

	case core.OpAddColumn:
		t := work.Table(op.Table)
		if t == nil {
			return fmt.Errorf("table %q does not exist", op.Table)
		}
		if t.Column(op.Column) != nil {
			return fmt.Errorf("column %q already exists", op.Column)
		}
		if op.After == nil {
			return fmt.Errorf("add of column %q carries no definition", op.Column)
		}
		after := op.After.Clone()
		after.Name = op.Column
		t.AddColumn(after)

	case core.OpDropColumn:
		t := work.Table(op.Table)
		if t == nil {
			return fmt.Errorf("table %q does not exist", op.Table)
		}
		if !t.RemoveColumn(op.Column) {
			return fmt.Errorf("column %q does not exist", op.Column)
		}

	case core.OpModifyColumn:
		t := work.Table(op.Table)
		if t == nil {
			return fmt.Errorf("table %q does not exist", op.Table)
		}
		if op.After == nil {
			return fmt.Errorf("modify of column %q carries no definition", op.Column)
		}
		after := op.After.Clone()
		after.Name = op.Column
		if !t.ReplaceColumn(op.Column, after) {
			return fmt.Errorf("column %q does not exist", op.Column)
		}

	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
	return nil
}

func removeTable(s *core.Schema, name string) bool {
	for i, t := range s.Tables {
		if t.Name == name {
			s.Tables = append(s.Tables[:i], s.Tables[i+1:]...)
			return true
		}
	}
	return false
}
