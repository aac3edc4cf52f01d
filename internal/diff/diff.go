// Package diff computes the ordered change plan that converges a live
// schema onto a declared target, and validates that plan against the
// schema invariants before anything touches the database.
package diff

import (
	"schemasync/internal/core"
)

// Diff compares the current (introspected) schema with the target schema
// and returns the ordered plan of operations that transforms one into the
// other. It is a pure function of its inputs: given the same pair it always
// yields an identical plan, so a dry-run preview matches what a later
// apply will execute. Neither input is mutated.
//
// Ordering guarantees:
//   - operations stripping auto_increment from an existing column come
//     before any operation introducing auto_increment in the same table,
//     keeping the at-most-one invariant at every intermediate state;
//   - DROP TABLE operations come after all additive work on other tables,
//     so an interrupted run loses nothing it did not have to;
//   - within a table, additions and modifications follow the target's
//     declared column order, and remaining drops come last.
func Diff(current, target *core.Schema) *core.Plan {
	plan := &core.Plan{}

	for _, tt := range target.Tables {
		ct := current.Table(tt.Name)
		if ct == nil {
			plan.Ops = append(plan.Ops, core.ChangeOp{
				Kind:     core.OpCreateTable,
				Table:    tt.Name,
				TableDef: tt.Clone(),
			})
			continue
		}
		plan.Ops = append(plan.Ops, diffColumns(ct, tt)...)
	}

	// Destructive table drops go last so additive operations are already
	// confirmed if the run is interrupted.
	for _, ct := range current.Tables {
		if !target.HasTable(ct.Name) {
			plan.Ops = append(plan.Ops, core.ChangeOp{
				Kind:     core.OpDropTable,
				Table:    ct.Name,
				TableDef: ct.Clone(),
			})
		}
	}

	return plan
}

// diffColumns produces the column operations for one table present in both
// schemas, already sequenced: auto_increment demotions first, then
// additions and modifications in target order, then the remaining drops in
// catalog order.
func diffColumns(current, target *core.Table) []core.ChangeOp {
	var demotions, changes, drops []core.ChangeOp

	for _, tc := range target.Columns {
		cc := current.Column(tc.Name)
		if cc == nil {
			changes = append(changes, core.ChangeOp{
				Kind:   core.OpAddColumn,
				Table:  target.Name,
				Column: tc.Name,
				After:  tc.Clone(),
			})
			continue
		}
		if core.SameDefinition(cc, tc) {
			continue
		}
		op := core.ChangeOp{
			Kind:   core.OpModifyColumn,
			Table:  target.Name,
			Column: tc.Name,
			Before: cc.Clone(),
			After:  tc.Clone(),
		}
		if op.RemovesAutoIncrement() {
			demotions = append(demotions, op)
		} else {
			changes = append(changes, op)
		}
	}

	for _, cc := range current.Columns {
		if target.Column(cc.Name) != nil {
			continue
		}
		op := core.ChangeOp{
			Kind:   core.OpDropColumn,
			Table:  target.Name,
			Column: cc.Name,
			Before: cc.Clone(),
		}
		if op.RemovesAutoIncrement() {
			demotions = append(demotions, op)
		} else {
			drops = append(drops, op)
		}
	}

	ops := make([]core.ChangeOp, 0, len(demotions)+len(changes)+len(drops))
	ops = append(ops, demotions...)
	ops = append(ops, changes...)
	ops = append(ops, drops...)
	return ops
}
