package output

import (
	"fmt"
	"strings"

	"schemasync/internal/apply"
	"schemasync/internal/core"
)

type humanFormatter struct{}

// FormatPlan renders the plan as a numbered operation list.
func (humanFormatter) FormatPlan(p *core.Plan) (string, error) {
	if p.IsEmpty() {
		return "No changes: the database already matches the target schema.\n", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Change plan (%d operations):\n", len(p.Ops))
	for i, op := range p.Ops {
		fmt.Fprintf(&sb, "%3d. %s\n", i+1, op)
	}
	return sb.String(), nil
}

// FormatReport renders per-operation outcomes followed by a summary line.
// The terminal failure, if any, carries the underlying database error.
func (humanFormatter) FormatReport(r *apply.Report) (string, error) {
	if r == nil || len(r.Results) == 0 {
		return "Nothing was executed.\n", nil
	}

	var sb strings.Builder
	for i, res := range r.Results {
		fmt.Fprintf(&sb, "%3d. [%s] %s\n", i+1, statusLabel(res.Outcome), res.Op)
		if res.Outcome == apply.OutcomeFailed && res.Err != nil {
			fmt.Fprintf(&sb, "       error: %v\n", res.Err)
			fmt.Fprintf(&sb, "       statement: %s\n", res.SQL)
		}
	}

	applied := r.AppliedCount()
	if r.Failed() {
		fmt.Fprintf(&sb, "Applied %d of %d operations; stopped at operation %d.\n",
			applied, len(r.Results), r.FailedIndex+1)
	} else {
		fmt.Fprintf(&sb, "Applied %d operations.\n", applied)
	}
	return sb.String(), nil
}

func statusLabel(o apply.Outcome) string {
	switch o {
	case apply.OutcomeApplied:
		return "OK"
	case apply.OutcomeFailed:
		return "FAILED"
	case apply.OutcomeSkipped:
		return "SKIPPED"
	default:
		return strings.ToUpper(string(o))
	}
}
