package output

import (
	"fmt"
	"strings"

	"schemasync/internal/apply"
	"schemasync/internal/core"
	"schemasync/internal/mysql"
)

type sqlFormatter struct{}

// FormatPlan renders the plan as the exact statements the executor would
// run, one per line, in plan order.
func (sqlFormatter) FormatPlan(p *core.Plan) (string, error) {
	statements, err := mysql.Statements(p)
	if err != nil {
		return "", err
	}
	if len(statements) == 0 {
		return "-- no changes\n", nil
	}

	var sb strings.Builder
	for _, stmt := range statements {
		sb.WriteString(stmt)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// FormatReport renders the executed statements annotated with their
// outcome as SQL comments, so the output is replayable up to the failure.
func (sqlFormatter) FormatReport(r *apply.Report) (string, error) {
	if r == nil || len(r.Results) == 0 {
		return "-- nothing executed\n", nil
	}

	var sb strings.Builder
	for _, res := range r.Results {
		fmt.Fprintf(&sb, "-- %s\n", res.Outcome)
		if res.Err != nil {
			fmt.Fprintf(&sb, "-- error: %v\n", res.Err)
		}
		sb.WriteString(res.SQL)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
