package core

import (
	"fmt"
	"strings"
)

// IntrospectionError reports a failure while reading the live schema:
// connection loss, insufficient privilege, or an unexpected catalog shape.
// It is fatal for the run; no partially introspected schema is acted upon.
type IntrospectionError struct {
	Stage string
	Err   error
}

func (e *IntrospectionError) Error() string {
	return fmt.Sprintf("introspection failed while %s: %v", e.Stage, e.Err)
}

func (e *IntrospectionError) Unwrap() error { return e.Err }

// ValidationIssue describes one malformed entry in a target schema file.
type ValidationIssue struct {
	Table   string
	Column  string
	Message string
}

func (i ValidationIssue) String() string {
	switch {
	case i.Table != "" && i.Column != "":
		return fmt.Sprintf("table %q, column %q: %s", i.Table, i.Column, i.Message)
	case i.Table != "":
		return fmt.Sprintf("table %q: %s", i.Table, i.Message)
	default:
		return i.Message
	}
}

// ValidationError reports every malformed entry found in a target schema,
// not just the first. Validation is deliberately exhaustive so a file with
// fifty problems is fixed in one edit cycle, not fifty runs.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "target schema is invalid (%d problems):", len(e.Issues))
	for _, issue := range e.Issues {
		sb.WriteString("\n  - ")
		sb.WriteString(issue.String())
	}
	return sb.String()
}

// PlanError reports a structurally valid target that would still violate a
// cross-cutting invariant at some step of the plan. It is raised by the
// plan validator before anything touches the database.
type PlanError struct {
	OpIndex int
	Op      ChangeOp
	Message string
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("invalid plan at operation %d (%s): %s", e.OpIndex+1, e.Op, e.Message)
}

// ExecutionError reports a single DDL operation rejected by the database.
// It halts the remaining plan but is not a crash: everything already
// applied stays applied, and re-running the tool recomputes a shorter plan
// from live state.
type ExecutionError struct {
	OpIndex int
	Op      ChangeOp
	SQL     string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("operation %d failed (%s): %v\n  statement: %s", e.OpIndex+1, e.Op, e.Err, e.SQL)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
