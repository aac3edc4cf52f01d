// Package apply executes a validated change plan against the live database,
// one operation at a time. MySQL DDL commits implicitly, so there is no
// transaction wrapper and no automatic rollback: the first failure stops
// the run, everything already applied stays applied, and re-running the
// tool recomputes a shorter plan from live state.
package apply

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"schemasync/internal/core"
	"schemasync/internal/mysql"
)

// Options contains the settings a caller can choose for a run.
type Options struct {
	DSN    string
	DryRun bool
	Unsafe bool
	Out    io.Writer
}

// Outcome classifies what happened to one plan operation.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// OpResult pairs one plan operation with its generated statement and what
// became of it.
type OpResult struct {
	Op      core.ChangeOp
	SQL     string
	Outcome Outcome
	Err     error
}

// Report is the execution summary: one result per plan operation in plan
// order, and the index of the first failure (-1 when every attempted
// operation succeeded). Operations after the failure are reported as
// skipped, never attempted, since they may assume the failed one succeeded.
type Report struct {
	Results     []OpResult
	FailedIndex int
}

// Failed reports whether the run stopped on a failed operation.
func (r *Report) Failed() bool { return r.FailedIndex >= 0 }

// AppliedCount returns how many operations were successfully applied.
func (r *Report) AppliedCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == OutcomeApplied {
			n++
		}
	}
	return n
}

// Applier owns the live connection for the duration of one run and applies
// a plan against it.
type Applier struct {
	db       *sql.DB
	options  Options
	analyzer *StatementAnalyzer
	out      io.Writer
}

// NewApplier returns an Applier configured with the provided options.
func NewApplier(options Options) *Applier {
	out := options.Out
	if out == nil {
		out = io.Discard
	}
	return &Applier{
		options:  options,
		analyzer: NewStatementAnalyzer(),
		out:      out,
	}
}

func (a *Applier) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

func (a *Applier) println(args ...any) {
	_, _ = fmt.Fprintln(a.out, args...)
}

// Connect establishes the database connection and pings it.
func (a *Applier) Connect(ctx context.Context) error {
	db, err := sql.Open("mysql", a.options.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			return fmt.Errorf("failed to ping database: %v; additionally failed to close connection: %w", pingErr, closeErr)
		}
		return fmt.Errorf("failed to ping database: %w", pingErr)
	}

	a.db = db
	return nil
}

// Close closes the connection if one was opened.
func (a *Applier) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// DB exposes the owned connection, for callers that introspect and apply
// over the same handle.
func (a *Applier) DB() *sql.DB { return a.db }

// Preflight generates the plan's statements and analyzes them without
// executing anything.
func (a *Applier) Preflight(plan *core.Plan) ([]string, *PreflightResult, error) {
	statements, err := mysql.Statements(plan)
	if err != nil {
		return nil, nil, err
	}
	return statements, a.analyzer.AnalyzeStatements(statements, a.options.Unsafe), nil
}

// Apply runs the plan operation by operation, in plan order. On the first
// database error it records the failed operation and the underlying error,
// marks the rest skipped, and returns the report together with a
// *core.ExecutionError. Cancellation is observed only between operations,
// so an aborted run leaves the database in the state produced by the
// operations completed before the signal, a well-defined intermediate
// state rather than a torn one.
func (a *Applier) Apply(ctx context.Context, plan *core.Plan) (*Report, error) {
	statements, preflight, err := a.Preflight(plan)
	if err != nil {
		return nil, err
	}

	a.printWarnings(preflight)

	if a.options.DryRun {
		return a.dryRun(plan, statements), nil
	}

	if HasDestructiveOperations(preflight) && !a.options.Unsafe {
		return nil, fmt.Errorf("plan contains destructive operations; confirm them or re-run with --unsafe")
	}

	report := &Report{
		Results:     make([]OpResult, 0, len(plan.Ops)),
		FailedIndex: -1,
	}

	for i, stmt := range statements {
		if ctxErr := ctx.Err(); ctxErr != nil {
			a.printf("Cancelled after %d of %d operations\n", i, len(statements))
			skipRemaining(report, plan, statements, i)
			return report, fmt.Errorf("apply cancelled: %w", ctxErr)
		}

		a.printf("Applying operation %d/%d: %s\n", i+1, len(statements), plan.Ops[i])
		if _, execErr := a.db.ExecContext(ctx, stmt); execErr != nil {
			report.FailedIndex = i
			report.Results = append(report.Results, OpResult{
				Op:      plan.Ops[i],
				SQL:     stmt,
				Outcome: OutcomeFailed,
				Err:     execErr,
			})
			skipRemaining(report, plan, statements, i+1)
			a.printf("Operation %d failed; %d operations were already applied and are not rolled back\n", i+1, i)
			return report, &core.ExecutionError{OpIndex: i, Op: plan.Ops[i], SQL: stmt, Err: execErr}
		}

		report.Results = append(report.Results, OpResult{
			Op:      plan.Ops[i],
			SQL:     stmt,
			Outcome: OutcomeApplied,
		})
	}

	a.printf("Successfully applied %d operations\n", len(statements))
	return report, nil
}

func (a *Applier) printWarnings(preflight *PreflightResult) {
	for _, w := range preflight.Warnings {
		a.printf("[%s] %s\n", w.Level, w.Message)
		if w.SQL != "" {
			a.printf("    SQL: %s\n", w.SQL)
		}
	}
}

func (a *Applier) dryRun(plan *core.Plan, statements []string) *Report {
	a.println("=== DRY RUN MODE ===")
	for i, stmt := range statements {
		a.printf("%d. %s\n   %s\n", i+1, plan.Ops[i], stmt)
	}
	a.println("=== DRY RUN COMPLETE ===")
	a.println("No operations were executed. Run without --dry-run to apply.")
	return &Report{FailedIndex: -1}
}

func skipRemaining(report *Report, plan *core.Plan, statements []string, from int) {
	for j := from; j < len(statements); j++ {
		report.Results = append(report.Results, OpResult{
			Op:      plan.Ops[j],
			SQL:     statements[j],
			Outcome: OutcomeSkipped,
		})
	}
}
