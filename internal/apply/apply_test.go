package apply

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemasync/internal/core"
)

func mockApplier(t *testing.T, options Options) (*Applier, sqlmock.Sqlmock, *bytes.Buffer) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var out bytes.Buffer
	options.Out = &out
	a := NewApplier(options)
	a.db = db
	return a, mock, &out
}

func additivePlan(n int) *core.Plan {
	plan := &core.Plan{}
	names := []string{"a", "b", "c", "d", "e"}
	for i := 0; i < n; i++ {
		plan.Ops = append(plan.Ops, core.ChangeOp{
			Kind:   core.OpAddColumn,
			Table:  "t",
			Column: names[i],
			After:  &core.Column{Name: names[i], Type: "int", Nullable: true},
		})
	}
	return plan
}

func TestApplyRunsEveryOperation(t *testing.T) {
	a, mock, out := mockApplier(t, Options{})
	plan := additivePlan(2)

	mock.ExpectExec("ALTER TABLE `t` ADD COLUMN `a`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ALTER TABLE `t` ADD COLUMN `b`").WillReturnResult(sqlmock.NewResult(0, 0))

	report, err := a.Apply(context.Background(), plan)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.False(t, report.Failed())
	assert.Equal(t, 2, report.AppliedCount())
	require.Len(t, report.Results, 2)
	for _, res := range report.Results {
		assert.Equal(t, OutcomeApplied, res.Outcome)
	}
	assert.Contains(t, out.String(), "Successfully applied 2 operations")
}

func TestApplyStopsAtFirstFailure(t *testing.T) {
	a, mock, out := mockApplier(t, Options{})
	plan := additivePlan(5)

	cause := errors.New("Duplicate column name 'c'")
	mock.ExpectExec("ADD COLUMN `a`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ADD COLUMN `b`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ADD COLUMN `c`").WillReturnError(cause)

	report, err := a.Apply(context.Background(), plan)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	var execErr *core.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, 2, execErr.OpIndex)
	assert.ErrorIs(t, execErr, cause)

	require.Len(t, report.Results, 5)
	assert.True(t, report.Failed())
	assert.Equal(t, 2, report.FailedIndex)
	assert.Equal(t, 2, report.AppliedCount())
	assert.Equal(t, OutcomeApplied, report.Results[0].Outcome)
	assert.Equal(t, OutcomeApplied, report.Results[1].Outcome)
	assert.Equal(t, OutcomeFailed, report.Results[2].Outcome)
	assert.ErrorIs(t, report.Results[2].Err, cause)
	assert.Equal(t, OutcomeSkipped, report.Results[3].Outcome)
	assert.Equal(t, OutcomeSkipped, report.Results[4].Outcome)

	assert.Contains(t, out.String(), "2 operations were already applied and are not rolled back")
}

func TestApplyObservesCancellationBetweenOperations(t *testing.T) {
	a, mock, _ := mockApplier(t, Options{})
	plan := additivePlan(3)

	// Cancel before the run; the check happens before each statement.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := a.Apply(ctx, plan)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, err.Error(), "apply cancelled")
	assert.ErrorIs(t, err, context.Canceled)

	require.Len(t, report.Results, 3)
	for _, res := range report.Results {
		assert.Equal(t, OutcomeSkipped, res.Outcome)
	}
	assert.Equal(t, 0, report.AppliedCount())
}

func TestApplyDryRunExecutesNothing(t *testing.T) {
	a, mock, out := mockApplier(t, Options{DryRun: true})
	plan := additivePlan(2)

	report, err := a.Apply(context.Background(), plan)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.False(t, report.Failed())
	assert.Empty(t, report.Results)
	assert.Contains(t, out.String(), "DRY RUN MODE")
	assert.Contains(t, out.String(), "No operations were executed")
}

func TestApplyGatesDestructivePlans(t *testing.T) {
	plan := &core.Plan{Ops: []core.ChangeOp{
		{Kind: core.OpDropTable, Table: "legacy"},
	}}

	t.Run("blocked without unsafe", func(t *testing.T) {
		a, mock, out := mockApplier(t, Options{})

		_, err := a.Apply(context.Background(), plan)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "destructive operations")
		require.NoError(t, mock.ExpectationsWereMet())
		assert.Contains(t, out.String(), "requires --unsafe flag")
	})

	t.Run("dry run previews without unsafe", func(t *testing.T) {
		a, mock, out := mockApplier(t, Options{DryRun: true})

		report, err := a.Apply(context.Background(), plan)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
		assert.False(t, report.Failed())
		assert.Contains(t, out.String(), "DRY RUN MODE")
	})

	t.Run("allowed with unsafe", func(t *testing.T) {
		a, mock, _ := mockApplier(t, Options{Unsafe: true})
		mock.ExpectExec("DROP TABLE `legacy`").WillReturnResult(sqlmock.NewResult(0, 0))

		report, err := a.Apply(context.Background(), plan)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, 1, report.AppliedCount())
	})
}

func TestApplyEmptyPlan(t *testing.T) {
	a, mock, _ := mockApplier(t, Options{})

	report, err := a.Apply(context.Background(), &core.Plan{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.False(t, report.Failed())
	assert.Empty(t, report.Results)
}

func TestPreflight(t *testing.T) {
	a := NewApplier(Options{})
	plan := &core.Plan{Ops: []core.ChangeOp{
		{Kind: core.OpAddColumn, Table: "t", Column: "c",
			After: &core.Column{Name: "c", Type: "int", Nullable: true}},
		{Kind: core.OpDropColumn, Table: "t", Column: "old",
			Before: &core.Column{Name: "old", Type: "int"}},
	}}

	statements, preflight, err := a.Preflight(plan)
	require.NoError(t, err)
	require.Len(t, statements, 2)
	assert.True(t, HasDestructiveOperations(preflight))
}

func TestReportAccounting(t *testing.T) {
	r := &Report{FailedIndex: -1, Results: []OpResult{
		{Outcome: OutcomeApplied},
		{Outcome: OutcomeApplied},
		{Outcome: OutcomeSkipped},
	}}
	assert.False(t, r.Failed())
	assert.Equal(t, 2, r.AppliedCount())

	r.FailedIndex = 1
	assert.True(t, r.Failed())
}
