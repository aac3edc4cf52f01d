package apply

import (
	"fmt"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver" // required to register TiDB parser driver implementations
)

// PreflightResult contains the warnings produced by analyzing a plan's
// generated statements before execution.
type PreflightResult struct {
	Warnings []Warning
}

// Warning contains a level of danger, a message, and the statement that
// triggered it.
type Warning struct {
	Level   WarningLevel
	Message string
	SQL     string
}

// WarningLevel grades how much attention a warning deserves.
type WarningLevel string

const (
	WarnCaution WarningLevel = "CAUTION"
	WarnDanger  WarningLevel = "DANGER"
)

// StatementAnalysis contains the results of analyzing one SQL statement.
type StatementAnalysis struct {
	StatementType     string
	IsBlocking        bool
	BlockingReasons   []string
	IsDestructive     bool
	DestructiveReason string
}

// StatementAnalyzer uses TiDB's AST parser to classify the DDL the
// generator produced: destructive statements (drops) gate on the unsafe
// flag, blocking ones only warn.
type StatementAnalyzer struct {
	parser *parser.Parser
}

// NewStatementAnalyzer creates a new AST-based statement analyzer.
func NewStatementAnalyzer() *StatementAnalyzer {
	return &StatementAnalyzer{parser: parser.New()}
}

// AnalyzeStatement parses a single SQL statement and returns its analysis.
// An unparseable statement is flagged with a caution warning rather than
// rejected; the database has the final word on syntax.
func (a *StatementAnalyzer) AnalyzeStatement(sql string) *StatementAnalysis {
	stmtNodes, _, err := a.parser.Parse(sql, "", "")
	if err != nil || len(stmtNodes) == 0 {
		return &StatementAnalysis{StatementType: "UNPARSEABLE"}
	}
	return a.analyzeNode(stmtNodes[0])
}

// AnalyzeStatements analyzes a sequence of statements and collects the
// warnings into a PreflightResult.
func (a *StatementAnalyzer) AnalyzeStatements(statements []string, unsafeAllowed bool) *PreflightResult {
	result := &PreflightResult{}

	for _, stmt := range statements {
		analysis := a.AnalyzeStatement(stmt)

		if analysis.StatementType == "UNPARSEABLE" {
			result.Warnings = append(result.Warnings, Warning{
				Level:   WarnCaution,
				Message: "statement could not be parsed; the server may reject it",
				SQL:     stmt,
			})
			continue
		}

		for _, reason := range analysis.BlockingReasons {
			result.Warnings = append(result.Warnings, Warning{
				Level:   WarnCaution,
				Message: fmt.Sprintf("potentially blocking DDL: %s", reason),
				SQL:     stmt,
			})
		}

		if analysis.IsDestructive {
			msg := analysis.DestructiveReason
			if !unsafeAllowed {
				msg = fmt.Sprintf("%s (requires --unsafe flag)", msg)
			}
			result.Warnings = append(result.Warnings, Warning{
				Level:   WarnDanger,
				Message: msg,
				SQL:     stmt,
			})
		}
	}

	return result
}

func (a *StatementAnalyzer) analyzeNode(node ast.StmtNode) *StatementAnalysis {
	analysis := &StatementAnalysis{}

	switch stmt := node.(type) {
	case *ast.CreateTableStmt:
		analysis.StatementType = "CREATE TABLE"
	case *ast.DropTableStmt:
		analysis.StatementType = "DROP TABLE"
		analysis.IsDestructive = true
		analysis.DestructiveReason = "DROP TABLE will permanently delete the table and all its data"
	case *ast.AlterTableStmt:
		analysis.StatementType = "ALTER TABLE"
		a.analyzeAlterTable(stmt, analysis)
	default:
		analysis.StatementType = "OTHER"
	}

	return analysis
}

func (a *StatementAnalyzer) analyzeAlterTable(stmt *ast.AlterTableStmt, analysis *StatementAnalysis) {
	for _, spec := range stmt.Specs {
		switch spec.Tp {
		case ast.AlterTableAddColumns:
			analysis.IsBlocking = true
			analysis.BlockingReasons = append(analysis.BlockingReasons,
				"ADD COLUMN may require a table rebuild depending on MySQL version and column position")
		case ast.AlterTableDropColumn:
			analysis.IsBlocking = true
			analysis.IsDestructive = true
			analysis.DestructiveReason = "DROP COLUMN will permanently delete the column and its data"
			analysis.BlockingReasons = append(analysis.BlockingReasons,
				"DROP COLUMN typically requires a full table rebuild and will lock the table")
		case ast.AlterTableModifyColumn:
			analysis.IsBlocking = true
			analysis.BlockingReasons = append(analysis.BlockingReasons,
				"MODIFY COLUMN may require a table rebuild if changing column type or size")
		}
	}
}

// HasDestructiveOperations reports whether the preflight found any
// danger-level warning.
func HasDestructiveOperations(preflight *PreflightResult) bool {
	for _, w := range preflight.Warnings {
		if w.Level == WarnDanger {
			return true
		}
	}
	return false
}
