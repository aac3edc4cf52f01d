// Package mysql generates the MySQL DDL statement for each change plan
// operation. The tool targets the MySQL family only, so there is no dialect
// registry: one generator, one statement per operation.
package mysql

import (
	"fmt"
	"strings"

	"schemasync/internal/core"
)

// Created tables get the same storage options the tool has always assumed
// when synthesizing schemas.
const createTableSuffix = " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_general_ci"

// QuoteIdentifier wraps an identifier in backticks, escaping embedded
// backticks by doubling them.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteString renders a single-quoted MySQL string literal.
func QuoteString(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, "'", "''")
	return "'" + v + "'"
}

// ColumnDefinition renders the column_definition clause used by CREATE
// TABLE and ALTER TABLE: `name` type [NOT NULL|NULL] [DEFAULT '…']
// [AUTO_INCREMENT].
func ColumnDefinition(c *core.Column) string {
	var sb strings.Builder
	sb.WriteString(QuoteIdentifier(c.Name))
	sb.WriteByte(' ')
	sb.WriteString(c.Type)
	if c.Nullable {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}
	if c.Default != nil {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(QuoteString(*c.Default))
	}
	if c.Extra == core.ExtraAutoIncrement {
		sb.WriteString(" AUTO_INCREMENT")
	}
	return sb.String()
}

// CreateTable renders the full CREATE TABLE statement for a table
// definition. When the table declares an auto_increment column a PRIMARY
// KEY on it is synthesized, since MySQL requires auto_increment columns to
// be keyed.
func CreateTable(t *core.Table) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(QuoteIdentifier(t.Name))
	sb.WriteString(" (")
	for i, c := range t.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(ColumnDefinition(c))
	}
	if ai := t.AutoIncrementColumn(); ai != nil {
		sb.WriteString(", PRIMARY KEY (")
		sb.WriteString(QuoteIdentifier(ai.Name))
		sb.WriteByte(')')
	}
	sb.WriteByte(')')
	sb.WriteString(createTableSuffix)
	sb.WriteByte(';')
	return sb.String()
}

// DropTable renders a DROP TABLE statement.
func DropTable(name string) string {
	return "DROP TABLE " + QuoteIdentifier(name) + ";"
}

// AddColumn renders an ALTER TABLE … ADD COLUMN statement.
func AddColumn(table string, c *core.Column) string {
	return "ALTER TABLE " + QuoteIdentifier(table) + " ADD COLUMN " + ColumnDefinition(c) + ";"
}

// DropColumn renders an ALTER TABLE … DROP COLUMN statement.
func DropColumn(table, column string) string {
	return "ALTER TABLE " + QuoteIdentifier(table) + " DROP COLUMN " + QuoteIdentifier(column) + ";"
}

// ModifyColumn renders an ALTER TABLE … MODIFY COLUMN statement.
func ModifyColumn(table string, c *core.Column) string {
	return "ALTER TABLE " + QuoteIdentifier(table) + " MODIFY COLUMN " + ColumnDefinition(c) + ";"
}

// StatementFor renders the single DDL statement implementing op.
func StatementFor(op core.ChangeOp) (string, error) {
	switch op.Kind {
	case core.OpCreateTable:
		if op.TableDef == nil {
			return "", fmt.Errorf("mysql: create of table %q carries no definition", op.Table)
		}
		return CreateTable(op.TableDef), nil
	case core.OpDropTable:
		return DropTable(op.Table), nil
	case core.OpAddColumn:
		if op.After == nil {
			return "", fmt.Errorf("mysql: add of column %q carries no definition", op.Column)
		}
		return AddColumn(op.Table, op.After), nil
	case core.OpDropColumn:
		return DropColumn(op.Table, op.Column), nil
	case core.OpModifyColumn:
		if op.After == nil {
			return "", fmt.Errorf("mysql: modify of column %q carries no definition", op.Column)
		}
		return ModifyColumn(op.Table, op.After), nil
	default:
		return "", fmt.Errorf("mysql: unknown operation kind %q", op.Kind)
	}
}

// Statements renders one statement per plan operation, in plan order.
func Statements(p *core.Plan) ([]string, error) {
	if p.IsEmpty() {
		return nil, nil
	}
	out := make([]string, 0, len(p.Ops))
	for i, op := range p.Ops {
		stmt, err := StatementFor(op)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i+1, err)
		}
		out = append(out, stmt)
	}
	return out, nil
}
