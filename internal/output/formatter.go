// Package output provides a set of formatters for change plans and
// execution reports. It is extendable and for now provides three formats:
// human, SQL, and JSON.
package output

import (
	"fmt"
	"strings"

	"schemasync/internal/apply"
	"schemasync/internal/core"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatHuman Format = "human"
	FormatSQL   Format = "sql"
	FormatJSON  Format = "json"
)

// Formatter renders change plans and execution reports.
type Formatter interface {
	FormatPlan(*core.Plan) (string, error)
	FormatReport(*apply.Report) (string, error)
}

// NewFormatter creates a Formatter for the given format name.
// An empty name defaults to the human format.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatHuman:
		return humanFormatter{}, nil
	case FormatSQL:
		return sqlFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s; use 'human', 'sql', or 'json'", name)
	}
}
