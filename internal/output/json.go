package output

import (
	"encoding/json"
	"fmt"

	"schemasync/internal/apply"
	"schemasync/internal/core"
	"schemasync/internal/mysql"
)

type jsonFormatter struct{}

type jsonOperation struct {
	Kind    string      `json:"kind"`
	Table   string      `json:"table"`
	Column  string      `json:"column,omitempty"`
	Before  *jsonColumn `json:"before,omitempty"`
	After   *jsonColumn `json:"after,omitempty"`
	SQL     string      `json:"sql"`
	Outcome string      `json:"outcome,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type jsonColumn struct {
	Type     string  `json:"type"`
	Nullable bool    `json:"nullable"`
	Default  *string `json:"default"`
	Extra    string  `json:"extra"`
}

type jsonPlan struct {
	Format     string          `json:"format"`
	Operations []jsonOperation `json:"operations"`
	Summary    jsonSummary     `json:"summary"`
}

type jsonSummary struct {
	Operations  int `json:"operations"`
	Applied     int `json:"applied,omitempty"`
	FailedIndex int `json:"failedIndex,omitempty"`
}

// FormatPlan renders the plan with per-operation statements as JSON for
// tooling consumption.
func (jsonFormatter) FormatPlan(p *core.Plan) (string, error) {
	doc := jsonPlan{
		Format:     "json",
		Operations: make([]jsonOperation, 0, len(p.Ops)),
		Summary:    jsonSummary{Operations: len(p.Ops)},
	}

	for _, op := range p.Ops {
		stmt, err := mysql.StatementFor(op)
		if err != nil {
			return "", err
		}
		doc.Operations = append(doc.Operations, newJSONOperation(op, stmt, "", nil))
	}

	return marshal(doc)
}

// FormatReport renders the execution report as JSON, including the
// underlying database error of the terminal failure.
func (jsonFormatter) FormatReport(r *apply.Report) (string, error) {
	doc := jsonPlan{
		Format:  "json",
		Summary: jsonSummary{FailedIndex: -1},
	}
	if r == nil {
		return marshal(doc)
	}

	doc.Operations = make([]jsonOperation, 0, len(r.Results))
	for _, res := range r.Results {
		doc.Operations = append(doc.Operations, newJSONOperation(res.Op, res.SQL, string(res.Outcome), res.Err))
	}
	doc.Summary = jsonSummary{
		Operations:  len(r.Results),
		Applied:     r.AppliedCount(),
		FailedIndex: r.FailedIndex,
	}

	return marshal(doc)
}

func newJSONOperation(op core.ChangeOp, stmt, outcome string, err error) jsonOperation {
	jo := jsonOperation{
		Kind:    string(op.Kind),
		Table:   op.Table,
		Column:  op.Column,
		Before:  newJSONColumn(op.Before),
		After:   newJSONColumn(op.After),
		SQL:     stmt,
		Outcome: outcome,
	}
	if err != nil {
		jo.Error = err.Error()
	}
	return jo
}

func newJSONColumn(c *core.Column) *jsonColumn {
	if c == nil {
		return nil
	}
	return &jsonColumn{
		Type:     c.Type,
		Nullable: c.Nullable,
		Default:  c.Default,
		Extra:    string(c.Extra),
	}
}

func marshal(doc jsonPlan) (string, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("output: marshal json: %w", err)
	}
	return string(b) + "\n", nil
}
