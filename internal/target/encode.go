package target

import (
	"bytes"
	"encoding/json"
	"fmt"

	"schemasync/internal/core"
)

// Encode renders a schema back into the target document format, preserving
// the schema's table and column order. The output round-trips through
// Parse, so a freshly introspected database can be exported as a starting
// target file.
func Encode(s *core.Schema) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")

	for i, t := range s.Tables {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n  ")
		if err := writeKey(&buf, t.Name); err != nil {
			return nil, err
		}
		buf.WriteString(": {")
		for j, c := range t.Columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString("\n    ")
			if err := writeKey(&buf, c.Name); err != nil {
				return nil, err
			}
			buf.WriteString(": ")
			if err := writeColumn(&buf, c); err != nil {
				return nil, err
			}
		}
		if len(t.Columns) > 0 {
			buf.WriteString("\n  ")
		}
		buf.WriteByte('}')
	}

	if len(s.Tables) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, name string) error {
	b, err := json.Marshal(name)
	if err != nil {
		return fmt.Errorf("target: encode name %q: %w", name, err)
	}
	buf.Write(b)
	return nil
}

func writeColumn(buf *bytes.Buffer, c *core.Column) error {
	allowNull := "NO"
	if c.Nullable {
		allowNull = "YES"
	}
	var def any
	if c.Default != nil {
		def = *c.Default
	}
	b, err := json.Marshal([]any{c.Type, allowNull, def, string(c.Extra)})
	if err != nil {
		return fmt.Errorf("target: encode column %q: %w", c.Name, err)
	}
	buf.Write(b)
	return nil
}
