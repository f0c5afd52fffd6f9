package agent

// ToolValueKind discriminates the closed set of shapes a tool result may
// take. Keeping the set closed gives the repository store and the
// serialization boundary a fixed, exhaustively matchable contract.
type ToolValueKind string

// Tool value kinds.
const (
	ValueText   ToolValueKind = "text"
	ValueRecord ToolValueKind = "record"
	ValueTable  ToolValueKind = "table"
)

// TableHandle references a tabular dataset held by a tool backend. The table
// itself stays with the backend; only the handle crosses the store boundary.
type TableHandle struct {
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns,omitempty"`
}

// ToolValue is a tagged variant: exactly one of Text, Record, or Table is
// meaningful, selected by Kind.
type ToolValue struct {
	Kind   ToolValueKind
	Text   string
	Record map[string]any
	Table  *TableHandle
}

// TextValue wraps a plain string result.
func TextValue(s string) ToolValue {
	return ToolValue{Kind: ValueText, Text: s}
}

// RecordValue wraps a structured record result.
func RecordValue(r map[string]any) ToolValue {
	return ToolValue{Kind: ValueRecord, Record: r}
}

// TableValue wraps a table handle result.
func TableValue(h TableHandle) ToolValue {
	return ToolValue{Kind: ValueTable, Table: &h}
}

// StoreForm returns the JSON-safe value stored into a work log's repository
// for this variant. Text values come back as bare strings, which the
// string-wrapping store variant turns into {"data": <string>}.
func (v ToolValue) StoreForm() any {
	switch v.Kind {
	case ValueText:
		return v.Text
	case ValueRecord:
		return v.Record
	case ValueTable:
		if v.Table == nil {
			return nil
		}
		return map[string]any{
			"table":   v.Table.Name,
			"rows":    v.Table.Rows,
			"columns": v.Table.Columns,
		}
	default:
		return nil
	}
}
