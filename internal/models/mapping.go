package models

// Field is a target field that a CSV column can be mapped to.
type Field string

const (
	FieldSymbol       Field = "symbol"
	FieldQuantity     Field = "quantity"
	FieldAvgPrice     Field = "avgPrice"
	FieldCurrentPrice Field = "currentPrice"
	FieldPnL          Field = "pnl"
	FieldDate         Field = "date"
	FieldAmount       Field = "amount"
	FieldSource       Field = "source"
	FieldCategory     Field = "category"
	FieldType         Field = "type"
	FieldDescription  Field = "description"
)

// ColumnMapping maps a target field to the CSV header feeding it.
// An empty header means the field is unmapped.
type ColumnMapping map[Field]string

// Header returns the header mapped to f, or "".
func (m ColumnMapping) Header(f Field) string {
	if m == nil {
		return ""
	}
	return m[f]
}

// Clone returns an independent copy of the mapping.
func (m ColumnMapping) Clone() ColumnMapping {
	out := make(ColumnMapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Cell returns the raw value of field f in row, and whether it was mapped.
func (m ColumnMapping) Cell(row map[string]string, f Field) (string, bool) {
	h := m.Header(f)
	if h == "" {
		return "", false
	}
	v, ok := row[h]
	return v, ok
}
