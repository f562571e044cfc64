package core

// table.go implements the line-oriented CSV codec used by the editor and by
// table submission.
//
// The format is deliberately minimal: lines are split on '\n' and fields on
// ','. There is no quoting, so a comma inside a value is a field separator.
// Lines whose field count differs from the header are dropped without error.

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	lineSep  = "\n"
	fieldSep = ","
)

// Table is the in-memory form of a CSV file: an ordered header list and the
// rows accepted at decode time. Header names are not deduplicated.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Width returns the number of columns.
func (t Table) Width() int {
	return len(t.Headers)
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := Table{
		Headers: append([]string(nil), t.Headers...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// Records zips every row with the headers.
func (t Table) Records() []Record {
	records := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, newRecord(t.Headers, row))
	}
	return records
}

// Decode parses CSV text into a Table.
//
// The first line is the header. Blank lines are skipped and any line whose
// field count differs from the header's is dropped. Values are not trimmed.
// Decode("") yields a single empty header and no rows.
func Decode(text string) Table {
	lines := strings.Split(text, lineSep)
	headers := strings.Split(lines[0], fieldSep)

	t := Table{Headers: headers, Rows: [][]string{}}
	for _, line := range lines[1:] {
		if values, ok := acceptLine(line, len(headers)); ok {
			t.Rows = append(t.Rows, values)
		}
	}
	return t
}

// DecodeRecords parses CSV text into field-name-keyed records using the same
// acceptance rules as Decode.
func DecodeRecords(text string) []Record {
	return Decode(text).Records()
}

// acceptLine splits a data line and reports whether it matches the header arity.
func acceptLine(line string, width int) ([]string, bool) {
	if strings.TrimSpace(line) == "" {
		return nil, false
	}
	values := strings.Split(line, fieldSep)
	if len(values) != width {
		return nil, false
	}
	return values, true
}

// Encode serializes a Table back to CSV text. Every line, including the
// last, ends with a newline. Values are written verbatim.
func Encode(t Table) string {
	var b strings.Builder
	b.WriteString(strings.Join(t.Headers, fieldSep))
	b.WriteString(lineSep)
	for _, row := range t.Rows {
		b.WriteString(strings.Join(row, fieldSep))
		b.WriteString(lineSep)
	}
	return b.String()
}

// Field is one named value of a Record.
type Field struct {
	Name  string
	Value string
}

// Record is a row keyed by header name. Field order follows the header order
// and a repeated header keeps its first position with the last value.
type Record []Field

func newRecord(headers, values []string) Record {
	rec := make(Record, 0, len(headers))
	index := make(map[string]int, len(headers))
	for i, name := range headers {
		if j, dup := index[name]; dup {
			rec[j].Value = values[i]
			continue
		}
		index[name] = len(rec)
		rec = append(rec, Field{Name: name, Value: values[i]})
	}
	return rec
}

// Get returns the value stored under name.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// MarshalJSON encodes the record as a JSON object with keys in field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
