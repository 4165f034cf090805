// Package view implements the paginated, filterable table that presents a
// generated schedule.
//
// The package is a pure function from (Dataset, ViewState) to a Frame of
// rendered markup and page-button state. It holds no process-wide state:
// every adapter (HTTP fragments, terminal UI, tests) owns its own
// ViewState or Controller.
//
// # Pipeline
//
// Every trigger runs the same steps to completion:
//
//  1. Filter the dataset by the current query ([Filter])
//  2. Compute the page bounds for the current page ([Paginate])
//  3. Render the page slice as a table ([Table])
//  4. Compute the page-button window ([ComputeWindow]) and render controls
//
// The result is one [Frame]; callers never observe a partially updated view.
package view

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Field is a single column/value pair of a Record.
type Field struct {
	Key   string
	Value any
}

// Record is one row of tabular data. Keys keep their insertion order, which
// defines the display column order. A Record is immutable once built.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord builds a Record from fields in display order. A repeated key
// overwrites the earlier value but keeps the earlier position.
func NewRecord(fields ...Field) Record {
	r := Record{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if i, ok := r.index[f.Key]; ok {
			r.fields[i].Value = f.Value
			continue
		}
		r.index[f.Key] = len(r.fields)
		r.fields = append(r.fields, f)
	}
	return r
}

// Keys returns the record's column names in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	i, ok := r.index[key]
	if !ok {
		return nil, false
	}
	return r.fields[i].Value, true
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.fields)
}

// MarshalJSON encodes the record as a JSON object preserving key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat JSON object, keeping the object's key order.
// Nested objects and arrays are rejected: cells are scalars.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: expected key, got %v", tok)
		}

		tok, err = dec.Token()
		if err != nil {
			return err
		}
		if _, ok := tok.(json.Delim); ok {
			return fmt.Errorf("record: field %q is not a scalar", key)
		}
		fields = append(fields, Field{Key: key, Value: normalizeNumber(tok)})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = NewRecord(fields...)
	return nil
}

// normalizeNumber converts json.Number into int64 when integral, float64
// otherwise, so decoded records compare equal to records built in Go.
func normalizeNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// FormatValue returns the display form of a cell value. The second result is
// false for null values, which have no display form.
func FormatValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float32:
		return formatFloat(float64(val), 32), true
	case float64:
		return formatFloat(val, 64), true
	case json.Number:
		return val.String(), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprint(val), true
	}
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if abs := math.Abs(f); abs >= 1e21 || (abs != 0 && abs < 1e-6) {
		return expForm(strconv.FormatFloat(f, 'e', -1, bits))
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

// expForm drops the zero padding strconv puts on one-digit exponents, so
// 1.5e-07 reads 1.5e-7.
func expForm(s string) string {
	i := strings.LastIndexAny(s, "+-")
	if i <= 0 || i+2 >= len(s) || s[i+1] != '0' {
		return s
	}
	return s[:i+1] + s[i+2:]
}

// Dataset is the ordered, immutable collection of records produced by one
// upload. A new upload replaces the dataset wholesale.
type Dataset struct {
	records []Record
}

// NewDataset copies records into a new Dataset.
func NewDataset(records []Record) *Dataset {
	rs := make([]Record, len(records))
	copy(rs, records)
	return &Dataset{records: rs}
}

// Len returns the number of records; a nil Dataset is empty.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns the i-th record.
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Records returns a copy of the records in order.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Columns returns the keys of the first record, or nil when empty.
func (d *Dataset) Columns() []string {
	if d.Len() == 0 {
		return nil
	}
	return d.records[0].Keys()
}

// view returns the backing records for read-only use inside the package.
func (d *Dataset) view() []Record {
	if d == nil {
		return nil
	}
	return d.records[:len(d.records):len(d.records)]
}

// MarshalJSON encodes the dataset as a JSON array of objects.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	if d == nil || d.records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d.records)
}

// UnmarshalJSON decodes a JSON array of flat objects.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	d.records = records
	return nil
}
