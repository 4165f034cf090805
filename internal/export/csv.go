package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/examgrid/internal/view"
)

// WriteCSV writes ds with a header row of its columns. Null and missing
// values are written as empty fields. An empty dataset writes nothing.
func WriteCSV(w io.Writer, ds *view.Dataset) error {
	cols := ds.Columns()
	if len(cols) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(cols))
	for i := 0; i < ds.Len(); i++ {
		rec := ds.At(i)
		for j, col := range cols {
			v, _ := rec.Get(col)
			row[j], _ = view.FormatValue(v)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ReadCSV reads a file written by WriteCSV back into a dataset. Whole
// numbers come back as int64 and empty fields as null; everything else
// stays text.
func ReadCSV(r io.Reader) (*view.Dataset, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return view.NewDataset(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cr.FieldsPerRecord = len(header)

	var records []view.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		fields := make([]view.Field, len(header))
		for i, key := range header {
			fields[i] = view.Field{Key: key, Value: csvValue(row[i])}
		}
		records = append(records, view.NewRecord(fields...))
	}
	return view.NewDataset(records), nil
}

func csvValue(s string) any {
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}
