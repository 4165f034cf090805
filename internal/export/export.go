// Package export encodes datasets for download as CSV or Excel workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/JonMunkholm/examgrid/internal/view"
)

// Format is a download encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// BaseName is the download file name without extension.
const BaseName = "ExamSchedule"

// ParseFormat accepts "csv" or "xlsx" in any case, with or without a
// leading dot.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns the attachment name, e.g. ExamSchedule.csv.
func (f Format) Filename() string {
	return BaseName + "." + string(f)
}

// Sheet is a named dataset written as one worksheet.
type Sheet struct {
	Name string
	Data *view.Dataset
}

// Write encodes sheets in format f. CSV holds only the first sheet.
func Write(w io.Writer, f Format, sheets ...Sheet) error {
	switch f {
	case FormatCSV:
		if len(sheets) == 0 {
			return WriteCSV(w, nil)
		}
		return WriteCSV(w, sheets[0].Data)
	case FormatXLSX:
		return WriteXLSX(w, sheets...)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// ETag returns a strong entity tag for an encoded body.
func ETag(body []byte) string {
	return fmt.Sprintf(`"%016x"`, xxh3.Hash(body))
}
