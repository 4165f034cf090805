package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/templ"
)

// Labels holds the fixed text of the table region.
type Labels struct {
	Title string // heading above the table; omitted when empty
	Empty string // notice shown instead of an empty table
}

// DefaultLabels are the labels of the schedule view.
var DefaultLabels = Labels{
	Title: "Generated Schedule",
	Empty: "No schedule generated.",
}

// InfoText returns the page-info line for w.
func InfoText(w PageWindow) string {
	if !w.Visible() {
		return ""
	}
	return fmt.Sprintf("Page %d of %d", w.Current, w.PageCount)
}

// cellText is the display form of r's value for key; null and missing
// values are blank.
func cellText(r Record, key string) string {
	v, _ := r.Get(key)
	s, _ := FormatValue(v)
	return s
}

func renderString(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
