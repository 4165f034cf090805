package view

// Default presentation constants.
const (
	DefaultRowsPerPage    = 10
	DefaultMaxPageButtons = 5
)

// Page describes one page of a sequence.
type Page struct {
	Number   int // requested page, 1-based
	Count    int // total number of pages
	Start    int // inclusive slice bound
	End      int // exclusive slice bound
	InRange  bool
	PageSize int
}

// Paginate computes the page count and slice bounds of page within a
// sequence of total items. An out-of-range page never faults: it yields
// empty bounds and InRange is false.
func Paginate(total, pageSize, page int) Page {
	p := Page{Number: page, PageSize: pageSize}
	if total <= 0 || pageSize <= 0 {
		return p
	}

	p.Count = (total + pageSize - 1) / pageSize
	if page < 1 || page > p.Count {
		return p
	}

	p.InRange = true
	p.Start = (page - 1) * pageSize
	p.End = p.Start + pageSize
	if p.End > total {
		p.End = total
	}
	return p
}

// Len returns the number of items on the page.
func (p Page) Len() int {
	return p.End - p.Start
}

// Slice returns the page's portion of records. Bounds are re-checked against
// len(records) so a stale Page never panics.
func (p Page) Slice(records []Record) []Record {
	start, end := p.Start, p.End
	if start > len(records) {
		start = len(records)
	}
	if end > len(records) {
		end = len(records)
	}
	if start >= end {
		return nil
	}
	return records[start:end:end]
}
