package view

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// makeRecords builds n records with a stable "id" column and a name.
func makeRecords(n int) []Record {
	out := make([]Record, n)
	for i := range out {
		out[i] = NewRecord(
			Field{Key: "id", Value: i},
			Field{Key: "name", Value: fmt.Sprintf("row-%02d", i)},
		)
	}
	return out
}

func ids(records []Record) []int {
	out := make([]int, len(records))
	for i, r := range records {
		v, _ := r.Get("id")
		out[i] = v.(int)
	}
	return out
}

func TestRecord_KeyOrderAndOverwrite(t *testing.T) {
	r := NewRecord(
		Field{Key: "b", Value: 1},
		Field{Key: "a", Value: 2},
		Field{Key: "b", Value: 3},
	)

	if got := r.Keys(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("Keys() = %v, want [b a]", got)
	}
	if v, _ := r.Get("b"); v != 3 {
		t.Errorf("Get(b) = %v, want 3", v)
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) ok = true, want false")
	}
}

func TestRecord_JSONRoundTripKeepsOrder(t *testing.T) {
	in := `{"Room Name":"A1","Date":"2024-10-28","Students":40,"Ratio":0.5,"Teacher 2":null}`

	var r Record
	if err := json.Unmarshal([]byte(in), &r); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}

	want := []string{"Room Name", "Date", "Students", "Ratio", "Teacher 2"}
	if got := r.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if v, _ := r.Get("Students"); v != int64(40) {
		t.Errorf("Students = %#v, want int64(40)", v)
	}

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(out) != in {
		t.Errorf("Marshal = %s, want %s", out, in)
	}
}

func TestRecord_UnmarshalRejectsNested(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"a":{"b":1}}`), &r); err == nil {
		t.Fatal("expected error for nested object")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in     any
		want   string
		wantOK bool
	}{
		{nil, "", false},
		{"Sales", "Sales", true},
		{42, "42", true},
		{int64(-7), "-7", true},
		{1.5, "1.5", true},
		{120.0, "120", true},
		{true, "true", true},
		{json.Number("3.25"), "3.25", true},
		{1e20, "100000000000000000000", true},
		{1e21, "1e+21", true},
		{-2.5e30, "-2.5e+30", true},
		{1.5e-7, "1.5e-7", true},
		{0.000001, "0.000001", true},
		{0.0, "0", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.in), func(t *testing.T) {
			got, ok := FormatValue(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("FormatValue(%#v) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDataset_Immutable(t *testing.T) {
	src := makeRecords(3)
	ds := NewDataset(src)

	src[0] = NewRecord(Field{Key: "id", Value: 99})
	if v, _ := ds.At(0).Get("id"); v != 0 {
		t.Errorf("dataset changed through source slice: id = %v", v)
	}

	rs := ds.Records()
	rs[1] = NewRecord(Field{Key: "id", Value: 99})
	if v, _ := ds.At(1).Get("id"); v != 1 {
		t.Errorf("dataset changed through Records(): id = %v", v)
	}

	if got := ds.Columns(); !reflect.DeepEqual(got, []string{"id", "name"}) {
		t.Errorf("Columns() = %v", got)
	}
}

func TestFilter_MatchesAnyColumnCaseInsensitive(t *testing.T) {
	records := []Record{
		NewRecord(Field{Key: "name", Value: "Alice"}, Field{Key: "dept", Value: "Sales"}),
		NewRecord(Field{Key: "name", Value: "Bob"}, Field{Key: "dept", Value: "IT"}),
	}

	got := Filter(records, "sal")
	if len(got) != 1 {
		t.Fatalf("Filter(sal) returned %d records, want 1", len(got))
	}
	if name, _ := got[0].Get("name"); name != "Alice" {
		t.Errorf("Filter(sal)[0].name = %v, want Alice", name)
	}

	if got := Filter(records, "BOB"); len(got) != 1 {
		t.Errorf("Filter(BOB) returned %d records, want 1", len(got))
	}
}

func TestFilter_SkipsNullAndMatchesNumbers(t *testing.T) {
	records := []Record{
		NewRecord(Field{Key: "teacher", Value: nil}, Field{Key: "students", Value: 120}),
		NewRecord(Field{Key: "teacher", Value: "Nina"}, Field{Key: "students", Value: 35}),
	}

	if got := Filter(records, "nil"); len(got) != 0 {
		t.Errorf("null value matched: %d records", len(got))
	}
	if got := Filter(records, "12"); len(got) != 1 {
		t.Errorf("Filter(12) returned %d records, want 1", len(got))
	}
}

func TestFilter_EmptyQueryReturnsAll(t *testing.T) {
	records := makeRecords(7)
	got := Filter(records, "")
	if !reflect.DeepEqual(ids(got), ids(records)) {
		t.Errorf("Filter(\"\") = %v, want %v", ids(got), ids(records))
	}
	if &got[0] != &records[0] {
		t.Error("empty query should return the same records, not copies")
	}
}

func TestFilter_IdempotentAndStable(t *testing.T) {
	records := makeRecords(40)
	for _, q := range []string{"row-1", "3", "ROW", "zzz"} {
		once := Filter(records, q)
		twice := Filter(once, q)
		if !reflect.DeepEqual(ids(once), ids(twice)) {
			t.Errorf("Filter not idempotent for %q: %v vs %v", q, ids(once), ids(twice))
		}
		for i := 1; i < len(once); i++ {
			if ids(once)[i] <= ids(once)[i-1] {
				t.Errorf("Filter(%q) broke order: %v", q, ids(once))
				break
			}
		}
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name               string
		total, size, page  int
		wantCount          int
		wantStart, wantEnd int
		wantInRange        bool
	}{
		{"empty", 0, 10, 1, 0, 0, 0, false},
		{"single partial page", 5, 10, 1, 1, 0, 5, true},
		{"exact pages", 20, 10, 2, 2, 10, 20, true},
		{"last partial", 12, 10, 2, 2, 10, 12, true},
		{"page zero", 12, 10, 0, 2, 0, 0, false},
		{"page past end", 12, 10, 3, 2, 0, 0, false},
		{"negative page", 12, 10, -4, 2, 0, 0, false},
		{"zero page size", 12, 0, 1, 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.total, tt.size, tt.page)
			if p.Count != tt.wantCount || p.Start != tt.wantStart || p.End != tt.wantEnd || p.InRange != tt.wantInRange {
				t.Errorf("Paginate(%d, %d, %d) = %+v, want count=%d start=%d end=%d inRange=%v",
					tt.total, tt.size, tt.page, p, tt.wantCount, tt.wantStart, tt.wantEnd, tt.wantInRange)
			}
		})
	}
}

func TestPaginate_SlicesPartitionDataset(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 57, 100} {
		for _, size := range []int{1, 3, 10, 25} {
			records := makeRecords(n)
			count := Paginate(n, size, 1).Count

			var joined []int
			for page := 1; page <= count; page++ {
				joined = append(joined, ids(Paginate(n, size, page).Slice(records))...)
			}

			if len(joined) != n {
				t.Fatalf("n=%d size=%d: pages hold %d records", n, size, len(joined))
			}
			for i, id := range joined {
				if id != i {
					t.Fatalf("n=%d size=%d: record %d at position %d", n, size, id, i)
				}
			}
		}
	}
}

func TestPage_SliceOutOfRangeIsEmpty(t *testing.T) {
	records := makeRecords(12)
	if got := Paginate(12, 10, 5).Slice(records); len(got) != 0 {
		t.Errorf("out-of-range slice has %d records", len(got))
	}
	// Stale bounds computed for a longer sequence.
	if got := Paginate(100, 10, 3).Slice(records); len(got) != 0 {
		t.Errorf("stale slice has %d records", len(got))
	}
}

func TestComputeWindow(t *testing.T) {
	tests := []struct {
		name                     string
		current, count, budget   int
		wantPages                []int
		first, lead, trail, last bool
	}{
		{"middle of many", 7, 20, 5, []int{5, 6, 7, 8, 9}, true, true, true, true},
		{"first page", 1, 20, 5, []int{1, 2, 3, 4, 5}, false, false, true, true},
		{"near start", 3, 20, 5, []int{1, 2, 3, 4, 5}, false, false, true, true},
		{"one past start", 4, 20, 5, []int{2, 3, 4, 5, 6}, true, false, true, true},
		{"last page", 20, 20, 5, []int{16, 17, 18, 19, 20}, true, true, false, false},
		{"one before end", 17, 20, 5, []int{15, 16, 17, 18, 19}, true, true, false, true},
		{"fewer pages than buttons", 2, 3, 5, []int{1, 2, 3}, false, false, false, false},
		{"two pages", 2, 2, 5, []int{1, 2}, false, false, false, false},
		{"single page", 1, 1, 5, []int{1}, false, false, false, false},
		{"no pages", 1, 0, 5, nil, false, false, false, false},
		{"even budget", 5, 20, 4, []int{3, 4, 5, 6}, true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ComputeWindow(tt.current, tt.count, tt.budget)
			if !reflect.DeepEqual(w.Pages, tt.wantPages) && !(len(w.Pages) == 0 && len(tt.wantPages) == 0) {
				t.Errorf("Pages = %v, want %v", w.Pages, tt.wantPages)
			}
			if w.ShowFirst != tt.first || w.ShowLeadingEllipsis != tt.lead ||
				w.ShowTrailingEllipsis != tt.trail || w.ShowLast != tt.last {
				t.Errorf("flags = first:%v lead:%v trail:%v last:%v, want %v %v %v %v",
					w.ShowFirst, w.ShowLeadingEllipsis, w.ShowTrailingEllipsis, w.ShowLast,
					tt.first, tt.lead, tt.trail, tt.last)
			}
		})
	}
}

func TestComputeWindow_Bounds(t *testing.T) {
	for count := 0; count <= 30; count++ {
		for budget := 1; budget <= 8; budget++ {
			for current := -2; current <= count+3; current++ {
				w := ComputeWindow(current, count, budget)
				if len(w.Pages) > budget {
					t.Fatalf("ComputeWindow(%d, %d, %d) has %d pages", current, count, budget, len(w.Pages))
				}
				for i, p := range w.Pages {
					if p < 1 || p > count {
						t.Fatalf("ComputeWindow(%d, %d, %d) page %d out of range", current, count, budget, p)
					}
					if i > 0 && p != w.Pages[i-1]+1 {
						t.Fatalf("ComputeWindow(%d, %d, %d) not contiguous: %v", current, count, budget, w.Pages)
					}
				}
			}
		}
	}
}

func TestPageWindow_Buttons(t *testing.T) {
	w := ComputeWindow(7, 20, 5)

	var labels []string
	for _, b := range w.Buttons() {
		labels = append(labels, b.Label)
	}
	want := []string{"Prev", "1", "...", "5", "6", "7", "8", "9", "...", "20", "Next"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("Buttons() labels = %v, want %v", labels, want)
	}

	first := ComputeWindow(1, 3, 5).Buttons()
	if !first[0].Disabled {
		t.Error("Prev should be disabled on page 1")
	}
	if first[len(first)-1].Disabled {
		t.Error("Next should be enabled on page 1 of 3")
	}
	if !first[1].Active {
		t.Error("page 1 button should be active")
	}

	if got := ComputeWindow(1, 1, 5).Buttons(); got != nil {
		t.Errorf("single page should have no buttons, got %d", len(got))
	}
}

func TestPageAction_Target(t *testing.T) {
	tests := []struct {
		action  PageAction
		current int
		count   int
		want    int
		wantOK  bool
	}{
		{Prev(), 1, 5, 1, false},
		{Prev(), 3, 5, 2, true},
		{Next(), 5, 5, 5, false},
		{Next(), 4, 5, 5, true},
		{First(), 4, 5, 1, true},
		{Last(), 1, 5, 5, true},
		{JumpTo(3), 1, 5, 3, true},
		{JumpTo(9), 1, 5, 1, false},
		{Next(), 1, 1, 1, false},
		{First(), 1, 0, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			got, ok := tt.action.Target(tt.current, tt.count)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("%s.Target(%d, %d) = (%d, %v), want (%d, %v)",
					tt.action, tt.current, tt.count, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseAction(t *testing.T) {
	for _, a := range []PageAction{Prev(), Next(), First(), Last(), JumpTo(12)} {
		got, err := ParseAction(a.String())
		if err != nil {
			t.Fatalf("ParseAction(%q) error = %v", a.String(), err)
		}
		if got != a {
			t.Errorf("ParseAction(%q) = %+v, want %+v", a.String(), got, a)
		}
	}
	if _, err := ParseAction("sideways"); err == nil {
		t.Error("ParseAction(sideways) expected error")
	}
}

func TestTable_EscapesAndUsesFirstRecordColumns(t *testing.T) {
	records := []Record{
		NewRecord(Field{Key: "name", Value: "<b>Alice</b>"}, Field{Key: "dept", Value: nil}),
		NewRecord(Field{Key: "name", Value: "Bob"}, Field{Key: "extra", Value: "dropped"}),
	}

	html, err := renderString(context.Background(), Table(records, DefaultLabels))
	if err != nil {
		t.Fatalf("render error = %v", err)
	}

	if strings.Contains(html, "<b>Alice</b>") {
		t.Error("cell markup was not escaped")
	}
	if !strings.Contains(html, "&lt;b&gt;Alice&lt;/b&gt;") {
		t.Errorf("escaped cell missing: %s", html)
	}
	if !strings.Contains(html, "<th>name</th><th>dept</th></tr>") {
		t.Errorf("headers not derived from first record: %s", html)
	}
	if strings.Contains(html, "dropped") {
		t.Error("column absent from first record was rendered")
	}
	if strings.Count(html, "<td></td>") != 2 {
		t.Errorf("expected two empty cells (null and missing): %s", html)
	}
}

func TestTable_EmptyRendersNotice(t *testing.T) {
	html, err := renderString(context.Background(), Table(nil, DefaultLabels))
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if html != `<p class="notice">No schedule generated.</p>` {
		t.Errorf("empty table = %q", html)
	}
}

func TestControls_Markup(t *testing.T) {
	html, err := renderString(context.Background(), Controls(ComputeWindow(1, 3, 5)))
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	for _, want := range []string{
		`data-page="prev" disabled>Prev</button>`,
		`class="page-btn active" data-page="1">1</button>`,
		`data-page="next">Next</button>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("controls missing %q in %s", want, html)
		}
	}

	empty, _ := renderString(context.Background(), Controls(ComputeWindow(1, 1, 5)))
	if empty != "" {
		t.Errorf("single page controls = %q, want empty", empty)
	}
}

func TestPageInfo(t *testing.T) {
	tests := []struct {
		name string
		w    PageWindow
		want string
	}{
		{"middle page", ComputeWindow(2, 3, 5), "Page 2 of 3"},
		{"last page", ComputeWindow(9, 9, 5), "Page 9 of 9"},
		{"single page hidden", ComputeWindow(1, 1, 5), ""},
		{"no pages hidden", ComputeWindow(1, 0, 5), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderString(context.Background(), PageInfo(tt.w))
			if err != nil {
				t.Fatalf("render error = %v", err)
			}
			if got != tt.want {
				t.Errorf("PageInfo() = %q, want %q", got, tt.want)
			}
			if got != InfoText(tt.w) {
				t.Errorf("PageInfo() = %q, InfoText() = %q", got, InfoText(tt.w))
			}
		})
	}
}
