package view

import "strconv"

// PageWindow is the bounded set of page buttons shown around the current
// page. Pages is contiguous and never longer than the button budget.
type PageWindow struct {
	Current              int
	PageCount            int
	ShowFirst            bool
	ShowLeadingEllipsis  bool
	Pages                []int
	ShowTrailingEllipsis bool
	ShowLast             bool
}

// ComputeWindow returns the sliding window of at most maxButtons page
// numbers centered on current and clamped to [1, pageCount]. Page 1 and the
// last page stay reachable through ShowFirst/ShowLast, and a gap of more than
// one page is marked with an ellipsis.
func ComputeWindow(current, pageCount, maxButtons int) PageWindow {
	w := PageWindow{Current: current, PageCount: pageCount}
	if pageCount <= 0 {
		return w
	}
	if maxButtons < 1 {
		maxButtons = 1
	}

	half := maxButtons / 2
	start := current - half
	end := start + maxButtons - 1

	if start < 1 {
		start = 1
		end = min(maxButtons, pageCount)
	} else if end > pageCount {
		end = pageCount
		start = max(1, end-maxButtons+1)
	}

	w.ShowFirst = start > 1
	w.ShowLeadingEllipsis = start > 2
	w.ShowLast = end < pageCount
	w.ShowTrailingEllipsis = end < pageCount-1

	w.Pages = make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		w.Pages = append(w.Pages, i)
	}
	return w
}

// Visible reports whether pagination controls should be shown at all.
// Zero or one page means no controls.
func (w PageWindow) Visible() bool {
	return w.PageCount > 1
}

// HasPrev reports whether the Prev button is enabled.
func (w PageWindow) HasPrev() bool {
	return w.Current > 1
}

// HasNext reports whether the Next button is enabled.
func (w PageWindow) HasNext() bool {
	return w.Current < w.PageCount
}

// ButtonKind identifies the role of a pagination control.
type ButtonKind int

const (
	ButtonPrev ButtonKind = iota
	ButtonPage
	ButtonEllipsis
	ButtonNext
)

// Button is one rendered pagination control.
type Button struct {
	Kind     ButtonKind
	Label    string
	Action   PageAction
	Active   bool
	Disabled bool
}

// Buttons returns the controls in display order:
// Prev, [1, ...], window pages, [..., last], Next.
// It returns nil when the window is not visible.
func (w PageWindow) Buttons() []Button {
	if !w.Visible() {
		return nil
	}

	out := make([]Button, 0, len(w.Pages)+6)
	out = append(out, Button{
		Kind:     ButtonPrev,
		Label:    "Prev",
		Action:   Prev(),
		Disabled: !w.HasPrev(),
	})

	if w.ShowFirst {
		out = append(out, Button{Kind: ButtonPage, Label: "1", Action: First()})
		if w.ShowLeadingEllipsis {
			out = append(out, Button{Kind: ButtonEllipsis, Label: "...", Disabled: true})
		}
	}

	for _, n := range w.Pages {
		out = append(out, Button{
			Kind:   ButtonPage,
			Label:  strconv.Itoa(n),
			Action: JumpTo(n),
			Active: n == w.Current,
		})
	}

	if w.ShowLast {
		if w.ShowTrailingEllipsis {
			out = append(out, Button{Kind: ButtonEllipsis, Label: "...", Disabled: true})
		}
		out = append(out, Button{Kind: ButtonPage, Label: strconv.Itoa(w.PageCount), Action: Last()})
	}

	out = append(out, Button{
		Kind:     ButtonNext,
		Label:    "Next",
		Action:   Next(),
		Disabled: !w.HasNext(),
	})
	return out
}
