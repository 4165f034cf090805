package view

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionKind is a page-navigation event type.
type ActionKind int

const (
	ActionPage ActionKind = iota
	ActionPrev
	ActionNext
	ActionFirst
	ActionLast
)

// PageAction is a page-navigation request from a pagination control.
type PageAction struct {
	Kind ActionKind
	Page int // target for ActionPage
}

// Prev moves one page back.
func Prev() PageAction {
	return PageAction{Kind: ActionPrev}
}

// Next moves one page forward.
func Next() PageAction {
	return PageAction{Kind: ActionNext}
}

// First moves to page 1.
func First() PageAction {
	return PageAction{Kind: ActionFirst}
}

// Last moves to the last page.
func Last() PageAction {
	return PageAction{Kind: ActionLast}
}

// JumpTo moves to page n.
func JumpTo(n int) PageAction {
	return PageAction{Kind: ActionPage, Page: n}
}

// Target returns the page the action leads to from current, and false when
// the action is not possible (disabled control, no pages, or a page outside
// [1, pageCount]).
func (a PageAction) Target(current, pageCount int) (int, bool) {
	if pageCount <= 1 {
		return current, false
	}

	var target int
	switch a.Kind {
	case ActionPrev:
		target = current - 1
	case ActionNext:
		target = current + 1
	case ActionFirst:
		target = 1
	case ActionLast:
		target = pageCount
	case ActionPage:
		target = a.Page
	default:
		return current, false
	}

	if target < 1 || target > pageCount {
		return current, false
	}
	return target, true
}

// String returns the wire form used by adapters: "prev", "next", "first",
// "last" or the page number.
func (a PageAction) String() string {
	switch a.Kind {
	case ActionPrev:
		return "prev"
	case ActionNext:
		return "next"
	case ActionFirst:
		return "first"
	case ActionLast:
		return "last"
	default:
		return strconv.Itoa(a.Page)
	}
}

// ParseAction parses the wire form produced by String.
func ParseAction(s string) (PageAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prev":
		return Prev(), nil
	case "next":
		return Next(), nil
	case "first":
		return First(), nil
	case "last":
		return Last(), nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return PageAction{}, fmt.Errorf("invalid page action %q", s)
	}
	return JumpTo(n), nil
}
