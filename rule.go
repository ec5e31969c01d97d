package serp

import "strings"

// Locator identifies elements in a rendered page by tag name and either a
// class name or an element ID. Empty fields match anything.
//
// When Child is set the locator resolves to the first element matching Child
// inside each element matched by the outer locator.
type Locator struct {
	Tag   string
	Class string
	ID    string
	Child *Locator
}

// Selector returns the CSS selector for the locator. Child locators are
// joined with a descendant combinator.
func (l Locator) Selector() string {
	var b strings.Builder
	b.WriteString(l.Tag)
	if l.ID != "" {
		b.WriteString("#")
		b.WriteString(l.ID)
	}
	if l.Class != "" {
		b.WriteString(".")
		b.WriteString(l.Class)
	}
	if b.Len() == 0 {
		b.WriteString("*")
	}
	if l.Child != nil {
		b.WriteString(" ")
		b.WriteString(l.Child.Selector())
	}
	return b.String()
}

// Outer returns the locator without its Child.
func (l Locator) Outer() Locator {
	l.Child = nil
	return l
}

// MarkerState is the condition under which a pre-check fires.
type MarkerState int

// Marker states.
const (
	MarkerPresent MarkerState = iota
	MarkerAbsent
)

// Classification is the outcome a pre-check assigns to a page.
type Classification int

// Page classifications produced by pre-checks.
const (
	ClassBlocked Classification = iota + 1
	ClassNoResults
)

// PreCheck classifies a page as blocked or empty before extraction, based
// on the presence or absence of a marker element.
type PreCheck struct {
	Marker  Locator
	When    MarkerState
	Outcome Classification
}

// ExtractionRule describes how result items are located on one engine's
// result page.
type ExtractionRule struct {
	// Title locates the elements whose text is a result title.
	Title Locator

	// Link locates the elements whose text is a result link.
	Link Locator

	// LinkExclude, if set, drops link elements that contain a matching
	// descendant (sponsored entries).
	LinkExclude *Locator

	// Checks run in order before extraction. The first one that fires
	// decides the page outcome and extraction is skipped.
	Checks []PreCheck
}

// PaginationRule describes the next-page control of an engine.
// A nil Next means the engine is treated as single-page.
type PaginationRule struct {
	Next *Locator
}

// Paginates reports whether the rule declares a next-page control.
func (r PaginationRule) Paginates() bool {
	return r.Next != nil
}
