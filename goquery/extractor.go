// Package goquery implements result extraction from rendered search
// engine pages using goquery and cascadia selectors.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/serp"
)

// Ensure Extractor implements serp.Extractor at compile time.
var _ serp.Extractor = (*Extractor)(nil)

// Extractor extracts result items from rendered HTML using an
// ExtractionRule. Selectors of the engine catalog are compiled once at
// construction; selectors of other rules are compiled per call.
//
// Extractor is safe for concurrent use by multiple goroutines.
type Extractor struct {
	matchers map[string]cascadia.Selector
}

// NewExtractor creates an Extractor with the selectors of every catalog
// engine precompiled.
func NewExtractor() *Extractor {
	e := &Extractor{matchers: make(map[string]cascadia.Selector)}
	for _, id := range serp.Engines() {
		d, err := serp.LookupEngine(id)
		if err != nil {
			continue
		}
		for _, sel := range ruleSelectors(d.Extraction) {
			if _, ok := e.matchers[sel]; ok {
				continue
			}
			e.matchers[sel] = cascadia.MustCompile(sel)
		}
	}
	return e
}

// Extract applies rule to html.
//
// Pre-checks run first; the first one that fires returns a blocked or
// no-results outcome without extracting anything. Otherwise titles and links
// are collected independently in document order and paired by position.
// Unpaired titles or links are dropped.
func (e *Extractor) Extract(html string, rule serp.ExtractionRule) (*serp.PageOutcome, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, serp.Errorf(serp.EINVALID, "failed to parse HTML: %v", err)
	}

	for _, check := range rule.Checks {
		m, err := e.matcher(check.Marker.Selector())
		if err != nil {
			return nil, err
		}
		present := doc.FindMatcher(m).Length() > 0
		if present != (check.When == serp.MarkerPresent) {
			continue
		}
		switch check.Outcome {
		case serp.ClassBlocked:
			return &serp.PageOutcome{Blocked: true}, nil
		case serp.ClassNoResults:
			return &serp.PageOutcome{NoResults: true}, nil
		}
	}

	titles, err := e.texts(doc.Selection, rule.Title, nil)
	if err != nil {
		return nil, err
	}
	links, err := e.texts(doc.Selection, rule.Link, rule.LinkExclude)
	if err != nil {
		return nil, err
	}

	n := min(len(titles), len(links))
	items := make([]serp.ResultItem, n)
	for i := range n {
		items[i] = serp.ResultItem{Title: titles[i], Link: links[i]}
	}

	return &serp.PageOutcome{Items: items}, nil
}

// texts returns the trimmed text of every element located by loc, in
// document order. Elements containing a match for exclude are skipped, as
// are elements that lack the locator's Child.
func (e *Extractor) texts(root *goquery.Selection, loc serp.Locator, exclude *serp.Locator) ([]string, error) {
	outer, err := e.matcher(loc.Outer().Selector())
	if err != nil {
		return nil, err
	}

	var excludeMatcher cascadia.Selector
	if exclude != nil {
		if excludeMatcher, err = e.matcher(exclude.Selector()); err != nil {
			return nil, err
		}
	}

	var out []string
	var walkErr error
	root.FindMatcher(outer).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if excludeMatcher != nil && sel.FindMatcher(excludeMatcher).Length() > 0 {
			return true
		}
		target, err := e.descend(sel, loc.Child)
		if err != nil {
			walkErr = err
			return false
		}
		if target == nil {
			return true
		}
		out = append(out, strings.TrimSpace(target.Text()))
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return out, nil
}

// descend follows a chain of child locators from sel, taking the first
// match at each level. Returns nil if a level has no match.
func (e *Extractor) descend(sel *goquery.Selection, child *serp.Locator) (*goquery.Selection, error) {
	for child != nil {
		m, err := e.matcher(child.Outer().Selector())
		if err != nil {
			return nil, err
		}
		sel = sel.FindMatcher(m).First()
		if sel.Length() == 0 {
			return nil, nil
		}
		child = child.Child
	}
	return sel, nil
}

// matcher returns the compiled selector, compiling it if it is not part
// of the catalog.
func (e *Extractor) matcher(sel string) (cascadia.Selector, error) {
	if m, ok := e.matchers[sel]; ok {
		return m, nil
	}
	m, err := cascadia.Compile(sel)
	if err != nil {
		return nil, serp.Errorf(serp.EINVALID, "invalid selector %q: %v", sel, err)
	}
	return m, nil
}

// ruleSelectors lists every selector an extraction rule can evaluate.
func ruleSelectors(rule serp.ExtractionRule) []string {
	var sels []string
	addChain := func(loc *serp.Locator) {
		for loc != nil {
			sels = append(sels, loc.Outer().Selector())
			loc = loc.Child
		}
	}
	addChain(&rule.Title)
	addChain(&rule.Link)
	if rule.LinkExclude != nil {
		sels = append(sels, rule.LinkExclude.Selector())
	}
	for _, check := range rule.Checks {
		sels = append(sels, check.Marker.Selector())
	}
	return sels
}
