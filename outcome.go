package serp

// ResultItem is one search result as it appears on the result page.
type ResultItem struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// PageOutcome is the result of extracting one rendered page.
// When Blocked or NoResults is set, Items is empty.
type PageOutcome struct {
	Items     []ResultItem
	Blocked   bool
	NoResults bool
}

// Fold merges the outcome of the next page into the accumulated outcome.
//
// A blocked page marks the merged outcome blocked and contributes nothing,
// but items accumulated from earlier pages are kept. A block page is not a
// no-results page, so it clears NoResults. A no-results page sets NoResults
// and leaves the items alone. Otherwise the page's items are appended in
// order. Flags are carried over unchanged, except that the first page
// yielding items clears NoResults: sessions start from
// PageOutcome{NoResults: true}.
func Fold(acc, next PageOutcome) PageOutcome {
	switch {
	case next.Blocked:
		acc.Blocked = true
		acc.NoResults = false
	case next.NoResults:
		acc.NoResults = true
	default:
		if len(next.Items) > 0 {
			items := make([]ResultItem, 0, len(acc.Items)+len(next.Items))
			items = append(items, acc.Items...)
			acc.Items = append(items, next.Items...)
			acc.NoResults = false
		}
	}
	return acc
}
