package serp

// Extractor turns a rendered result page into a PageOutcome.
type Extractor interface {
	// Extract applies rule to html. Missing elements yield an empty
	// outcome, never an error; an error is returned only if the document
	// cannot be parsed.
	Extract(html string, rule ExtractionRule) (*PageOutcome, error)
}
