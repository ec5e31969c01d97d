// Package serp scrapes search engine result pages. It renders a query
// against one of several search engines in a browser, extracts the result
// titles and links from the rendered markup, follows pagination and reports
// the merged results together with blocked and no-results classifications.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, sqlite/).
package serp
