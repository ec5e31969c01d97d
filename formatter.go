package serp

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatItems formats result items as a numbered list, one title line
// followed by an indented link line per item.
func FormatItems(items []ResultItem) string {
	if len(items) == 0 {
		return ""
	}

	parts := make([]string, 0, len(items))
	for i, item := range items {
		parts = append(parts, strconv.Itoa(i+1)+". "+item.Title+"\n   "+item.Link)
	}

	return strings.Join(parts, "\n")
}

// FormatReport formats a session report for display.
// Flags and diagnostics are only shown when set.
func FormatReport(r *SessionReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %q: %d results", r.Engine, r.Query, len(r.Items))
	if r.Pages > 1 {
		fmt.Fprintf(&b, " from %d pages", r.Pages)
	}
	b.WriteString("\n")
	if r.Blocked {
		b.WriteString("blocked: true\n")
	}
	if r.NoResults {
		b.WriteString("no results: true\n")
	}
	if r.DiagnosticLog != "" {
		b.WriteString("log: ")
		b.WriteString(r.DiagnosticLog)
		b.WriteString("\n")
	}
	if items := FormatItems(r.Items); items != "" {
		b.WriteString("\n")
		b.WriteString(items)
		b.WriteString("\n")
	}
	return b.String()
}
