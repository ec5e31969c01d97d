// Package fs provides file-based export of session reports.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/fwojciec/serp"
)

// Ensure ReportStore implements serp.ReportWriter at compile time.
var _ serp.ReportWriter = (*ReportStore)(nil)

// maxSlugLen bounds the query part of a report file name.
const maxSlugLen = 60

// ReportStore implements serp.ReportWriter with atomic update semantics.
// Reports are saved to a temporary directory, then moved atomically on
// Commit. ReportStore is safe for concurrent use.
type ReportStore struct {
	baseDir string
	name    string

	mu   sync.Mutex
	used map[string]int
}

// NewReportStore creates a new ReportStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewReportStore(baseDir, name string) *ReportStore {
	return &ReportStore{
		baseDir: baseDir,
		name:    name,
		used:    make(map[string]int),
	}
}

func (s *ReportStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *ReportStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes report as indented JSON to engine/slug.json inside the
// temporary directory. Reports with the same engine and query get numbered
// suffixes.
func (s *ReportStore) Save(ctx context.Context, report *serp.SessionReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := report.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	fullPath := filepath.Join(s.tempDir(), s.reservePath(report))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, append(data, '\n'), 0644)
}

// reservePath returns a relative path for report that no earlier Save on
// this store has used.
func (s *ReportStore) reservePath(report *serp.SessionReport) string {
	base := ReportPath(report)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.used[base]++
	n := s.used[base]
	if n == 1 {
		return base
	}
	return strings.TrimSuffix(base, ".json") + fmt.Sprintf("-%d.json", n)
}

// Commit replaces the output directory with the saved reports.
func (s *ReportStore) Commit() error {
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards the saved reports.
func (s *ReportStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}

// ReportPath returns the relative file path for a report.
// Example: google, "Go Rust?" → google/go-rust.json
func ReportPath(report *serp.SessionReport) string {
	return filepath.Join(string(report.Engine), Slug(report.Query)+".json")
}

// Slug reduces a query to lowercase letters and digits joined by single
// hyphens. Returns "query" if nothing is left.
func Slug(query string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(query) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	slug := b.String()
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(truncateRunes(slug, maxSlugLen), "-")
	}
	if slug == "" {
		return "query"
	}
	return slug
}

// truncateRunes cuts s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := 0
	for i := range s {
		if i > n {
			break
		}
		cut = i
	}
	return s[:cut]
}
