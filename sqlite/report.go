package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/serp"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ serp.ReportService = (*ReportService)(nil)

// ReportService implements serp.ReportService using SQLite.
type ReportService struct {
	db *DB
}

// NewReportService creates a new ReportService.
func NewReportService(db *DB) *ReportService {
	return &ReportService{db: db}
}

// hashItems computes an xxHash over the ordered items and returns it as
// hex. Two sessions that returned the same results share a hash.
func hashItems(items []serp.ResultItem) string {
	d := xxhash.New()
	for _, item := range items {
		_, _ = d.WriteString(item.Title)
		_, _ = d.WriteString("\t")
		_, _ = d.WriteString(item.Link)
		_, _ = d.WriteString("\n")
	}
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, d.Sum64())
	return hex.EncodeToString(b)
}

// CreateReport stores a report and its items in one transaction. It assigns
// the report ID and content hash, and sets StartedAt if it is zero.
func (s *ReportService) CreateReport(ctx context.Context, report *serp.SessionReport) error {
	if err := report.Validate(); err != nil {
		return err
	}

	report.ID = uuid.New().String()
	report.ContentHash = hashItems(report.Items)
	if report.StartedAt.IsZero() {
		report.StartedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO reports (id, engine, query, user_agent, blocked, no_results, diagnostic_log, pages, content_hash, started_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, report.ID, string(report.Engine), report.Query, report.UserAgent,
		boolToInt(report.Blocked), boolToInt(report.NoResults), report.DiagnosticLog,
		report.Pages, report.ContentHash, formatTime(report.StartedAt), int64(report.Duration)); err != nil {
		return err
	}

	for i, item := range report.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO report_items (report_id, position, title, link)
			VALUES (?, ?, ?, ?)
		`, report.ID, i, item.Title, item.Link); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const reportColumns = "id, engine, query, user_agent, blocked, no_results, diagnostic_log, pages, content_hash, started_at, duration_ns"

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*serp.SessionReport, error) {
	var r serp.SessionReport
	var engine, startedAt string
	var blocked, noResults int
	var durationNS int64

	if err := row.Scan(&r.ID, &engine, &r.Query, &r.UserAgent, &blocked, &noResults,
		&r.DiagnosticLog, &r.Pages, &r.ContentHash, &startedAt, &durationNS); err != nil {
		return nil, err
	}

	var err error
	if r.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
		return nil, err
	}
	r.Engine = serp.Engine(engine)
	r.Blocked = blocked != 0
	r.NoResults = noResults != 0
	r.Duration = time.Duration(durationNS)
	r.Items = []serp.ResultItem{}

	return &r, nil
}

// FindReportByID retrieves a report and its items by ID.
func (s *ReportService) FindReportByID(ctx context.Context, id string) (*serp.SessionReport, error) {
	report, err := scanReport(s.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, serp.Errorf(serp.ENOTFOUND, "report not found")
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachItems(ctx, []*serp.SessionReport{report}); err != nil {
		return nil, err
	}
	return report, nil
}

// FindReports retrieves reports matching the filter, newest first.
func (s *ReportService) FindReports(ctx context.Context, filter serp.ReportFilter) ([]*serp.SessionReport, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + reportColumns + " FROM reports WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Engine != nil {
		query.WriteString(" AND engine = ?")
		args = append(args, string(*filter.Engine))
	}
	if filter.Query != nil {
		query.WriteString(" AND query = ?")
		args = append(args, *filter.Query)
	}
	if filter.Blocked != nil {
		query.WriteString(" AND blocked = ?")
		args = append(args, boolToInt(*filter.Blocked))
	}

	query.WriteString(" ORDER BY started_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*serp.SessionReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Release the single connection before loading items.
	rows.Close()

	if err := s.attachItems(ctx, reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// attachItems loads the items of every report in one query.
func (s *ReportService) attachItems(ctx context.Context, reports []*serp.SessionReport) error {
	if len(reports) == 0 {
		return nil
	}

	byID := make(map[string]*serp.SessionReport, len(reports))
	placeholders := make([]string, len(reports))
	args := make([]any, len(reports))
	for i, r := range reports {
		byID[r.ID] = r
		placeholders[i] = "?"
		args[i] = r.ID
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT report_id, title, link FROM report_items
		WHERE report_id IN (%s)
		ORDER BY report_id, position
	`, strings.Join(placeholders, ", ")), args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var item serp.ResultItem
		if err := rows.Scan(&id, &item.Title, &item.Link); err != nil {
			return err
		}
		if r, ok := byID[id]; ok {
			r.Items = append(r.Items, item)
		}
	}
	return rows.Err()
}

// DeleteReport permanently removes a report and its items.
func (s *ReportService) DeleteReport(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return serp.Errorf(serp.ENOTFOUND, "report not found")
	}

	return nil
}
