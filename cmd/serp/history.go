package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/serp"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := serp.ReportFilter{Limit: c.Limit}
	if c.Engine != "" {
		engine, err := serp.ParseEngine(c.Engine)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s. Use 'serp engines' to see supported engines.\n", serp.ErrorMessage(err))
			return err
		}
		filter.Engine = &engine
	}
	if query := strings.TrimSpace(c.Query); query != "" {
		filter.Query = &query
	}
	if c.Blocked {
		blocked := true
		filter.Blocked = &blocked
	}

	reports, err := deps.Reports.FindReports(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serp.ErrorMessage(err))
		return err
	}

	if len(reports) == 0 {
		fmt.Fprintln(deps.Stdout, "No reports found. Use 'serp search' to run one.")
		return nil
	}

	for _, r := range reports {
		fmt.Fprintf(deps.Stdout, "%s  %s  %-10s  %3d results  %s%s\n",
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Engine,
			len(r.Items),
			r.Query,
			statusSuffix(r),
		)
	}
	return nil
}

// statusSuffix marks blocked and empty sessions in listings.
func statusSuffix(r *serp.SessionReport) string {
	switch {
	case r.Blocked:
		return "  [blocked]"
	case r.NoResults:
		return "  [no results]"
	default:
		return ""
	}
}

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	report, err := deps.Reports.FindReportByID(deps.Ctx, c.ID)
	if err != nil {
		if serp.ErrorCode(err) == serp.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: report %q not found. Use 'serp history' to see stored reports.\n", c.ID)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", serp.ErrorMessage(err))
		}
		return err
	}

	if c.JSON {
		return writeJSON(deps, report)
	}

	fmt.Fprint(deps.Stdout, serp.FormatReport(report))
	return nil
}

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return serp.Errorf(serp.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Reports.DeleteReport(deps.Ctx, c.ID); err != nil {
		if serp.ErrorCode(err) == serp.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: report %q not found. Use 'serp history' to see stored reports.\n", c.ID)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", serp.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted report %s\n", c.ID)
	return nil
}
