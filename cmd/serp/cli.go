package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/serp"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Reports   serp.ReportService
	Searcher  serp.Searcher
	Extractor serp.Extractor

	// NewReportWriter opens an export destination for the batch command.
	NewReportWriter func(dir, name string) serp.ReportWriter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB          string `name:"db" env:"SERP_DB" help:"Path to the report database"`
	LogFile     string `name:"log-file" env:"SERP_LOG_FILE" help:"Write JSON logs to a rotating file instead of stderr"`
	Verbose     bool   `short:"v" help:"Enable debug logging"`
	MetricsAddr string `name:"metrics-addr" help:"Serve Prometheus metrics on this address (e.g. :9090)"`

	Search  SearchCmd  `cmd:"" help:"Search one engine for a query"`
	Batch   BatchCmd   `cmd:"" help:"Search many queries on many engines"`
	Engines EnginesCmd `cmd:"" help:"List supported search engines"`
	History HistoryCmd `cmd:"" help:"List stored session reports"`
	Show    ShowCmd    `cmd:"" help:"Show a stored session report"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a stored session report"`
	Extract ExtractCmd `cmd:"" help:"Extract results from a saved result page"`
}

// BrowserFlags configures the rendering browser.
type BrowserFlags struct {
	UserAgent string            `name:"user-agent" short:"u" env:"SERP_USER_AGENT" help:"User agent presented to the engine"`
	Settle    time.Duration     `default:"3s" help:"Time given to each page to finish rendering"`
	Timeout   time.Duration     `default:"30s" help:"Limit for rendering a single page"`
	MaxPages  int               `name:"max-pages" default:"0" help:"Stop paginating after this many pages (0 = no limit)"`
	Retries   int               `default:"0" help:"Retries for rendering the first page"`
	Stealth   bool              `default:"true" negatable:"" help:"Mask automation fingerprints"`
	Headless  bool              `default:"true" negatable:"" help:"Run the browser without a window"`
	NoSandbox bool              `name:"no-sandbox" help:"Disable the Chrome sandbox (containers)"`
	Proxy     string            `help:"Proxy URL for browser traffic"`
	Static    bool              `help:"Fetch pages over plain HTTP instead of driving Chrome"`
	Header    map[string]string `short:"H" help:"Extra request header as key=value (repeatable)"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Engine   string `arg:"" help:"Search engine (see 'serp engines')"`
	Query    string `arg:"" help:"Search query"`
	AllPages bool   `short:"a" name:"all-pages" help:"Follow pagination until the last page"`
	Omitted  bool   `help:"Include results the engine would omit as near-duplicates"`
	JSON     bool   `help:"Print the report as JSON"`

	Browser BrowserFlags `embed:""`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	File        string   `arg:"" type:"existingfile" help:"File with one query per line"`
	Engines     []string `short:"e" default:"google" help:"Engines to query (repeatable or comma-separated)"`
	Concurrency int      `short:"c" default:"4" help:"Concurrent sessions"`
	AllPages    bool     `short:"a" name:"all-pages" help:"Follow pagination until the last page"`
	Omitted     bool     `help:"Include results the engine would omit as near-duplicates"`
	Out         string   `short:"o" help:"Export reports as JSON files into this directory"`

	Browser BrowserFlags `embed:""`
}

// EnginesCmd is the "engines" subcommand.
type EnginesCmd struct{}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Engine  string `short:"e" help:"Only reports for this engine"`
	Query   string `short:"q" help:"Only reports for this exact query"`
	Blocked bool   `help:"Only blocked sessions"`
	Limit   int    `short:"n" default:"20" help:"Maximum number of reports"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID   string `arg:"" help:"Report ID"`
	JSON bool   `help:"Print the report as JSON"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Report ID"`
	Force bool   `help:"Confirm deletion"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	Engine string `arg:"" help:"Search engine whose rules apply"`
	File   string `arg:"" type:"existingfile" help:"Saved HTML result page"`
}
