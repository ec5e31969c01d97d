package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/serp"
	"github.com/fwojciec/serp/fs"
	"github.com/fwojciec/serp/goquery"
	serphttp "github.com/fwojciec/serp/http"
	serpprom "github.com/fwojciec/serp/prometheus"
	"github.com/fwojciec/serp/rod"
	"github.com/fwojciec/serp/search"
	serpslog "github.com/fwojciec/serp/slog"
	"github.com/fwojciec/serp/sqlite"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run(); the --db flag overrides it.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Registry receives session metrics.
	Registry *prometheus.Registry

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:   defaultDBPath(),
		Registry: prometheus.NewRegistry(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var errs []error
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i].Close())
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		NewReportWriter: func(dir, name string) serp.ReportWriter {
			return fs.NewReportStore(dir, name)
		},
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("serp"),
		kong.Description("Scrape search engine result pages."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'serp --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	defer m.Close()

	logger, closer, err := NewLogger(LogConfig{File: cli.LogFile, Verbose: cli.Verbose}, stderr)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	if closer != nil {
		m.closers = append(m.closers, closer)
	}
	deps.Logger = logger
	deps.Extractor = serpslog.NewLoggingExtractor(goquery.NewExtractor(), logger)

	command := kongCtx.Command()
	if command == "engines" || command == "extract <engine> <file>" {
		return kongCtx.Run(deps)
	}

	if cli.DB != "" {
		m.DBPath = cli.DB
	}
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SERP_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	deps.Reports = serpslog.NewLoggingReportService(sqlite.NewReportService(m.DB), logger)

	var flags *BrowserFlags
	switch command {
	case "search <engine> <query>":
		flags = &cli.Search.Browser
	case "batch <file>":
		flags = &cli.Batch.Browser
	}
	if flags != nil {
		searcher, err := m.openSearcher(*flags, logger)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		deps.Searcher = searcher

		if cli.MetricsAddr != "" {
			srv := serveMetrics(cli.MetricsAddr, m.Registry, logger)
			m.closers = append(m.closers, srv)
		}
	}

	return kongCtx.Run(deps)
}

// openSearcher starts the browser and builds the decorated session stack.
func (m *Main) openSearcher(flags BrowserFlags, logger *slog.Logger) (serp.Searcher, error) {
	browser, err := openBrowser(flags)
	if err != nil {
		return nil, err
	}
	m.closers = append(m.closers, browser)

	var delays []time.Duration
	if flags.Retries > 0 {
		defaults := search.DefaultRetryDelays()
		for i := range flags.Retries {
			delays = append(delays, defaults[min(i, len(defaults)-1)])
		}
	}

	var searcher serp.Searcher = &search.Session{
		Browser:     rod.NewLoggingBrowser(browser, logger),
		Extractor:   serpslog.NewLoggingExtractor(goquery.NewExtractor(), logger),
		Navigator:   search.NewNavigator(),
		RetryDelays: delays,
		MaxPages:    flags.MaxPages,
		Logger:      logger,
	}
	searcher = serpprom.NewMetricsSearcher(searcher, serpprom.NewMetrics(m.Registry))
	searcher = serpslog.NewLoggingSearcher(searcher, logger)
	return searcher, nil
}

type closingBrowser interface {
	serp.Browser
	io.Closer
}

// openBrowser returns a plain HTTP browser for static mode and a Chrome
// browser otherwise.
func openBrowser(flags BrowserFlags) (closingBrowser, error) {
	if flags.Static {
		return serphttp.NewBrowser(
			serphttp.WithTimeout(flags.Timeout),
			serphttp.WithHeaders(flags.Header),
			serphttp.WithProxy(flags.Proxy),
		), nil
	}

	manager, err := rod.NewBrowserManager(
		rod.WithHeadless(flags.Headless),
		rod.WithNoSandbox(flags.NoSandbox),
		rod.WithProxy(flags.Proxy),
	)
	if err != nil {
		return nil, err
	}
	return rod.NewBrowser(manager,
		rod.WithSettleDelay(flags.Settle),
		rod.WithRenderTimeout(flags.Timeout),
		rod.WithStealth(flags.Stealth),
		rod.WithHeaders(flags.Header),
	), nil
}

// serveMetrics serves the registry on addr until the returned server is
// closed.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", serpprom.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	logger.Info("serving metrics", "addr", addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "err", err)
		}
	}()
	return srv
}

func defaultDBPath() string {
	if path := os.Getenv("SERP_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "serp.db"
	}
	dir := filepath.Join(home, ".serp")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "serp.db")
}
