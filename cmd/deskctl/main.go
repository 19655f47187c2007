// Package main provides the CLI entry point for the desk, a terminal view of
// the ERP list pages.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/desk"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/records"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/views"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/config"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/erp"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/logger"
)

// Version information (populated at build time)
var (
	version   = "dev"
	buildTime = "unknown"
)

var errUsage = errors.New("usage")

// options are the parsed command line flags
type options struct {
	page     string
	filters  filterFlags
	search   string
	refresh  bool
	watch    bool
	interval time.Duration
	export   string
	options  string
	narrow   string
	pages    bool
	json     bool
	erpURL   string
	verbose  bool
	version  bool
}

// filterFlags collects repeated -filter key=value flags
type filterFlags map[string]string

func (f filterFlags) String() string {
	parts := make([]string, 0, len(f))
	for k, v := range f {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (f filterFlags) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("filter %q must be key=value", value)
	}
	f[key] = strings.TrimSpace(val)
	return nil
}

func newFlagSet(opts *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("deskctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts.filters = filterFlags{}

	// Page selection
	fs.StringVar(&opts.page, "page", "", "Page to list, e.g. crm/opportunities")
	fs.StringVar(&opts.page, "p", "", "Page to list (shorthand)")
	fs.Var(opts.filters, "filter", "Filter as key=value, repeatable")
	fs.Var(opts.filters, "f", "Filter as key=value (shorthand)")
	fs.StringVar(&opts.search, "q", "", "Search text applied to the loaded rows")
	fs.BoolVar(&opts.refresh, "refresh", false, "Ignore a recent load and fetch again")

	// Watch mode
	fs.BoolVar(&opts.watch, "watch", false, "Reload the page in the background until interrupted")
	fs.BoolVar(&opts.watch, "w", false, "Watch the page (shorthand)")
	fs.DurationVar(&opts.interval, "interval", 0, "Watch interval (default views.refresh_interval)")

	// Output
	fs.StringVar(&opts.export, "export", "", "Write the displayed rows to an .xlsx file or directory")
	fs.BoolVar(&opts.json, "json", false, "Print the listing as JSON")

	// Lookups
	fs.StringVar(&opts.options, "options", "", "Print the options of a module (accounting, assets, crm)")
	fs.StringVar(&opts.narrow, "narrow", "", "Narrow -options to one sub-module, e.g. leads")
	fs.BoolVar(&opts.pages, "pages", false, "List the available pages")
	fs.BoolVar(&opts.pages, "l", false, "List the available pages (shorthand)")

	// Utility
	fs.StringVar(&opts.erpURL, "erp", "", "ERP base URL (overrides erp.base_url)")
	fs.BoolVar(&opts.verbose, "verbose", false, "Log ERP requests to stderr")
	fs.BoolVar(&opts.verbose, "v", false, "Log ERP requests (shorthand)")
	fs.BoolVar(&opts.version, "version", false, "Show version information")

	fs.Usage = func() { printUsage(stderr) }
	return fs
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `deskctl - ERP desk in the terminal

USAGE:
    deskctl -page <module/resource> [options]
    deskctl -options <module> [-narrow <sub-module>]
    deskctl -pages

DESCRIPTION:
    Lists a desk page straight from the ERP server, with the same filters,
    search, summary and stale handling as the HTTP service. Settings are read
    from config.toml and DESK_ environment variables.

PAGE OPTIONS:
    -page, -p <name>        Page to list, e.g. crm/opportunities
    -filter, -f <k=v>       Filter sent upstream, repeatable ("all" clears it)
    -q <text>               Search the loaded rows
    -refresh                Fetch even when a recent load exists

WATCH OPTIONS:
    -watch, -w              Reload in the background until interrupted
    -interval <dur>         Reload interval (e.g. "15s")

OUTPUT OPTIONS:
    -export <path>          Write the rows to an .xlsx file, or into a directory
    -json                   Print JSON instead of a table

OTHER OPTIONS:
    -options <module>       Print the lookup lists of a module
    -narrow <name>          Narrow -options to one sub-module
    -pages, -l              List the available pages
    -erp <url>              ERP base URL
    -verbose, -v            Log ERP requests to stderr
    -version                Show version information

EXAMPLES:
    # Open opportunities mentioning "sheba"
    deskctl -page crm/opportunities -filter status=Open -q sheba

    # Keep the maintenance schedule on screen
    deskctl -page assets/maintenance -watch -interval 1m

    # Export payments to payments.xlsx in the current directory
    deskctl -page accounting/payments -export .

    # Lead sources and statuses
    deskctl -options crm -narrow leads
`)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "deskctl: %s\n", erp.UserMessage(err))
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options
	fs := newFlagSet(&opts, stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if opts.version {
		fmt.Fprintf(stdout, "deskctl %s (built %s)\n", version, buildTime)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.erpURL != "" {
		cfg.ERP.BaseURL = strings.TrimRight(opts.erpURL, "/")
	}
	if opts.interval <= 0 {
		opts.interval = cfg.Views.RefreshInterval
	}

	log := zap.NewNop()
	if opts.verbose {
		if log, err = logger.New(&logger.Config{Level: "debug", Format: "console", Output: "stderr"}); err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
	}

	d, err := newDesk(cfg, log, stderr)
	if err != nil {
		return err
	}

	switch {
	case opts.pages:
		return printPages(stdout, d)
	case opts.options != "":
		bundle, err := d.Options.Bundle(ctx, opts.options, opts.narrow)
		if err != nil {
			return err
		}
		return printOptions(stdout, bundle, opts.json)
	case opts.page == "":
		printUsage(stderr)
		return errUsage
	}

	page, ok := d.Page(opts.page)
	if !ok {
		return fmt.Errorf("unknown page %q, one of: %s", opts.page, strings.Join(d.Names(), ", "))
	}
	req := views.ListRequest{
		Filter:  listview.FilterFromWidget(opts.filters),
		Search:  opts.search,
		Refresh: opts.refresh,
	}

	if opts.export != "" {
		path, err := exportPage(ctx, page, req, opts.export)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %s\n", path)
		return nil
	}
	if opts.watch {
		return watch(ctx, page, req, opts.interval, stdout, opts.json)
	}

	listing, err := page.List(ctx, req)
	if err != nil {
		return err
	}
	return printListing(stdout, listing, opts.json)
}

// newDesk wires the desk for one-shot CLI use: no options cache, failures
// of background loads go to stderr.
func newDesk(cfg *config.Config, log *zap.Logger, stderr io.Writer) (*desk.Desk, error) {
	client, err := erp.NewClient(erp.Config{
		BaseURL:   cfg.ERP.BaseURL,
		APIKey:    cfg.ERP.APIKey,
		APISecret: cfg.ERP.APISecret,
		Timeout:   cfg.ERP.Timeout,
		UserAgent: "deskctl/" + version,
		RateLimit: cfg.ERP.RateLimit,
		RateBurst: cfg.ERP.RateBurst,
	},
		erp.WithRetryConfig(erp.RetryConfig{
			MaxRetries: cfg.ERP.MaxRetries,
			RetryDelay: cfg.ERP.RetryBackoff,
			MaxDelay:   cfg.ERP.MaxBackoff,
			Multiplier: erp.DefaultRetryConfig().Multiplier,
		}),
		erp.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	registry, err := views.NewRegistry(cfg.Views.MaxEntries, nil)
	if err != nil {
		return nil, err
	}
	notify := views.NotifierFunc(func(_ context.Context, page string, err error) {
		fmt.Fprintf(stderr, "warning: %s: %s\n", page, erp.UserMessage(err))
	})
	deps := records.Deps{
		Client:   client,
		Registry: registry,
		Logger:   log,
		Notifier: notify,
	}
	return desk.New(deps, records.NewOptionsService(client, nil, cfg.Cache.OptionsTTL, nil, log)), nil
}

// watch prints the page, then reloads it every interval until ctx ends.
// A failed reload keeps the previous rows on screen with the failure notice.
func watch(ctx context.Context, page desk.Page, req views.ListRequest, interval time.Duration, w io.Writer, asJSON bool) error {
	listing, err := page.List(ctx, req)
	if err != nil {
		return err
	}
	if err := printListing(w, listing, asJSON); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	req.Refresh = true
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		listing, err := page.List(ctx, req)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		if !asJSON {
			fmt.Fprintln(w)
		}
		if err := printListing(w, listing, asJSON); err != nil {
			return err
		}
	}
}
