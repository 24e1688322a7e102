package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/ledger-dashboard/internal/bootstrap"
	"github.com/kirillkom/ledger-dashboard/internal/config"
	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
	"github.com/kirillkom/ledger-dashboard/internal/observability/logging"
	"github.com/kirillkom/ledger-dashboard/internal/presentation"
)

const service = "ledgerctl"

const usage = `usage: ledgerctl [flags] <command> [args]

commands:
  view                 fetch a snapshot and print the dashboard
  upload <path>        upload a local document and print the refreshed dashboard
  export <out.xlsx>    fetch a snapshot and write it as a workbook
  watch                print notices published by running dashboards (requires NATS_URL)

flags:
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "ledgerctl:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet(service, flag.ContinueOnError)
	fs.SetOutput(stderr)
	backend := fs.String("backend", "", "backend base URL (overrides BACKEND_URL)")
	timeout := fs.Duration("timeout", 2*time.Minute, "overall command timeout")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("command required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *backend != "" {
		cfg.BackendURL = *backend
	}
	slog.SetDefault(logging.NewLogger(stderr, service, cfg.LogLevel, "text"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, service)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer app.Close()

	command, rest := fs.Arg(0), fs.Args()[1:]
	if command == "watch" {
		return watch(ctx, app, stdout)
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	switch command {
	case "view":
		return view(ctx, app, stdout)
	case "upload":
		if len(rest) != 1 {
			return errors.New("upload needs exactly one file path")
		}
		return upload(ctx, app, rest[0], stdout)
	case "export":
		if len(rest) != 1 {
			return errors.New("export needs an output path")
		}
		return export(ctx, app, rest[0])
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// load runs the first fetch cycle and reports a failed fetch as an error.
func load(ctx context.Context, app *bootstrap.App) (presentation.View, error) {
	app.Dashboard.Initialize(ctx)
	v := app.View()
	if v.FetchError != "" {
		return v, fmt.Errorf("fetch dashboard data: %s", v.FetchError)
	}
	return v, nil
}

func view(ctx context.Context, app *bootstrap.App, stdout io.Writer) error {
	v, err := load(ctx, app)
	if err != nil {
		return err
	}
	return presentation.WriteText(stdout, v)
}

func upload(ctx context.Context, app *bootstrap.App, path string, stdout io.Writer) error {
	if _, err := load(ctx, app); err != nil {
		slog.Warn("initial_fetch_failed", "error", err)
	}

	file, err := app.Files.Stat(ctx, path)
	if err != nil {
		return err
	}
	if err := app.Dashboard.Select(file); err != nil {
		return err
	}
	outcome, err := app.Dashboard.Upload(ctx)
	fmt.Fprintf(stdout, "upload %s: %s\n", file.Name, outcome)
	if werr := presentation.WriteText(stdout, app.View()); werr != nil {
		return werr
	}
	return err
}

func export(ctx context.Context, app *bootstrap.App, out string) error {
	v, err := load(ctx, app)
	if err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := presentation.WriteXLSX(f, v); err != nil {
		_ = f.Close()
		return err
	}
	slog.Info("export_written", "path", out, "documents", len(v.Documents.Rows), "alerts", len(v.Alerts.Rows))
	return f.Close()
}

func watch(ctx context.Context, app *bootstrap.App, stdout io.Writer) error {
	if app.Queue == nil {
		return errors.New("watch requires NATS_URL")
	}
	err := app.Queue.SubscribeNotices(ctx, func(_ context.Context, n domain.Notice) error {
		_, err := fmt.Fprintf(stdout, "%s [%s] %s\n", n.CreatedAt.Format(time.RFC3339), n.Level, n.Message)
		return err
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
