package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"dental-shop/config"
	"dental-shop/internal/alerts"
	"dental-shop/internal/redisclient"
	"dental-shop/internal/util"
)

const usage = `Usage: alertwatch [-state=file|redis] <command> [id]

Commands:
  watch            poll alerts and print them on every refresh
  list             print the visible alerts
  read <id>        mark an alert as read
  dismiss <id>     dismiss an alert
  read-all         mark every alert as read
  restore          bring back dismissed alerts
  clear-dismissed  forget dismissed alerts
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code so deferred cleanup runs before exit
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("alertwatch", flag.ContinueOnError)
	flags.SetOutput(stderr)
	stateBackend := flags.String("state", "file", "where alert state is kept: file or redis")
	flags.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	cfg := config.Load()

	level := cfg.Server.LogLevel
	if level == "" {
		level = "warn"
	}
	if err := util.InitLogger(cfg.Server.Env, level); err != nil {
		fmt.Fprintln(stderr, "alertwatch: failed to initialize logger:", err)
		return 1
	}
	defer util.SyncLogger()

	store, closeStore, err := openStateStore(*stateBackend, cfg)
	if err != nil {
		fmt.Fprintln(stderr, "alertwatch: failed to open alert state:", err)
		return 1
	}
	defer closeStore()

	fetcher := alerts.NewHTTPFetcher(cfg.Client.APIBaseURL, cfg.Client.RequestTimeout)
	reconciler, err := alerts.NewReconciler(fetcher, store, util.Named("alertwatch"))
	if err != nil {
		fmt.Fprintln(stderr, "alertwatch: failed to load alert state:", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a := &app{
		reconciler:   reconciler,
		out:          stdout,
		pollInterval: cfg.Alerts.PollInterval,
	}
	if err := a.run(ctx, flags.Args()); err != nil {
		fmt.Fprintln(stderr, "alertwatch:", err)
		return 1
	}
	return 0
}

func openStateStore(backend string, cfg *config.Config) (alerts.StateStore, func(), error) {
	switch backend {
	case "file":
		return alerts.NewFileStore(cfg.Client.AlertStatePath, util.Named("alert-state")), func() {}, nil
	case "redis":
		client, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return client.AlertStateStore(cfg.Client.ClientID, util.Named("alert-state")), func() { client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown state backend %q", backend)
}
