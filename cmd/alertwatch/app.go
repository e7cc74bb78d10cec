package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"dental-shop/internal/alerts"
	"dental-shop/internal/models"
	"dental-shop/internal/worker"
)

var errUsage = errors.New("invalid arguments, run alertwatch -h for usage")

type app struct {
	reconciler   *alerts.Reconciler
	out          io.Writer
	pollInterval time.Duration
}

func (a *app) run(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "watch":
		return a.watch(ctx)
	case "restore":
		if err := a.reconciler.RestoreDismissed(ctx); err != nil {
			return err
		}
		return a.print()
	case "clear-dismissed":
		return a.reconciler.ClearDismissed()
	}

	if err := a.reconciler.Refresh(ctx); err != nil {
		return err
	}

	switch cmd {
	case "list":
		return a.print()
	case "read", "dismiss":
		if len(rest) != 1 {
			return errUsage
		}
		if cmd == "read" {
			return a.reconciler.MarkRead(rest[0])
		}
		return a.reconciler.Dismiss(rest[0])
	case "read-all":
		return a.reconciler.MarkAllRead()
	}
	return errUsage
}

func (a *app) watch(ctx context.Context) error {
	poller := worker.NewAlertPoller(a.reconciler, a.pollInterval, func(err error) {
		if err != nil {
			fmt.Fprintf(a.out, "refresh failed, showing last known alerts: %v\n", err)
		}
		_ = a.print()
	})

	err := poller.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *app) print() error {
	list := a.reconciler.Alerts()
	fmt.Fprintf(a.out, "%d alerts, %d unread\n", len(list), a.reconciler.UnreadCount())
	if len(list) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSEVERITY\tTYPE\tREAD\tMESSAGE")
	for _, al := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", al.ID, al.Severity, al.Type.Label(), readMark(al), al.Message)
	}
	return w.Flush()
}

func readMark(a models.Alert) string {
	if a.IsRead {
		return "yes"
	}
	return "no"
}
