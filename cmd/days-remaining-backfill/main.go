package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mmdatafocus/drcm_backend/config"
	"github.com/mmdatafocus/drcm_backend/models"
	"github.com/sirupsen/logrus"
)

// Rewrites stale "Días restantes" cells of one department's pending records.
func main() {
	department := flag.String("department", "", "Required: department (Dependencia) to recompute")
	dryRun := flag.Bool("dry-run", false, "Print the changes without writing them")
	flag.Parse()

	if strings.TrimSpace(*department) == "" {
		fmt.Fprintln(os.Stderr, "--department is required")
		os.Exit(1)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid settings: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := models.NewServiceFromSettings(ctx, settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sheets: %v\n", err)
		os.Exit(1)
	}

	changes, err := svc.Reconciler.Recompute(ctx, *department, *dryRun)
	for _, ch := range changes {
		fmt.Printf("row=%d case=%s stored=%s computed=%s written=%t\n",
			ch.Row, ch.CaseNumber, formatDays(ch.Stored), formatDays(ch.Computed), ch.Written)
	}
	if err != nil {
		config.LogError(config.GetLogger(), "days-remaining-backfill", "main", "Recompute", *department, err)
		fmt.Fprintf(os.Stderr, "recompute failed after %d changes: %v\n", len(changes), err)
		os.Exit(1)
	}

	config.GetLogger().WithFields(logrus.Fields{
		"department": *department,
		"changes":    len(changes),
		"dry_run":    *dryRun,
	}).Info("days remaining backfill finished")
	if *dryRun {
		fmt.Printf("%d change(s), dry run: nothing written\n", len(changes))
		return
	}
	fmt.Printf("%d change(s) written\n", len(changes))
}

func formatDays(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprint(*n)
}
