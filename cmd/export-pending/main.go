package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mmdatafocus/drcm_backend/config"
	"github.com/mmdatafocus/drcm_backend/models"
)

// Writes the pending records of one department to an .xlsx file.
func main() {
	department := flag.String("department", "", "Required: department (Dependencia) to export")
	out := flag.String("out", "", "Output file (default pendientes-<department>.xlsx)")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall timeout")
	flag.Parse()

	if strings.TrimSpace(*department) == "" {
		fmt.Fprintln(os.Stderr, "--department is required")
		os.Exit(1)
	}
	if *out == "" {
		*out = fmt.Sprintf("pendientes-%s.xlsx", *department)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid settings: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	svc, err := models.NewServiceFromSettings(ctx, settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sheets: %v\n", err)
		os.Exit(1)
	}
	views, err := svc.PendingView(ctx, *department, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load pending records: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", *out, err)
		os.Exit(1)
	}
	if err := models.ExportPendingWorkbook(views, f); err != nil {
		_ = f.Close()
		fmt.Fprintf(os.Stderr, "write workbook: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("%d pending record(s) written to %s\n", len(views), *out)
}
