package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/linkmarkhq/linkmark/internal/auditor"
	"github.com/linkmarkhq/linkmark/internal/config"
	"github.com/linkmarkhq/linkmark/internal/logger"
	"github.com/linkmarkhq/linkmark/internal/store/sqlite"
	"github.com/linkmarkhq/linkmark/internal/utils"
)

// RunAudit checks every stored URL once and prints the broken ones. Exit
// status reflects the outcome so the command can drive cron alerts.
func RunAudit() error {
	cfg := config.Load()
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database at %s: %w", cfg.DatabasePath, err)
	}
	defer utils.MustClose(store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	urls, err := store.ListURLs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list urls: %w", err)
	}

	aud := auditor.New(cfg.LinkCheckTimeout, cfg.LinkCheckBatchSize, loggerClient)
	report := aud.Check(ctx, urls)

	fmt.Printf("checked %d urls, %d broken\n", report.Total, report.Broken)
	for _, b := range report.BrokenURLs {
		fmt.Printf("  %s (%s)\n", b.URL, b.Reason)
	}
	if report.Broken > 0 {
		return fmt.Errorf("%d broken links", report.Broken)
	}
	return nil
}
