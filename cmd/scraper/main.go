package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"busboard/internal/config"
	"busboard/internal/logging"
	"busboard/internal/scraper/workers"
	"busboard/internal/storage"
	"busboard/pkg/models"
	"busboard/pkg/utils"
)

const dateLayout = "02-Jan-2006"

var (
	configPath   string
	workerCount  int
	serviceCount int
	travelDate   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scraper",
		Short: "Scrape bus listings and persist them",
		Long: `Scrapes bus-service listings for the first N service cards on the
configured booking site, normalizes them into typed records and replaces the
configured database table with the result.`,
		RunE: run,
	}

	rootCmd.Flags().StringVar(&configPath, "config", "configs/config.yaml", "path to the configuration file")
	rootCmd.Flags().IntVar(&workerCount, "workers", 0, "worker pool size (overrides configuration)")
	rootCmd.Flags().IntVar(&serviceCount, "services", 1, "number of service cards to scrape")
	rootCmd.Flags().StringVar(&travelDate, "date", "", "travel date as DD-Mon-YYYY (default tomorrow)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if workerCount > 0 {
		cfg.Workers.PoolSize = workerCount
	}

	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()
	logger := logging.GetGlobalLogger()

	date := utils.Tomorrow()
	if travelDate != "" {
		date, err = time.Parse(dateLayout, travelDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q, expected DD-Mon-YYYY: %w", travelDate, err)
		}
	}

	logger.Info("Starting scrape", map[string]interface{}{
		"services": serviceCount,
		"workers":  cfg.Workers.PoolSize,
		"date":     date.Format(dateLayout),
	})

	pool := workers.NewPool(cfg)
	summary, err := pool.Run(context.Background(), serviceCount, date)
	if err != nil {
		return err
	}

	store, err := storage.NewStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	if err := store.Replace(context.Background(), cfg.Database.Table, summary.Records); err != nil {
		return fmt.Errorf("failed to persist records: %w", err)
	}

	printSummary(summary, serviceCount)

	if len(summary.Failures) == serviceCount {
		return fmt.Errorf("all %d scrape jobs failed", serviceCount)
	}
	return nil
}

// printSummary renders a per-job status table plus totals.
func printSummary(summary *models.ScrapeSummary, serviceCount int) {
	failed := make(map[int]models.JobFailure, len(summary.Failures))
	for _, f := range summary.Failures {
		failed[f.ServiceIndex] = f
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Service", "Status", "Detail"})
	for index := 1; index <= serviceCount; index++ {
		if f, ok := failed[index]; ok {
			t.AppendRow(table.Row{index, "FAILED", f.Error})
			continue
		}
		t.AppendRow(table.Row{index, "OK", ""})
	}
	t.AppendFooter(table.Row{"", "Records", len(summary.Records)})
	t.AppendFooter(table.Row{"", "Elapsed", utils.FormatDuration(summary.Elapsed)})
	t.Render()
}
