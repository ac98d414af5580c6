package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"neuranest-explorer/internal/explorer/config"
	"neuranest-explorer/internal/explorer/dto"
	"neuranest-explorer/internal/explorer/filter"
	"neuranest-explorer/internal/explorer/repository"
	"neuranest-explorer/internal/explorer/service"
	"neuranest-explorer/pkg/common"
	"neuranest-explorer/pkg/logger"
	"neuranest-explorer/pkg/metrics"
)

var (
	configPath string

	category string
	stage    string
	search   string
	sortKey  string
	outPath  string

	country     string
	reportMonth string

	insightsLimit int
)

type app struct {
	cfg    *config.Config
	log    *logger.Logger
	client *repository.Client
}

func newApp() *app {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	client, err := repository.NewClient(cfg.Upstream, repository.StaticToken(cfg.Upstream.Token), appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize upstream client", logger.ErrorField(err))
	}
	return &app{cfg: cfg, log: appLogger, client: client}
}

func (a *app) filterQuery() url.Values {
	values := url.Values{}
	for field, v := range map[filter.Field]string{
		filter.FieldCategory: category,
		filter.FieldStage:    stage,
		filter.FieldSearch:   search,
		filter.FieldSort:     sortKey,
	} {
		if v != "" {
			values.Set(string(field), v)
		}
	}
	q := filter.FromValues(values).Query()
	q.Del(string(filter.FieldPage))
	q.Del(string(filter.FieldPageSize))
	return q
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Exports every topic matching the filters as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer func() { _ = a.log.Sync() }()

		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()

		n, err := repository.NewTopicRepository(a.client).ExportCSV(cmd.Context(), a.filterQuery(), f)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes to %s\n", n, outPath)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Uploads a bulk import file and waits for the job to settle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer func() { _ = a.log.Sync() }()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		tracker := service.NewJobTracker(repository.NewImportJobRepository(a.client), service.JobTrackerConfig{
			PollInterval:    a.cfg.Explorer.PollInterval,
			PollTimeout:     a.cfg.Explorer.PollTimeout,
			MaxPollFailures: a.cfg.Explorer.MaxPollFailures,
		}, a.log, nil)
		defer tracker.Stop()

		job, err := tracker.Submit(cmd.Context(), dto.ImportUpload{
			Filename:    filepath.Base(args[0]),
			Content:     f,
			Country:     country,
			ReportMonth: reportMonth,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Submitted job %s\n", job.ID)

		if err := tracker.Wait(cmd.Context()); err != nil {
			return fmt.Errorf("stopped tracking job %s: %w", job.ID, err)
		}
		for _, j := range tracker.Jobs() {
			if j.ID != job.ID {
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %s %s, %d rows imported\n", j.ID, j.Status, j.ImportedRows)
			if j.ErrorMessage != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Error: %s\n", *j.ErrorMessage)
			}
		}
		return nil
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Prints aggregated insights over the whole topic collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer func() { _ = a.log.Sync() }()

		snapshot := service.NewSnapshotService(repository.NewTopicRepository(a.client), service.SnapshotConfig{
			PageSize:    a.cfg.Explorer.SnapshotPageSize,
			Concurrency: a.cfg.Explorer.SnapshotConcurrency,
		}, a.log, metrics.New("explorer_cli"))
		if err := snapshot.Refresh(cmd.Context()); err != nil {
			return err
		}

		limit := insightsLimit
		if limit <= 0 {
			limit = a.cfg.Explorer.InsightsLimit
		}
		insights, err := snapshot.Insights(limit)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(dto.InsightsView{Summary: insights.Summary, FetchedAt: insights.FetchedAt})
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "explorer-cli",
		Short: "Command line access to the NeuraNest explorer",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-explorer.yaml", "Path to the configuration file")

	exportCmd.Flags().StringVar(&category, "category", "", "Category filter")
	exportCmd.Flags().StringVar(&stage, "stage", "", "Lifecycle stage filter")
	exportCmd.Flags().StringVar(&search, "search", "", "Free-text search")
	exportCmd.Flags().StringVar(&sortKey, "sort", "", "Sort key")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", common.ExportFilename, "Output file")

	importCmd.Flags().StringVar(&country, "country", "", "Marketplace country")
	importCmd.Flags().StringVar(&reportMonth, "report-month", "", "Report month, YYYY-MM")

	insightsCmd.Flags().IntVar(&insightsLimit, "limit", 0, "Size of the ranked lists")

	rootCmd.AddCommand(exportCmd, importCmd, insightsCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing explorer-cli: %s\n", err)
		os.Exit(1)
	}
}
