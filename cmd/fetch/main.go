package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ssu-rag/internal/di"
	"ssu-rag/internal/infra"
	"ssu-rag/internal/infra/config"
)

var (
	sourceID string
	timeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "fetch",
	Short: "RSS ingestion CLI",
	Long: `fetch runs the RSS ingestion pipeline against the configured sources.

It shares configuration with the server (env vars), so it can be run from
cron or by hand against the same database.

Example usage:
  fetch run                    # Ingest all configured sources
  fetch run --source cs        # Ingest a single source
  fetch sources                # List configured sources`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, deduplicate, embed and store feed items",
	RunE:  runFetch,
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured feed sources",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sourcesCmd)

	runCmd.Flags().StringVar(&sourceID, "source", "", "ingest only the named source")
	runCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall ingestion timeout")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	pool, err := infra.NewPostgresDB(ctx, cfg.DB.DSN(), infra.PoolConfig{
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	defer pool.Close()

	components := di.NewApplicationComponents(cfg, pool, log)

	if sourceID != "" {
		for _, source := range components.Sources {
			if source.Identifier == sourceID {
				result, err := components.IngestUsecase.ExecuteSource(ctx, source)
				if err != nil {
					return err
				}
				return printJSON(result)
			}
		}
		return fmt.Errorf("unknown source: %s", sourceID)
	}

	summary, err := components.IngestUsecase.ExecuteAll(ctx)
	if err != nil {
		return err
	}
	return printJSON(summary)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if len(cfg.Feed.Sources) == 0 {
		fmt.Println("no sources configured (set RSS_SOURCES)")
		return nil
	}
	for _, source := range cfg.Feed.Sources {
		fmt.Printf("%s\t%s\n", source.Identifier, source.URL)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
