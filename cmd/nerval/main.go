package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/siherrmann/nerval"
	"github.com/siherrmann/nerval/core/pipeline"
	"github.com/siherrmann/nerval/helper"
	"github.com/siherrmann/nerval/model"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	logLevel    string
	useDatabase bool
)

var rootCmd = &cobra.Command{
	Use:           "nerval",
	Short:         "nerval - NER extraction, normalization and evaluation",
	Long:          `nerval extracts person, organization and location mentions from folders of documents, normalizes them and evaluates them against a gold standard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML pipeline configuration (defaults are used if empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&useDatabase, "db", false, "read documents from Postgres (NERVAL_DB_* environment)")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(auditCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (model.PipelineConfig, error) {
	if configPath == "" {
		return model.DefaultPipelineConfig(), nil
	}
	return model.LoadPipelineConfig(configPath)
}

// newNerval creates the facade over the data directory or the database
func newNerval(config model.PipelineConfig, dataDir string) (*nerval.Nerval, error) {
	var n *nerval.Nerval
	var err error
	if useDatabase {
		dbConfig, dbErr := helper.NewDatabaseConfiguration()
		if dbErr != nil {
			return nil, dbErr
		}
		n, err = nerval.NewNervalWithDatabase(config, dbConfig)
	} else {
		if dataDir == "" {
			return nil, fmt.Errorf("--data is required without --db")
		}
		n, err = nerval.NewNerval(config, pipeline.NewFileDocumentSource(dataDir))
	}
	if err != nil {
		return nil, err
	}
	n.SetLogger(helper.NewLogger(helper.ParseLevel(logLevel)))
	return n, nil
}

func logger() *slog.Logger {
	return helper.NewLogger(helper.ParseLevel(logLevel))
}
