package main

import (
	"fmt"
	"os"

	"github.com/abduss/blogd/internal/config"
	"github.com/abduss/blogd/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "blogd",
	Short: "Blog API with managed image variants",
	Long: "blogd serves the blog HTTP API and keeps the original, resized and thumbnail\n" +
		"variants of every uploaded image consistent on disk.",
	SilenceUsage:       true,
	PersistentPreRunE:  initialize,
	PersistentPostRunE: flushLogs,
	RunE:               runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(variantsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initialize(cmd *cobra.Command, args []string) error {
	// a missing .env is fine; the environment may already be populated
	_ = godotenv.Load()

	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = loaded

	log, err = logger.Init(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}

func flushLogs(cmd *cobra.Command, args []string) error {
	if log != nil {
		_ = log.Sync()
	}
	return nil
}
