// Package main is the entry point for the guild progression service
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	storeBackend string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "guild-progression",
	Short: "Guild progression and economy service",
	Long: `guild-progression tracks experience, levels, currencies, tasks and daily
activity counters for guild members. It runs the daily reset scheduler and
exposes admin commands against the configured store.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "store backend, redis or postgres (overrides STORE_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(countersCmd)
	rootCmd.AddCommand(repairCmd)
}

func setupLogging(level slog.Level) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
