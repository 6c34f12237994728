// Package main is the entry point for the interview simulator API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/interview-sim/backend/pkg/config"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "interview-sim",
	Short:         "Adaptive interview simulator API",
	Long:          "Generates resume-driven interview questions, scores answers with heuristics and reports feedback over HTTP and websocket.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (defaults to ./config.yaml)")
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}
