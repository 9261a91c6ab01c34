// Package main implements the jobsched service and its board CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "jobsched",
	Short:         "Job scheduling backend with kanban, week and calendar views",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var rootEnvFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&rootEnvFile, "env-file", "", "Load settings from this .env file before the environment")
}
