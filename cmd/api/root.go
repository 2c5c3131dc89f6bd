package main

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/incident-intake/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "incident-intake",
	Short:         "incident-intake receives case webhooks and normalizes them into incidents",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the long-running server that stores incidents and lists them",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(config.TargetServer)
	},
}

var functionCmd = &cobra.Command{
	Use:   "function",
	Short: "Run the stateless webhook endpoint that echoes normalized incidents",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(config.TargetFunction)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, functionCmd)
}
