package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmehdipour/paynotify/cmd/worker"
)

var (
	cfgPath string
	rootCmd = &cobra.Command{
		Use:   "paynotify",
		Short: "Stripe payment notification service",
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file (defaults and env only when empty)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(worker.NewWorkerCmd())
}
