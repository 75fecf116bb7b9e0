package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "briefpress",
		Short: "briefpress - brief-to-pages deployment service",
		Long: `briefpress receives task briefs over HTTP, asks a generative model to
synthesize a single-page app, publishes the result to a hosting repository
with static pages enabled, and reports the URLs to an evaluation callback.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
