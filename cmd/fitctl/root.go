package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "fitctl",
	Short: "fitctl administers a FitTrackR deployment",
	Long:  "fitctl is the operator CLI for FitTrackR: it seeds reference data (subscription plans, badges, the exercise library, shop products) into the configured MongoDB instance.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "Directory containing config.yaml")
}
