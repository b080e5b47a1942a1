/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "uppath",
	Short: "UpPath backend server and tooling",
	Long: `UpPath records companies and their members and answers aggregate
dashboard questions over that data. Subcommands start the API server,
bootstrap the relational schema, and publish well-being alerts.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
