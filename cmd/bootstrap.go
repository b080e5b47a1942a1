/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/uppath-hq/apiserver/config"
	"github.com/uppath-hq/apiserver/internal/db"
)

// bootstrapCmd represents the bootstrap command. The server runs the
// same bootstrap at startup; this command exists for provisioning a
// database ahead of time.
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the database schema if absent",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
			os.Exit(1)
		}

		log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("connect failed: %w", err)
		}
		defer func() {
			_ = dbConn.Close()
		}()

		if err := db.NewSchemaManager(dbConn, log).EnsureSchema(cmd.Context()); err != nil {
			return fmt.Errorf("bootstrap failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
}
