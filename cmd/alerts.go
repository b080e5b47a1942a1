/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/uppath-hq/apiserver/config"
	"github.com/uppath-hq/apiserver/internal/db"
	"github.com/uppath-hq/apiserver/internal/mq"
	"github.com/uppath-hq/apiserver/internal/services"
	"github.com/uppath-hq/apiserver/internal/store"
)

// alertsCmd represents the alerts command.
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Publish low-motivation alerts for every company",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
			os.Exit(1)
		}

		log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

		broker, err := mq.NewFromConfig(cmd.Context(), cfg.MQ)
		if err != nil {
			return fmt.Errorf("broker connect failed: %w", err)
		}
		if broker == nil {
			return errors.New("MQ_BACKEND is required for alerts")
		}
		defer func() {
			_ = broker.Close()
		}()

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("connect failed: %w", err)
		}
		defer func() {
			_ = dbConn.Close()
		}()

		allocator := store.NewIDAllocator(log)
		companyService := services.NewCompanyService(store.NewCompanyRepository(dbConn, allocator, log))
		dashboardService := services.NewDashboardService(store.NewDashboardRepository(dbConn))

		publisher := services.NewAlertPublisher(companyService, dashboardService, broker, log)
		published, err := publisher.PublishAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("alert publish failed: %w", err)
		}
		fmt.Printf("published %d alerts\n", published)
		return nil
	},
}

// alertsListenCmd consumes the alert channel and logs each alert. It
// runs until interrupted or the broker connection drops.
var alertsListenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Consume low-motivation alerts and log them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
			os.Exit(1)
		}

		log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

		broker, err := mq.NewFromConfig(cmd.Context(), cfg.MQ)
		if err != nil {
			return fmt.Errorf("broker connect failed: %w", err)
		}
		if broker == nil {
			return errors.New("MQ_BACKEND is required for alerts")
		}
		defer func() {
			_ = broker.Close()
		}()

		log.Info("listening for alerts", "channel", services.AlertChannel)
		return broker.Subscribe(cmd.Context(), services.AlertChannel, services.LogAlerts(log))
	},
}

func init() {
	alertsCmd.AddCommand(alertsListenCmd)
	rootCmd.AddCommand(alertsCmd)
}
