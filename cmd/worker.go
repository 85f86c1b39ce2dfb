package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/stagiaire-management/internal/core/events"
	"github.com/frahmantamala/stagiaire-management/internal/webhook"
	"github.com/frahmantamala/stagiaire-management/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start worker pools",
	Long:  `Start and manage the background worker pools, such as webhook delivery.`,
}

var webhookWorkerCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Start the webhook delivery worker pool",
	Long:  `Start the webhook worker pool, push one ping event through it and keep running until interrupted`,
	Run: func(cmd *cobra.Command, args []string) {
		startWebhookWorker()
	},
}

var (
	maxWorkers   int
	jobQueueSize int
	webhookURL   string
	webhookKey   string
)

func startWebhookWorker() {
	config, err := loadConfig(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logger.LoggerWrapper()

	// Use command line flags if provided, otherwise use config values
	webhookConfig := config.Webhook
	webhookConfig.URL = getStringFlag(webhookURL, webhookConfig.URL)
	webhookConfig.APIKey = getStringFlag(webhookKey, webhookConfig.APIKey)
	webhookConfig.MaxWorkers = getIntFlag(maxWorkers, webhookConfig.MaxWorkers)
	webhookConfig.JobQueueSize = getIntFlag(jobQueueSize, webhookConfig.JobQueueSize)

	if webhookConfig.URL == "" {
		fmt.Fprintln(os.Stderr, "A webhook url is required, set webhook.url or pass --url")
		os.Exit(1)
	}
	if err := webhookConfig.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid webhook config: %v\n", err)
		os.Exit(1)
	}

	logger.Info("starting webhook worker",
		"max_workers", webhookConfig.MaxWorkers,
		"job_queue_size", webhookConfig.JobQueueSize,
		"webhook_url", webhookConfig.URL)

	dispatcher := webhook.NewDispatcher(webhookConfig, logger)
	eventBus := events.NewEventBus(logger)
	dispatcher.Subscribe(eventBus)

	ping := events.NewDomainEvent(events.EventTypeUserUpdated, events.EntityUser, 0, 0, "webhook worker ping")
	if err := eventBus.Publish(context.Background(), ping); err != nil {
		logger.Error("failed to publish ping event", "error", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("webhook worker is running. Press Ctrl+C to stop.")

	// wait for shutdown signal
	sig := <-sigChan
	logger.Info("received signal, shutting down webhook worker", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	eventBus.Wait()
	if err := dispatcher.Shutdown(ctx); err != nil {
		logger.Warn("shutdown timeout reached, forcing exit", "error", err)
		return
	}

	stats := dispatcher.Stats()
	logger.Info("webhook worker pool shutdown complete",
		"delivered", stats.Delivered,
		"failed", stats.Failed,
		"dropped", stats.Dropped)
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	webhookWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	webhookWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	webhookWorkerCmd.Flags().StringVar(&webhookURL, "url", "", "Webhook receiver URL (overrides config)")
	webhookWorkerCmd.Flags().StringVar(&webhookKey, "api-key", "", "Webhook API key (overrides config)")

	workerCmd.AddCommand(webhookWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
