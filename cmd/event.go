package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/stagiaire-management/internal/core/events"
	"github.com/frahmantamala/stagiaire-management/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage events: publish test events, inspect handlers`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long:  `Publish a test domain event to the event bus for testing and debugging`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := publishTestEvent(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var (
	eventData     string
	eventEntityID int64
)

func publishTestEvent(eventType string) error {
	if !events.IsKnownEventType(eventType) {
		return fmt.Errorf("unknown event type %q, expected one of %v", eventType, events.AllEventTypes())
	}

	logger := logger.LoggerWrapper()
	eventBus := events.NewEventBus(logger)

	eventBus.SubscribeAll(func(ctx context.Context, event events.Event) error {
		logger.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	entity, _, _ := strings.Cut(eventType, ".")
	testEvent := events.NewDomainEvent(eventType, entity, eventEntityID, 0, eventData)

	logger.Info("publishing test event", "event_type", eventType, "event_id", testEvent.EventID())

	if err := eventBus.Publish(context.Background(), testEvent); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	eventBus.Wait()
	logger.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event summary")
	publishEventCmd.Flags().Int64Var(&eventEntityID, "entity-id", 0, "Entity id carried by the event")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
