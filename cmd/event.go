package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/The-synnapse-Project/front-end-sub000/internal/core/events"
	"github.com/The-synnapse-Project/front-end-sub000/pkg/logger"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage change events: publish test events and inspect bus delivery`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test change event",
	Long:  `Publish a test change event to the in-process bus for debugging the relay wiring`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(args[0])
	},
}

var eventPersonID string

func publishTestEvent(eventType string) {
	lg := logger.L()

	bus := events.NewBus(lg)

	bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	testEvent := events.NewChange(eventType, "test-record", eventPersonID)

	lg.Info("publishing test event", "event_type", eventType, "event_id", testEvent.ID)

	bus.Publish(context.Background(), testEvent)

	time.Sleep(100 * time.Millisecond)
	lg.Info("test event published successfully")
}

func init() {
	publishEventCmd.Flags().StringVar(&eventPersonID, "person", "", "Person id carried in the event payload")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
