package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/groblegark/gymwall/internal/events"
	"github.com/groblegark/gymwall/internal/ui"
)

// waitForInterrupt blocks until SIGINT.
func waitForInterrupt() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-ctx.Done()
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Tail wall activity from the event bus",
	Long: `Watch subscribes to the wall's event topics over NATS and prints each
event as it arrives, so a second terminal can follow comment and post
activity live. Requires GYMWALL_NATS_URL.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		if cfg.NATSURL == "" {
			return fmt.Errorf("watch requires GYMWALL_NATS_URL")
		}

		sub, err := events.NewNATSSubscriber(cfg.NATSURL,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				log.Printf("nats: disconnected: %v", err)
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				log.Printf("nats: reconnected")
			}),
		)
		if err != nil {
			return fmt.Errorf("connecting to NATS: %w", err)
		}
		defer sub.Close()

		ch, cancel, err := sub.Subscribe(topic)
		if err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
		defer cancel()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-ch:
				if !ok {
					return nil
				}
				printEvent(msg)
			}
		}
	},
}

// printEvent renders one bus message. The subject line disambiguates events
// when watching a wildcard topic.
func printEvent(msg events.Message) {
	if !jsonOutput {
		fmt.Println(ui.RenderAccent(msg.Topic))
		// Indent for humans when the payload is JSON.
		var buf bytes.Buffer
		if err := json.Indent(&buf, msg.Data, "", "  "); err == nil {
			fmt.Println(buf.String())
			return
		}
		fmt.Println(string(msg.Data))
		return
	}
	fmt.Printf(`{"topic":%q,"event":%s}`+"\n", msg.Topic, msg.Data)
}

func init() {
	watchCmd.Flags().String("topic", "wall.>", "subject filter to subscribe to")
}
