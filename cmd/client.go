package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/smazurov/ledcontroller/internal/bridge"
	"github.com/spf13/cobra"
)

const callTimeout = 10 * time.Second

// CreateAddCmd creates the add command.
func CreateAddCmd(settings *Settings) *cobra.Command {
	return controlCmd(settings, "add <name>", "Bridge a sysfs LED onto the bus",
		`Asks the running controller to publish /sys/class/leds/<name> as an LED object. `+
			`An LED without a sysfs directory is logged by the controller and ignored.`,
		(*bridge.Client).AddLED)
}

// CreateRemoveCmd creates the remove command.
func CreateRemoveCmd(settings *Settings) *cobra.Command {
	return controlCmd(settings, "remove <name>", "Remove a bridged LED from the bus",
		`Asks the running controller to unpublish the LED object bridged for <name>. `+
			`Removing an LED that is not bridged succeeds.`,
		(*bridge.Client).RemoveLED)
}

func controlCmd(settings *Settings, use, short, long string, call func(*bridge.Client, context.Context, string) error) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := bridge.Connect(settings.Bus)
			if err != nil {
				return fmt.Errorf("failed to connect to %s bus: %w", settings.Bus, err)
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			return call(bridge.NewClient(conn, settings.ControlPath), ctx, args[0])
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", callTimeout, "How long to wait for the controller to answer")
	return cmd
}
