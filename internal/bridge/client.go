package bridge

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Buses the controller can join.
const (
	BusSystem  = "system"
	BusSession = "session"
)

// Connect opens a shared connection to the named bus.
func Connect(bus string) (*dbus.Conn, error) {
	switch bus {
	case BusSystem:
		return dbus.ConnectSystemBus()
	case BusSession:
		return dbus.ConnectSessionBus()
	default:
		return nil, fmt.Errorf("unknown bus %q, want %s or %s", bus, BusSystem, BusSession)
	}
}

// Client calls the control interface of a running controller.
type Client struct {
	obj dbus.BusObject
}

// NewClient returns a client for the control object at path.
func NewClient(conn *dbus.Conn, path dbus.ObjectPath) *Client {
	return newClient(conn.Object(BusName, path))
}

func newClient(obj dbus.BusObject) *Client {
	return &Client{obj: obj}
}

// AddLED asks the controller to bridge name.
func (c *Client) AddLED(ctx context.Context, name string) error {
	return c.call(ctx, methodAddLED, name)
}

// RemoveLED asks the controller to remove the bridge of name.
func (c *Client) RemoveLED(ctx context.Context, name string) error {
	return c.call(ctx, methodRemoveLED, name)
}

func (c *Client) call(ctx context.Context, method, name string) error {
	if err := c.obj.CallWithContext(ctx, Interface+"."+method, 0, name).Err; err != nil {
		return fmt.Errorf("%s(%q) failed: %w", method, name, err)
	}
	return nil
}
