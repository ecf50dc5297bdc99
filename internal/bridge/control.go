package bridge

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/google/uuid"
	"github.com/smazurov/ledcontroller/internal/logging"
	"github.com/smazurov/ledcontroller/internal/metrics"
)

const (
	methodAddLED    = "AddLED"
	methodRemoveLED = "RemoveLED"

	errNameInvalidArgs = "org.freedesktop.DBus.Error.InvalidArgs"
	errInternalFailure = "xyz.openbmc_project.Common.Error.InternalFailure"
)

// nameSignature is the only body signature the control methods accept.
var nameSignature = dbus.SignatureOf("")

// errInvalidArgs is the generic invalid-argument reply of the bus.
var errInvalidArgs = dbus.NewError(errNameInvalidArgs,
	[]interface{}{"Invalid type / number of args"})

// Target is what the control interface drives.
type Target interface {
	AddLED(name string) error
	RemoveLED(name string) error
}

// CallObserver records the outcome of each control call.
type CallObserver interface {
	ObserveCall(method, outcome string)
}

// Control is the bus object exposing AddLED and RemoveLED.
// godbus rejects calls with the wrong number of arguments but converts
// any convertible value into the string parameter, so the body signature
// of each call is checked here against "s".
type Control struct {
	target   Target
	observer CallObserver
	logger   *slog.Logger
}

// NewControl creates a control object driving target. observer may be nil.
func NewControl(target Target, observer CallObserver) *Control {
	return &Control{
		target:   target,
		observer: observer,
		logger:   logging.GetLogger("dbus"),
	}
}

// AddLED implements the AddLED(s) method.
func (c *Control) AddLED(sender dbus.Sender, msg dbus.Message, name string) *dbus.Error {
	if !c.bound(methodAddLED) {
		logging.GetLogger("dbus").Error("Unable to configure addLed")
		return errInvalidArgs
	}
	if err := c.checkArgs(methodAddLED, sender, msg); err != nil {
		return err
	}
	return c.dispatch(methodAddLED, sender, name, c.target.AddLED)
}

// RemoveLED implements the RemoveLED(s) method.
func (c *Control) RemoveLED(sender dbus.Sender, msg dbus.Message, name string) *dbus.Error {
	if !c.bound(methodRemoveLED) {
		logging.GetLogger("dbus").Error("Unable to configure removeLed")
		return errInvalidArgs
	}
	if err := c.checkArgs(methodRemoveLED, sender, msg); err != nil {
		return err
	}
	return c.dispatch(methodRemoveLED, sender, name, c.target.RemoveLED)
}

// bound reports whether c has a target to drive.
func (c *Control) bound(method string) bool {
	if c == nil {
		return false
	}
	if c.target == nil {
		c.observe(method, metrics.OutcomeInvalid)
		return false
	}
	return true
}

// checkArgs rejects a call whose body is not a single string.
func (c *Control) checkArgs(method string, sender dbus.Sender, msg dbus.Message) *dbus.Error {
	sig := bodySignature(msg)
	if sig == nameSignature {
		return nil
	}
	c.logger.Error("Control call with invalid arguments",
		"method", method,
		"sender", string(sender),
		"signature", sig.String())
	c.observe(method, metrics.OutcomeInvalid)
	return dbus.NewError(errNameInvalidArgs, []interface{}{
		fmt.Sprintf("%s expects signature %q, got %q", method, nameSignature.String(), sig.String()),
	})
}

// bodySignature returns the signature header of msg, empty when absent.
func bodySignature(msg dbus.Message) dbus.Signature {
	v, ok := msg.Headers[dbus.FieldSignature]
	if !ok {
		return dbus.Signature{}
	}
	sig, _ := v.Value().(dbus.Signature)
	return sig
}

func (c *Control) dispatch(method string, sender dbus.Sender, name string, op func(string) error) *dbus.Error {
	logger := c.logger.With(
		"call_id", uuid.NewString(),
		"method", method,
		"sender", string(sender),
		"name", name,
	)
	logger.Debug("Control call received")

	if err := op(name); err != nil {
		logger.Error("Control call failed", "error", err)
		c.observe(method, metrics.OutcomeFailed)
		return toDBusError(err)
	}

	c.observe(method, metrics.OutcomeOK)
	return nil
}

func (c *Control) observe(method, outcome string) {
	if c.observer != nil {
		c.observer.ObserveCall(method, outcome)
	}
}

// toDBusError converts an error at the bus edge. Bus errors keep their name
// and description; anything else is reported as an internal failure.
func toDBusError(err error) *dbus.Error {
	var busErr *dbus.Error
	if errors.As(err, &busErr) {
		return busErr
	}
	var busErrValue dbus.Error
	if errors.As(err, &busErrValue) {
		return &busErrValue
	}
	return dbus.NewError(errInternalFailure, []interface{}{err.Error()})
}

// introspection describes the control object.
func introspection(path dbus.ObjectPath) *introspect.Node {
	nameArg := []introspect.Arg{{Name: "name", Type: "s", Direction: "in"}}
	return &introspect.Node{
		Name: string(path),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name: Interface,
				Methods: []introspect.Method{
					{Name: methodAddLED, Args: nameArg},
					{Name: methodRemoveLED, Args: nameArg},
				},
			},
		},
	}
}

// Serve exports c at path on conn and claims BusName.
func (c *Control) Serve(conn *dbus.Conn, path dbus.ObjectPath) error {
	if err := conn.ExportMethodTable(map[string]interface{}{
		methodAddLED:    c.AddLED,
		methodRemoveLED: c.RemoveLED,
	}, path, Interface); err != nil {
		return fmt.Errorf("failed to export %s at %s: %w", Interface, path, err)
	}

	if err := conn.Export(introspect.NewIntrospectable(introspection(path)), path,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspection at %s: %w", path, err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request name %s: %w", BusName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("name %s already taken", BusName)
	}

	c.logger.Info("Control interface exported", "bus_name", BusName, "path", string(path), "interface", Interface)
	return nil
}
