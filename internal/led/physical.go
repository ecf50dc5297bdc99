package led

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"github.com/smazurov/ledcontroller/internal/logging"
)

// PhysicalInterface is the bus interface every bridged LED object implements.
const PhysicalInterface = "xyz.openbmc_project.Led.Physical"

const (
	actionPrefix  = PhysicalInterface + ".Action."
	palettePrefix = PhysicalInterface + ".Palette."

	triggerNone  = "none"
	triggerTimer = "timer"

	defaultDutyOn uint8  = 50
	defaultPeriod uint16 = 1000
)

// Action is the state of a physical LED as seen on the bus.
type Action string

// Supported actions.
const (
	ActionOff   Action = actionPrefix + "Off"
	ActionOn    Action = actionPrefix + "On"
	ActionBlink Action = actionPrefix + "Blink"
)

var knownColors = map[string]string{
	"red":    "Red",
	"green":  "Green",
	"blue":   "Blue",
	"yellow": "Yellow",
	"amber":  "Amber",
	"white":  "White",
}

// Palette maps a sysfs color field to its bus enumeration value.
func Palette(color string) string {
	if name, ok := knownColors[strings.ToLower(color)]; ok {
		return palettePrefix + name
	}
	return palettePrefix + "Unknown"
}

// Physical drives one sysfs LED and publishes it as a bus object.
type Physical struct {
	path   dbus.ObjectPath
	handle *Sysfs
	color  string
	logger *slog.Logger

	mu     sync.Mutex
	state  Action
	dutyOn uint8
	period uint16

	conn *dbus.Conn
}

// NewPhysical takes ownership of handle and publishes the LED at path on
// conn. The color is the raw sysfs color field and may be empty.
func NewPhysical(conn *dbus.Conn, path dbus.ObjectPath, handle *Sysfs, color string) (*Physical, error) {
	p := newPhysical(path, handle, color)
	if err := p.export(conn); err != nil {
		return nil, err
	}
	return p, nil
}

func newPhysical(path dbus.ObjectPath, handle *Sysfs, color string) *Physical {
	p := &Physical{
		path:   path,
		handle: handle,
		color:  color,
		logger: logging.GetLogger("led").With("path", string(path)),
		state:  ActionOff,
		dutyOn: defaultDutyOn,
		period: defaultPeriod,
	}
	p.readInitialState()
	return p
}

// readInitialState adopts whatever the kernel is currently doing with the LED.
func (p *Physical) readInitialState() {
	trigger, err := p.handle.Trigger()
	if err != nil {
		p.logger.Warn("Failed to read LED trigger, assuming off", "error", err)
		return
	}
	if trigger == triggerTimer {
		p.state = ActionBlink
		on, onErr := p.handle.DelayOn()
		off, offErr := p.handle.DelayOff()
		if onErr == nil && offErr == nil && on+off > 0 && on+off <= 0xffff {
			p.period = uint16(on + off)
			p.dutyOn = uint8(on * 100 / (on + off))
		}
		return
	}

	brightness, err := p.handle.Brightness()
	if err != nil {
		p.logger.Warn("Failed to read LED brightness, assuming off", "error", err)
		return
	}
	if brightness > 0 {
		p.state = ActionOn
	}
}

// Path returns the bus object path of the LED.
func (p *Physical) Path() dbus.ObjectPath {
	return p.path
}

// SysfsPath returns the directory of the underlying sysfs LED.
func (p *Physical) SysfsPath() string {
	return p.handle.Path()
}

// Color returns the bus palette value of the LED.
func (p *Physical) Color() string {
	return Palette(p.color)
}

// State returns the last applied action.
func (p *Physical) State() Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetState applies action to the LED.
func (p *Physical) SetState(action Action) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.apply(action, p.dutyOn, p.period); err != nil {
		return err
	}
	p.state = action
	return nil
}

// SetDutyOn sets the percentage of each blink period the LED is lit.
func (p *Physical) SetDutyOn(duty uint8) error {
	if duty > 100 {
		return fmt.Errorf("duty cycle %d out of range", duty)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == ActionBlink {
		if err := p.applyBlink(duty, p.period); err != nil {
			return err
		}
	}
	p.dutyOn = duty
	return nil
}

// SetPeriod sets the blink period in milliseconds.
func (p *Physical) SetPeriod(period uint16) error {
	if period == 0 {
		return errors.New("blink period must be positive")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == ActionBlink {
		if err := p.applyBlink(p.dutyOn, period); err != nil {
			return err
		}
	}
	p.period = period
	return nil
}

func (p *Physical) apply(action Action, duty uint8, period uint16) error {
	switch action {
	case ActionOn:
		if err := p.handle.SetTrigger(triggerNone); err != nil {
			return err
		}
		maxBrightness, err := p.handle.MaxBrightness()
		if err != nil {
			return err
		}
		return p.handle.SetBrightness(maxBrightness)
	case ActionOff:
		if err := p.handle.SetTrigger(triggerNone); err != nil {
			return err
		}
		return p.handle.SetBrightness(0)
	case ActionBlink:
		return p.applyBlink(duty, period)
	default:
		return fmt.Errorf("unsupported LED action %q", action)
	}
}

// applyBlink starts the timer trigger. The delay files only exist once the
// trigger is active, so the trigger is written first.
func (p *Physical) applyBlink(duty uint8, period uint16) error {
	on := uint64(period) * uint64(duty) / 100
	off := uint64(period) - on

	if err := p.handle.SetTrigger(triggerTimer); err != nil {
		return err
	}
	if err := p.handle.SetDelayOn(on); err != nil {
		return err
	}
	return p.handle.SetDelayOff(off)
}

func (p *Physical) export(conn *dbus.Conn) error {
	props := prop.Map{
		PhysicalInterface: {
			"State": {
				Value:    string(p.state),
				Writable: true,
				Emit:     prop.EmitTrue,
				Callback: p.onStateChange,
			},
			"DutyOn": {
				Value:    p.dutyOn,
				Writable: true,
				Emit:     prop.EmitTrue,
				Callback: p.onDutyOnChange,
			},
			"Period": {
				Value:    p.period,
				Writable: true,
				Emit:     prop.EmitTrue,
				Callback: p.onPeriodChange,
			},
			"Color": {
				Value:    p.Color(),
				Writable: false,
				Emit:     prop.EmitConst,
			},
		},
	}

	exported, err := prop.Export(conn, p.path, props)
	if err != nil {
		return fmt.Errorf("failed to export properties at %s: %w", p.path, err)
	}

	node := &introspect.Node{
		Name: string(p.path),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       PhysicalInterface,
				Properties: exported.Introspection(PhysicalInterface),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), p.path, "org.freedesktop.DBus.Introspectable"); err != nil {
		_ = conn.Export(nil, p.path, "org.freedesktop.DBus.Properties")
		return fmt.Errorf("failed to export introspection at %s: %w", p.path, err)
	}

	p.conn = conn
	return nil
}

func (p *Physical) onStateChange(c *prop.Change) *dbus.Error {
	value, _ := c.Value.(string)
	if err := p.SetState(Action(value)); err != nil {
		p.logger.Error("Failed to set LED state", "state", value, "error", err)
		return dbus.MakeFailedError(err)
	}
	p.logger.Debug("LED state changed", "state", value)
	return nil
}

func (p *Physical) onDutyOnChange(c *prop.Change) *dbus.Error {
	value, _ := c.Value.(uint8)
	if err := p.SetDutyOn(value); err != nil {
		p.logger.Error("Failed to set LED duty cycle", "duty_on", value, "error", err)
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (p *Physical) onPeriodChange(c *prop.Change) *dbus.Error {
	value, _ := c.Value.(uint16)
	if err := p.SetPeriod(value); err != nil {
		p.logger.Error("Failed to set LED blink period", "period", value, "error", err)
		return dbus.MakeFailedError(err)
	}
	return nil
}

// Close unpublishes the LED from the bus. The sysfs state is left as is.
func (p *Physical) Close() error {
	if p.conn == nil {
		return nil
	}
	var errs []error
	for _, iface := range []string{"org.freedesktop.DBus.Properties", "org.freedesktop.DBus.Introspectable"} {
		if err := p.conn.Export(nil, p.path, iface); err != nil {
			errs = append(errs, err)
		}
	}
	p.conn = nil
	return errors.Join(errs...)
}
