package bridge

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/smazurov/ledcontroller/internal/events"
	"github.com/smazurov/ledcontroller/internal/led"
	"github.com/smazurov/ledcontroller/internal/logging"
)

// Bus names and paths of the controller.
const (
	BusName      = "xyz.openbmc_project.LED.Controller"
	Interface    = "xyz.openbmc_project.Led.Sysfs.Internal"
	RootPath     = dbus.ObjectPath("/xyz/openbmc_project/led")
	PhysicalPath = dbus.ObjectPath("/xyz/openbmc_project/led/physical")
)

// ErrClosed is returned by registrar operations after Close.
var ErrClosed = errors.New("registrar closed")

// Physical is a published LED object owned by the registrar.
type Physical interface {
	State() led.Action
	Close() error
}

// Factory constructs and publishes the LED object at path. It takes
// ownership of handle. color is the raw sysfs color field, possibly empty.
type Factory func(path dbus.ObjectPath, handle *led.Sysfs, color string) (Physical, error)

// BusFactory publishes LEDs on conn.
func BusFactory(conn *dbus.Conn) Factory {
	return func(path dbus.ObjectPath, handle *led.Sysfs, color string) (Physical, error) {
		p, err := led.NewPhysical(conn, path, handle, color)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// Info describes one bridged LED.
type Info struct {
	Name      string `json:"name" example:"fan0:amber:fault" doc:"Sysfs LED name the bridge was requested with"`
	Path      string `json:"path" example:"/xyz/openbmc_project/led/physical/fan0_fault_amber" doc:"Bus object path"`
	SysfsPath string `json:"sysfs_path" example:"/sys/class/leds/fan0:amber:fault" doc:"Sysfs LED directory"`
	Color     string `json:"color" example:"amber" doc:"Raw sysfs color field"`
	State     string `json:"state" example:"xyz.openbmc_project.Led.Physical.Action.Off" doc:"Current LED action"`
}

type bridge struct {
	name      string
	sysfsPath string
	color     string
	physical  Physical
}

// Options configures a Registrar.
type Options struct {
	// SysfsRoot is prepended to requested names. Defaults to led.SysfsRoot.
	SysfsRoot string
	// ObjectRoot is the parent path of bridged LEDs. Defaults to PhysicalPath.
	ObjectRoot dbus.ObjectPath
	// LegacyRemove makes RemoveLED create bridges like AddLED does.
	LegacyRemove bool
	Factory      Factory
	EventBus     *events.Bus
	Logger       *slog.Logger
}

// Registrar owns the set of bridged LEDs, keyed by bus object path.
// Calls are serialised so they take effect in the order they arrive.
type Registrar struct {
	sysfsRoot    string
	objectRoot   dbus.ObjectPath
	legacyRemove bool
	factory      Factory
	eventBus     *events.Bus
	logger       *slog.Logger

	mu     sync.Mutex
	leds   map[dbus.ObjectPath]*bridge
	closed bool
}

// NewRegistrar creates an empty registrar.
func NewRegistrar(opts Options) *Registrar {
	r := &Registrar{
		sysfsRoot:    opts.SysfsRoot,
		objectRoot:   opts.ObjectRoot,
		legacyRemove: opts.LegacyRemove,
		factory:      opts.Factory,
		eventBus:     opts.EventBus,
		logger:       opts.Logger,
		leds:         make(map[dbus.ObjectPath]*bridge),
	}
	if r.sysfsRoot == "" {
		r.sysfsRoot = led.SysfsRoot
	}
	if !strings.HasSuffix(r.sysfsRoot, "/") {
		r.sysfsRoot += "/"
	}
	if r.objectRoot == "" {
		r.objectRoot = PhysicalPath
	}
	if r.logger == nil {
		r.logger = logging.GetLogger("bridge")
	}
	return r
}

// AddLED bridges the sysfs LED called name. A missing sysfs directory or an
// already bridged path is not an error; the call simply has no effect.
func (r *Registrar) AddLED(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.createBridge(name)
	return nil
}

// RemoveLED tears down the bridge whose canonical path matches name.
// Removing an unknown LED succeeds. With LegacyRemove set it bridges name
// instead, as AddLED does.
func (r *Registrar) RemoveLED(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if r.legacyRemove {
		r.createBridge(name)
		return nil
	}
	r.removeBridge(name)
	return nil
}

func (r *Registrar) createBridge(name string) {
	sysfsPath := r.sysfsRoot + name
	logger := r.logger.With("name", name)

	if !validName(name) {
		logger.Error("Invalid LED name", "path", sysfsPath)
		return
	}

	if _, err := os.Stat(sysfsPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Error("No such directory", "path", sysfsPath)
		} else {
			logger.Error("Failed to inspect LED directory", "path", sysfsPath, "error", err)
		}
		r.eventBus.Publish(events.LEDMissingEvent{
			Name:      name,
			SysfsPath: sysfsPath,
			Timestamp: now(),
		})
		return
	}

	descr := led.Parse(name)
	if led.Canonicalize(descr) == "" {
		logger.Error("LED name has no device field", "path", sysfsPath)
		return
	}
	objPath := led.ObjectPath(r.objectRoot, descr)

	if _, exists := r.leds[objPath]; exists {
		logger.Debug("LED already bridged", "object_path", string(objPath))
		return
	}

	physical, err := r.factory(objPath, led.NewSysfs(sysfsPath), descr.Color)
	if err != nil {
		logger.Error("Failed to publish LED", "object_path", string(objPath), "error", err)
		return
	}

	r.leds[objPath] = &bridge{
		name:      name,
		sysfsPath: sysfsPath,
		color:     descr.Color,
		physical:  physical,
	}
	logger.Info("LED bridged", "object_path", string(objPath), "color", descr.Color)

	r.eventBus.Publish(events.LEDAddedEvent{
		Name:      name,
		Path:      string(objPath),
		SysfsPath: sysfsPath,
		Color:     descr.Color,
		Timestamp: now(),
	})
}

func (r *Registrar) removeBridge(name string) {
	objPath := led.ObjectPath(r.objectRoot, led.Parse(name))
	logger := r.logger.With("name", name, "object_path", string(objPath))

	b, exists := r.leds[objPath]
	if !exists {
		logger.Debug("LED not bridged, nothing to remove")
		return
	}

	delete(r.leds, objPath)
	if err := b.physical.Close(); err != nil {
		logger.Warn("Failed to unpublish LED", "error", err)
	}
	logger.Info("LED bridge removed")

	r.eventBus.Publish(events.LEDRemovedEvent{
		Name:      name,
		Path:      string(objPath),
		Timestamp: now(),
	})
}

// Bridges returns the bridged LEDs sorted by object path.
func (r *Registrar) Bridges() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]Info, 0, len(r.leds))
	for path, b := range r.leds {
		infos = append(infos, Info{
			Name:      b.name,
			Path:      string(path),
			SysfsPath: b.sysfsPath,
			Color:     b.color,
			State:     string(b.physical.State()),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos
}

// Len returns the number of bridged LEDs.
func (r *Registrar) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.leds)
}

// Close unpublishes every bridged LED. Later calls fail with ErrClosed.
func (r *Registrar) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	for path, b := range r.leds {
		if err := b.physical.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(r.leds, path)
	}
	return errors.Join(errs...)
}

// validName rejects names that would leave the sysfs root.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.Contains(name, "/")
}

func now() string {
	return time.Now().Format(time.RFC3339)
}
