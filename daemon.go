package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/godbus/dbus/v5"
	"github.com/smazurov/ledcontroller/internal/api"
	"github.com/smazurov/ledcontroller/internal/bridge"
	"github.com/smazurov/ledcontroller/internal/config"
	"github.com/smazurov/ledcontroller/internal/events"
	"github.com/smazurov/ledcontroller/internal/logging"
	"github.com/smazurov/ledcontroller/internal/metrics"
)

// controller owns everything the daemon runs.
type controller struct {
	opts   *Options
	logger *slog.Logger

	eventBus  *events.Bus
	metrics   *metrics.Metrics
	conn      *dbus.Conn
	registrar *bridge.Registrar
	server    *api.Server
	watcher   *config.Watcher[logging.Config]
	unsubs    []func()

	done     chan struct{}
	stopOnce sync.Once
}

func newDaemon(opts *Options) *controller {
	return &controller{
		opts:   opts,
		logger: logging.GetLogger("main"),
		done:   make(chan struct{}),
	}
}

func (c *controller) start() error {
	controlPath := dbus.ObjectPath(c.opts.ControlPath)
	if !controlPath.IsValid() {
		return fmt.Errorf("invalid control path %q", c.opts.ControlPath)
	}

	c.eventBus = events.New()
	logging.SetLogCallback(func(entry logging.LogEntry) {
		c.eventBus.Publish(events.FromLogEntry(entry))
	})
	c.metrics = metrics.New()
	c.unsubs = append(c.unsubs, c.metrics.Subscribe(c.eventBus))

	conn, err := bridge.Connect(c.opts.Bus)
	if err != nil {
		return fmt.Errorf("failed to connect to %s bus: %w", c.opts.Bus, err)
	}
	c.conn = conn

	c.registrar = bridge.NewRegistrar(bridge.Options{
		SysfsRoot:    c.opts.SysfsRoot,
		LegacyRemove: c.opts.LegacyRemove,
		Factory:      bridge.BusFactory(conn),
		EventBus:     c.eventBus,
	})

	for _, name := range config.SplitList(c.opts.Preload) {
		if err := c.registrar.AddLED(name); err != nil {
			return fmt.Errorf("failed to preload %s: %w", name, err)
		}
	}

	if err := bridge.NewControl(c.registrar, c.metrics).Serve(conn, controlPath); err != nil {
		return err
	}

	c.startWatcher()
	c.startServer()

	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		c.logger.Warn("Failed to notify systemd", "error", err)
	}
	c.logger.Info("LED controller ready",
		"bus", c.opts.Bus,
		"control_path", string(controlPath),
		"sysfs_root", c.opts.SysfsRoot,
		"bridged", c.registrar.Len(),
		"legacy_remove", c.opts.LegacyRemove)
	return nil
}

// startWatcher applies logging changes in the config file without a restart.
func (c *controller) startWatcher() {
	if _, err := os.Stat(c.opts.Config); err != nil {
		c.logger.Debug("No config file to watch", "path", c.opts.Config)
		return
	}

	c.watcher = config.NewConfigWatcher(c.opts.Config, config.ReadLoggingConfig, logging.GetLogger("config"))
	c.watcher.OnReload(func(cfg logging.Config) {
		logging.Initialize(cfg)
		c.logger.Info("Logging levels reloaded", "level", cfg.Level)
	})
	if err := c.watcher.Start(); err != nil {
		c.logger.Warn("Failed to watch config file", "path", c.opts.Config, "error", err)
		c.watcher = nil
	}
}

func (c *controller) startServer() {
	addr := c.opts.HTTPPort
	if addr == "" {
		return
	}
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	c.server = api.NewServer(&api.Options{
		Addr:           addr,
		Bridges:        c.registrar,
		EventBus:       c.eventBus,
		MetricsHandler: c.metrics.Handler(),
	})
	go func() {
		if err := c.server.Start(); err != nil {
			c.logger.Error("Status API stopped", "addr", addr, "error", err)
		}
	}()
}

func (c *controller) wait() {
	<-c.done
}

// stop tears everything down in reverse order. Safe to call more than once.
func (c *controller) stop() {
	c.stopOnce.Do(func() {
		defer close(c.done)
		c.logger.Info("Shutting down LED controller")
		if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
			c.logger.Debug("Failed to notify systemd", "error", err)
		}

		var errs []error
		if c.watcher != nil {
			errs = append(errs, c.watcher.Stop())
		}
		if c.server != nil {
			errs = append(errs, c.server.Stop())
		}
		if c.registrar != nil {
			errs = append(errs, c.registrar.Close())
		}
		if c.conn != nil {
			errs = append(errs, c.conn.Close())
		}
		for _, unsub := range c.unsubs {
			unsub()
		}
		logging.SetLogCallback(nil)

		if err := errors.Join(errs...); err != nil {
			c.logger.Error("Error during shutdown", "error", err)
		}
	})
}
