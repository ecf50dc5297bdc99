package main

import (
	"log/slog"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/godbus/dbus/v5"
	"github.com/smazurov/ledcontroller/cmd"
	"github.com/smazurov/ledcontroller/internal/config"
	"github.com/smazurov/ledcontroller/internal/logging"
	"github.com/smazurov/ledcontroller/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"/etc/ledcontroller/config.toml"`

	// Bus settings
	Bus         string `help:"Message bus to join (system, session)" default:"system" toml:"dbus.bus" env:"DBUS_BUS"`
	ControlPath string `help:"Object path of the control interface" default:"/xyz/openbmc_project/led" toml:"dbus.control_path" env:"DBUS_CONTROL_PATH"`

	// Bridge settings
	SysfsRoot    string `help:"Directory holding the LED class devices" default:"/sys/class/leds/" toml:"bridge.sysfs_root" env:"BRIDGE_SYSFS_ROOT"`
	LegacyRemove bool   `help:"Make RemoveLED bridge the LED like AddLED does" default:"false" toml:"bridge.legacy_remove" env:"BRIDGE_LEGACY_REMOVE"`
	Preload      string `help:"Comma-separated LED names to bridge at startup" default:"" toml:"bridge.preload" env:"BRIDGE_PRELOAD"`

	// Status API settings
	HTTPPort string `help:"Status API listen address, empty disables it" default:"" toml:"http.port" env:"HTTP_PORT"`

	// Logging settings
	LoggingLevel  string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingBridge string `help:"Registrar logging level" default:"info" toml:"logging.bridge" env:"LOGGING_BRIDGE"`
	LoggingDbus   string `help:"Control interface logging level" default:"info" toml:"logging.dbus" env:"LOGGING_DBUS"`
	LoggingLed    string `help:"LED object logging level" default:"info" toml:"logging.led" env:"LOGGING_LED"`
	LoggingAPI    string `help:"Status API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

func (o *Options) loggingConfig() logging.Config {
	return logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		Modules: map[string]string{
			"bridge": o.LoggingBridge,
			"dbus":   o.LoggingDbus,
			"led":    o.LoggingLed,
			"api":    o.LoggingAPI,
		},
	}
}

func main() {
	settings := &cmd.Settings{}

	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}
		logging.Initialize(opts.loggingConfig())

		settings.Bus = opts.Bus
		settings.ControlPath = dbus.ObjectPath(opts.ControlPath)
		settings.SysfsRoot = opts.SysfsRoot

		d := newDaemon(opts)
		hooks.OnStart(func() {
			if startErr := d.start(); startErr != nil {
				d.logger.Error("Failed to start controller", "error", startErr)
				d.stop()
				os.Exit(1)
			}
			d.wait()
		})
		hooks.OnStop(d.stop)
	})

	root := cli.Root()
	root.Use = "ledcontroller"
	root.Short = "Bridge sysfs LEDs onto the message bus"
	root.Version = version.Get().Summary()
	root.AddCommand(
		cmd.CreateAddCmd(settings),
		cmd.CreateRemoveCmd(settings),
		cmd.CreateNamesCmd(settings),
	)

	cli.Run()
}
