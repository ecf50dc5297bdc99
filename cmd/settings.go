package cmd

import (
	"github.com/godbus/dbus/v5"
)

// Settings carries the resolved daemon options the subcommands share. The
// root command fills it once flags, environment and config file are merged,
// before any subcommand runs.
type Settings struct {
	Bus         string
	ControlPath dbus.ObjectPath
	SysfsRoot   string
}
