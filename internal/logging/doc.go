// Package logging provides structured logging with per-module log level configuration.
//
// Records go to stdout (text or json), to the systemd journal when journald
// is reachable, and to an in-memory ring buffer served by the status API.
//
// Initialize once at startup, then fetch a logger per module:
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		Modules: map[string]string{"bridge": "debug"},
//	})
//	logger := logging.GetLogger("bridge")
//	logger.Error("No such directory", "path", path)
//
// Initialize may be called again when the configuration file changes; cached
// module loggers keep their identity and pick up the new levels.
//
// Journal entries carry SYSLOG_IDENTIFIER=ledcontroller and upper-cased
// attributes. LED and control call attributes get fixed names
// (LED_OBJECT_PATH, LED_SYSFS_PATH, LED_NAME, LED_CALL_ID, DBUS_SENDER),
// so they can be filtered with:
//
//	journalctl -t ledcontroller MODULE=bridge
//	journalctl -t ledcontroller LED_OBJECT_PATH=/xyz/openbmc_project/led/physical/power_green
//	journalctl -t ledcontroller -p err
package logging
