package events

import (
	"time"

	"github.com/smazurov/ledcontroller/internal/logging"
)

// Event type constants for kelindar/event.
const (
	TypeLEDAdded uint32 = iota + 1
	TypeLEDRemoved
	TypeLEDMissing
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// LEDAddedEvent is published when a sysfs LED is bridged onto the bus.
type LEDAddedEvent struct {
	Name      string `json:"name" example:"fan0:amber:fault" doc:"Sysfs LED name"`
	Path      string `json:"path" example:"/xyz/openbmc_project/led/physical/fan0_fault_amber" doc:"Bus object path"`
	SysfsPath string `json:"sysfs_path" example:"/sys/class/leds/fan0:amber:fault" doc:"Sysfs LED directory"`
	Color     string `json:"color" example:"amber" doc:"Raw sysfs color field"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for LEDAddedEvent.
func (e LEDAddedEvent) Type() uint32 { return TypeLEDAdded }

// LEDRemovedEvent is published when a bridge is torn down.
type LEDRemovedEvent struct {
	Name      string `json:"name" example:"power:green" doc:"Sysfs LED name"`
	Path      string `json:"path" example:"/xyz/openbmc_project/led/physical/power_green" doc:"Bus object path"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for LEDRemovedEvent.
func (e LEDRemovedEvent) Type() uint32 { return TypeLEDRemoved }

// LEDMissingEvent is published when a request names an LED without a sysfs directory.
type LEDMissingEvent struct {
	Name      string `json:"name" example:"ghost" doc:"Requested sysfs LED name"`
	SysfsPath string `json:"sysfs_path" example:"/sys/class/leds/ghost" doc:"Path that does not exist"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for LEDMissingEvent.
func (e LEDMissingEvent) Type() uint32 { return TypeLEDMissing }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp" example:"2026-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"bridge" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }

// FromLogEntry converts a buffered log entry for streaming.
func FromLogEntry(entry logging.LogEntry) LogEntryEvent {
	return LogEntryEvent{
		Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
		Level:      entry.Level,
		Module:     entry.Module,
		Message:    entry.Message,
		Attributes: entry.Attributes,
	}
}
