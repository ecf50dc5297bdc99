package models

import "github.com/smazurov/ledcontroller/internal/events"

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
	Bridged int    `json:"bridged" example:"3" doc:"Number of LEDs currently bridged"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"1.2.0" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"a1b2c3d" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2026-01-27T10:30:00Z" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"42" doc:"Build identifier"`
	GoVersion string `json:"go_version" example:"go1.24.11" doc:"Go toolchain version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Go compiler"`
	Platform  string `json:"platform" example:"linux/arm" doc:"Target platform"`
}

type VersionResponse struct {
	Body VersionData
}

// LED models
type LEDData struct {
	Name      string `json:"name" example:"fan0:amber:fault" doc:"Sysfs LED name the bridge was requested with"`
	Path      string `json:"path" example:"/xyz/openbmc_project/led/physical/fan0_fault_amber" doc:"Bus object path"`
	SysfsPath string `json:"sysfs_path" example:"/sys/class/leds/fan0:amber:fault" doc:"Sysfs LED directory"`
	Color     string `json:"color" example:"amber" doc:"Raw sysfs color field"`
	State     string `json:"state" example:"xyz.openbmc_project.Led.Physical.Action.Off" doc:"Current LED action"`
}

type LEDListData struct {
	LEDs  []LEDData `json:"leds" doc:"Bridged LEDs sorted by object path"`
	Count int       `json:"count" example:"2" doc:"Number of bridged LEDs"`
}

type LEDListResponse struct {
	Body LEDListData
}

// Log models
type LogsInput struct {
	Level  string `query:"level" enum:"debug,info,warn,error" doc:"Only return entries at this level"`
	Module string `query:"module" example:"bridge" doc:"Only return entries from this module"`
}

type LogsData struct {
	Entries []events.LogEntryEvent `json:"entries" doc:"Buffered log entries, oldest first"`
	Count   int                    `json:"count" example:"20" doc:"Number of entries returned"`
}

type LogsResponse struct {
	Body LogsData
}
