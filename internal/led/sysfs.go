package led

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SysfsRoot is the directory the kernel exposes LED class devices under.
const SysfsRoot = "/sys/class/leds/"

// Attribute files inside an LED class directory.
const (
	attrBrightness    = "brightness"
	attrMaxBrightness = "max_brightness"
	attrTrigger       = "trigger"
	attrDelayOn       = "delay_on"
	attrDelayOff      = "delay_off"
)

// Sysfs reads and writes the attribute files of one LED class directory.
type Sysfs struct {
	root string
}

// NewSysfs returns a handle over the LED directory at path.
func NewSysfs(path string) *Sysfs {
	return &Sysfs{root: path}
}

// Path returns the LED directory this handle operates on.
func (s *Sysfs) Path() string {
	return s.root
}

// Brightness returns the current brightness value.
func (s *Sysfs) Brightness() (uint64, error) {
	return s.readUint(attrBrightness)
}

// SetBrightness writes the brightness value. Writing 0 also clears any
// active trigger in the kernel.
func (s *Sysfs) SetBrightness(value uint64) error {
	return s.writeUint(attrBrightness, value)
}

// MaxBrightness returns the highest brightness the LED accepts.
func (s *Sysfs) MaxBrightness() (uint64, error) {
	return s.readUint(attrMaxBrightness)
}

// Trigger returns the active trigger. The kernel lists every trigger and
// marks the active one with brackets, e.g. "none [timer] heartbeat".
func (s *Sysfs) Trigger() (string, error) {
	raw, err := s.read(attrTrigger)
	if err != nil {
		return "", err
	}
	for _, word := range strings.Fields(raw) {
		if strings.HasPrefix(word, "[") && strings.HasSuffix(word, "]") {
			return strings.Trim(word, "[]"), nil
		}
	}
	return raw, nil
}

// SetTrigger activates the named trigger.
func (s *Sysfs) SetTrigger(trigger string) error {
	return s.write(attrTrigger, trigger)
}

// DelayOn returns the on time of the timer trigger in milliseconds.
func (s *Sysfs) DelayOn() (uint64, error) {
	return s.readUint(attrDelayOn)
}

// SetDelayOn sets the on time of the timer trigger in milliseconds.
// Only present while the timer trigger is active.
func (s *Sysfs) SetDelayOn(ms uint64) error {
	return s.writeUint(attrDelayOn, ms)
}

// DelayOff returns the off time of the timer trigger in milliseconds.
func (s *Sysfs) DelayOff() (uint64, error) {
	return s.readUint(attrDelayOff)
}

// SetDelayOff sets the off time of the timer trigger in milliseconds.
func (s *Sysfs) SetDelayOff(ms uint64) error {
	return s.writeUint(attrDelayOff, ms)
}

func (s *Sysfs) read(attr string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, attr))
	if err != nil {
		return "", fmt.Errorf("failed to read LED %s: %w", attr, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *Sysfs) write(attr, value string) error {
	if err := os.WriteFile(filepath.Join(s.root, attr), []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to write LED %s: %w", attr, err)
	}
	return nil
}

func (s *Sysfs) readUint(attr string) (uint64, error) {
	raw, err := s.read(attr)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse LED %s %q: %w", attr, raw, err)
	}
	return v, nil
}

func (s *Sysfs) writeUint(attr string, value uint64) error {
	return s.write(attr, strconv.FormatUint(value, 10))
}
