package led

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeLED creates an LED class directory with the given attribute files.
func fakeLED(t *testing.T, name string, attrs map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create LED dir: %v", err)
	}
	for attr, value := range attrs {
		if err := os.WriteFile(filepath.Join(dir, attr), []byte(value+"\n"), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", attr, err)
		}
	}
	return dir
}

func readAttr(t *testing.T, dir, attr string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, attr))
	if err != nil {
		t.Fatalf("Failed to read %s: %v", attr, err)
	}
	return strings.TrimSpace(string(data))
}

func TestSysfs_ReadAttributes(t *testing.T) {
	dir := fakeLED(t, "fan0:amber:fault", map[string]string{
		"brightness":     "0",
		"max_brightness": "255",
		"trigger":        "none [timer] heartbeat default-on",
		"delay_on":       "250",
		"delay_off":      "750",
	})
	s := NewSysfs(dir)

	if s.Path() != dir {
		t.Errorf("Path() = %q, want %q", s.Path(), dir)
	}

	maxBrightness, err := s.MaxBrightness()
	if err != nil || maxBrightness != 255 {
		t.Errorf("MaxBrightness() = %d, %v; want 255", maxBrightness, err)
	}

	trigger, err := s.Trigger()
	if err != nil || trigger != "timer" {
		t.Errorf("Trigger() = %q, %v; want timer", trigger, err)
	}

	on, err := s.DelayOn()
	if err != nil || on != 250 {
		t.Errorf("DelayOn() = %d, %v; want 250", on, err)
	}
	off, err := s.DelayOff()
	if err != nil || off != 750 {
		t.Errorf("DelayOff() = %d, %v; want 750", off, err)
	}
}

func TestSysfs_WriteAttributes(t *testing.T) {
	dir := fakeLED(t, "identify", map[string]string{
		"brightness": "0",
		"trigger":    "[none] timer",
	})
	s := NewSysfs(dir)

	if err := s.SetBrightness(1); err != nil {
		t.Fatalf("SetBrightness() error: %v", err)
	}
	if got := readAttr(t, dir, "brightness"); got != "1" {
		t.Errorf("brightness = %q, want 1", got)
	}

	if err := s.SetTrigger("heartbeat"); err != nil {
		t.Fatalf("SetTrigger() error: %v", err)
	}
	// A plain file has no bracket markers, the raw value is returned
	trigger, err := s.Trigger()
	if err != nil || trigger != "heartbeat" {
		t.Errorf("Trigger() = %q, %v; want heartbeat", trigger, err)
	}
}

func TestSysfs_Errors(t *testing.T) {
	dir := fakeLED(t, "broken", map[string]string{
		"brightness": "bright",
	})
	s := NewSysfs(dir)

	if _, err := s.Brightness(); err == nil {
		t.Error("Brightness() should fail on non-numeric value")
	}
	if _, err := s.MaxBrightness(); err == nil {
		t.Error("MaxBrightness() should fail when attribute is missing")
	}

	missing := NewSysfs(filepath.Join(dir, "nope"))
	if err := missing.SetTrigger("none"); err == nil {
		t.Error("SetTrigger() should fail when directory is missing")
	}
}
