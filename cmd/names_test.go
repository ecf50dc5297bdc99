package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smazurov/ledcontroller/internal/bridge"
)

func sysfsTree(t *testing.T, names ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range names {
		if err := os.Mkdir(filepath.Join(root, name), 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}
	return root
}

func TestListNames(t *testing.T) {
	root := sysfsTree(t, "identify", "fan0:amber:fault", "a_b", "a:b", "::")

	entries, err := ListNames(root, bridge.PhysicalPath)
	if err != nil {
		t.Fatalf("ListNames() error: %v", err)
	}

	want := []NameEntry{
		{Name: "a:b", Path: "/xyz/openbmc_project/led/physical/a_b", Color: "b"},
		{Name: "a_b", Path: "/xyz/openbmc_project/led/physical/a_b", Shadow: "a:b"},
		{Name: "fan0:amber:fault", Path: "/xyz/openbmc_project/led/physical/fan0_fault_amber", Color: "amber"},
		{Name: "identify", Path: "/xyz/openbmc_project/led/physical/identify"},
	}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entries[%d] = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestListNames_MissingRoot(t *testing.T) {
	if _, err := ListNames(filepath.Join(t.TempDir(), "absent"), bridge.PhysicalPath); err == nil {
		t.Error("ListNames() should fail for a missing root")
	}
}

func TestNamesCmd(t *testing.T) {
	root := sysfsTree(t, "power:green")
	settings := &Settings{SysfsRoot: "/nonexistent"}

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out string)
	}{
		{
			name: "table",
			args: []string{root},
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "OBJECT PATH") || !strings.Contains(out, "/xyz/openbmc_project/led/physical/power_green") {
					t.Errorf("unexpected table:\n%s", out)
				}
			},
		},
		{
			name: "json",
			args: []string{"--json", root},
			check: func(t *testing.T, out string) {
				var entries []NameEntry
				if err := json.Unmarshal([]byte(out), &entries); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if len(entries) != 1 || entries[0].Color != "green" {
					t.Errorf("entries = %+v", entries)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := CreateNamesCmd(settings)
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetArgs(tt.args)
			if err := cmd.Execute(); err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			tt.check(t, out.String())
		})
	}
}

func TestControlCmdArgs(t *testing.T) {
	settings := &Settings{Bus: "starbus", ControlPath: bridge.RootPath}

	cmd := CreateAddCmd(settings)
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Error("add without a name should fail")
	}

	cmd = CreateRemoveCmd(settings)
	cmd.SetArgs([]string{"identify"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "starbus") {
		t.Errorf("remove on unknown bus error = %v", err)
	}
}

func TestListNames_EscapedCollision(t *testing.T) {
	root := sysfsTree(t, "a-b", "a_2db")

	entries, err := ListNames(root, bridge.PhysicalPath)
	if err != nil {
		t.Fatalf("ListNames() error: %v", err)
	}

	want := []NameEntry{
		{Name: "a-b", Path: "/xyz/openbmc_project/led/physical/a_2db"},
		{Name: "a_2db", Path: "/xyz/openbmc_project/led/physical/a_2db", Shadow: "a-b"},
	}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entries[%d] = %+v, want %+v", i, entries[i], want[i])
		}
	}
}
