package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/godbus/dbus/v5"
	"github.com/smazurov/ledcontroller/internal/bridge"
	"github.com/smazurov/ledcontroller/internal/led"
	"github.com/spf13/cobra"
)

// NameEntry pairs a sysfs LED with the object path it would be bridged at.
type NameEntry struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Color  string `json:"color,omitempty"`
	Shadow string `json:"shadowed_by,omitempty"`
}

// CreateNamesCmd creates the names command.
func CreateNamesCmd(settings *Settings) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "names [dir]",
		Short: "List sysfs LEDs and their object paths",
		Long: `Lists the LED class devices under the sysfs root (or dir) with the object path each would ` +
			`be bridged at. LEDs whose names collide on the same path are marked with the LED that wins. ` +
			`Nothing is published.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := settings.SysfsRoot
			if len(args) == 1 {
				root = args[0]
			}

			entries, err := ListNames(root, bridge.PhysicalPath)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			return writeTable(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

// ListNames maps every entry of root to its object path under objectRoot.
// Entries are sorted by name; for colliding paths the first name in that
// order is the one a controller bridging them in the same order keeps.
func ListNames(root string, objectRoot dbus.ObjectPath) ([]NameEntry, error) {
	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list LEDs in %s: %w", root, err)
	}

	names := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	owners := make(map[dbus.ObjectPath]string)
	entries := make([]NameEntry, 0, len(names))
	for _, name := range names {
		d := led.Parse(name)
		if led.Canonicalize(d) == "" {
			continue
		}
		path := led.ObjectPath(objectRoot, d)

		entry := NameEntry{Name: name, Path: string(path), Color: d.Color}
		if owner, taken := owners[path]; taken {
			entry.Shadow = owner
		} else {
			owners[path] = name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func writeTable(w io.Writer, entries []NameEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tOBJECT PATH\tCOLOR\tNOTE")
	for _, e := range entries {
		note := ""
		if e.Shadow != "" {
			note = "shadowed by " + e.Shadow
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Path, e.Color, note)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, entries []NameEntry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
