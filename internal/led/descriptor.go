package led

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	// nameSeparator splits fields of a sysfs LED name.
	nameSeparator = ":"
	// busSeparator joins fields of a canonical bus name.
	busSeparator = "_"
)

// Descriptor is the structured form of a sysfs LED name
// ("devicename:colour:function").
type Descriptor struct {
	Device   string
	Color    string
	Function string
}

// Parse splits a sysfs LED name into its device, color and function fields.
// Missing trailing fields stay empty and anything past the third field is
// dropped. Fields are kept verbatim, whitespace included.
func Parse(name string) Descriptor {
	var d Descriptor
	fields := []*string{&d.Device, &d.Color, &d.Function}
	for i, word := range strings.SplitN(name, nameSeparator, len(fields)+1) {
		if i >= len(fields) {
			break
		}
		*fields[i] = word
	}
	return d
}

// Canonicalize returns the bus name for d: device, then function, then color,
// joined by underscores. Empty function and color are skipped; the device
// is always present even when empty.
func Canonicalize(d Descriptor) string {
	words := []string{d.Device}
	if d.Function != "" {
		words = append(words, d.Function)
	}
	if d.Color != "" {
		words = append(words, d.Color)
	}
	return strings.Join(words, busSeparator)
}

// ObjectPath returns the bus object path of d below root. Characters a bus
// path element cannot carry are escaped as "_xx" hex; letters, digits and
// underscores pass through unchanged.
func ObjectPath(root dbus.ObjectPath, d Descriptor) dbus.ObjectPath {
	return dbus.ObjectPath(strings.TrimSuffix(string(root), "/") + "/" + escapeElement(Canonicalize(d)))
}

func escapeElement(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "_%02x", c)
		}
	}
	return b.String()
}
