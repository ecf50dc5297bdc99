package bridge

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/smazurov/ledcontroller/internal/metrics"
)

type fakeTarget struct {
	added   []string
	removed []string
	err     error
}

func (f *fakeTarget) AddLED(name string) error {
	f.added = append(f.added, name)
	return f.err
}

func (f *fakeTarget) RemoveLED(name string) error {
	f.removed = append(f.removed, name)
	return f.err
}

type recordingObserver struct {
	calls []string
}

func (r *recordingObserver) ObserveCall(method, outcome string) {
	r.calls = append(r.calls, method+"/"+outcome)
}

const testSender = dbus.Sender(":1.42")

// callMessage builds the message godbus hands to a method for a body of args.
func callMessage(args ...interface{}) dbus.Message {
	return dbus.Message{
		Type: dbus.TypeMethodCall,
		Headers: map[dbus.HeaderField]dbus.Variant{
			dbus.FieldSignature: dbus.MakeVariant(dbus.SignatureOf(args...)),
		},
		Body: args,
	}
}

func TestControl_Dispatch(t *testing.T) {
	target := &fakeTarget{}
	observer := &recordingObserver{}
	c := NewControl(target, observer)

	if err := c.AddLED(testSender, callMessage("fan0:amber:fault"), "fan0:amber:fault"); err != nil {
		t.Fatalf("AddLED() error: %v", err)
	}
	if err := c.RemoveLED(testSender, callMessage("fan0:amber:fault"), "fan0:amber:fault"); err != nil {
		t.Fatalf("RemoveLED() error: %v", err)
	}

	if len(target.added) != 1 || target.added[0] != "fan0:amber:fault" {
		t.Errorf("added = %v", target.added)
	}
	if len(target.removed) != 1 || target.removed[0] != "fan0:amber:fault" {
		t.Errorf("removed = %v", target.removed)
	}

	want := []string{"AddLED/" + metrics.OutcomeOK, "RemoveLED/" + metrics.OutcomeOK}
	if fmt.Sprint(observer.calls) != fmt.Sprint(want) {
		t.Errorf("observed %v, want %v", observer.calls, want)
	}
}

func TestControl_Unbound(t *testing.T) {
	tests := []struct {
		name    string
		control *Control
	}{
		{"nil receiver", nil},
		{"nil target", NewControl(nil, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for method, call := range map[string]func(dbus.Sender, dbus.Message, string) *dbus.Error{
				"AddLED":    tt.control.AddLED,
				"RemoveLED": tt.control.RemoveLED,
			} {
				err := call(testSender, callMessage("identify"), "identify")
				if err == nil {
					t.Fatalf("%s() should fail", method)
				}
				if err.Name != "org.freedesktop.DBus.Error.InvalidArgs" {
					t.Errorf("%s() error name = %q", method, err.Name)
				}
			}
		})
	}
}

func TestControl_UnboundObserved(t *testing.T) {
	observer := &recordingObserver{}
	c := NewControl(nil, observer)

	_ = c.AddLED(testSender, callMessage("identify"), "identify")

	if len(observer.calls) != 1 || observer.calls[0] != "AddLED/"+metrics.OutcomeInvalid {
		t.Errorf("observed %v", observer.calls)
	}
}

func TestControl_RejectsWrongSignature(t *testing.T) {
	tests := []struct {
		name string
		msg  dbus.Message
		arg  string
	}{
		{"int32", callMessage(int32(65)), "A"},
		{"uint64", callMessage(uint64(66)), "B"},
		{"object path", callMessage(dbus.ObjectPath("/a")), "/a"},
		{"no signature", dbus.Message{Type: dbus.TypeMethodCall}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := &fakeTarget{}
			observer := &recordingObserver{}
			c := NewControl(target, observer)

			for method, call := range map[string]func(dbus.Sender, dbus.Message, string) *dbus.Error{
				"AddLED":    c.AddLED,
				"RemoveLED": c.RemoveLED,
			} {
				err := call(testSender, tt.msg, tt.arg)
				if err == nil {
					t.Fatalf("%s() should reject %s", method, tt.name)
				}
				if err.Name != "org.freedesktop.DBus.Error.InvalidArgs" {
					t.Errorf("%s() error name = %q", method, err.Name)
				}
				if len(err.Body) != 1 {
					t.Errorf("%s() error body = %v", method, err.Body)
				}
			}
			if len(target.added) != 0 || len(target.removed) != 0 {
				t.Errorf("target reached: added %v, removed %v", target.added, target.removed)
			}
			for _, call := range observer.calls {
				if !strings.HasSuffix(call, "/"+metrics.OutcomeInvalid) {
					t.Errorf("observed %s, want invalid outcome", call)
				}
			}
		})
	}
}

func TestControl_TargetFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantName string
	}{
		{
			name:     "plain error",
			err:      ErrClosed,
			wantName: "xyz.openbmc_project.Common.Error.InternalFailure",
		},
		{
			name:     "bus error pointer",
			err:      dbus.NewError("xyz.openbmc_project.Common.Error.NotAllowed", nil),
			wantName: "xyz.openbmc_project.Common.Error.NotAllowed",
		},
		{
			name:     "wrapped bus error",
			err:      fmt.Errorf("busy: %w", dbus.NewError("xyz.openbmc_project.Common.Error.Unavailable", nil)),
			wantName: "xyz.openbmc_project.Common.Error.Unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observer := &recordingObserver{}
			c := NewControl(&fakeTarget{err: tt.err}, observer)

			err := c.AddLED(testSender, callMessage("identify"), "identify")
			if err == nil {
				t.Fatal("AddLED() should fail")
			}
			if err.Name != tt.wantName {
				t.Errorf("error name = %q, want %q", err.Name, tt.wantName)
			}
			if len(observer.calls) != 1 || observer.calls[0] != "AddLED/"+metrics.OutcomeFailed {
				t.Errorf("observed %v", observer.calls)
			}
		})
	}
}

func TestToDBusError_KeepsDescription(t *testing.T) {
	err := toDBusError(errors.New("disk on fire"))
	if len(err.Body) != 1 || err.Body[0] != "disk on fire" {
		t.Errorf("Body = %v", err.Body)
	}
}

func TestControl_DrivesRegistrar(t *testing.T) {
	env := newTestEnv(t, false, "power:green")
	c := NewControl(env.registrar, nil)

	if err := c.AddLED(testSender, callMessage("power:green"), "power:green"); err != nil {
		t.Fatalf("AddLED() error: %v", err)
	}
	if env.registrar.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", env.registrar.Len())
	}
	if err := c.RemoveLED(testSender, callMessage("power:green"), "power:green"); err != nil {
		t.Fatalf("RemoveLED() error: %v", err)
	}
	if env.registrar.Len() != 0 {
		t.Errorf("Len() = %d, want 0", env.registrar.Len())
	}
}

func TestIntrospection(t *testing.T) {
	node := introspection(RootPath)
	if node.Name != string(RootPath) {
		t.Errorf("Name = %q", node.Name)
	}

	var found bool
	for _, iface := range node.Interfaces {
		if iface.Name != Interface {
			continue
		}
		found = true
		if len(iface.Methods) != 2 {
			t.Errorf("got %d methods, want 2", len(iface.Methods))
		}
		for _, m := range iface.Methods {
			if len(m.Args) != 1 || m.Args[0].Type != "s" {
				t.Errorf("%s args = %+v", m.Name, m.Args)
			}
		}
	}
	if !found {
		t.Errorf("interface %s missing", Interface)
	}
}
