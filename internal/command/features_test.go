package command

import (
	"strings"
	"testing"

	"github.com/lawnchairsociety/gameconsole/internal/console"
	"github.com/lawnchairsociety/gameconsole/internal/hooks"
)

func TestFeatureSwitches(t *testing.T) {
	f := newFixture(t)
	features := f.env.Features

	if got := f.mustRun(t, "buildanywhere"); got != "buildanywhere: on" || !features.BuildAnywhere {
		t.Errorf("toggle on = %q, flag %v", got, features.BuildAnywhere)
	}
	if got := f.mustRun(t, "buildanywhere"); got != "buildanywhere: off" || features.BuildAnywhere {
		t.Errorf("toggle off = %q, flag %v", got, features.BuildAnywhere)
	}
	if got := f.mustRun(t, "nostamina yes"); got != "nostamina: on" || !features.NoStamina {
		t.Errorf("explicit on = %q", got)
	}
	if got := f.mustRun(t, "nostamina yes"); got != "nostamina: on" || !features.NoStamina {
		t.Errorf("setting the same value = %q", got)
	}
	if got := f.mustRun(t, "nosupport 1"); got != "nosupport: on" || !features.NoStructuralSupport {
		t.Errorf("nosupport = %q", got)
	}
	// Any unrecognised literal is false.
	if got := f.mustRun(t, "nosupport maybe"); got != "nosupport: off" || features.NoStructuralSupport {
		t.Errorf("nosupport maybe = %q", got)
	}
}

func TestFreeCursorRefreshesCursor(t *testing.T) {
	f := newFixture(t)

	var states []bool
	f.env.Hooks.OnCursorChange(func(free bool) { states = append(states, free) })

	f.console.Hide()
	f.console.Submit("test", "freecursor true")
	f.console.Submit("test", "freecursor false")
	f.console.Submit("test", "freecursor false")

	want := []bool{false, true, false}
	if len(states) != len(want) {
		t.Fatalf("cursor states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("cursor states = %v, want %v", states, want)
			break
		}
	}
}

func TestPlace(t *testing.T) {
	tests := []struct {
		name     string
		features func(t *testing.T, f *fixture)
		input    string
		status   console.Status
		want     string
	}{
		{name: "ground level", input: "place ben 1 0", want: "Placed stone at (1, 0, 0) for Ben (stamina 95/100)."},
		{name: "custom block", input: "place ben 1 1 0 Glass", want: "Placed glass at (1, 1, 0)"},
		{name: "out of range", input: "place ben 100 0", status: console.HandlerFailed, want: hooks.ErrPlacementDenied.Error()},
		{name: "floating", input: "place ben 1 0 3", status: console.HandlerFailed, want: hooks.ErrUnsupported.Error()},
		{
			name:     "build anywhere",
			features: func(t *testing.T, f *fixture) { f.mustRun(t, "buildanywhere true") },
			input:    "place ben 100 0",
			want:     "Placed stone at (100, 0, 0)",
		},
		{
			name:     "no support",
			features: func(t *testing.T, f *fixture) { f.mustRun(t, "nosupport true") },
			input:    "place ben 1 0 3",
			want:     "Placed stone at (1, 0, 3)",
		},
		{
			name:     "tired",
			features: func(_ *testing.T, f *fixture) { f.ben.Stamina = 2 },
			input:    "place ben 1 0",
			status:   console.HandlerFailed,
			want:     hooks.ErrTooTired.Error(),
		},
		{
			name: "tired without stamina cost",
			features: func(t *testing.T, f *fixture) {
				f.ben.Stamina = 2
				f.mustRun(t, "nostamina true")
			},
			input: "place ben 1 0",
			want:  "(stamina 2/100)",
		},
		{name: "bad coordinate", input: "place ben 1.5 0", status: console.ArgumentFailed, want: "argument 2 (x)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.features != nil {
				tt.features(t, f)
			}
			o := f.run(t, tt.input)
			if o.Status != tt.status {
				t.Fatalf("status = %v, want %v (%s)", o.Status, tt.status, o.Line())
			}
			if !strings.Contains(o.Line(), tt.want) {
				t.Errorf("line = %q, want it to contain %q", o.Line(), tt.want)
			}
		})
	}
}
