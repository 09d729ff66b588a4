package driver

import (
	"math"
	"testing"
)

func TestControlState_Defaults(t *testing.T) {
	t.Parallel()

	cs := NewControlState()

	if cs.Volume() != 1 {
		t.Errorf("initial Volume() = %v, want 1", cs.Volume())
	}
	if cs.Muted() {
		t.Error("initial Muted() = true, want false")
	}
}

func TestControlState_SetVolumeClamps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   float32
		want float32
	}{
		{in: 0.5, want: 0.5},
		{in: 0, want: 0},
		{in: 1, want: 1},
		{in: -0.25, want: 0},
		{in: 1.75, want: 1},
		{in: float32(math.NaN()), want: 0},
	}

	cs := NewControlState()
	for _, tc := range cases {
		cs.SetVolume(tc.in)
		if got := cs.Volume(); got != tc.want {
			t.Errorf("SetVolume(%v): Volume() = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestControlState_VolumeDecibels(t *testing.T) {
	t.Parallel()

	cs := NewControlState()

	cs.SetVolume(0.5)
	db := cs.VolumeDecibels()
	if math.Abs(float64(db)+6.02) > 0.01 {
		t.Errorf("VolumeDecibels() at 0.5 = %v, want about -6.02", db)
	}

	cs.SetVolume(1)
	if db := cs.VolumeDecibels(); db != 0 {
		t.Errorf("VolumeDecibels() at 1 = %v, want 0", db)
	}

	// Zero gain is floored instead of producing -Inf.
	cs.SetVolume(0)
	if db := cs.VolumeDecibels(); db != MinDecibels {
		t.Errorf("VolumeDecibels() at 0 = %v, want %v", db, float32(MinDecibels))
	}
}

func TestControlState_Mute(t *testing.T) {
	t.Parallel()

	cs := NewControlState()

	cs.SetMuted(true)
	if !cs.Muted() {
		t.Error("Muted() = false after SetMuted(true)")
	}

	cs.SetMuted(false)
	if cs.Muted() {
		t.Error("Muted() = true after SetMuted(false)")
	}
}
