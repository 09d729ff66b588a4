package driver

import (
	"math"
	"sync/atomic"
)

// MinDecibels is the floor reported for the decibel volume so that zero gain
// never produces negative infinity.
const MinDecibels = -96.0

// ControlState holds the master volume and mute flag shared between the
// control plane and the real-time IO path. Both fields fit in single atomic
// words, so the real-time reader can never observe a torn value.
type ControlState struct {
	volumeBits atomic.Uint32
	muted      atomic.Bool
}

// NewControlState returns a state at full volume, unmuted.
func NewControlState() *ControlState {
	cs := &ControlState{}
	cs.volumeBits.Store(math.Float32bits(1.0))

	return cs
}

// SetVolume stores the linear gain. Host callers may pass unvalidated
// values, so out-of-range input is clamped to [0, 1].
func (cs *ControlState) SetVolume(v float32) {
	if v < 0 || math.IsNaN(float64(v)) {
		v = 0
	} else if v > 1 {
		v = 1
	}

	cs.volumeBits.Store(math.Float32bits(v))
}

// Volume returns the current linear gain in [0, 1].
func (cs *ControlState) Volume() float32 {
	return math.Float32frombits(cs.volumeBits.Load())
}

// SetMuted stores the mute flag.
func (cs *ControlState) SetMuted(m bool) { cs.muted.Store(m) }

// Muted reports whether output is muted.
func (cs *ControlState) Muted() bool { return cs.muted.Load() }

// VolumeDecibels returns 20*log10 of the scalar volume, floored at
// MinDecibels.
func (cs *ControlState) VolumeDecibels() float32 {
	v := cs.Volume()
	if v <= 0 {
		return MinDecibels
	}

	db := 20 * float32(math.Log10(float64(v)))
	if db < MinDecibels {
		db = MinDecibels
	}

	return db
}
