package host

import (
	"math"

	"github.com/chellaprabu21/AudiDesk/pkg/audidesk/driver"
)

// SineSource generates a steady test tone, used by the demo path to prove
// the device end to end without a real host writing into it.
type SineSource struct {
	frequency float64
	amplitude float64
	phase     float64
}

// NewSineSource returns a tone generator at the given frequency in Hz with
// amplitude in [0, 1].
func NewSineSource(frequency, amplitude float64) *SineSource {
	return &SineSource{
		frequency: frequency,
		amplitude: amplitude,
	}
}

// Fill writes one buffer of interleaved frames, all channels carrying the
// same signal, keeping phase continuous across calls.
func (s *SineSource) Fill(buf []float32) {
	step := 2 * math.Pi * s.frequency / driver.SampleRate
	frames := len(buf) / driver.ChannelCount

	for i := 0; i < frames; i++ {
		sample := float32(s.amplitude * math.Sin(s.phase))
		for ch := 0; ch < driver.ChannelCount; ch++ {
			buf[i*driver.ChannelCount+ch] = sample
		}

		s.phase += step
		if s.phase >= 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
	}
}
