// Package capture persists the virtual device's loopback stream to disk.
package capture

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"go.uber.org/zap"

	"github.com/chellaprabu21/AudiDesk/pkg/audidesk/driver"
)

const captureBitDepth = 16

// WAVSink writes interleaved float32 frames from the device's loopback
// stream into a 16-bit PCM WAV file. It runs off the real-time path, on the
// host engine's cycle goroutine.
type WAVSink struct {
	logger *zap.SugaredLogger

	file    *os.File
	encoder *wav.Encoder
	pcm     *audio.IntBuffer
}

// NewWAVSink creates (or truncates) the file at path and prepares a WAV
// encoder matching the device's fixed format.
func NewWAVSink(logger *zap.SugaredLogger, path string) (*WAVSink, error) {
	logger = logger.Named("capture")

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create capture file: %w", err)
	}

	encoder := wav.NewEncoder(file, driver.SampleRate, captureBitDepth, driver.ChannelCount, 1)

	logger.Infow("Capturing loopback stream", "path", path)

	return &WAVSink{
		logger:  logger,
		file:    file,
		encoder: encoder,
		pcm: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: driver.ChannelCount,
				SampleRate:  driver.SampleRate,
			},
			SourceBitDepth: captureBitDepth,
		},
	}, nil
}

// Consume converts one cycle's worth of samples to 16-bit PCM and appends it
// to the file.
func (s *WAVSink) Consume(buf []float32) error {
	if cap(s.pcm.Data) < len(buf) {
		s.pcm.Data = make([]int, len(buf))
	}
	s.pcm.Data = s.pcm.Data[:len(buf)]

	for i, v := range buf {
		s.pcm.Data[i] = int(pcm16(v))
	}

	if err := s.encoder.Write(s.pcm); err != nil {
		return fmt.Errorf("encode capture frames: %w", err)
	}

	return nil
}

// Close finalizes the WAV header and closes the file.
func (s *WAVSink) Close() error {
	if err := s.encoder.Close(); err != nil {
		_ = s.file.Close()
		return fmt.Errorf("finalize capture file: %w", err)
	}

	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close capture file: %w", err)
	}

	s.logger.Debug("Capture file closed")

	return nil
}

// pcm16 clamps and scales a float sample to 16-bit PCM. 32767 on the
// positive side avoids overflow at exactly +1.
func pcm16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	return int16(x * 32767.0)
}
