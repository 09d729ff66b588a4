package host

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"

	"github.com/chellaprabu21/AudiDesk/pkg/audidesk/driver"
)

// MonitorSink plays the loopback stream on the machine's real speakers via
// oto, so routed audio stays audible while it is being intercepted. It keeps
// its own small ring between the cycle goroutine and oto's player callback;
// when the player falls behind, frames are dropped rather than blocking the
// cycle.
type MonitorSink struct {
	logger *zap.SugaredLogger

	ctx      *oto.Context
	player   *oto.Player
	producer driver.Producer
	consumer driver.Consumer
	scratch  []float32
}

// NewMonitorSink opens the default audio output and starts playback.
func NewMonitorSink(logger *zap.SugaredLogger) (*MonitorSink, error) {
	logger = logger.Named("monitor")

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   driver.SampleRate,
		ChannelCount: driver.ChannelCount,
		Format:       oto.FormatFloat32LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio output: %w", err)
	}
	<-ready

	m := &MonitorSink{
		logger:  logger,
		ctx:     ctx,
		scratch: make([]float32, driver.BufferFrames*driver.ChannelCount),
	}

	// Half a second of slack between the cycle goroutine and oto's reader.
	ring := driver.NewRingBuffer(driver.SampleRate/2, driver.ChannelCount)
	m.producer, m.consumer = ring.Views()

	m.player = ctx.NewPlayer(m)
	m.player.Play()

	logger.Info("Monitoring loopback stream on default output")

	return m, nil
}

// Consume queues one cycle's frames for playback, dropping them when the
// player has fallen behind.
func (m *MonitorSink) Consume(buf []float32) error {
	frames := uint32(len(buf) / driver.ChannelCount)
	m.producer.Write(buf, frames)

	return nil
}

// Read feeds oto's player; it is invoked on oto's own goroutine. Shortfall
// comes out as silence, matching the device's own underrun behavior.
func (m *MonitorSink) Read(p []byte) (int, error) {
	const bytesPerSample = 4

	samples := len(p) / bytesPerSample
	if samples == 0 {
		return 0, nil
	}

	if len(m.scratch) < samples {
		m.scratch = make([]float32, samples)
	}
	buf := m.scratch[:samples]

	frames := uint32(samples / driver.ChannelCount)
	m.consumer.Read(buf, frames)

	for i, v := range buf {
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(v))
	}

	return samples * bytesPerSample, nil
}

// Close stops playback.
func (m *MonitorSink) Close() error {
	if err := m.player.Close(); err != nil {
		return fmt.Errorf("close output player: %w", err)
	}

	return nil
}
