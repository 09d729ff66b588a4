// Package host stands in for the HAL host daemon: it owns the fixed
// buffer-frame size and the per-cycle timing, and drives the driver's IO
// transfer operations once per hardware buffer period.
package host

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chellaprabu21/AudiDesk/pkg/audidesk/driver"
)

// Source mixes audio into the device, playing the role of the host's
// write-mix operation input. Fill must populate the whole buffer.
type Source interface {
	Fill(buf []float32)
}

// Sink receives each cycle's loopback output. Consume runs on the engine's
// cycle goroutine, off the driver's real-time contract, so it may block
// briefly or return errors.
type Sink interface {
	Consume(buf []float32) error
	Close() error
}

// Engine drives one device through its IO cycle at the device's fixed
// period.
type Engine struct {
	logger *zap.SugaredLogger
	device *driver.Driver
	source Source
	sinks  []Sink

	period   time.Duration
	writeBuf []float32
	readBuf  []float32

	lastSeed uint64
}

// NewEngine wires a cycle engine to the device. source may be nil when
// another writer (the real host) feeds the device.
func NewEngine(logger *zap.SugaredLogger, device *driver.Driver, source Source, sinks ...Sink) (*Engine, error) {
	logger = logger.Named("host")

	const samplesPerCycle = driver.BufferFrames * driver.ChannelCount

	e := &Engine{
		logger:   logger,
		device:   device,
		source:   source,
		sinks:    sinks,
		period:   driver.BufferFrames * time.Second / driver.SampleRate,
		writeBuf: make([]float32, samplesPerCycle),
		readBuf:  make([]float32, samplesPerCycle),
	}

	logger.Debugw("Created host engine", "period", e.period, "sinks", len(sinks))

	return e, nil
}

// Run starts IO on the device and performs transfer cycles until the context
// is cancelled, then stops IO and closes the sinks.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.device.StartIO(); err != nil {
		return fmt.Errorf("start device IO: %w", err)
	}

	e.logger.Infow("Cycle engine running", "period", e.period)

	ticker := time.NewTicker(e.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return e.shutdown()
		case <-ticker.C:
			e.cycle()
		}
	}
}

func (e *Engine) cycle() {
	_, _, seed := e.device.ZeroTimestamp()
	if seed != e.lastSeed {
		if e.lastSeed != 0 {
			e.logger.Debugw("Timestamp discontinuity", "seed", seed)
		}
		e.lastSeed = seed
	}

	if e.source != nil {
		if willDo, _ := e.device.WillDoIO(driver.OperationWriteMix); willDo {
			e.source.Fill(e.writeBuf)
			e.device.DoIO(driver.OperationWriteMix, e.writeBuf, driver.BufferFrames)
		}
	}

	if willDo, _ := e.device.WillDoIO(driver.OperationReadInput); !willDo {
		return
	}

	e.device.DoIO(driver.OperationReadInput, e.readBuf, driver.BufferFrames)

	for _, sink := range e.sinks {
		if err := sink.Consume(e.readBuf); err != nil {
			e.logger.Warnw("Sink rejected cycle buffer", "error", err)
		}
	}
}

func (e *Engine) shutdown() error {
	e.logger.Debug("Cycle engine stopping")

	if err := e.device.StopIO(); err != nil {
		return fmt.Errorf("stop device IO: %w", err)
	}

	for _, sink := range e.sinks {
		if err := sink.Close(); err != nil {
			e.logger.Warnw("Failed to close sink", "error", err)
		}
	}

	return nil
}
