// Package driver implements the virtual audio device core: the object graph
// and property surface the HAL host queries, the IO cycle state machine it
// drives, and the lock-free ring buffer bridging the control plane and the
// real-time callback path.
package driver

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Options carries the device identity. Zero values fall back to defaults.
type Options struct {
	Name         string
	UID          string
	ModelUID     string
	Manufacturer string

	// RingFrames is the requested ring capacity in frames; it is rounded up
	// to the next power of two. Defaults to RingSeconds worth of audio.
	RingFrames uint32
}

const (
	defaultDeviceName   = "AudiDesk Virtual Output"
	defaultDeviceUID    = "AudiDesk_VirtualDevice"
	defaultModelUID     = "AudiDesk_Model"
	defaultManufacturer = "AudiDesk"
)

func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = defaultDeviceName
	}
	if o.UID == "" {
		o.UID = defaultDeviceUID
	}
	if o.ModelUID == "" {
		o.ModelUID = defaultModelUID
	}
	if o.Manufacturer == "" {
		o.Manufacturer = defaultManufacturer
	}
	if o.RingFrames == 0 {
		o.RingFrames = SampleRate * RingSeconds
	}

	return o
}

// Driver is the explicitly owned context object behind every entry point.
// It is constructed once at process start and passed by reference; there is
// no process-wide singleton.
type Driver struct {
	logger *zap.SugaredLogger
	opts   Options

	ring     *RingBuffer
	producer Producer
	consumer Consumer
	control  *ControlState

	registry map[ObjectID]*objectEntry

	// Session state. StartIO/StopIO serialize on startMu; everything the
	// real-time path touches is atomic.
	startMu     sync.Mutex
	clientCount atomic.Uint32
	running     atomic.Bool
	anchorNanos atomic.Int64
	seed        atomic.Uint64

	droppedFrames atomic.Uint64
	silentFrames  atomic.Uint64

	now func() time.Time
}

// New constructs the device core with its fixed object graph.
func New(logger *zap.SugaredLogger, opts Options) (*Driver, error) {
	logger = logger.Named("driver")

	d := &Driver{
		logger:  logger,
		opts:    opts.withDefaults(),
		control: NewControlState(),
		now:     time.Now,
	}

	d.ring = NewRingBuffer(d.opts.RingFrames, ChannelCount)
	d.producer, d.consumer = d.ring.Views()
	d.registry = newRegistry()

	logger.Debugw("Created driver instance",
		"device", d.opts.Name,
		"uid", d.opts.UID,
		"ringFrames", d.ring.Capacity())

	return d, nil
}

// Format returns the fixed stream format for the given direction.
func (d *Driver) Format(dir Direction) StreamFormat {
	return StreamFormat{
		SampleRate: SampleRate,
		Channels:   ChannelCount,
		BitDepth:   BitDepth,
		Direction:  dir,
	}
}

// Loopback returns the consumer view of the shared mix bus, for collaborators
// that tap the device's output outside the host's read-input operation.
func (d *Driver) Loopback() Consumer { return d.consumer }

// ResetRing clears the mix bus cursors and contents. Refused while an IO
// session is active, since the real-time path owns the cursors then.
func (d *Driver) ResetRing() error {
	d.startMu.Lock()
	defer d.startMu.Unlock()

	if d.running.Load() {
		return ErrUnsupported
	}

	d.ring.Reset()

	return nil
}

// DroppedFrames returns the total frames discarded because the ring was full
// during a write-mix operation.
func (d *Driver) DroppedFrames() uint64 { return d.droppedFrames.Load() }

// SilentFrames returns the total frames injected as silence because the ring
// was empty during a read-input operation.
func (d *Driver) SilentFrames() uint64 { return d.silentFrames.Load() }
