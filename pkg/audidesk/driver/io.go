package driver

// IOOperation identifies one of the host's per-cycle transfer operations.
type IOOperation uint32

const (
	// OperationWriteMix hands the device the mixed output of all clients.
	OperationWriteMix IOOperation = iota + 1
	// OperationReadInput asks the device for input frames; this device
	// loops the mix bus back as its input.
	OperationReadInput
)

// StartIO registers another IO client. The 0 -> 1 transition resets the ring
// buffer, anchors the zero-timestamp clock, and bumps the discontinuity seed
// so the host can tell the new session apart from the previous one. Session
// boundaries are rare, so a coarse lock is fine here; nothing on the per-cycle
// path takes it.
func (d *Driver) StartIO() error {
	d.startMu.Lock()
	defer d.startMu.Unlock()

	if d.clientCount.Add(1) == 1 {
		d.ring.Reset()
		d.anchorNanos.Store(d.now().UnixNano())
		d.seed.Add(1)
		d.running.Store(true)

		d.logger.Debugw("IO started", "seed", d.seed.Load())
	}

	return nil
}

// StopIO unregisters an IO client. The 1 -> 0 transition sets the session
// idle; there are no other side effects. A stop with no active clients is
// ignored so the client count never goes negative.
func (d *Driver) StopIO() error {
	d.startMu.Lock()
	defer d.startMu.Unlock()

	if d.clientCount.Load() == 0 {
		d.logger.Warnw("StopIO without matching StartIO, ignoring")
		return nil
	}

	if d.clientCount.Add(^uint32(0)) == 0 {
		d.running.Store(false)
		d.logger.Debug("IO stopped")
	}

	return nil
}

// Running reports whether an IO session is active.
func (d *Driver) Running() bool { return d.running.Load() }

// ClientCount returns the number of registered IO clients.
func (d *Driver) ClientCount() uint32 { return d.clientCount.Load() }

// ZeroTimestamp returns the current (sample time, host time) reference pair,
// quantized to whole IO periods since the session anchor, plus the
// discontinuity seed. Host time is in nanoseconds on the same clock as the
// anchor.
func (d *Driver) ZeroTimestamp() (sampleTime float64, hostTime uint64, seed uint64) {
	anchor := d.anchorNanos.Load()
	elapsed := d.now().UnixNano() - anchor

	elapsedSamples := float64(elapsed) * SampleRate / 1e9
	cycles := uint64(elapsedSamples / BufferFrames)

	sampleTime = float64(cycles * BufferFrames)
	hostTime = uint64(anchor) + cycles*BufferFrames*1_000_000_000/SampleRate
	seed = d.seed.Load()

	return sampleTime, hostTime, seed
}

// WillDoIO declares which transfer operations the device performs. Exactly
// two are supported, both in place.
func (d *Driver) WillDoIO(op IOOperation) (willDo, inPlace bool) {
	willDo = op == OperationWriteMix || op == OperationReadInput

	return willDo, true
}

// DoIO performs one transfer operation on the real-time path. It must not
// block, allocate, or take locks, and it never fails: the host's periodic
// callback contract has no way to tolerate a failed cycle. Ring exhaustion
// degrades to dropped audio on the write side and injected silence on the
// read side, visible only through the diagnostic counters.
//
// buffer holds interleaved frames and must be at least
// frames*ChannelCount samples long.
func (d *Driver) DoIO(op IOOperation, buffer []float32, frames uint32) {
	switch op {
	case OperationWriteMix:
		written := d.producer.Write(buffer, frames)
		if written < frames {
			d.droppedFrames.Add(uint64(frames - written))
		}

	case OperationReadInput:
		read := d.consumer.Read(buffer, frames)
		if read < frames {
			d.silentFrames.Add(uint64(frames - read))
		}

		samples := int(frames) * ChannelCount

		if d.control.Muted() {
			clear(buffer[:samples])
			return
		}

		if vol := d.control.Volume(); vol != 1 {
			for i := range buffer[:samples] {
				buffer[i] *= vol
			}
		}
	}
}
