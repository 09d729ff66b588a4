package driver

import "sync/atomic"

// RingBuffer is a lock-free single-producer/single-consumer queue of
// interleaved float32 audio frames. The write and read cursors increase
// monotonically and are never wrapped; capacity is rounded up to a power of
// two so that only the index computation is masked. One producer context and
// one consumer context at a time - nothing here is safe for multiple writers.
type RingBuffer struct {
	samples  []float32
	frames   uint64
	mask     uint64
	channels uint32

	writeCursor atomic.Uint64
	readCursor  atomic.Uint64
}

// NewRingBuffer allocates a buffer holding at least requestedFrames frames of
// channels interleaved samples. The actual capacity is the next power of two.
func NewRingBuffer(requestedFrames, channels uint32) *RingBuffer {
	frames := uint64(1)
	for frames < uint64(requestedFrames) {
		frames <<= 1
	}

	return &RingBuffer{
		samples:  make([]float32, frames*uint64(channels)),
		frames:   frames,
		mask:     frames - 1,
		channels: channels,
	}
}

// Capacity returns the buffer capacity in frames.
func (rb *RingBuffer) Capacity() uint32 { return uint32(rb.frames) }

// Channels returns the number of interleaved channels per frame.
func (rb *RingBuffer) Channels() uint32 { return rb.channels }

// AvailableFrames returns the number of frames written but not yet read.
// Always within [0, Capacity()].
func (rb *RingBuffer) AvailableFrames() uint32 {
	return uint32(rb.writeCursor.Load() - rb.readCursor.Load())
}

// FreeFrames returns the number of frames that can be written without
// overwriting unread data.
func (rb *RingBuffer) FreeFrames() uint32 {
	return uint32(rb.frames) - rb.AvailableFrames()
}

// Write copies up to frames interleaved frames from data into the buffer and
// returns the count actually written. It never blocks and never overwrites
// unread data; a short return is backpressure, not an error.
func (rb *RingBuffer) Write(data []float32, frames uint32) uint32 {
	if frames == 0 {
		return 0
	}
	if free := rb.FreeFrames(); frames > free {
		frames = free
	}
	if frames == 0 {
		return 0
	}

	wc := rb.writeCursor.Load()
	ch := uint64(rb.channels)
	for i := uint64(0); i < uint64(frames); i++ {
		pos := ((wc + i) & rb.mask) * ch
		copy(rb.samples[pos:pos+ch], data[i*ch:(i+1)*ch])
	}

	// The cursor store publishes the copied samples; the consumer must never
	// observe an advanced cursor before the data behind it.
	rb.writeCursor.Store(wc + uint64(frames))

	return frames
}

// Read copies up to frames interleaved frames into data and zero-fills
// whatever remains of the request, so the destination is always fully
// populated. Returns the count of real frames copied; the shortfall
// manifests as silence, never as stale data.
func (rb *RingBuffer) Read(data []float32, frames uint32) uint32 {
	read := rb.copyOut(data, frames)
	if read > 0 {
		rc := rb.readCursor.Load()
		rb.readCursor.Store(rc + uint64(read))
	}

	if read < frames {
		start := uint64(read) * uint64(rb.channels)
		end := uint64(frames) * uint64(rb.channels)
		clear(data[start:end])
	}

	return read
}

// Peek copies up to frames frames into data without advancing the read
// cursor. Unlike Read it does not zero-fill the remainder.
func (rb *RingBuffer) Peek(data []float32, frames uint32) uint32 {
	return rb.copyOut(data, frames)
}

// Skip advances the read cursor by up to frames frames, discarding them.
// Returns the count actually skipped.
func (rb *RingBuffer) Skip(frames uint32) uint32 {
	if avail := rb.AvailableFrames(); frames > avail {
		frames = avail
	}
	if frames == 0 {
		return 0
	}

	rc := rb.readCursor.Load()
	rb.readCursor.Store(rc + uint64(frames))

	return frames
}

// Reset clears the cursors and the buffer contents. Only the session owner
// may call this, and only while IO is not running.
func (rb *RingBuffer) Reset() {
	rb.writeCursor.Store(0)
	rb.readCursor.Store(0)
	clear(rb.samples)
}

func (rb *RingBuffer) copyOut(data []float32, frames uint32) uint32 {
	if frames == 0 {
		return 0
	}
	if avail := rb.AvailableFrames(); frames > avail {
		frames = avail
	}
	if frames == 0 {
		return 0
	}

	rc := rb.readCursor.Load()
	ch := uint64(rb.channels)
	for i := uint64(0); i < uint64(frames); i++ {
		pos := ((rc + i) & rb.mask) * ch
		copy(data[i*ch:(i+1)*ch], rb.samples[pos:pos+ch])
	}

	return frames
}

// Producer is the write-side view of a shared ring buffer. The duplex device
// design runs both streams over one physical buffer; handing the output
// stream a Producer and the input stream a Consumer keeps that sharing
// explicit instead of implied.
type Producer struct {
	rb *RingBuffer
}

// Write behaves exactly like RingBuffer.Write.
func (p Producer) Write(data []float32, frames uint32) uint32 {
	return p.rb.Write(data, frames)
}

// FreeFrames returns the writable frame count.
func (p Producer) FreeFrames() uint32 { return p.rb.FreeFrames() }

// Consumer is the read-side view of a shared ring buffer.
type Consumer struct {
	rb *RingBuffer
}

// Read behaves exactly like RingBuffer.Read.
func (c Consumer) Read(data []float32, frames uint32) uint32 {
	return c.rb.Read(data, frames)
}

// Peek behaves exactly like RingBuffer.Peek.
func (c Consumer) Peek(data []float32, frames uint32) uint32 {
	return c.rb.Peek(data, frames)
}

// Skip behaves exactly like RingBuffer.Skip.
func (c Consumer) Skip(frames uint32) uint32 { return c.rb.Skip(frames) }

// AvailableFrames returns the readable frame count.
func (c Consumer) AvailableFrames() uint32 { return c.rb.AvailableFrames() }

// Views returns the producer and consumer handles over this buffer.
func (rb *RingBuffer) Views() (Producer, Consumer) {
	return Producer{rb: rb}, Consumer{rb: rb}
}
