package driver

import (
	"sync"
	"testing"
)

func frameData(frames, channels int, seed float32) []float32 {
	data := make([]float32, frames*channels)
	for i := range data {
		data[i] = seed + float32(i)*0.001
	}

	return data
}

func TestRingBuffer_CapacityRounding(t *testing.T) {
	t.Parallel()

	cases := []struct {
		requested uint32
		want      uint32
	}{
		{requested: 500, want: 512},
		{requested: 512, want: 512},
		{requested: 1, want: 1},
		{requested: 3, want: 4},
		{requested: 48000 * 2, want: 131072},
	}

	for _, tc := range cases {
		rb := NewRingBuffer(tc.requested, 2)
		if rb.Capacity() != tc.want {
			t.Errorf("NewRingBuffer(%d).Capacity() = %d, want %d", tc.requested, rb.Capacity(), tc.want)
		}
	}
}

func TestRingBuffer_WriteReadRoundtrip(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer(512, 2)

	for _, frames := range []uint32{1, 100, 512} {
		in := frameData(int(frames), 2, 0.25)
		if n := rb.Write(in, frames); n != frames {
			t.Fatalf("Write(%d) = %d, want %d", frames, n, frames)
		}

		out := make([]float32, frames*2)
		if n := rb.Read(out, frames); n != frames {
			t.Fatalf("Read(%d) = %d, want %d", frames, n, frames)
		}

		for i := range in {
			if out[i] != in[i] {
				t.Fatalf("roundtrip of %d frames: sample %d = %v, want %v", frames, i, out[i], in[i])
			}
		}
	}
}

func TestRingBuffer_ShortReadZeroFills(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer(512, 2)

	in := frameData(100, 2, 0.5)
	rb.Write(in, 100)

	out := make([]float32, 256*2)
	for i := range out {
		out[i] = -1 // sentinel that must be overwritten
	}

	n := rb.Read(out, 256)
	if n != 100 {
		t.Fatalf("Read(256) = %d, want 100", n)
	}

	for i := 0; i < 100*2; i++ {
		if out[i] != in[i] {
			t.Fatalf("real sample %d = %v, want %v", i, out[i], in[i])
		}
	}
	for i := 100 * 2; i < 256*2; i++ {
		if out[i] != 0 {
			t.Fatalf("padding sample %d = %v, want exactly 0", i, out[i])
		}
	}
}

func TestRingBuffer_NeverOverwritesUnread(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer(8, 1)

	if n := rb.Write(frameData(8, 1, 0.1), 8); n != 8 {
		t.Fatalf("initial fill wrote %d frames, want 8", n)
	}

	// Full buffer: further writes must report zero, not clobber.
	if n := rb.Write(frameData(4, 1, 0.9), 4); n != 0 {
		t.Fatalf("Write on full buffer = %d, want 0", n)
	}

	out := make([]float32, 8)
	rb.Read(out, 8)
	if out[0] != 0.1 {
		t.Errorf("first sample = %v, want the original 0.1", out[0])
	}
}

func TestRingBuffer_AvailabilityInvariant(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer(16, 2)
	scratch := make([]float32, 64*2)

	check := func(step string) {
		avail := rb.AvailableFrames()
		if avail > rb.Capacity() {
			t.Fatalf("%s: available = %d exceeds capacity %d", step, avail, rb.Capacity())
		}
		if rb.FreeFrames() != rb.Capacity()-avail {
			t.Fatalf("%s: free = %d, want %d", step, rb.FreeFrames(), rb.Capacity()-avail)
		}
	}

	writes := []uint32{5, 11, 16, 3, 7}
	reads := []uint32{2, 16, 1, 9, 30}

	for i := range writes {
		rb.Write(scratch, writes[i])
		check("after write")
		rb.Read(scratch, reads[i])
		check("after read")
	}
}

func TestRingBuffer_PeekDoesNotAdvance(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer(64, 2)
	in := frameData(10, 2, 0.3)
	rb.Write(in, 10)

	peeked := make([]float32, 10*2)
	if n := rb.Peek(peeked, 10); n != 10 {
		t.Fatalf("Peek = %d, want 10", n)
	}
	if rb.AvailableFrames() != 10 {
		t.Fatalf("available after Peek = %d, want 10", rb.AvailableFrames())
	}

	out := make([]float32, 10*2)
	rb.Read(out, 10)
	for i := range in {
		if peeked[i] != out[i] {
			t.Fatalf("peeked sample %d = %v, read = %v", i, peeked[i], out[i])
		}
	}
}

func TestRingBuffer_SkipDiscards(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer(64, 1)
	rb.Write(frameData(20, 1, 0.2), 20)

	if n := rb.Skip(5); n != 5 {
		t.Fatalf("Skip(5) = %d, want 5", n)
	}
	if rb.AvailableFrames() != 15 {
		t.Fatalf("available after Skip = %d, want 15", rb.AvailableFrames())
	}

	// Skipping more than available clamps.
	if n := rb.Skip(100); n != 15 {
		t.Fatalf("Skip(100) = %d, want 15", n)
	}
}

func TestRingBuffer_Reset(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer(64, 2)
	rb.Write(frameData(30, 2, 0.7), 30)
	rb.Reset()

	if rb.AvailableFrames() != 0 {
		t.Fatalf("available after Reset = %d, want 0", rb.AvailableFrames())
	}

	out := make([]float32, 2)
	out[0], out[1] = -1, -1
	rb.Read(out, 1)
	if out[0] != 0 || out[1] != 0 {
		t.Error("Reset left stale samples behind")
	}
}

// Exercises the single-producer/single-consumer contract under the race
// detector: one goroutine streams writes, one streams reads, and every value
// that comes out must be one that went in, in order.
func TestRingBuffer_ConcurrentSPSC(t *testing.T) {
	t.Parallel()

	const frames = 1 << 14

	rb := NewRingBuffer(256, 1)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()

		buf := make([]float32, 64)
		next := float32(0)
		for next < frames {
			n := uint32(len(buf))
			if remaining := frames - next; remaining < float32(n) {
				n = uint32(remaining)
			}
			for i := uint32(0); i < n; i++ {
				buf[i] = next + float32(i)
			}
			written := rb.Write(buf, n)
			next += float32(written)
		}
	}()

	go func() {
		defer wg.Done()

		buf := make([]float32, 64)
		expect := float32(0)
		for expect < frames {
			n := rb.Peek(buf, uint32(len(buf)))
			for i := uint32(0); i < n; i++ {
				if buf[i] != expect {
					t.Errorf("consumer got %v, want %v", buf[i], expect)
					return
				}
				expect++
			}
			rb.Skip(n)
		}
	}()

	wg.Wait()
}
