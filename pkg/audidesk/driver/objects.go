package driver

// ObjectID is the stable positive identifier of an addressable audio object.
// The graph is fixed at construction time; ids are never reused.
type ObjectID uint32

// The static object graph: one plugin owning one device, which owns two
// streams (output mix, input loopback) and two controls (volume, mute). This
// is the smallest shape the host needs to treat the device as a valid,
// selectable, volume-controllable output.
const (
	ObjectUnknown       ObjectID = 0
	ObjectPlugin        ObjectID = 1
	ObjectDevice        ObjectID = 2
	ObjectOutputStream  ObjectID = 3
	ObjectInputStream   ObjectID = 4
	ObjectVolumeControl ObjectID = 5
	ObjectMuteControl   ObjectID = 6
)

// Class tags the kind of an audio object. Control objects additionally
// report ClassControl as their base class.
type Class uint32

const (
	ClassObject Class = iota + 1
	ClassPlugin
	ClassDevice
	ClassStream
	ClassControl
	ClassVolumeControl
	ClassMuteControl
)

// Scope qualifies which side of the device a property addresses.
type Scope uint32

const (
	ScopeGlobal Scope = iota
	ScopeInput
	ScopeOutput
)

// ElementMain is the only element the device exposes.
const ElementMain uint32 = 0

// Direction of a stream relative to the host.
type Direction uint32

const (
	DirectionOutput Direction = 0
	DirectionInput  Direction = 1
)

// Terminal types reported for the two streams.
type TerminalType uint32

const (
	TerminalSpeaker TerminalType = iota + 1
	TerminalMicrophone
)

// TransportVirtual is the transport type of the device; there is no
// physical hardware behind it.
const TransportVirtual uint32 = 0x76697274 // 'virt'

// StreamFormat describes the fixed linear-PCM layout of a stream. There is a
// single supported configuration and no negotiation; the input and output
// streams share identical parameters.
type StreamFormat struct {
	SampleRate float64
	Channels   uint32
	BitDepth   uint32
	Direction  Direction
}

// ValueRange is a closed numeric interval, used for the supported
// sample-rate range and the decibel range.
type ValueRange struct {
	Min float64
	Max float64
}

// Fixed device parameters. BufferFrames is both the IO period and the
// zero-timestamp quantum; the ring holds RingSeconds of audio.
const (
	SampleRate   = 48000
	ChannelCount = 2
	BitDepth     = 32
	BufferFrames = 512
	RingSeconds  = 2
)
