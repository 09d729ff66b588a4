package driver

import "fmt"

// Selector names one property of an audio object.
type Selector uint32

const (
	// Shared by every object class.
	SelectorBaseClass Selector = iota + 1
	SelectorClass
	SelectorOwner

	// Plugin.
	SelectorManufacturer
	SelectorOwnedObjects
	SelectorDeviceList
	SelectorDeviceByUID
	SelectorResourceBundle

	// Device.
	SelectorName
	SelectorDeviceUID
	SelectorModelUID
	SelectorTransportType
	SelectorRelatedDevices
	SelectorClockDomain
	SelectorIsAlive
	SelectorIsRunning
	SelectorCanBeDefault
	SelectorCanBeSystemDefault
	SelectorLatency
	SelectorSafetyOffset
	SelectorStreams
	SelectorControlList
	SelectorNominalSampleRate
	SelectorAvailableSampleRates
	SelectorIsHidden
	SelectorZeroTimestampPeriod

	// Streams.
	SelectorIsActive
	SelectorDirection
	SelectorTerminalType
	SelectorStartingChannel
	SelectorVirtualFormat
	SelectorPhysicalFormat
	SelectorAvailableVirtualFormats
	SelectorAvailablePhysicalFormats

	// Controls.
	SelectorControlScope
	SelectorControlElement
	SelectorVolumeScalar
	SelectorVolumeDecibels
	SelectorDecibelRange
	SelectorMuteState
)

// Address identifies a property on an object: which selector, within which
// scope, on which element.
type Address struct {
	Selector Selector
	Scope    Scope
	Element  uint32
}

// Wire sizes of the property value types, in bytes. These describe the
// host-facing data contract; the dispatcher itself trades in typed values.
const (
	sizeClass    uint32 = 4
	sizeObjectID uint32 = 4
	sizeUint32   uint32 = 4
	sizeBool     uint32 = 4
	sizeFloat32  uint32 = 4
	sizeFloat64  uint32 = 8
	sizeRange    uint32 = 16
	sizeFormat   uint32 = 24
)

type getterFunc func(d *Driver, addr Address) any
type setterFunc func(d *Driver, addr Address, value any) error

// property describes one selector on one object: the size of its value, its
// settability, and its behavior. The table replaces the manual branching of
// switch dispatch, so the property surface is independently testable.
type property struct {
	size     func(d *Driver, addr Address) uint32
	settable bool
	get      getterFunc
	set      setterFunc
}

type objectEntry struct {
	class      Class
	baseClass  Class
	owner      ObjectID
	properties map[Selector]property
}

func fixedSize(n uint32) func(*Driver, Address) uint32 {
	return func(*Driver, Address) uint32 { return n }
}

// readOnly builds a non-settable property of fixed size.
func readOnly(size uint32, get getterFunc) property {
	return property{size: fixedSize(size), get: get}
}

// stringProp sizes itself from the returned value.
func stringProp(get func(d *Driver) string) property {
	return property{
		size: func(d *Driver, _ Address) uint32 { return uint32(len(get(d))) },
		get:  func(d *Driver, _ Address) any { return get(d) },
	}
}

// idList sizes itself from the returned object id slice.
func idList(get func(d *Driver, addr Address) []ObjectID) property {
	return property{
		size: func(d *Driver, addr Address) uint32 {
			return sizeObjectID * uint32(len(get(d, addr)))
		},
		get: func(d *Driver, addr Address) any { return get(d, addr) },
	}
}

func baseProperties(entry *objectEntry) map[Selector]property {
	return map[Selector]property{
		SelectorBaseClass: readOnly(sizeClass, func(*Driver, Address) any { return entry.baseClass }),
		SelectorClass:     readOnly(sizeClass, func(*Driver, Address) any { return entry.class }),
		SelectorOwner:     readOnly(sizeObjectID, func(*Driver, Address) any { return entry.owner }),
	}
}

func newObjectEntry(class, baseClass Class, owner ObjectID) *objectEntry {
	entry := &objectEntry{class: class, baseClass: baseClass, owner: owner}
	entry.properties = baseProperties(entry)

	return entry
}

func newRegistry() map[ObjectID]*objectEntry {
	return map[ObjectID]*objectEntry{
		ObjectPlugin:        pluginEntry(),
		ObjectDevice:        deviceEntry(),
		ObjectOutputStream:  streamEntry(DirectionOutput, TerminalSpeaker),
		ObjectInputStream:   streamEntry(DirectionInput, TerminalMicrophone),
		ObjectVolumeControl: volumeEntry(),
		ObjectMuteControl:   muteEntry(),
	}
}

func pluginEntry() *objectEntry {
	entry := newObjectEntry(ClassPlugin, ClassObject, ObjectUnknown)

	entry.properties[SelectorManufacturer] = stringProp(func(d *Driver) string { return d.opts.Manufacturer })
	entry.properties[SelectorOwnedObjects] = idList(func(*Driver, Address) []ObjectID {
		return []ObjectID{ObjectDevice}
	})
	entry.properties[SelectorDeviceList] = idList(func(*Driver, Address) []ObjectID {
		return []ObjectID{ObjectDevice}
	})
	entry.properties[SelectorDeviceByUID] = readOnly(sizeObjectID, func(*Driver, Address) any {
		return ObjectDevice
	})
	entry.properties[SelectorResourceBundle] = stringProp(func(*Driver) string { return "" })

	return entry
}

func deviceEntry() *objectEntry {
	entry := newObjectEntry(ClassDevice, ClassObject, ObjectPlugin)
	props := entry.properties

	props[SelectorName] = stringProp(func(d *Driver) string { return d.opts.Name })
	props[SelectorManufacturer] = stringProp(func(d *Driver) string { return d.opts.Manufacturer })
	props[SelectorDeviceUID] = stringProp(func(d *Driver) string { return d.opts.UID })
	props[SelectorModelUID] = stringProp(func(d *Driver) string { return d.opts.ModelUID })

	props[SelectorTransportType] = readOnly(sizeUint32, func(*Driver, Address) any { return TransportVirtual })
	props[SelectorClockDomain] = readOnly(sizeUint32, func(*Driver, Address) any { return uint32(0) })
	props[SelectorLatency] = readOnly(sizeUint32, func(*Driver, Address) any { return uint32(0) })
	props[SelectorSafetyOffset] = readOnly(sizeUint32, func(*Driver, Address) any { return uint32(0) })
	props[SelectorZeroTimestampPeriod] = readOnly(sizeUint32, func(*Driver, Address) any { return uint32(BufferFrames) })

	props[SelectorIsAlive] = readOnly(sizeBool, func(*Driver, Address) any { return true })
	props[SelectorIsHidden] = readOnly(sizeBool, func(*Driver, Address) any { return false })
	props[SelectorCanBeDefault] = readOnly(sizeBool, func(*Driver, Address) any { return true })
	props[SelectorCanBeSystemDefault] = readOnly(sizeBool, func(*Driver, Address) any { return true })
	props[SelectorIsRunning] = readOnly(sizeBool, func(d *Driver, _ Address) any { return d.running.Load() })

	props[SelectorRelatedDevices] = idList(func(*Driver, Address) []ObjectID {
		return []ObjectID{ObjectDevice}
	})
	props[SelectorOwnedObjects] = idList(func(*Driver, Address) []ObjectID {
		return []ObjectID{ObjectOutputStream, ObjectInputStream, ObjectVolumeControl, ObjectMuteControl}
	})
	props[SelectorControlList] = idList(func(*Driver, Address) []ObjectID {
		return []ObjectID{ObjectVolumeControl, ObjectMuteControl}
	})
	props[SelectorStreams] = idList(func(_ *Driver, addr Address) []ObjectID {
		if addr.Scope == ScopeInput {
			return []ObjectID{ObjectInputStream}
		}
		return []ObjectID{ObjectOutputStream}
	})

	props[SelectorAvailableSampleRates] = readOnly(sizeRange, func(*Driver, Address) any {
		return []ValueRange{{Min: SampleRate, Max: SampleRate}}
	})
	props[SelectorNominalSampleRate] = property{
		size:     fixedSize(sizeFloat64),
		settable: true,
		get:      func(*Driver, Address) any { return float64(SampleRate) },
		set: func(_ *Driver, _ Address, value any) error {
			rate, ok := value.(float64)
			if !ok {
				return fmt.Errorf("%w: nominal sample rate wants float64", ErrUnknownProperty)
			}
			if rate != SampleRate {
				return fmt.Errorf("%w: sample rate %v, only %d is supported", ErrUnsupported, rate, SampleRate)
			}
			// The single supported rate is already in effect.
			return nil
		},
	}

	return entry
}

func streamEntry(dir Direction, term TerminalType) *objectEntry {
	entry := newObjectEntry(ClassStream, ClassObject, ObjectDevice)
	props := entry.properties

	props[SelectorIsActive] = readOnly(sizeBool, func(*Driver, Address) any { return true })
	props[SelectorDirection] = readOnly(sizeUint32, func(*Driver, Address) any { return dir })
	props[SelectorTerminalType] = readOnly(sizeUint32, func(*Driver, Address) any { return term })
	props[SelectorStartingChannel] = readOnly(sizeUint32, func(*Driver, Address) any { return uint32(1) })
	props[SelectorLatency] = readOnly(sizeUint32, func(*Driver, Address) any { return uint32(0) })

	format := readOnly(sizeFormat, func(d *Driver, _ Address) any { return d.Format(dir) })
	props[SelectorVirtualFormat] = format
	props[SelectorPhysicalFormat] = format

	available := readOnly(sizeFormat, func(d *Driver, _ Address) any {
		return []StreamFormat{d.Format(dir)}
	})
	props[SelectorAvailableVirtualFormats] = available
	props[SelectorAvailablePhysicalFormats] = available

	return entry
}

func volumeEntry() *objectEntry {
	entry := newObjectEntry(ClassVolumeControl, ClassControl, ObjectDevice)
	props := entry.properties

	props[SelectorControlScope] = readOnly(sizeUint32, func(*Driver, Address) any { return ScopeOutput })
	props[SelectorControlElement] = readOnly(sizeUint32, func(*Driver, Address) any { return ElementMain })

	props[SelectorVolumeScalar] = property{
		size:     fixedSize(sizeFloat32),
		settable: true,
		get:      func(d *Driver, _ Address) any { return d.control.Volume() },
		set: func(d *Driver, _ Address, value any) error {
			v, ok := value.(float32)
			if !ok {
				return fmt.Errorf("%w: volume scalar wants float32", ErrUnknownProperty)
			}
			d.control.SetVolume(v)
			return nil
		},
	}
	props[SelectorVolumeDecibels] = readOnly(sizeFloat32, func(d *Driver, _ Address) any {
		return d.control.VolumeDecibels()
	})
	props[SelectorDecibelRange] = readOnly(sizeRange, func(*Driver, Address) any {
		return ValueRange{Min: MinDecibels, Max: 0}
	})

	return entry
}

func muteEntry() *objectEntry {
	entry := newObjectEntry(ClassMuteControl, ClassControl, ObjectDevice)
	props := entry.properties

	props[SelectorControlScope] = readOnly(sizeUint32, func(*Driver, Address) any { return ScopeOutput })
	props[SelectorControlElement] = readOnly(sizeUint32, func(*Driver, Address) any { return ElementMain })

	props[SelectorMuteState] = property{
		size:     fixedSize(sizeBool),
		settable: true,
		get:      func(d *Driver, _ Address) any { return d.control.Muted() },
		set: func(d *Driver, _ Address, value any) error {
			switch v := value.(type) {
			case bool:
				d.control.SetMuted(v)
			case uint32:
				// Hosts hand the flag over as an integer; nonzero means muted.
				d.control.SetMuted(v != 0)
			default:
				return fmt.Errorf("%w: mute state wants bool", ErrUnknownProperty)
			}
			return nil
		},
	}

	return entry
}

// HasProperty reports whether the object supports the addressed selector.
// An unsupported selector on a valid object is false, not an error; so is an
// unknown object id.
func (d *Driver) HasProperty(id ObjectID, addr Address) bool {
	entry, ok := d.registry[id]
	if !ok {
		return false
	}

	_, ok = entry.properties[addr.Selector]

	return ok
}

// IsPropertySettable reports whether the addressed property accepts sets.
func (d *Driver) IsPropertySettable(id ObjectID, addr Address) (bool, error) {
	prop, err := d.lookup(id, addr)
	if err != nil {
		return false, err
	}

	return prop.settable, nil
}

// PropertyDataSize returns the wire size in bytes of the addressed
// property's value.
func (d *Driver) PropertyDataSize(id ObjectID, addr Address) (uint32, error) {
	prop, err := d.lookup(id, addr)
	if err != nil {
		return 0, err
	}

	return prop.size(d, addr), nil
}

// PropertyData returns the current value of the addressed property.
func (d *Driver) PropertyData(id ObjectID, addr Address) (any, error) {
	prop, err := d.lookup(id, addr)
	if err != nil {
		return nil, err
	}

	return prop.get(d, addr), nil
}

// SetPropertyData updates the addressed property. Only the nominal sample
// rate, the volume scalar and the mute state are settable; sets on anything
// else are rejected, never silently ignored. Value stores go through the
// same atomics the real-time path reads, so no extra locking is involved.
func (d *Driver) SetPropertyData(id ObjectID, addr Address, value any) error {
	prop, err := d.lookup(id, addr)
	if err != nil {
		return err
	}

	if !prop.settable {
		return fmt.Errorf("%w: property %d on object %d is read-only", ErrUnsupported, addr.Selector, id)
	}

	if err := prop.set(d, addr, value); err != nil {
		return err
	}

	d.logger.Debugw("Property set", "object", id, "selector", addr.Selector, "value", value)

	return nil
}

func (d *Driver) lookup(id ObjectID, addr Address) (property, error) {
	entry, ok := d.registry[id]
	if !ok {
		return property{}, fmt.Errorf("%w: id %d", ErrBadObject, id)
	}

	prop, ok := entry.properties[addr.Selector]
	if !ok {
		return property{}, fmt.Errorf("%w: selector %d on object %d", ErrUnknownProperty, addr.Selector, id)
	}

	return prop, nil
}

// CreateDevice rejects dynamic device creation; the object graph is fixed at
// construction time.
func (d *Driver) CreateDevice() (ObjectID, error) {
	return ObjectUnknown, fmt.Errorf("%w: dynamic device creation", ErrUnsupported)
}

// DestroyDevice rejects dynamic device destruction.
func (d *Driver) DestroyDevice(id ObjectID) error {
	return fmt.Errorf("%w: dynamic device destruction", ErrUnsupported)
}
