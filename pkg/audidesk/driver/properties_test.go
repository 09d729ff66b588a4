package driver

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

func newTestDriver(t *testing.T) *Driver {
	t.Helper()

	d, err := New(zap.NewNop().Sugar(), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return d
}

func addr(sel Selector) Address {
	return Address{Selector: sel, Scope: ScopeGlobal, Element: ElementMain}
}

func TestHasProperty(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)

	if !d.HasProperty(ObjectDevice, addr(SelectorDeviceUID)) {
		t.Error("HasProperty(device, deviceUID) = false, want true")
	}

	// Supported object, unsupported selector: false, not an error.
	if d.HasProperty(ObjectDevice, addr(SelectorMuteState)) {
		t.Error("HasProperty(device, muteState) = true, want false")
	}

	// Unknown object id: false for every selector.
	for sel := SelectorBaseClass; sel <= SelectorMuteState; sel++ {
		if d.HasProperty(ObjectID(99), addr(sel)) {
			t.Fatalf("HasProperty(99, %d) = true, want false", sel)
		}
	}
}

func TestPropertyDataSize_Errors(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)

	if _, err := d.PropertyDataSize(ObjectID(42), addr(SelectorClass)); !errors.Is(err, ErrBadObject) {
		t.Errorf("PropertyDataSize on unknown object: err = %v, want ErrBadObject", err)
	}

	if _, err := d.PropertyDataSize(ObjectPlugin, addr(SelectorMuteState)); !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("PropertyDataSize with bad selector: err = %v, want ErrUnknownProperty", err)
	}

	size, err := d.PropertyDataSize(ObjectDevice, addr(SelectorNominalSampleRate))
	if err != nil {
		t.Fatalf("PropertyDataSize(device, nominalSampleRate) error = %v", err)
	}
	if size != 8 {
		t.Errorf("nominal sample rate size = %d, want 8", size)
	}
}

func TestObjectGraph(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)

	owned, err := d.PropertyData(ObjectDevice, addr(SelectorOwnedObjects))
	if err != nil {
		t.Fatalf("PropertyData(device, ownedObjects) error = %v", err)
	}
	ids := owned.([]ObjectID)
	want := []ObjectID{ObjectOutputStream, ObjectInputStream, ObjectVolumeControl, ObjectMuteControl}
	if len(ids) != len(want) {
		t.Fatalf("device owns %d objects, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("owned[%d] = %d, want %d", i, ids[i], want[i])
		}
	}

	owner, _ := d.PropertyData(ObjectVolumeControl, addr(SelectorOwner))
	if owner.(ObjectID) != ObjectDevice {
		t.Errorf("volume control owner = %v, want device", owner)
	}

	devices, _ := d.PropertyData(ObjectPlugin, addr(SelectorDeviceList))
	if list := devices.([]ObjectID); len(list) != 1 || list[0] != ObjectDevice {
		t.Errorf("plugin device list = %v, want [device]", list)
	}
}

func TestStreamsSelectedByScope(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)

	out, err := d.PropertyData(ObjectDevice, Address{Selector: SelectorStreams, Scope: ScopeOutput})
	if err != nil {
		t.Fatalf("PropertyData(streams, output) error = %v", err)
	}
	if ids := out.([]ObjectID); len(ids) != 1 || ids[0] != ObjectOutputStream {
		t.Errorf("output-scope streams = %v, want [output stream]", ids)
	}

	in, _ := d.PropertyData(ObjectDevice, Address{Selector: SelectorStreams, Scope: ScopeInput})
	if ids := in.([]ObjectID); len(ids) != 1 || ids[0] != ObjectInputStream {
		t.Errorf("input-scope streams = %v, want [input stream]", ids)
	}
}

func TestStreamFormats(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)

	outFmt, err := d.PropertyData(ObjectOutputStream, addr(SelectorVirtualFormat))
	if err != nil {
		t.Fatalf("PropertyData(output stream, virtualFormat) error = %v", err)
	}
	inFmt, err := d.PropertyData(ObjectInputStream, addr(SelectorVirtualFormat))
	if err != nil {
		t.Fatalf("PropertyData(input stream, virtualFormat) error = %v", err)
	}

	of := outFmt.(StreamFormat)
	sf := inFmt.(StreamFormat)

	if of.Direction != DirectionOutput || sf.Direction != DirectionInput {
		t.Errorf("stream directions = %v/%v, want output/input", of.Direction, sf.Direction)
	}

	// Apart from direction the two streams share identical parameters.
	of.Direction = sf.Direction
	if of != sf {
		t.Errorf("stream formats differ: %+v vs %+v", outFmt, inFmt)
	}
	if sf.SampleRate != SampleRate || sf.Channels != ChannelCount || sf.BitDepth != BitDepth {
		t.Errorf("format = %+v, want %v Hz / %v ch / %v bit", sf, SampleRate, ChannelCount, BitDepth)
	}
}

func TestExactlyThreeSettableProperties(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)

	settable := 0
	for id, entry := range d.registry {
		for sel := range entry.properties {
			ok, err := d.IsPropertySettable(id, addr(sel))
			if err != nil {
				t.Fatalf("IsPropertySettable(%d, %d) error = %v", id, sel, err)
			}
			if ok {
				settable++
			}
		}
	}

	if settable != 3 {
		t.Errorf("found %d settable properties, want exactly 3", settable)
	}
}

func TestSetVolumeScalar(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)

	if err := d.SetPropertyData(ObjectVolumeControl, addr(SelectorVolumeScalar), float32(0.5)); err != nil {
		t.Fatalf("set volume scalar error = %v", err)
	}

	got, err := d.PropertyData(ObjectVolumeControl, addr(SelectorVolumeScalar))
	if err != nil {
		t.Fatalf("get volume scalar error = %v", err)
	}
	if got.(float32) != 0.5 {
		t.Errorf("volume scalar = %v, want 0.5", got)
	}

	db, _ := d.PropertyData(ObjectVolumeControl, addr(SelectorVolumeDecibels))
	if diff := float64(db.(float32)) + 6.02; diff > 0.01 || diff < -0.01 {
		t.Errorf("volume decibels = %v, want about -6.02", db)
	}

	// Wrong value type is a property mismatch, and state stays put.
	if err := d.SetPropertyData(ObjectVolumeControl, addr(SelectorVolumeScalar), "loud"); !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("set volume with string: err = %v, want ErrUnknownProperty", err)
	}
	if d.control.Volume() != 0.5 {
		t.Errorf("volume changed to %v by a rejected set", d.control.Volume())
	}
}

func TestSetMuteState(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)

	if err := d.SetPropertyData(ObjectMuteControl, addr(SelectorMuteState), true); err != nil {
		t.Fatalf("set mute error = %v", err)
	}
	if got, _ := d.PropertyData(ObjectMuteControl, addr(SelectorMuteState)); got.(bool) != true {
		t.Error("mute state = false after set")
	}

	// Integer form: any nonzero value is true.
	if err := d.SetPropertyData(ObjectMuteControl, addr(SelectorMuteState), uint32(0)); err != nil {
		t.Fatalf("set mute uint32 error = %v", err)
	}
	if got, _ := d.PropertyData(ObjectMuteControl, addr(SelectorMuteState)); got.(bool) != false {
		t.Error("mute state = true after uint32(0) set")
	}
	_ = d.SetPropertyData(ObjectMuteControl, addr(SelectorMuteState), uint32(7))
	if got, _ := d.PropertyData(ObjectMuteControl, addr(SelectorMuteState)); got.(bool) != true {
		t.Error("mute state = false after uint32(7) set")
	}
}

func TestSetNominalSampleRate(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)

	if err := d.SetPropertyData(ObjectDevice, addr(SelectorNominalSampleRate), float64(SampleRate)); err != nil {
		t.Errorf("set supported sample rate error = %v", err)
	}

	if err := d.SetPropertyData(ObjectDevice, addr(SelectorNominalSampleRate), 44100.0); !errors.Is(err, ErrUnsupported) {
		t.Errorf("set unsupported sample rate: err = %v, want ErrUnsupported", err)
	}

	got, _ := d.PropertyData(ObjectDevice, addr(SelectorNominalSampleRate))
	if got.(float64) != SampleRate {
		t.Errorf("sample rate = %v after rejected set, want %v", got, SampleRate)
	}
}

func TestSetReadOnlyPropertyRejected(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)

	err := d.SetPropertyData(ObjectDevice, addr(SelectorDeviceUID), "new-uid")
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("set on read-only property: err = %v, want ErrUnsupported", err)
	}

	err = d.SetPropertyData(ObjectID(12), addr(SelectorDeviceUID), "uid")
	if !errors.Is(err, ErrBadObject) {
		t.Errorf("set on unknown object: err = %v, want ErrBadObject", err)
	}
}

func TestDynamicDevicesRejected(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)

	if _, err := d.CreateDevice(); !errors.Is(err, ErrUnsupported) {
		t.Errorf("CreateDevice: err = %v, want ErrUnsupported", err)
	}
	if err := d.DestroyDevice(ObjectDevice); !errors.Is(err, ErrUnsupported) {
		t.Errorf("DestroyDevice: err = %v, want ErrUnsupported", err)
	}
}
