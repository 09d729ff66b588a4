package driver

import "errors"

var (
	// ErrBadObject is returned for queries addressing an object id that is
	// not part of the device's object graph.
	ErrBadObject = errors.New("bad audio object")

	// ErrUnknownProperty is returned for a valid object queried with a
	// selector it does not support, or with mismatched value types.
	ErrUnknownProperty = errors.New("unknown property")

	// ErrUnsupported is returned for operations the object class does not
	// permit, such as setting a read-only property or creating devices
	// dynamically.
	ErrUnsupported = errors.New("unsupported operation")
)
