package lightrig

import "errors"

var (
	// ErrNotReady is returned by operations that need a reset device.
	ErrNotReady = errors.New("lightrig: device not ready")
	// ErrDeviceLost is returned when the device was lost mid-operation.
	ErrDeviceLost = errors.New("lightrig: device lost")
	// ErrBadState is returned for lifecycle calls out of order.
	ErrBadState      = errors.New("lightrig: invalid lifecycle transition")
	ErrInvalidConfig = errors.New("lightrig: invalid config")
)
