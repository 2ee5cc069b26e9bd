package serial

import "errors"

// Predefined error types for robust error handling
var (
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrDeviceInUse      = errors.New("serial device already in use")
	ErrInvalidBaudRate  = errors.New("invalid baud rate")
	ErrInvalidConfig    = errors.New("invalid serial configuration")
	ErrPortClosed       = errors.New("serial port is closed")

	// Device property errors
	ErrGetState    = errors.New("failed to read line configuration")
	ErrSetState    = errors.New("line configuration rejected by device")
	ErrSetTimeouts = errors.New("timeout values rejected by device")

	ErrBufferTooSmall = errors.New("destination buffer too small")
)
