package serial

import "fmt"

// Status is the signed result code returned by the Transport call surface.
// Zero is success, negative values identify the failing operation. Read,
// ReadUntil, Write and ListPorts return non-negative counts on success, so
// callers branch on the sign of the result.
type Status int

const (
	StatusSuccess          Status = 0
	StatusCloseHandleError Status = -1
	StatusInvalidHandle    Status = -2
	StatusReadError        Status = -3
	StatusWriteError       Status = -4
	StatusGetPropertyError Status = -5
	StatusSetPropertyError Status = -6
	StatusSetTimeoutError  Status = -7
	StatusBufferError      Status = -8
	StatusNotFound         Status = -9
)

// Int returns the raw code for callers that pass results across a
// foreign-function boundary.
func (s Status) Int() int {
	return int(s)
}

// Ok reports whether the status is the success code.
func (s Status) Ok() bool {
	return s == StatusSuccess
}

// Err returns nil for the success code and an error describing the
// failure otherwise, for callers that prefer Go error handling over
// branching on the sign of a result.
func (s Status) Err() error {
	if s == StatusSuccess {
		return nil
	}
	return fmt.Errorf("serial: %s", s)
}

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusCloseHandleError:
		return "close handle failed"
	case StatusInvalidHandle:
		return "invalid handle"
	case StatusReadError:
		return "read failed"
	case StatusWriteError:
		return "write failed"
	case StatusGetPropertyError:
		return "get property failed"
	case StatusSetPropertyError:
		return "set property failed"
	case StatusSetTimeoutError:
		return "set timeout failed"
	case StatusBufferError:
		return "destination buffer too small"
	case StatusNotFound:
		return "resource not found"
	default:
		return fmt.Sprintf("unknown status %d", int(s))
	}
}
