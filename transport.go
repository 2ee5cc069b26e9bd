package serial

import (
	"bytes"
	"sync"
	"time"
)

// Transport is a synchronous serial transport owning at most one open
// device handle. A zero-value Transport is not usable; create instances
// with New. Every instance owns its own handle, timeout block and accrual
// buffer, so independent transports never interfere.
//
// All operations return results in the style of the call surface: Open and
// Close return a Status, the data operations return a non-negative byte or
// port count on success and a negative Status code on failure.
//
// A mutex serializes all operations, so a Transport is safe to share
// between goroutines, but the blocking model stays strictly synchronous:
// every call completes or waits out its timeout on the calling goroutine.
type Transport struct {
	mu       sync.Mutex
	fd       int
	config   Config
	timeouts Timeouts
	accrual  []byte
}

// New creates a transport with no open connection.
func New() *Transport {
	return &Transport{fd: invalidFd}
}

// Open acquires an exclusive handle to the named device and configures it
// with the requested line parameters and the default timeout policy.
//
// Returns StatusInvalidHandle when the device cannot be opened (absent,
// held exclusively elsewhere, permission denied) or when this transport
// already has an open connection. A failure after the handle was acquired
// (StatusGetPropertyError, StatusSetPropertyError, StatusSetTimeoutError)
// releases the handle before returning; no half-open state survives.
func (t *Transport) Open(device string, baudRate, dataBits int, parity Parity, stopBits StopBits) Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fd != invalidFd {
		return StatusInvalidHandle
	}

	fd, err := openDevice(device)
	if err != nil {
		return StatusInvalidHandle
	}

	termios, err := getLineState(fd)
	if err != nil {
		closeFd(fd)
		return StatusGetPropertyError
	}

	config := Config{
		BaudRate: baudRate,
		DataBits: dataBits,
		Parity:   parity,
		StopBits: stopBits,
	}
	if err := applyLineConfig(fd, termios, config); err != nil {
		closeFd(fd)
		return StatusSetPropertyError
	}

	timeouts := DefaultTimeouts()
	if err := applyReadInterval(fd, timeouts.Interval); err != nil {
		closeFd(fd)
		return StatusSetTimeoutError
	}

	t.fd = fd
	t.config = config
	t.timeouts = timeouts
	return StatusSuccess
}

// Close releases the device handle. Returns StatusInvalidHandle when no
// connection is open; a close on an already-closed transport is an error,
// not a no-op. When the host reports the release itself failed the handle
// is left in an indeterminate state and StatusCloseHandleError is
// returned; the transport should be considered unusable.
func (t *Transport) Close() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fd == invalidFd {
		return StatusInvalidHandle
	}

	if err := closeFd(t.fd); err != nil {
		return StatusCloseHandleError
	}

	t.fd = invalidFd
	return StatusSuccess
}

// IsOpen reports whether the transport currently holds a device handle.
func (t *Transport) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fd != invalidFd
}

// LineConfig returns the line configuration agreed at open time. The
// second result is false when no connection is open.
func (t *Transport) LineConfig() (Config, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.config, t.fd != invalidFd
}

// AmbientTimeouts returns the current timeout policy of the transport.
func (t *Transport) AmbientTimeouts() Timeouts {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timeouts
}

// Read reads up to len(buf) bytes from the device and returns the number
// of bytes actually read, or a negative status code.
//
// The call first rewrites the read side of the ambient timeout policy:
// interval and read constant both become timeout, the read multiplier
// becomes multiplier (write-side fields untouched). The transfer then
// waits at most timeout + multiplier*len(buf) milliseconds overall, with
// the interval bounding the gap between bytes. A timeout that leaves the
// buffer partly filled is success with a smaller count; zero means the
// timeout elapsed with nothing available. StatusReadError is returned only
// for a genuine I/O failure.
func (t *Transport) Read(buf []byte, timeout, multiplier int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fd == invalidFd {
		return StatusInvalidHandle.Int()
	}
	if timeout < 0 || multiplier < 0 {
		return StatusSetTimeoutError.Int()
	}

	t.timeouts.Interval = timeout
	t.timeouts.ReadConstant = timeout
	t.timeouts.ReadMultiplier = multiplier
	if err := applyReadInterval(t.fd, t.timeouts.Interval); err != nil {
		return StatusSetTimeoutError.Int()
	}

	n, err := t.fill(buf)
	if err != nil {
		return StatusReadError.Int()
	}
	return n
}

// ReadUntil reads byte by byte until delimiter appears in the accumulated
// data, len(buf) bytes have been accumulated, or an attempt yields no
// byte within the timeout. It returns the number of bytes accumulated, or
// a negative status code.
//
// The timeout update matches Read. On success the accumulated bytes plus
// a NUL terminator are copied into buf; the delimiter, when found, is the
// final part of the result (first occurrence, inclusive). When the
// accumulation plus terminator does not fit in buf the call fails with
// StatusBufferError and writes nothing.
func (t *Transport) ReadUntil(buf []byte, timeout, multiplier int, delimiter string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fd == invalidFd {
		return StatusInvalidHandle.Int()
	}
	if timeout < 0 || multiplier < 0 {
		return StatusSetTimeoutError.Int()
	}

	t.timeouts.Interval = timeout
	t.timeouts.ReadConstant = timeout
	t.timeouts.ReadMultiplier = multiplier
	if err := applyReadInterval(t.fd, t.timeouts.Interval); err != nil {
		return StatusSetTimeoutError.Int()
	}

	t.accrual = t.accrual[:0]
	delim := []byte(delimiter)

	for len(t.accrual) < len(buf) && !bytes.HasSuffix(t.accrual, delim) {
		var b [1]byte
		n, err := t.readOne(b[:])
		if err != nil {
			return StatusReadError.Int()
		}
		if n == 0 {
			// Stream exhausted within the timeout; stop rather than spin.
			break
		}
		t.accrual = append(t.accrual, b[0])
	}

	if len(t.accrual)+1 > len(buf) {
		return StatusBufferError.Int()
	}
	copy(buf, t.accrual)
	buf[len(t.accrual)] = 0
	return len(t.accrual)
}

// Write writes up to len(data) bytes to the device and returns the number
// of bytes actually accepted, or a negative status code.
//
// The call rewrites the write side of the ambient timeout policy: write
// constant becomes timeout, write multiplier becomes multiplier
// (read-side fields untouched). The transfer waits at most
// timeout + multiplier*len(data) milliseconds; a timeout that truncates
// the transfer is success with a smaller count. StatusWriteError is
// returned only for a genuine I/O failure.
func (t *Transport) Write(data []byte, timeout, multiplier int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fd == invalidFd {
		return StatusInvalidHandle.Int()
	}
	if timeout < 0 || multiplier < 0 {
		return StatusSetTimeoutError.Int()
	}

	t.timeouts.WriteConstant = timeout
	t.timeouts.WriteMultiplier = multiplier

	total := time.Duration(t.timeouts.WriteConstant+t.timeouts.WriteMultiplier*len(data)) * time.Millisecond
	deadline := time.Now().Add(total)

	n := 0
	for n < len(data) {
		ready, err := waitWritable(t.fd, remainingMs(deadline))
		if err != nil {
			return StatusWriteError.Int()
		}
		if !ready {
			break
		}
		k, err := writeFd(t.fd, data[n:])
		if err != nil {
			return StatusWriteError.Int()
		}
		if k == 0 {
			break
		}
		n += k
	}
	return n
}

// ListPorts probes the host's bounded serial device space and writes the
// discovered names, joined by separator and NUL-terminated, into buf. It
// returns the number of ports found, or a negative status code. The
// operation needs no open connection.
//
// When the joined result plus terminator exceeds len(buf) the call fails
// with StatusBufferError and writes nothing; no partial list is produced.
// Names are not escaped: a separator that can occur inside a port name
// makes the result ambiguous to split, so callers should pick one that
// cannot (Linux device names contain neither commas nor semicolons).
func (t *Transport) ListPorts(buf []byte, separator string) int {
	return writePortList(buf, probePorts(), separator)
}

// writePortList joins names with separator and copies the result plus a
// NUL terminator into buf, returning the name count. On insufficient
// capacity it fails with StatusBufferError and leaves buf untouched.
func writePortList(buf []byte, names []string, separator string) int {
	joined := joinPortNames(names, separator)

	if len(joined)+1 > len(buf) {
		return StatusBufferError.Int()
	}
	copy(buf, joined)
	buf[len(joined)] = 0
	return len(names)
}

// fill reads into buf until it is full, the composed read deadline
// expires, or the inter-byte interval elapses without data. Partial
// results are not errors.
func (t *Transport) fill(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	total := time.Duration(t.timeouts.ReadConstant+t.timeouts.ReadMultiplier*len(buf)) * time.Millisecond
	deadline := time.Now().Add(total)

	n := 0
	for n < len(buf) {
		wait := remainingMs(deadline)
		if n > 0 && t.timeouts.Interval > 0 && t.timeouts.Interval < wait {
			// After the first byte the gap bound takes over. Zero means
			// the interval is unused, matching the usual host semantics.
			wait = t.timeouts.Interval
		}
		ready, err := waitReadable(t.fd, wait)
		if err != nil {
			return n, err
		}
		if !ready {
			break
		}
		k, err := readFd(t.fd, buf[n:])
		if err != nil {
			return n, err
		}
		if k == 0 {
			break
		}
		n += k
	}
	return n, nil
}

// readOne performs a single bounded one-byte read attempt for the
// delimiter loop, waiting at most constant + multiplier milliseconds.
func (t *Transport) readOne(b []byte) (int, error) {
	wait := t.timeouts.ReadConstant + t.timeouts.ReadMultiplier
	ready, err := waitReadable(t.fd, wait)
	if err != nil {
		return 0, err
	}
	if !ready {
		return 0, nil
	}
	return readFd(t.fd, b)
}

func remainingMs(deadline time.Time) int {
	ms := int(time.Until(deadline) / time.Millisecond)
	if ms < 0 {
		return 0
	}
	return ms
}
