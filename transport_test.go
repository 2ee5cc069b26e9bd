package serial

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// openPTY allocates a pseudo-terminal pair and returns the master
// descriptor plus the slave device path. The slave behaves like a real
// serial device for everything the transport does: termios configuration,
// exclusive open, poll-driven reads and writes.
func openPTY(t *testing.T) (int, string) {
	t.Helper()

	master, err := unix.Open("/dev/ptmx", unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		t.Skipf("no pty available: %v", err)
	}
	t.Cleanup(func() { unix.Close(master) })

	if err := unix.IoctlSetPointerInt(master, unix.TIOCSPTLCK, 0); err != nil {
		t.Skipf("cannot unlock pty: %v", err)
	}
	num, err := unix.IoctlGetInt(master, unix.TIOCGPTN)
	if err != nil {
		t.Skipf("cannot resolve pty slave: %v", err)
	}

	return master, fmt.Sprintf("/dev/pts/%d", num)
}

// openTransport opens a transport on a fresh pty slave and returns it
// together with the master descriptor.
func openTransport(t *testing.T) (*Transport, int) {
	t.Helper()

	master, slave := openPTY(t)
	tr := New()
	if st := tr.Open(slave, 9600, 8, ParityNone, StopBitsOne); !st.Ok() {
		t.Fatalf("Open(%s) failed: %v", slave, st)
	}
	t.Cleanup(func() { tr.Close() })
	return tr, master
}

// readMaster drains up to want bytes from the master side, waiting at
// most timeout for them to arrive.
func readMaster(t *testing.T, master, want int, timeout time.Duration) []byte {
	t.Helper()

	deadline := time.Now().Add(timeout)
	var out []byte
	buf := make([]byte, 256)
	for len(out) < want && time.Now().Before(deadline) {
		fds := []unix.PollFd{{Fd: int32(master), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, 50)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			t.Fatalf("poll on master failed: %v", err)
		}
		if n == 0 {
			continue
		}
		k, err := unix.Read(master, buf)
		if err != nil {
			t.Fatalf("read on master failed: %v", err)
		}
		out = append(out, buf[:k]...)
	}
	return out
}

func writeMaster(t *testing.T, master int, data []byte) {
	t.Helper()
	if _, err := unix.Write(master, data); err != nil {
		t.Fatalf("write on master failed: %v", err)
	}
}

func TestOpenCloseLifecycle(t *testing.T) {
	_, slave := openPTY(t)

	tr := New()
	if st := tr.Open(slave, 9600, 8, ParityNone, StopBitsOne); !st.Ok() {
		t.Fatalf("Open failed: %v", st)
	}
	if !tr.IsOpen() {
		t.Error("Transport should report open after successful Open")
	}

	config, ok := tr.LineConfig()
	if !ok {
		t.Error("LineConfig should be available while open")
	}
	if config.BaudRate != 9600 || config.DataBits != 8 {
		t.Errorf("Unexpected line config: %+v", config)
	}

	// A successful open installs the default timeout policy.
	if timeouts := tr.AmbientTimeouts(); timeouts != DefaultTimeouts() {
		t.Errorf("Expected default timeouts, got %+v", timeouts)
	}

	if st := tr.Close(); !st.Ok() {
		t.Errorf("Close failed: %v", st)
	}
	if tr.IsOpen() {
		t.Error("Transport should report closed after Close")
	}

	// Close-after-close is an error, not a no-op.
	if st := tr.Close(); st != StatusInvalidHandle {
		t.Errorf("Second Close: expected StatusInvalidHandle, got %v", st)
	}
}

func TestOperationsWithoutOpen(t *testing.T) {
	tr := New()
	buf := make([]byte, 16)

	if result := tr.Read(buf, 100, 10); result != StatusInvalidHandle.Int() {
		t.Errorf("Read before open: expected %d, got %d", StatusInvalidHandle.Int(), result)
	}
	if result := tr.ReadUntil(buf, 100, 10, "\n"); result != StatusInvalidHandle.Int() {
		t.Errorf("ReadUntil before open: expected %d, got %d", StatusInvalidHandle.Int(), result)
	}
	if result := tr.Write([]byte("x"), 100, 10); result != StatusInvalidHandle.Int() {
		t.Errorf("Write before open: expected %d, got %d", StatusInvalidHandle.Int(), result)
	}
	if st := tr.Close(); st != StatusInvalidHandle {
		t.Errorf("Close before open: expected StatusInvalidHandle, got %v", st)
	}
}

func TestOperationsAfterClose(t *testing.T) {
	_, slave := openPTY(t)

	tr := New()
	if st := tr.Open(slave, 9600, 8, ParityNone, StopBitsOne); !st.Ok() {
		t.Fatalf("Open failed: %v", st)
	}
	if st := tr.Close(); !st.Ok() {
		t.Fatalf("Close failed: %v", st)
	}

	buf := make([]byte, 16)
	if result := tr.Read(buf, 100, 10); result != StatusInvalidHandle.Int() {
		t.Errorf("Read after close: expected %d, got %d", StatusInvalidHandle.Int(), result)
	}
	if result := tr.Write([]byte("x"), 100, 10); result != StatusInvalidHandle.Int() {
		t.Errorf("Write after close: expected %d, got %d", StatusInvalidHandle.Int(), result)
	}
}

func TestOpenNonExistentDevice(t *testing.T) {
	tr := New()
	if st := tr.Open("/dev/nonexistent", 9600, 8, ParityNone, StopBitsOne); st != StatusInvalidHandle {
		t.Errorf("Expected StatusInvalidHandle, got %v", st)
	}
	if tr.IsOpen() {
		t.Error("Transport must not report open after failed Open")
	}
}

// /dev/null opens but has no line-control block, so the handle must be
// acquired, fail the property read and be released again.
func TestOpenNonSerialDevice(t *testing.T) {
	tr := New()
	if st := tr.Open("/dev/null", 9600, 8, ParityNone, StopBitsOne); st != StatusGetPropertyError {
		t.Errorf("Expected StatusGetPropertyError, got %v", st)
	}
	if tr.IsOpen() {
		t.Error("No half-open state may survive a failed configure")
	}
	if st := tr.Close(); st != StatusInvalidHandle {
		t.Errorf("Close after failed open: expected StatusInvalidHandle, got %v", st)
	}
}

func TestOpenRejectedLineConfig(t *testing.T) {
	tests := []struct {
		name     string
		baud     int
		dataBits int
		stopBits StopBits
	}{
		{"invalid baud", 123456, 8, StopBitsOne},
		{"invalid data bits", 9600, 9, StopBitsOne},
		{"one-and-half stop bits unsupported", 9600, 8, StopBitsOneHalf},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, slave := openPTY(t)
			tr := New()
			if st := tr.Open(slave, test.baud, test.dataBits, ParityNone, test.stopBits); st != StatusSetPropertyError {
				t.Errorf("Expected StatusSetPropertyError, got %v", st)
			}
			if tr.IsOpen() {
				t.Error("Handle must be released after rejected configure")
			}
		})
	}
}

func TestOpenWhileOpen(t *testing.T) {
	tr, _ := openTransport(t)

	_, slave := openPTY(t)
	if st := tr.Open(slave, 9600, 8, ParityNone, StopBitsOne); st != StatusInvalidHandle {
		t.Errorf("Open on open transport: expected StatusInvalidHandle, got %v", st)
	}
	if !tr.IsOpen() {
		t.Error("Original connection must survive a rejected re-open")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	tr, master := openTransport(t)

	payload := []byte("PING")
	if n := tr.Write(payload, 100, 10); n != len(payload) {
		t.Fatalf("Write: expected %d bytes accepted, got %d", len(payload), n)
	}

	if got := readMaster(t, master, len(payload), time.Second); !bytes.Equal(got, payload) {
		t.Errorf("Master received %q, expected %q", got, payload)
	}

	// Echo back from the device side.
	writeMaster(t, master, []byte("PONG"))
	buf := make([]byte, 4)
	if n := tr.Read(buf, 200, 10); n != 4 {
		t.Fatalf("Read: expected 4 bytes, got %d", n)
	}
	if !bytes.Equal(buf, []byte("PONG")) {
		t.Errorf("Read %q, expected %q", buf, "PONG")
	}
}

// A silent device yields a zero count, never an error.
func TestReadSilentDevice(t *testing.T) {
	tr, _ := openTransport(t)

	buf := make([]byte, 4)
	if n := tr.Read(buf, 50, 1); n != 0 {
		t.Errorf("Read on silent device: expected 0, got %d", n)
	}
}

func TestReadPartial(t *testing.T) {
	tr, master := openTransport(t)

	writeMaster(t, master, []byte("AB"))

	// Capacity exceeds what arrives; the timeout truncates the transfer
	// and the partial count is success.
	buf := make([]byte, 64)
	n := tr.Read(buf, 100, 1)
	if n <= 0 {
		t.Fatalf("Expected partial read, got %d", n)
	}
	if got := string(buf[:n]); got != "AB" && got != "A" {
		t.Errorf("Unexpected partial data %q", got)
	}
}

func TestReadNegativeTimeoutRejected(t *testing.T) {
	tr, _ := openTransport(t)

	buf := make([]byte, 4)
	if result := tr.Read(buf, -1, 10); result != StatusSetTimeoutError.Int() {
		t.Errorf("Expected %d, got %d", StatusSetTimeoutError.Int(), result)
	}
	if result := tr.Write([]byte("x"), 10, -1); result != StatusSetTimeoutError.Int() {
		t.Errorf("Expected %d, got %d", StatusSetTimeoutError.Int(), result)
	}
}

func TestReadUntilDelimiter(t *testing.T) {
	tr, master := openTransport(t)

	writeMaster(t, master, []byte("HELLO\nWORLD"))

	buf := make([]byte, 64)
	n := tr.ReadUntil(buf, 100, 10, "\n")
	if n != 6 {
		t.Fatalf("Expected 6 bytes up to and including delimiter, got %d", n)
	}
	if got := string(buf[:n]); got != "HELLO\n" {
		t.Errorf("Accumulated %q, expected %q", got, "HELLO\n")
	}
	if buf[n] != 0 {
		t.Error("Result must carry a NUL terminator for string consumers")
	}

	// The rest of the stream stays available for the next read.
	rest := make([]byte, 5)
	if n := tr.Read(rest, 100, 10); n != 5 || string(rest[:n]) != "WORLD" {
		t.Errorf("Expected remaining %q, got %q (%d bytes)", "WORLD", rest[:n], n)
	}
}

func TestReadUntilMultiByteDelimiter(t *testing.T) {
	tr, master := openTransport(t)

	writeMaster(t, master, []byte("OK\r\n+more"))

	buf := make([]byte, 64)
	n := tr.ReadUntil(buf, 100, 10, "\r\n")
	if n != 4 {
		t.Fatalf("Expected 4 bytes, got %d", n)
	}
	if got := string(buf[:n]); got != "OK\r\n" {
		t.Errorf("Accumulated %q, expected %q", got, "OK\r\n")
	}
}

// Without the delimiter anywhere in the stream, the loop terminates once
// the device has nothing more to offer instead of hanging.
func TestReadUntilDelimiterAbsent(t *testing.T) {
	tr, master := openTransport(t)

	writeMaster(t, master, []byte("ABC"))

	buf := make([]byte, 64)
	start := time.Now()
	n := tr.ReadUntil(buf, 50, 1, "\n")
	elapsed := time.Since(start)

	if n != 3 {
		t.Errorf("Expected 3 accumulated bytes, got %d", n)
	}
	if got := string(buf[:3]); got != "ABC" {
		t.Errorf("Accumulated %q, expected %q", got, "ABC")
	}
	if elapsed > 3*time.Second {
		t.Errorf("ReadUntil took %v, should terminate promptly", elapsed)
	}
}

func TestReadUntilNothingAvailable(t *testing.T) {
	tr, _ := openTransport(t)

	buf := make([]byte, 16)
	if n := tr.ReadUntil(buf, 50, 1, "\n"); n != 0 {
		t.Errorf("Expected 0 on exhausted stream, got %d", n)
	}
	if buf[0] != 0 {
		t.Error("Empty result must still be NUL-terminated")
	}
}

// The accumulated data plus its terminator must fit the destination;
// otherwise the call fails without writing a truncated result.
func TestReadUntilBufferTooSmall(t *testing.T) {
	tr, master := openTransport(t)

	writeMaster(t, master, []byte("ABCDEF"))

	buf := make([]byte, 4)
	for i := range buf {
		buf[i] = 0xFF
	}
	result := tr.ReadUntil(buf, 100, 10, "\n")
	if result != StatusBufferError.Int() {
		t.Fatalf("Expected %d, got %d", StatusBufferError.Int(), result)
	}
	for i, b := range buf {
		if b != 0xFF {
			t.Errorf("Buffer modified at index %d on failure", i)
			break
		}
	}
}

// Read rewrites only the read side of the ambient policy, write only the
// write side; the last values set persist.
func TestAmbientTimeoutUpdates(t *testing.T) {
	tr, _ := openTransport(t)

	if n := tr.Write([]byte("x"), 75, 5); n < 0 {
		t.Fatalf("Write failed: %d", n)
	}
	timeouts := tr.AmbientTimeouts()
	if timeouts.WriteConstant != 75 || timeouts.WriteMultiplier != 5 {
		t.Errorf("Write side not updated: %+v", timeouts)
	}
	if timeouts.Interval != 50 || timeouts.ReadConstant != 50 || timeouts.ReadMultiplier != 10 {
		t.Errorf("Read side must stay untouched by Write: %+v", timeouts)
	}

	buf := make([]byte, 4)
	if n := tr.Read(buf, 120, 7); n < 0 {
		t.Fatalf("Read failed: %d", n)
	}
	timeouts = tr.AmbientTimeouts()
	if timeouts.Interval != 120 || timeouts.ReadConstant != 120 || timeouts.ReadMultiplier != 7 {
		t.Errorf("Read side not updated: %+v", timeouts)
	}
	if timeouts.WriteConstant != 75 || timeouts.WriteMultiplier != 5 {
		t.Errorf("Write side must stay untouched by Read: %+v", timeouts)
	}
}

func TestInstancesIndependent(t *testing.T) {
	first, _ := openTransport(t)
	second, master := openTransport(t)

	if st := first.Close(); !st.Ok() {
		t.Fatalf("Close failed: %v", st)
	}

	if !second.IsOpen() {
		t.Fatal("Closing one transport must not affect another")
	}
	writeMaster(t, master, []byte("OK"))
	buf := make([]byte, 2)
	if n := second.Read(buf, 200, 10); n != 2 {
		t.Errorf("Read on surviving transport: expected 2, got %d", n)
	}
}

// End-to-end sequence from the call-surface contract: open, write,
// read from a silent device (zero, not an error), close.
func TestEndToEndScenario(t *testing.T) {
	_, slave := openPTY(t)

	tr := New()
	if st := tr.Open(slave, 9600, 8, ParityNone, StopBitsOne); st != StatusSuccess {
		t.Fatalf("open: expected 0, got %d", st.Int())
	}
	if n := tr.Write([]byte("PING"), 100, 10); n != 4 {
		t.Fatalf("write: expected 4, got %d", n)
	}
	buf := make([]byte, 4)
	if n := tr.Read(buf, 100, 10); n < 0 || n > 4 {
		t.Fatalf("read: expected 0..4, got %d", n)
	}
	if st := tr.Close(); st != StatusSuccess {
		t.Fatalf("close: expected 0, got %d", st.Int())
	}
}
