// Package serial provides a minimal, synchronous transport over a host
// serial (TTY) device: open a port with line parameters, read and write
// bytes under timeout control, scan for a delimiter during a read, and
// enumerate the ports available on the host.
//
// The package is built for Linux and speaks termios directly. There is no
// background goroutine, no callback and no retry: every operation either
// completes or blocks its caller up to the configured timeout and reports
// the outcome exactly once.
//
// # Call surface
//
// A Transport owns at most one open device handle. Open and Close return a
// Status; the data operations return a non-negative count on success and a
// negative Status code on failure, so results can be passed unchanged
// across a foreign-function boundary:
//
//	t := serial.New()
//	if st := t.Open("/dev/ttyUSB0", 9600, 8, serial.ParityNone, serial.StopBitsOne); !st.Ok() {
//	    log.Fatal(st)
//	}
//	defer t.Close()
//
//	buf := make([]byte, 64)
//	n := t.Write([]byte("AT\r\n"), 100, 10)
//	n = t.Read(buf, 100, 10)
//	if n < 0 {
//	    log.Fatal(serial.Status(n))
//	}
//
// A read or write that moves fewer bytes than requested because a timeout
// elapsed is a partial success reported through the count, never an error.
//
// # Timeout policy
//
// Each call carries a timeout constant and a per-byte multiplier, both in
// milliseconds; the transfer deadline is constant + multiplier*capacity,
// with the constant doubling as the inter-byte gap bound on reads. The
// values set by the last call persist as the transport's ambient policy
// (see Timeouts); there is no per-call isolation between the read and
// write sides beyond their separate fields.
//
// # Delimiter reads
//
// ReadUntil accumulates bytes one at a time until the delimiter appears
// (first occurrence, inclusive), the capacity is reached, or the stream
// dries up within the timeout:
//
//	buf := make([]byte, 256)
//	n := t.ReadUntil(buf, 100, 10, "\r\n")
//
// The result is NUL-terminated for string consumers, so the destination
// must hold one byte more than the expected payload.
//
// # Port enumeration
//
// ListPorts probes a bounded space of candidate device names by opening
// and immediately releasing each one, and reports the discovered names as
// a separator-joined string; ListPortNames is the slice-returning
// convenience for Go callers.
package serial
