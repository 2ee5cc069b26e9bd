package serial

import (
	"golang.org/x/sys/unix"
)

// invalidFd is the sentinel for "no handle". It is never returned by a
// successful open.
const invalidFd = -1

// baudRateConstant converts an integer baud rate to the unix constant
func baudRateConstant(rate int) (uint32, error) {
	switch rate {
	case 50:
		return unix.B50, nil
	case 75:
		return unix.B75, nil
	case 110:
		return unix.B110, nil
	case 134:
		return unix.B134, nil
	case 150:
		return unix.B150, nil
	case 200:
		return unix.B200, nil
	case 300:
		return unix.B300, nil
	case 600:
		return unix.B600, nil
	case 1200:
		return unix.B1200, nil
	case 1800:
		return unix.B1800, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 500000:
		return unix.B500000, nil
	case 576000:
		return unix.B576000, nil
	case 921600:
		return unix.B921600, nil
	case 1000000:
		return unix.B1000000, nil
	case 1152000:
		return unix.B1152000, nil
	case 1500000:
		return unix.B1500000, nil
	case 2000000:
		return unix.B2000000, nil
	case 2500000:
		return unix.B2500000, nil
	case 3000000:
		return unix.B3000000, nil
	case 3500000:
		return unix.B3500000, nil
	case 4000000:
		return unix.B4000000, nil
	default:
		return 0, ErrInvalidBaudRate
	}
}

// openDevice opens a device file for exclusive serial use and returns the
// file descriptor. O_NONBLOCK prevents the open itself from blocking on
// carrier detect; the flag is cleared again once the descriptor is held.
func openDevice(device string) (int, error) {
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		switch err {
		case unix.ENOENT, unix.ENXIO, unix.ENODEV:
			return invalidFd, ErrDeviceNotFound
		case unix.EACCES, unix.EPERM:
			return invalidFd, ErrPermissionDenied
		case unix.EBUSY:
			return invalidFd, ErrDeviceInUse
		default:
			return invalidFd, err
		}
	}

	if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFL, 0); err != nil {
		unix.Close(fd)
		return invalidFd, err
	}

	// Exclusive hold: further opens by other processes fail with EBUSY.
	// Best effort; whether the descriptor is a tty at all is settled by
	// the line-state read that follows.
	unix.IoctlSetInt(fd, unix.TIOCEXCL, 0)

	return fd, nil
}

// closeFd releases a device descriptor.
func closeFd(fd int) error {
	return unix.Close(fd)
}

// getLineState reads the device's current line-control block
func getLineState(fd int) (*unix.Termios, error) {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, ErrGetState
	}
	return termios, nil
}

// applyLineConfig commits the requested line parameters into the given
// line-control block. The block is always reset to raw mode first so no
// kernel input/output processing survives from a previous holder.
func applyLineConfig(fd int, termios *unix.Termios, config Config) error {
	baudRate, err := baudRateConstant(config.BaudRate)
	if err != nil {
		return ErrSetState
	}

	termios.Cflag = unix.CREAD | unix.CLOCAL
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0

	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | baudRate
	termios.Ispeed = baudRate
	termios.Ospeed = baudRate

	switch config.DataBits {
	case 5:
		termios.Cflag |= unix.CS5
	case 6:
		termios.Cflag |= unix.CS6
	case 7:
		termios.Cflag |= unix.CS7
	case 8:
		termios.Cflag |= unix.CS8
	default:
		return ErrSetState
	}

	switch config.StopBits {
	case StopBitsOne:
		// CSTOPB clear
	case StopBitsTwo:
		termios.Cflag |= unix.CSTOPB
	default:
		// 1.5 stop bits is not expressible in termios
		return ErrSetState
	}

	switch config.Parity {
	case ParityNone:
	case ParityOdd:
		termios.Cflag |= unix.PARENB | unix.PARODD
	case ParityEven:
		termios.Cflag |= unix.PARENB
	case ParityMark:
		termios.Cflag |= unix.PARENB | unix.CMSPAR | unix.PARODD
	case ParitySpace:
		termios.Cflag |= unix.PARENB | unix.CMSPAR
	default:
		return ErrSetState
	}

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return ErrSetState
	}
	return nil
}

// applyReadInterval installs the inter-byte timeout on the descriptor as
// VMIN=0/VTIME. VTIME counts deciseconds in 0..255, so the millisecond value
// is clamped: anything in (0,100) becomes one decisecond, anything above
// 25.5s saturates.
func applyReadInterval(fd, intervalMs int) error {
	if intervalMs < 0 {
		return ErrSetTimeouts
	}

	deci := intervalMs / 100
	if intervalMs > 0 && deci == 0 {
		deci = 1
	}
	if deci > 255 {
		deci = 255
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return ErrSetTimeouts
	}
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = uint8(deci)
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return ErrSetTimeouts
	}
	return nil
}

// waitReadable polls the descriptor for input, waiting at most waitMs
// milliseconds. Returns false on timeout.
func waitReadable(fd, waitMs int) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, waitMs)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, nil
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLNVAL) != 0 {
			return false, unix.EIO
		}
		return true, nil
	}
}

// waitWritable polls the descriptor for output space, waiting at most
// waitMs milliseconds. Returns false on timeout.
func waitWritable(fd, waitMs int) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	for {
		n, err := unix.Poll(fds, waitMs)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, nil
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLNVAL) != 0 {
			return false, unix.EIO
		}
		return true, nil
	}
}

// readFd performs one read attempt, retrying on EINTR. A would-block result
// is reported as a zero-byte read, not an error.
func readFd(fd int, buf []byte) (int, error) {
	for {
		n, err := unix.Read(fd, buf)
		switch err {
		case nil:
			return n, nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return 0, nil
		default:
			return 0, err
		}
	}
}

// writeFd performs one write attempt, retrying on EINTR. A would-block
// result is reported as zero bytes accepted, not an error.
func writeFd(fd int, data []byte) (int, error) {
	for {
		n, err := unix.Write(fd, data)
		switch err {
		case nil:
			return n, nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return 0, nil
		default:
			return 0, err
		}
	}
}

// probeDevice reports whether the named device can be opened for serial
// use right now. The descriptor is released immediately; presence is not
// cached since devices come and go between calls.
func probeDevice(device string) bool {
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return false
	}
	defer unix.Close(fd)

	// A plain file under /dev is not a serial device.
	if _, err := unix.IoctlGetTermios(fd, unix.TCGETS); err != nil {
		return false
	}
	return true
}
