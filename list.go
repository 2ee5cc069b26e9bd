package serial

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// probeRanges is the bounded, host-defined address space of candidate
// serial devices, in probe order. Device presence can change between
// calls, so results are never cached.
var probeRanges = []struct {
	prefix string
	count  int
}{
	{"ttyS", 32},   // Standard serial ports
	{"ttyUSB", 16}, // USB serial adapters
	{"ttyACM", 16}, // USB CDC/ACM devices
	{"ttyAMA", 4},  // ARM/Raspberry Pi serial
}

// portCandidates returns every device path in the probe space.
func portCandidates() []string {
	var candidates []string
	for _, r := range probeRanges {
		for i := 0; i < r.count; i++ {
			candidates = append(candidates, fmt.Sprintf("/dev/%s%d", r.prefix, i))
		}
	}
	return candidates
}

// probePorts discovers available ports by attempting to open each
// candidate and releasing it immediately. Ordering follows probe order.
func probePorts() []string {
	var ports []string
	for _, candidate := range portCandidates() {
		if !isCharacterDevice(candidate) {
			continue
		}
		if probeDevice(candidate) {
			ports = append(ports, candidate)
		}
	}
	return ports
}

// joinPortNames joins discovered port names with the given separator,
// without a trailing separator. Names are not escaped; see
// Transport.ListPorts for the separator-collision caveat.
func joinPortNames(names []string, separator string) string {
	return strings.Join(names, separator)
}

// ListPortNames returns the available serial ports on the system as a
// fresh slice of device paths.
func ListPortNames() []string {
	return probePorts()
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// PortInfo describes a discovered serial port
type PortInfo struct {
	Name        string
	Path        string
	Description string
}

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(portPath string) (*PortInfo, error) {
	if !isCharacterDevice(portPath) {
		return nil, ErrDeviceNotFound
	}

	name := filepath.Base(portPath)
	return &PortInfo{
		Name:        name,
		Path:        portPath,
		Description: portDescription(name),
	}, nil
}

// portDescription provides human-readable descriptions for different port types
func portDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	default:
		return "Serial Port"
	}
}
