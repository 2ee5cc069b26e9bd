package serial

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark
	ParitySpace
)

func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	case ParityMark:
		return "mark"
	case ParitySpace:
		return "space"
	default:
		return "none"
	}
}

// StopBits represents the number of stop bits used for framing
type StopBits int

const (
	StopBitsOne StopBits = iota
	StopBitsOneHalf
	StopBitsTwo
)

func (s StopBits) String() string {
	switch s {
	case StopBitsOne:
		return "1"
	case StopBitsOneHalf:
		return "1.5"
	case StopBitsTwo:
		return "2"
	default:
		return "1"
	}
}

// Config holds the line configuration for a serial connection. It is agreed
// once when the connection opens and stays fixed until close; there is no
// reconfigure-without-close.
type Config struct {
	BaudRate int
	DataBits int
	Parity   Parity
	StopBits StopBits
}

// Timeouts is the ambient timeout policy of a transport, in milliseconds.
// Read and write calls overwrite their side of the block; the last values
// set persist until the next call overrides them.
//
// A transfer waits at most Constant + Multiplier*capacity overall, with
// Interval bounding the gap between consecutive bytes on the read side.
type Timeouts struct {
	Interval        int
	ReadConstant    int
	ReadMultiplier  int
	WriteConstant   int
	WriteMultiplier int
}

// Option is a functional option for configuring a serial connection
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   ParityNone,
		StopBits: StopBitsOne,
	}
}

// DefaultTimeouts returns the timeout policy installed by a successful open.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Interval:        50,
		ReadConstant:    50,
		ReadMultiplier:  10,
		WriteConstant:   50,
		WriteMultiplier: 10,
	}
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if _, err := baudRateConstant(rate); err != nil {
			return err
		}
		c.BaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8)
func WithDataBits(bits int) Option {
	return func(c *Config) error {
		if bits < 5 || bits > 8 {
			return ErrInvalidConfig
		}
		c.DataBits = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		if parity < ParityNone || parity > ParitySpace {
			return ErrInvalidConfig
		}
		c.Parity = parity
		return nil
	}
}

// WithStopBits sets the number of stop bits
func WithStopBits(bits StopBits) Option {
	return func(c *Config) error {
		if bits < StopBitsOne || bits > StopBitsTwo {
			return ErrInvalidConfig
		}
		c.StopBits = bits
		return nil
	}
}

// ParseParity converts a textual parity name into its enum value.
// Recognizes full names and the single-letter forms (N, O, E, M, S).
func ParseParity(s string) (Parity, error) {
	switch s {
	case "none", "n", "N", "":
		return ParityNone, nil
	case "odd", "o", "O":
		return ParityOdd, nil
	case "even", "e", "E":
		return ParityEven, nil
	case "mark", "m", "M":
		return ParityMark, nil
	case "space", "s", "S":
		return ParitySpace, nil
	default:
		return ParityNone, ErrInvalidConfig
	}
}

// ParseStopBits converts a textual stop-bit count into its enum value.
func ParseStopBits(s string) (StopBits, error) {
	switch s {
	case "1", "one", "":
		return StopBitsOne, nil
	case "1.5", "1,5":
		return StopBitsOneHalf, nil
	case "2", "two":
		return StopBitsTwo, nil
	default:
		return StopBitsOne, ErrInvalidConfig
	}
}
