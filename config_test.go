package serial

import "testing"

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.BaudRate != 9600 {
		t.Errorf("Expected BaudRate 9600, got %d", config.BaudRate)
	}

	if config.DataBits != 8 {
		t.Errorf("Expected DataBits 8, got %d", config.DataBits)
	}

	if config.Parity != ParityNone {
		t.Errorf("Expected Parity None, got %v", config.Parity)
	}

	if config.StopBits != StopBitsOne {
		t.Errorf("Expected StopBits One, got %v", config.StopBits)
	}
}

func TestDefaultTimeouts(t *testing.T) {
	timeouts := DefaultTimeouts()

	if timeouts.Interval != 50 {
		t.Errorf("Expected Interval 50, got %d", timeouts.Interval)
	}
	if timeouts.ReadConstant != 50 {
		t.Errorf("Expected ReadConstant 50, got %d", timeouts.ReadConstant)
	}
	if timeouts.ReadMultiplier != 10 {
		t.Errorf("Expected ReadMultiplier 10, got %d", timeouts.ReadMultiplier)
	}
	if timeouts.WriteConstant != 50 {
		t.Errorf("Expected WriteConstant 50, got %d", timeouts.WriteConstant)
	}
	if timeouts.WriteMultiplier != 10 {
		t.Errorf("Expected WriteMultiplier 10, got %d", timeouts.WriteMultiplier)
	}
}

func TestFunctionalOptions(t *testing.T) {
	config := DefaultConfig()

	err := WithBaudRate(115200)(&config)
	if err != nil {
		t.Errorf("WithBaudRate failed: %v", err)
	}
	if config.BaudRate != 115200 {
		t.Errorf("Expected BaudRate 115200, got %d", config.BaudRate)
	}

	err = WithDataBits(7)(&config)
	if err != nil {
		t.Errorf("WithDataBits failed: %v", err)
	}
	if config.DataBits != 7 {
		t.Errorf("Expected DataBits 7, got %d", config.DataBits)
	}

	err = WithParity(ParityEven)(&config)
	if err != nil {
		t.Errorf("WithParity failed: %v", err)
	}
	if config.Parity != ParityEven {
		t.Errorf("Expected Parity Even, got %v", config.Parity)
	}

	err = WithStopBits(StopBitsTwo)(&config)
	if err != nil {
		t.Errorf("WithStopBits failed: %v", err)
	}
	if config.StopBits != StopBitsTwo {
		t.Errorf("Expected StopBits Two, got %v", config.StopBits)
	}
}

func TestInvalidBaudRate(t *testing.T) {
	config := DefaultConfig()
	err := WithBaudRate(123456)(&config)
	if err == nil {
		t.Error("Expected error for invalid baud rate")
	}
	if err != ErrInvalidBaudRate {
		t.Errorf("Expected ErrInvalidBaudRate, got %v", err)
	}
}

func TestInvalidDataBits(t *testing.T) {
	config := DefaultConfig()
	err := WithDataBits(9)(&config)
	if err == nil {
		t.Error("Expected error for invalid data bits")
	}
	if err != ErrInvalidConfig {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestBaudRateConstant(t *testing.T) {
	tests := []struct {
		input    int
		hasError bool
	}{
		{9600, false},
		{115200, false},
		{57600, false},
		{123456, true}, // Invalid baud rate
	}

	for _, test := range tests {
		result, err := baudRateConstant(test.input)
		if test.hasError {
			if err == nil {
				t.Errorf("Expected error for baud rate %d", test.input)
			}
			if err != ErrInvalidBaudRate {
				t.Errorf("Expected ErrInvalidBaudRate for %d, got %v", test.input, err)
			}
		} else {
			if err != nil {
				t.Errorf("Unexpected error for baud rate %d: %v", test.input, err)
			}
			if result == 0 {
				t.Errorf("Got zero result for valid baud rate %d", test.input)
			}
		}
	}
}

func TestParseParity(t *testing.T) {
	tests := []struct {
		input    string
		expected Parity
		hasError bool
	}{
		{"none", ParityNone, false},
		{"n", ParityNone, false},
		{"", ParityNone, false},
		{"odd", ParityOdd, false},
		{"O", ParityOdd, false},
		{"even", ParityEven, false},
		{"E", ParityEven, false},
		{"mark", ParityMark, false},
		{"space", ParitySpace, false},
		{"bogus", ParityNone, true},
	}

	for _, test := range tests {
		result, err := ParseParity(test.input)
		if test.hasError {
			if err == nil {
				t.Errorf("ParseParity(%q): expected error", test.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseParity(%q): unexpected error: %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("ParseParity(%q) = %v, expected %v", test.input, result, test.expected)
		}
	}
}

func TestParseStopBits(t *testing.T) {
	tests := []struct {
		input    string
		expected StopBits
		hasError bool
	}{
		{"1", StopBitsOne, false},
		{"", StopBitsOne, false},
		{"1.5", StopBitsOneHalf, false},
		{"2", StopBitsTwo, false},
		{"two", StopBitsTwo, false},
		{"3", StopBitsOne, true},
	}

	for _, test := range tests {
		result, err := ParseStopBits(test.input)
		if test.hasError {
			if err == nil {
				t.Errorf("ParseStopBits(%q): expected error", test.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStopBits(%q): unexpected error: %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("ParseStopBits(%q) = %v, expected %v", test.input, result, test.expected)
		}
	}
}

func TestEnumStrings(t *testing.T) {
	if ParityEven.String() != "even" {
		t.Errorf("Expected 'even', got %q", ParityEven.String())
	}
	if StopBitsOneHalf.String() != "1.5" {
		t.Errorf("Expected '1.5', got %q", StopBitsOneHalf.String())
	}
}
