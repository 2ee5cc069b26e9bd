/*
Copyright © 2025 MrKleeblatt
*/
package cmd

import (
	"fmt"

	serial "github.com/MrKleeblatt/Serial"
	"github.com/spf13/viper"
)

// lineOptions carries the resolved line parameters and timeout policy
// shared by every command that opens a port.
type lineOptions struct {
	baud       int
	dataBits   int
	parity     serial.Parity
	stopBits   serial.StopBits
	timeout    int
	multiplier int
}

// resolveLineOptions merges flag, environment and config-file values
// through viper into a validated set of line parameters.
func resolveLineOptions() (lineOptions, error) {
	parity, err := serial.ParseParity(viper.GetString("parity"))
	if err != nil {
		return lineOptions{}, fmt.Errorf("invalid parity: %w", err)
	}
	stopBits, err := serial.ParseStopBits(viper.GetString("stop-bits"))
	if err != nil {
		return lineOptions{}, fmt.Errorf("invalid stop bits: %w", err)
	}

	return lineOptions{
		baud:       viper.GetInt("baud"),
		dataBits:   viper.GetInt("data-bits"),
		parity:     parity,
		stopBits:   stopBits,
		timeout:    viper.GetInt("timeout"),
		multiplier: viper.GetInt("multiplier"),
	}, nil
}

// openTransport opens a transport on the given port with the resolved
// line parameters, converting a failure status into an error.
func openTransport(portPath string, opts lineOptions) (*serial.Transport, error) {
	tr := serial.New()
	if st := tr.Open(portPath, opts.baud, opts.dataBits, opts.parity, opts.stopBits); !st.Ok() {
		return nil, fmt.Errorf("failed to open %s: %w", portPath, st.Err())
	}
	return tr, nil
}
