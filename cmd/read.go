/*
Copyright © 2025 MrKleeblatt
*/
package cmd

import (
	"fmt"
	"os"

	serial "github.com/MrKleeblatt/Serial"
	"github.com/spf13/cobra"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <port>",
	Short: "Read data from a serial port",
	Long: `Read a single chunk of data from a serial port.

By default the command reads up to --bytes bytes, waiting at most
timeout + multiplier*bytes milliseconds. With --until the read instead
accumulates byte by byte until the delimiter arrives, the capacity is
reached, or the stream goes quiet; the delimiter is included in the
output.

A timeout with no data is an empty result, not an error.

Example usage:
  serial read /dev/ttyUSB0
  serial read /dev/ttyUSB0 --bytes 256
  serial read /dev/ttyUSB0 --until $'\n'
  serial read /dev/ttyUSB0 --until "OK" --hex`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		capacity, _ := cmd.Flags().GetInt("bytes")
		delimiter, _ := cmd.Flags().GetString("until")
		hexOutput, _ := cmd.Flags().GetBool("hex")

		opts, err := resolveLineOptions()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := readOnce(portPath, capacity, delimiter, hexOutput, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().IntP("bytes", "c", 1024, "Maximum number of bytes to read")
	readCmd.Flags().StringP("until", "u", "", "Read until this delimiter arrives (included in output)")
	readCmd.Flags().BoolP("hex", "x", false, "Print the result as hex instead of raw bytes")
}

func readOnce(portPath string, capacity int, delimiter string, hexOutput bool, opts lineOptions) error {
	if capacity <= 0 {
		return fmt.Errorf("invalid --bytes value: %d", capacity)
	}

	tr, err := openTransport(portPath, opts)
	if err != nil {
		return err
	}
	defer tr.Close()

	buf := make([]byte, capacity)
	var n int
	if delimiter != "" {
		// ReadUntil appends a NUL terminator, so leave room for it.
		n = tr.ReadUntil(buf, opts.timeout, opts.multiplier, delimiter)
	} else {
		n = tr.Read(buf, opts.timeout, opts.multiplier)
	}
	if n < 0 {
		return fmt.Errorf("read failed: %w", serial.Status(n).Err())
	}

	if hexOutput {
		fmt.Printf("% X\n", buf[:n])
	} else {
		os.Stdout.Write(buf[:n])
	}
	return nil
}
