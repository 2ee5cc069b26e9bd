/*
Copyright © 2025 MrKleeblatt
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serial",
	Short: "A command-line tool for synchronous serial communication",
	Long: `A command-line tool for synchronous serial communication.

Built on a minimal blocking transport: every operation opens, transfers
under an explicit timeout, and returns. Partial transfers are reported
as smaller counts, not errors.

Available commands:
  list     Discover serial ports by probing the device space
  send     Write data to a port
  read     Read a fixed amount or up to a delimiter
  capture  Stream incoming data to a file
  term     Interactive bidirectional terminal

Defaults for baud rate, framing and timeouts can be set per command,
via persistent flags, or in a config file (~/.serial.yaml).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.serial.yaml)")

	rootCmd.PersistentFlags().IntP("baud", "b", 9600, "Baud rate")
	rootCmd.PersistentFlags().Int("data-bits", 8, "Data bits per character: 5, 6, 7 or 8")
	rootCmd.PersistentFlags().String("parity", "none", "Parity: none, odd, even, mark, space")
	rootCmd.PersistentFlags().String("stop-bits", "1", "Stop bits: 1, 1.5 or 2")
	rootCmd.PersistentFlags().Int("timeout", 50, "Transfer timeout constant in milliseconds")
	rootCmd.PersistentFlags().Int("multiplier", 10, "Per-byte timeout multiplier in milliseconds")

	viper.BindPFlag("baud", rootCmd.PersistentFlags().Lookup("baud"))
	viper.BindPFlag("data-bits", rootCmd.PersistentFlags().Lookup("data-bits"))
	viper.BindPFlag("parity", rootCmd.PersistentFlags().Lookup("parity"))
	viper.BindPFlag("stop-bits", rootCmd.PersistentFlags().Lookup("stop-bits"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("multiplier", rootCmd.PersistentFlags().Lookup("multiplier"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".serial" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".serial")
	}

	viper.SetEnvPrefix("serial")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
