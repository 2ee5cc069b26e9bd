/*
Copyright © 2025 MrKleeblatt
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MrKleeblatt/Serial/internal/tui/components"
	"github.com/MrKleeblatt/Serial/internal/tui/keys"
	"github.com/MrKleeblatt/Serial/internal/tui/models"
	"github.com/MrKleeblatt/Serial/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// termCmd represents the term command
var termCmd = &cobra.Command{
	Use:   "term <port>",
	Short: "Open an interactive terminal on a serial port",
	Long: `Open an interactive bidirectional terminal on a serial port.

This command opens the specified serial port and provides an interactive
terminal with real-time bidirectional communication. Features include:
- Real-time data streaming with timestamps
- Input field for sending data, with history
- ASCII and hex display modes
- ASCII and hex send modes (Tab to toggle)
- Connection status indicators

Example usage:
  serial term /dev/ttyUSB0
  serial term /dev/ttyUSB0 --baud 115200
  serial term /dev/ttyUSB0 --parity even --stop-bits 2`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		opts, err := resolveLineOptions()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := runTerm(portPath, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(termCmd)
}

// termModel represents the Bubble Tea model for the term command
type termModel struct {
	*models.SessionModel
	terminal  *components.Terminal
	statusBar *components.StatusBar
	input     *components.Input
	help      help.Model
	keys      keys.SessionKeys
	opts      lineOptions
}

// pollInterval bounds one read pass so quit and resize events stay
// responsive on a silent line.
const pollInterval = 100

func runTerm(portPath string, opts lineOptions) error {
	connInfo := &components.ConnectionInfo{
		BaudRate: opts.baud,
		DataBits: opts.dataBits,
		Parity:   opts.parity,
		StopBits: opts.stopBits,
	}

	sessionModel := models.NewSessionModel(portPath)
	m := termModel{
		SessionModel: sessionModel,
		terminal:     components.NewTerminal(0, 0), // sized by the first WindowSizeMsg
		statusBar:    components.NewStatusBar("Serial Terminal", portPath),
		input:        components.NewInput("Type message and press Enter to send..."),
		help:         help.New(),
		keys:         keys.NewSessionKeys(),
		opts:         opts,
	}
	m.statusBar.SetConnecting()
	m.statusBar.SetConnectionInfo(connInfo)

	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Connect to the serial port in the background
	go func() {
		tr, err := openTransport(portPath, opts)
		if err != nil {
			p.Send(models.ConnectionStatusMsg{Connected: false, Error: err})
			return
		}

		m.SetTransport(tr)
		p.Send(models.ConnectionStatusMsg{Connected: true, Error: nil})

		// Read poller: bounded synchronous reads until the session ends
		go func() {
			defer tr.Close()

			buffer := make([]byte, 1024)
			for {
				select {
				case <-m.GetContext().Done():
					return
				default:
					n := tr.Read(buffer, pollInterval, 0)
					if n < 0 {
						if m.GetContext().Err() != nil {
							return
						}
						continue
					}
					if n > 0 {
						data := make([]byte, n)
						copy(data, buffer[:n])
						p.Send(components.DataMsg{
							Timestamp: time.Now(),
							Data:      data,
						})
					}
				}
			}
		}()
	}()

	_, err := p.Run()

	m.Cancel()
	return err
}

func (m *termModel) Init() tea.Cmd {
	return nil
}

// parseHexInput converts hex strings to bytes. Supports both:
// - Space-separated: "48 65 6C 6C 6F"
// - Continuous: "48656C6C6F"
func parseHexInput(hexStr string) ([]byte, error) {
	cleanHex := strings.ReplaceAll(strings.TrimSpace(hexStr), " ", "")
	if len(cleanHex) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	for _, char := range cleanHex {
		if !((char >= '0' && char <= '9') || (char >= 'A' && char <= 'F') || (char >= 'a' && char <= 'f')) {
			return nil, fmt.Errorf("invalid hex character '%c'", char)
		}
	}

	if len(cleanHex)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even number of digits (got %d)", len(cleanHex))
	}

	bytes := make([]byte, 0, len(cleanHex)/2)
	for i := 0; i < len(cleanHex); i += 2 {
		hexByte := cleanHex[i : i+2]
		b, err := strconv.ParseUint(hexByte, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex byte '%s': %v", hexByte, err)
		}
		bytes = append(bytes, byte(b))
	}
	return bytes, nil
}

func (m *termModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Input area height (includes border)
		inputHeight := 3
		statusBarHeight := 1
		verticalMarginHeight := inputHeight + statusBarHeight

		m.terminal.SetSize(msg.Width, msg.Height-verticalMarginHeight)
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.SetReady(true)

	case models.ConnectionStatusMsg:
		m.SetConnected(msg.Connected)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetDisconnected(msg.Error)
		} else {
			m.statusBar.SetConnected()
		}

	case components.DataMsg:
		if m.IsReady() {
			m.AddRawData(msg)
			m.terminal.AddMessage(msg)
		}

	case tea.KeyMsg:
		if m.IsInInsertMode() {
			switch {
			case key.Matches(msg, m.keys.Escape):
				m.SetInputMode(models.InputModeNormal)
				m.input.Blur()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Enter):
				if cmd := m.sendCurrentInput(); cmd != nil {
					cmds = append(cmds, cmd)
				}
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Up):
				m.input.NavigateHistoryUp()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Down):
				m.input.NavigateHistoryDown()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendingMode()
				return m, tea.Batch(cmds...)
			}
		} else {
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.Cleanup()
				return m, tea.Quit

			case key.Matches(msg, m.keys.InsertMode):
				m.SetInputMode(models.InputModeInsert)
				m.input.Focus()
				return m, tea.Batch(cmds...)

			case key.Matches(msg, m.keys.Clear):
				m.ClearData()
				m.terminal.Clear()

			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll

			case key.Matches(msg, m.keys.ToggleHex):
				m.terminal.ToggleHex()
				m.terminal.Refresh(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleASCII):
				m.terminal.ToggleASCII()
				m.terminal.Refresh(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendingMode()
			}
		}
	}

	// Update components (only update input in insert mode)
	var cmd tea.Cmd
	if m.IsInInsertMode() {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	switch msg.(type) {
	case tea.WindowSizeMsg:
		_, cmd = m.terminal.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// sendCurrentInput validates the input field, hands the payload to the
// transport on a worker goroutine and reports the outcome back into the
// traffic view.
func (m *termModel) sendCurrentInput() tea.Cmd {
	tr := m.GetTransport()
	inputStr := m.input.Value()
	if inputStr == "" || tr == nil {
		return nil
	}

	var dataToSend []byte
	var displayData []byte

	switch m.input.GetSendingMode() {
	case components.SendingModeASCII:
		dataToSend = []byte(inputStr + "\n")
		displayData = []byte(inputStr)
	case components.SendingModeHex:
		parsed, err := parseHexInput(inputStr)
		if err != nil {
			m.terminal.AddMessage(components.DataMsg{
				Timestamp: time.Now(),
				Data:      []byte(fmt.Sprintf("Invalid hex input: %v", err)),
			})
			return nil
		}
		dataToSend = parsed
		displayData = parsed
	}

	timeout := m.opts.timeout
	multiplier := m.opts.multiplier

	m.input.AddToHistory(inputStr)
	m.input.SetValue("")

	return func() tea.Msg {
		n := tr.Write(dataToSend, timeout, multiplier)

		result := components.DataMsg{
			Timestamp: time.Now(),
			Data:      displayData,
			IsTX:      true,
		}
		switch {
		case n < 0:
			result.Status = "ERROR"
		case n < len(dataToSend):
			result.Status = "PARTIAL"
		default:
			result.Status = "SENT"
		}
		return result
	}
}

func (m *termModel) View() string {
	var content string
	if m.IsReady() {
		content = m.terminal.View()
	} else {
		content = "Initializing..."
	}

	inputMode := m.GetInputMode().String()
	isInsertMode := m.IsInInsertMode()
	input := m.input.ViewWithMode(inputMode, isInsertMode)

	sendingMode := m.input.GetSendingMode().String()
	timestamp := time.Now().Format("15:04:05")

	terminalWidth := 80
	if m.IsReady() {
		terminalWidth = m.terminal.GetViewport().Width
	}
	m.statusBar.SetWidth(terminalWidth)

	statusBar := m.statusBar.ComprehensiveStatusBar(inputMode, sendingMode, m.IsConnected(), timestamp)

	contentWithBorder := styles.ContentBorderStyle.Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		contentWithBorder,
		input,
		statusBar,
	)
}
