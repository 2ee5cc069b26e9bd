package models

import (
	"context"
	"sync"

	serial "github.com/MrKleeblatt/Serial"
	"github.com/MrKleeblatt/Serial/internal/tui/components"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	switch m {
	case InputModeInsert:
		return "INSERT"
	default:
		return "NORMAL"
	}
}

type ConnectionStatusMsg struct {
	Connected bool
	Error     error
}

// SessionModel is the shared state behind the interactive session: the
// transport, the raw traffic store and the input mode. The read poller
// runs on its own goroutine, so access to the transport pointer is
// guarded.
type SessionModel struct {
	transport *serial.Transport
	portPath  string

	connected bool
	rawData   []components.DataMsg
	err       error
	ready     bool

	inputMode InputMode

	cancel context.CancelFunc
	ctx    context.Context
	mu     sync.RWMutex
}

func NewSessionModel(portPath string) *SessionModel {
	ctx, cancel := context.WithCancel(context.Background())

	return &SessionModel{
		portPath:  portPath,
		rawData:   make([]components.DataMsg, 0),
		inputMode: InputModeNormal,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (m *SessionModel) GetTransport() *serial.Transport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transport
}

func (m *SessionModel) SetTransport(transport *serial.Transport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transport = transport
}

func (m *SessionModel) GetPortPath() string {
	return m.portPath
}

func (m *SessionModel) IsConnected() bool {
	return m.connected
}

func (m *SessionModel) SetConnected(connected bool) {
	m.connected = connected
}

func (m *SessionModel) SetError(err error) {
	m.err = err
}

func (m *SessionModel) IsReady() bool {
	return m.ready
}

func (m *SessionModel) SetReady(ready bool) {
	m.ready = ready
}

func (m *SessionModel) GetRawData() []components.DataMsg {
	return m.rawData
}

func (m *SessionModel) AddRawData(msg components.DataMsg) {
	m.rawData = append(m.rawData, msg)
}

func (m *SessionModel) ClearData() {
	m.rawData = make([]components.DataMsg, 0)
}

func (m *SessionModel) GetInputMode() InputMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode
}

func (m *SessionModel) SetInputMode(mode InputMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputMode = mode
}

func (m *SessionModel) IsInInsertMode() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode == InputModeInsert
}

func (m *SessionModel) GetContext() context.Context {
	return m.ctx
}

func (m *SessionModel) Cancel() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Cleanup stops the read poller and closes the transport.
func (m *SessionModel) Cleanup() {
	if m.cancel != nil {
		m.cancel()
	}

	m.mu.Lock()
	if m.transport != nil && m.transport.IsOpen() {
		m.transport.Close()
	}
	m.transport = nil
	m.mu.Unlock()
}
