// Package connectivity tracks the device online/offline signal the
// send path checks before touching the network.
package connectivity

import (
	"fmt"
	"slices"
	"sync"

	"github.com/emipmttt/sellia-challenge/internal/bus"
)

// State is the connectivity state.
type State string

const (
	Unknown State = "UNKNOWN"
	Online  State = "ONLINE"
	Offline State = "OFFLINE"
)

// validTransitions defines allowed state transitions. Unknown is only
// ever a starting point.
var validTransitions = map[State][]State{
	Unknown: {Online, Offline},
	Online:  {Offline},
	Offline: {Online},
}

// Monitor tracks and enforces connectivity transitions, publishing a
// bus event on every change.
type Monitor struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMonitor creates a monitor starting in Unknown state.
func NewMonitor(b *bus.Bus) *Monitor {
	return &Monitor{current: Unknown, bus: b}
}

// Current returns the current state.
func (m *Monitor) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Online reports whether the device may attempt network calls. Only a
// known-offline device is blocked; Unknown counts as online.
func (m *Monitor) Online() bool {
	return m.Current() != Offline
}

// SetOnline records the external online/offline signal. Repeating the
// current state is a no-op.
func (m *Monitor) SetOnline(online bool) error {
	to := Offline
	if online {
		to = Online
	}
	return m.transition(to)
}

func (m *Monitor) transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == to {
		return nil
	}
	if !slices.Contains(validTransitions[m.current], to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:    bus.KindConnectivityChanged,
			Payload: Change{From: from, To: to},
		})
	}
	return nil
}

// Change is the payload for connectivity change events.
type Change struct {
	From State
	To   State
}
