package connectivity

import (
	"testing"
	"time"

	"github.com/emipmttt/sellia-challenge/internal/bus"
)

func TestStartsUnknownAndOnline(t *testing.T) {
	m := NewMonitor(nil)
	if m.Current() != Unknown {
		t.Errorf("Current() = %q, want UNKNOWN", m.Current())
	}
	if !m.Online() {
		t.Error("Online() = false in Unknown state, want true")
	}
}

func TestOfflineBlocks(t *testing.T) {
	m := NewMonitor(nil)
	if err := m.SetOnline(false); err != nil {
		t.Fatal(err)
	}
	if m.Online() {
		t.Error("Online() = true after going offline")
	}
	if err := m.SetOnline(true); err != nil {
		t.Fatal(err)
	}
	if !m.Online() {
		t.Error("Online() = false after coming back online")
	}
}

func TestRepeatIsNoOp(t *testing.T) {
	b := bus.New()
	m := NewMonitor(b)
	ch, unsub := b.Subscribe("connectivity.", 10)
	defer unsub()

	if err := m.SetOnline(true); err != nil {
		t.Fatal(err)
	}
	if err := m.SetOnline(true); err != nil {
		t.Fatal(err)
	}

	select {
	case evt := <-ch:
		change, ok := evt.Payload.(Change)
		if !ok || change.To != Online {
			t.Errorf("payload = %v, want change to ONLINE", evt.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for connectivity event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected second event for repeated state: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}
