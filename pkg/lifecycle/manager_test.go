package lifecycle

import (
	"errors"
	"testing"
	"time"
)

func TestManager_Transitions(t *testing.T) {
	m := NewManager(nil, nil)

	if got := m.State(); got != StateStopped {
		t.Fatalf("initial state = %v, want Stopped", got)
	}
	if !m.CanStart() {
		t.Error("CanStart should be true when stopped")
	}

	steps := []State{StateStarting, StateRunning, StateStopping, StateStopped}
	for _, next := range steps {
		if err := m.TransitionTo(next, "test"); err != nil {
			t.Fatalf("TransitionTo(%v): %v", next, err)
		}
	}
}

func TestManager_InvalidTransition(t *testing.T) {
	m := NewManager(nil, nil)

	if err := m.TransitionTo(StateRunning, "skip starting"); err == nil {
		t.Error("Stopped -> Running should be rejected")
	}

	if err := m.TransitionTo(StateStarting, "ok"); err != nil {
		t.Fatalf("TransitionTo(Starting): %v", err)
	}
	if err := m.TransitionTo(StateStopped, "skip stopping"); err == nil {
		t.Error("Starting -> Stopped should be rejected")
	}
}

func TestManager_CrashAndRestart(t *testing.T) {
	m := NewManager(nil, nil)

	mustTransition := func(s State) {
		t.Helper()
		if err := m.TransitionTo(s, "test"); err != nil {
			t.Fatalf("TransitionTo(%v): %v", s, err)
		}
	}

	mustTransition(StateStarting)
	mustTransition(StateRunning)
	mustTransition(StateCrashed)

	if !m.CanStart() {
		t.Error("CanStart should be true after a crash")
	}
	mustTransition(StateStarting)
}

func TestManager_WaitWithTimeout(t *testing.T) {
	m := NewManager(nil, nil)

	m.AddWorker()
	go func() {
		time.Sleep(20 * time.Millisecond)
		m.WorkerDone()
	}()

	if err := m.WaitWithTimeout(time.Second); err != nil {
		t.Errorf("WaitWithTimeout: %v", err)
	}

	m.AddWorker()
	defer m.WorkerDone()
	if err := m.WaitWithTimeout(30 * time.Millisecond); !errors.Is(err, ErrShutdownTimeout) {
		t.Errorf("WaitWithTimeout error = %v, want ErrShutdownTimeout", err)
	}
}

func TestState_String(t *testing.T) {
	if got := StateRunning.String(); got != "Running" {
		t.Errorf("String() = %q, want Running", got)
	}
	if got := State(99).String(); got != "Unknown" {
		t.Errorf("String() = %q, want Unknown", got)
	}
}
