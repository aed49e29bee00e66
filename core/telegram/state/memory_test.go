package state

import (
	"sync"
	"testing"
	"time"
)

func TestMemoryManagerDefaultsToIdle(t *testing.T) {
	mgr := NewMemoryManager()
	if got := mgr.GetState(1); got != StateIdle {
		t.Fatalf("state = %q, want idle", got)
	}
	if mgr.InProgress(1) {
		t.Fatal("unknown conversation must not be in progress")
	}
	if mgr.Len() != 0 {
		t.Fatalf("GetState must not create sessions, len = %d", mgr.Len())
	}
}

func TestMemoryManagerTransition(t *testing.T) {
	mgr := NewMemoryManager()
	next := mgr.Transition(7, func(cur State) State {
		if cur != StateIdle {
			t.Fatalf("first transition saw %q", cur)
		}
		return "await"
	})
	if next != "await" || mgr.GetState(7) != "await" {
		t.Fatalf("state after transition = %q / %q", next, mgr.GetState(7))
	}
	if !mgr.HasState(7) {
		t.Fatal("expected active state")
	}

	mgr.ClearState(7)
	if mgr.GetState(7) != StateIdle {
		t.Fatalf("ClearState left %q", mgr.GetState(7))
	}
	if mgr.Len() != 1 {
		t.Fatalf("ClearState must keep the session, len = %d", mgr.Len())
	}

	mgr.Clear(7)
	if mgr.Len() != 0 {
		t.Fatalf("Clear must drop the session, len = %d", mgr.Len())
	}
}

func TestMemoryManagerEmptyStateMeansIdle(t *testing.T) {
	mgr := NewMemoryManager()
	mgr.SetState(3, "busy")
	if got := mgr.Transition(3, func(State) State { return "" }); got != StateIdle {
		t.Fatalf("empty state = %q, want idle", got)
	}
}

func TestMemoryManagerTransitionsAreSerialized(t *testing.T) {
	mgr := NewMemoryManager()
	const n = 200
	counter := 0
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			mgr.Transition(42, func(cur State) State {
				counter++
				return cur
			})
		}()
	}
	wg.Wait()
	if counter != n {
		t.Fatalf("counter = %d, want %d", counter, n)
	}
}

func TestMemoryManagerExpire(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mgr := NewMemoryManager(WithClock(func() time.Time { return now }))

	mgr.SetState(1, "await")
	now = now.Add(10 * time.Minute)
	mgr.SetState(2, "await")

	if n := mgr.Expire(0); n != 0 {
		t.Fatalf("ttl 0 expired %d sessions", n)
	}
	if n := mgr.Expire(5 * time.Minute); n != 1 {
		t.Fatalf("expired %d sessions, want 1", n)
	}
	if mgr.GetState(1) != StateIdle {
		t.Fatal("expired session should read as idle")
	}
	if mgr.GetState(2) != "await" {
		t.Fatal("fresh session must survive")
	}
}
