package debounce

import (
	"sync"
	"testing"
	"time"
)

// settleRecorder collects settle signals for assertions.
type settleRecorder struct {
	mu   sync.Mutex
	seqs []uint64
}

func (r *settleRecorder) record(seq uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seqs = append(r.seqs, seq)
}

func (r *settleRecorder) snapshot() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint64(nil), r.seqs...)
}

func TestCoalescer_BurstProducesOneSettle(t *testing.T) {
	rec := &settleRecorder{}
	c := New(50*time.Millisecond, rec.record)
	defer c.Stop()

	for seq := uint64(1); seq <= 5; seq++ {
		c.Observe(seq)
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 1 {
		t.Fatalf("settles = %v, want exactly one", got)
	}
	if got[0] != 5 {
		t.Errorf("settle seq = %d, want 5 (the last of the burst)", got[0])
	}
}

func TestCoalescer_SpacedEventsEachSettle(t *testing.T) {
	rec := &settleRecorder{}
	c := New(30*time.Millisecond, rec.record)
	defer c.Stop()

	c.Observe(1)
	time.Sleep(100 * time.Millisecond)
	c.Observe(2)
	time.Sleep(100 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 2 {
		t.Fatalf("settles = %v, want two", got)
	}
	if got[0] != 1 || got[1] != 2 {
		t.Errorf("settle seqs = %v, want [1 2]", got)
	}
}

func TestCoalescer_TrailingEdge(t *testing.T) {
	rec := &settleRecorder{}
	c := New(80*time.Millisecond, rec.record)
	defer c.Stop()

	c.Observe(1)
	time.Sleep(20 * time.Millisecond)

	// Inside the quiet window nothing may have fired yet.
	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("settled %v before the quiet window elapsed", got)
	}

	time.Sleep(150 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 1 {
		t.Fatalf("settles = %v, want one after the window", got)
	}
}

func TestCoalescer_StopSuppressesPending(t *testing.T) {
	rec := &settleRecorder{}
	c := New(50*time.Millisecond, rec.record)

	c.Observe(1)
	c.Stop()

	time.Sleep(120 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("settles after Stop = %v, want none", got)
	}
}

func TestCoalescer_ObserveAfterStopIgnored(t *testing.T) {
	rec := &settleRecorder{}
	c := New(30*time.Millisecond, rec.record)
	c.Stop()

	c.Observe(7)
	time.Sleep(80 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("settles = %v, want none", got)
	}
}

func TestCoalescer_DefaultWindow(t *testing.T) {
	c := New(0, func(uint64) {})
	defer c.Stop()

	if c.window != DefaultQuietWindow {
		t.Errorf("window = %v, want %v", c.window, DefaultQuietWindow)
	}
}

func TestCoalescer_ConcurrentObserve(t *testing.T) {
	rec := &settleRecorder{}
	c := New(40*time.Millisecond, rec.record)
	defer c.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(base uint64) {
			defer wg.Done()
			for j := uint64(0); j < 20; j++ {
				c.Observe(base*100 + j)
			}
		}(uint64(i))
	}
	wg.Wait()

	time.Sleep(120 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 1 {
		t.Errorf("settles = %v, want exactly one for the whole burst", got)
	}
}
