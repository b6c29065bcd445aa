package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
)

func newTestCenter(capacity int) *Center {
	return NewCenter(capacity, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDrainReturnsInOrderAndEmpties(t *testing.T) {
	c := newTestCenter(0)

	c.Info("first")
	c.Error("second")

	got := c.Drain()
	if len(got) != 2 {
		t.Fatalf("Drain() returned %d items, want 2", len(got))
	}
	if got[0].Message != "first" || got[0].Level != LevelInfo {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Message != "second" || got[1].Level != LevelError {
		t.Errorf("got[1] = %+v", got[1])
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Errorf("notification ids not unique: %q %q", got[0].ID, got[1].ID)
	}

	if again := c.Drain(); len(again) != 0 {
		t.Errorf("second Drain() returned %d items, want 0", len(again))
	}
}

func TestCapacityDropsOldest(t *testing.T) {
	c := newTestCenter(3)

	for i := 0; i < 5; i++ {
		c.Info(fmt.Sprintf("msg-%d", i))
	}

	got := c.Drain()
	if len(got) != 3 {
		t.Fatalf("Drain() returned %d items, want 3", len(got))
	}
	if got[0].Message != "msg-2" || got[2].Message != "msg-4" {
		t.Errorf("Drain() = %v, want msg-2..msg-4", got)
	}
}

func TestConcurrentPush(t *testing.T) {
	c := newTestCenter(1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Info("hello")
		}()
	}
	wg.Wait()

	if got := len(c.Pending()); got != 50 {
		t.Errorf("Pending() = %d items, want 50", got)
	}
}

func TestSeqSurvivesDrainAndTrim(t *testing.T) {
	c := newTestCenter(1)

	start := c.Seq()
	c.Info("one")
	c.Info("two")
	c.Drain()

	if got := c.Seq() - start; got != 2 {
		t.Errorf("Seq() advanced by %d, want 2", got)
	}
	if len(c.Pending()) != 0 {
		t.Errorf("Pending() not empty after Drain()")
	}
}
