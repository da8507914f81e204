package registry

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func record(pid int, command string) *Record {
	return &Record{
		PID:         pid,
		CommandLine: command,
		StartTime:   time.Now(),
		Running:     true,
	}
}

func TestInsertGet(t *testing.T) {
	g := New()
	if err := g.Insert(record(100, "sleep 5")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	snap, ok := g.Get(100)
	if !ok {
		t.Fatal("Get(100) = absent, want present")
	}
	if snap.CommandLine != "sleep 5" {
		t.Errorf("CommandLine = %q, want %q", snap.CommandLine, "sleep 5")
	}
	if !snap.Running {
		t.Error("Running = false, want true")
	}

	if _, ok := g.Get(101); ok {
		t.Error("Get(101) = present, want absent")
	}
}

func TestInsert_DuplicatePID(t *testing.T) {
	g := New()
	if err := g.Insert(record(100, "a")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := g.Insert(record(100, "b"))
	if !errors.Is(err, ErrDuplicatePID) {
		t.Errorf("Insert duplicate = %v, want ErrDuplicatePID", err)
	}
}

func TestRemove_AbsentIsNoop(t *testing.T) {
	g := New()
	g.Remove(12345)

	if err := g.Insert(record(1, "a")); err != nil {
		t.Fatal(err)
	}
	g.Remove(1)
	g.Remove(1)
	if g.Len() != 0 {
		t.Errorf("Len = %d, want 0", g.Len())
	}
}

func TestList_InsertionOrder(t *testing.T) {
	g := New()
	for _, pid := range []int{30, 10, 20} {
		if err := g.Insert(record(pid, "cmd")); err != nil {
			t.Fatal(err)
		}
	}
	g.Remove(10)

	got := g.List()
	if len(got) != 2 {
		t.Fatalf("len(List) = %d, want 2", len(got))
	}
	if got[0].PID != 30 || got[1].PID != 20 {
		t.Errorf("List order = [%d %d], want [30 20]", got[0].PID, got[1].PID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	g := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			if err := g.Insert(record(pid, "cmd")); err != nil {
				t.Errorf("Insert(%d): %v", pid, err)
			}
			g.List()
			g.Get(pid)
			g.Remove(pid)
		}(i + 1)
	}
	wg.Wait()
	if g.Len() != 0 {
		t.Errorf("Len = %d after all removals, want 0", g.Len())
	}
}
