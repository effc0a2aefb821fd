package stream

import (
	"testing"
	"time"
)

func TestStream_DeliversSnapshots(t *testing.T) {
	s := New[int]()
	defer s.Cancel()

	s.Push(1)
	select {
	case got := <-s.Updates():
		if got != 1 {
			t.Errorf("got %d, want 1", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}

func TestStream_LatestWins(t *testing.T) {
	s := New[int]()
	defer s.Cancel()

	s.Push(1)
	s.Push(2)
	s.Push(3)

	select {
	case got := <-s.Updates():
		if got != 3 {
			t.Errorf("got stale snapshot %d, want 3", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}

func TestStream_CancelStopsDelivery(t *testing.T) {
	s := New[int]()
	s.Cancel()
	s.Cancel() // idempotent

	s.Push(42)
	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed after Cancel")
	}
	select {
	case got := <-s.Updates():
		t.Errorf("received %d after cancel", got)
	default:
	}
}
