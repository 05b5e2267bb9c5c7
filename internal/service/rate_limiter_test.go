package service

import (
	"testing"
	"time"
)

func TestMemoryCounterStore_WindowLimit(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryCounterStore()
	store.now = func() time.Time { return now }
	window := time.Minute

	for i := 1; i <= 3; i++ {
		count, retryAfter, err := store.Incr("10.0.0.1", window)
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if count != i {
			t.Fatalf("expected count %d, got %d", i, count)
		}
		if retryAfter <= 0 {
			t.Fatalf("expected positive retryAfter, got %v", retryAfter)
		}
	}

	// Pasada la ventana el contador arranca de nuevo.
	now = now.Add(window + time.Second)
	count, _, err := store.Incr("10.0.0.1", window)
	if err != nil {
		t.Fatalf("incr after window: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected counter reset, got %d", count)
	}
}

func TestMemoryCounterStore_KeysAreIndependent(t *testing.T) {
	store := NewMemoryCounterStore()

	if count, _, _ := store.Incr("a", time.Minute); count != 1 {
		t.Fatalf("expected 1 for key a, got %d", count)
	}
	if count, _, _ := store.Incr("b", time.Minute); count != 1 {
		t.Fatalf("expected 1 for key b, got %d", count)
	}
	if count, _, _ := store.Incr("a", time.Minute); count != 2 {
		t.Fatalf("expected 2 for key a, got %d", count)
	}
}

func TestMemoryCounterStore_Reset(t *testing.T) {
	store := NewMemoryCounterStore()
	store.Incr("a", time.Minute)
	store.Reset()
	if count, _, _ := store.Incr("a", time.Minute); count != 1 {
		t.Fatalf("expected reset counter, got %d", count)
	}
}
