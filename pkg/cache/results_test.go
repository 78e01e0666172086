package cache

import (
	"testing"
	"time"
)

func TestResultStorePutGet(t *testing.T) {
	store := NewResultStore(time.Minute, 10)
	store.Put("a", 1)

	value, ok := store.Get("a")
	if !ok || value.(int) != 1 {
		t.Fatalf("get = %v, %v", value, ok)
	}
	if _, ok := store.Get("missing"); ok {
		t.Fatal("expected miss for absent key")
	}
}

func TestResultStoreExpiry(t *testing.T) {
	store := NewResultStore(10*time.Millisecond, 10)
	store.Put("a", 1)
	time.Sleep(25 * time.Millisecond)

	if _, ok := store.Get("a"); ok {
		t.Fatal("expected expired entry to be gone")
	}
}

func TestResultStoreEviction(t *testing.T) {
	store := NewResultStore(time.Minute, 2)
	store.Put("a", 1)
	store.Put("b", 2)
	store.Put("c", 3)

	if store.Len() != 2 {
		t.Fatalf("len = %d, want 2 after eviction", store.Len())
	}
	if _, ok := store.Get("c"); !ok {
		t.Fatal("newest entry should survive eviction")
	}
}

func TestResultStoreOverwriteDoesNotEvict(t *testing.T) {
	store := NewResultStore(time.Minute, 2)
	store.Put("a", 1)
	store.Put("b", 2)
	store.Put("a", 3)

	if store.Len() != 2 {
		t.Fatalf("len = %d, want 2", store.Len())
	}
	value, ok := store.Get("a")
	if !ok || value.(int) != 3 {
		t.Fatalf("overwrite lost: %v, %v", value, ok)
	}
}
