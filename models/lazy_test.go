package models

import (
	"errors"
	"testing"
)

func TestLazy_ResolveFetchesOnce(t *testing.T) {
	var l Lazy[[]int]
	calls := 0
	fetch := func() ([]int, error) {
		calls++
		return []int{1, 2, 3}, nil
	}

	v, err := l.Resolve(fetch)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(v) != 3 {
		t.Fatalf("v = %v", v)
	}
	if _, err := l.Resolve(fetch); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
	if !l.Loaded() {
		t.Error("not loaded after resolve")
	}
}

func TestLazy_FetchErrorRetries(t *testing.T) {
	var l Lazy[[]int]
	calls := 0
	failing := func() ([]int, error) {
		calls++
		return nil, errors.New("storage offline")
	}

	if _, err := l.Resolve(failing); err == nil {
		t.Fatal("want error")
	}
	if l.Loaded() {
		t.Error("a failed fetch must leave the state unloaded")
	}
	if v, err := l.Resolve(func() ([]int, error) { return []int{7}, nil }); err != nil || len(v) != 1 {
		t.Fatalf("retry: %v %v", v, err)
	}
	if calls != 1 {
		t.Errorf("failing fetch called %d times, want 1", calls)
	}
}

func TestLazy_RemoteIsSticky(t *testing.T) {
	var l Lazy[[]int]
	l.SetRemote([]int{9})

	l.Invalidate()
	if !l.Loaded() || !l.FromRemote() {
		t.Fatal("invalidate must not clear a remote-sourced value")
	}
	calls := 0
	v, err := l.Resolve(func() ([]int, error) { calls++; return nil, nil })
	if err != nil || len(v) != 1 || v[0] != 9 {
		t.Fatalf("v = %v, err = %v", v, err)
	}
	if calls != 0 {
		t.Error("remote-sourced value was re-fetched")
	}
}

func TestLazy_InvalidateRearmsStorageSourced(t *testing.T) {
	var l Lazy[[]int]
	l.Set([]int{1})
	if !l.Loaded() || l.FromRemote() {
		t.Fatal("seeded value should be loaded and not remote")
	}

	l.Invalidate()
	if l.Loaded() {
		t.Fatal("invalidate must clear a storage-sourced value")
	}
	calls := 0
	if _, err := l.Resolve(func() ([]int, error) { calls++; return []int{2}, nil }); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch called %d times after invalidate, want 1", calls)
	}
}
