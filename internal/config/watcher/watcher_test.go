package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startWatcher(t *testing.T, debounce time.Duration, paths ...string) <-chan Event {
	t.Helper()
	events := make(chan Event, 16)
	w, err := New(func(ev Event) { events <- ev }, WithDebounce(debounce))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			t.Fatalf("Add(%s): %v", p, err)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return events
}

func wait(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no event")
		return Event{}
	}
}

func TestWatchWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vimcore.toml")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	events := startWatcher(t, 20*time.Millisecond, path)

	if err := os.WriteFile(path, []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}
	ev := wait(t, events)
	if want, _ := filepath.Abs(path); ev.Path != want {
		t.Errorf("path = %s, want %s", ev.Path, want)
	}
}

func TestWatchIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keys.yaml")
	events := startWatcher(t, 0, path)

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	for {
		ev := wait(t, events)
		if filepath.Base(ev.Path) != "keys.yaml" {
			t.Fatalf("event for unwatched file %s", ev.Path)
		}
		if ev.Op == OpCreate || ev.Op == OpWrite {
			return
		}
	}
}

func TestWatchDebounces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "init.lua")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	events := startWatcher(t, 200*time.Millisecond, path)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte{byte('a' + i)}, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	wait(t, events)
	select {
	case ev := <-events:
		t.Errorf("second event %+v after a burst", ev)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestAddRemove(t *testing.T) {
	w, err := New(func(Event) {})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a"), filepath.Join(dir, "b")
	for _, p := range []string{a, b, a} {
		if err := w.Add(p); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if got := len(w.Files()); got != 2 {
		t.Errorf("files = %d, want 2", got)
	}
	if err := w.Remove(a); err != nil {
		t.Fatal(err)
	}
	if err := w.Remove(b); err != nil {
		t.Fatal(err)
	}
	if got := len(w.Files()); got != 0 {
		t.Errorf("files = %d after remove, want 0", got)
	}
	w.Close()
	if err := w.Add(a); err != ErrClosed {
		t.Errorf("Add after Close = %v, want ErrClosed", err)
	}
}
