package docstore

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestChanges(t *testing.T) {
	t.Run("external modification is reported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store.db")
		opts := testOptions(ReadWrite)
		opts.Compression = NoCompression{}
		opts.Watch = true
		s, err := Open(path, opts)
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		defer s.Close()

		// Simulate another process rewriting the file.
		if err := os.WriteFile(path, []byte(`{"from":"outside"}`), 0o644); err != nil {
			t.Fatal(err)
		}
		select {
		case _, ok := <-s.Changes():
			if !ok {
				t.Fatal("Changes() closed before Close()")
			}
		case <-time.After(10 * time.Second):
			t.Fatal("timed out waiting for a change notification")
		}

		if err := s.Load(); err != nil {
			t.Fatalf("Load() failed: %v", err)
		}
		want := map[string]any{"from": "outside"}
		if got := s.Read(); !reflect.DeepEqual(got, want) {
			t.Fatalf("Read() after Load() = %v, want %v", got, want)
		}
	})

	t.Run("closed on Close", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store.db")
		opts := testOptions(ReadWrite)
		opts.Watch = true
		s, err := Open(path, opts)
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		ch := s.Changes()
		if err := s.Close(); err != nil {
			t.Fatalf("Close() failed: %v", err)
		}
		select {
		case _, ok := <-ch:
			if ok {
				t.Fatal("received a notification after Close()")
			}
		case <-time.After(10 * time.Second):
			t.Fatal("Changes() not closed after Close()")
		}
	})

	t.Run("nil without watch option", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store.db")
		s, err := Open(path, testOptions(ReadWrite))
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		defer s.Close()
		if s.Changes() != nil {
			t.Fatal("Changes() without Watch = non-nil channel")
		}
	})
}
