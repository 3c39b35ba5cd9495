package docstore

import (
	"sync"
	"testing"
)

func TestRegistry(t *testing.T) {
	t.Run("register and unregister", func(t *testing.T) {
		r := NewRegistry()
		if !r.register("/a") {
			t.Fatal("first register failed")
		}
		if r.register("/a") {
			t.Fatal("second register of same path succeeded")
		}
		if !r.register("/b") {
			t.Fatal("register of distinct path failed")
		}
		r.unregister("/a")
		if !r.register("/a") {
			t.Fatal("register after unregister failed")
		}
	})

	t.Run("unregister unknown path", func(t *testing.T) {
		r := NewRegistry()
		r.unregister("/never-registered")
	})

	t.Run("concurrent register yields one winner", func(t *testing.T) {
		r := NewRegistry()
		const n = 32
		var wg sync.WaitGroup
		wins := make(chan bool, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				wins <- r.register("/contended")
			}()
		}
		wg.Wait()
		close(wins)
		count := 0
		for won := range wins {
			if won {
				count++
			}
		}
		if count != 1 {
			t.Fatalf("got %d successful registrations, want 1", count)
		}
	})
}
