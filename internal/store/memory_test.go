package store

import (
	"sync"
	"testing"
	"time"
)

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if store == nil {
		t.Fatal("NewMemoryStore() = nil")
	}

	if len(store.GetAll()) != 0 {
		t.Errorf("GetAll() = %v items, want 0", len(store.GetAll()))
	}
}

func TestMemoryStore_Update(t *testing.T) {
	store := NewMemoryStore()

	store.Update(SessionStatus{
		ID:                  "s1",
		Name:                "console",
		URI:                 "http://console.local/ajaxstatus",
		State:               "idle",
		LastOutcome:         "success",
		LastStatusCode:      200,
		ResponseTimeMs:      100,
		CheckedAt:           time.Now(),
		ConsecutiveFailures: 0,
	})

	all := store.GetAll()
	if len(all) != 1 {
		t.Fatalf("GetAll() = %v items, want 1", len(all))
	}
	if all[0].Name != "console" {
		t.Errorf("GetAll()[0].Name = %v, want %v", all[0].Name, "console")
	}
	if all[0].LastOutcome != "success" {
		t.Errorf("GetAll()[0].LastOutcome = %v, want %v", all[0].LastOutcome, "success")
	}
}

// TestMemoryStore_KeyedByID verifies that sessions sharing a name are stored
// separately and that updates replace by ID.
func TestMemoryStore_KeyedByID(t *testing.T) {
	store := NewMemoryStore()

	store.Update(SessionStatus{ID: "a", Name: "console", ConsecutiveFailures: 1})
	store.Update(SessionStatus{ID: "b", Name: "console", ConsecutiveFailures: 2})
	store.Update(SessionStatus{ID: "a", Name: "console", ConsecutiveFailures: 3})

	all := store.GetAll()
	if len(all) != 2 {
		t.Fatalf("GetAll() = %v items, want 2", len(all))
	}
	if all[0].ID != "a" || all[0].ConsecutiveFailures != 3 {
		t.Errorf("GetAll()[0] = %+v, want a with 3 failures", all[0])
	}
	if all[1].ID != "b" {
		t.Errorf("GetAll()[1].ID = %v, want b", all[1].ID)
	}
}

func TestMemoryStore_GetAllOrdered(t *testing.T) {
	store := NewMemoryStore()

	store.Update(SessionStatus{ID: "3", Name: "zeta"})
	store.Update(SessionStatus{ID: "1", Name: "alpha"})
	store.Update(SessionStatus{ID: "2", Name: "mid"})

	all := store.GetAll()
	want := []string{"alpha", "mid", "zeta"}
	for i, name := range want {
		if all[i].Name != name {
			t.Errorf("GetAll()[%d].Name = %v, want %v", i, all[i].Name, name)
		}
	}
}

func TestMemoryStore_Remove(t *testing.T) {
	store := NewMemoryStore()

	store.Update(SessionStatus{ID: "a", Name: "a"})
	store.Update(SessionStatus{ID: "b", Name: "b"})

	store.Remove("a")
	store.Remove("unknown")

	all := store.GetAll()
	if len(all) != 1 || all[0].ID != "b" {
		t.Errorf("GetAll() = %+v, want only b", all)
	}
}

func TestMemoryStore_Subscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	if ch == nil {
		t.Fatal("Subscribe() = nil")
	}

	go func() {
		store.Update(SessionStatus{ID: "s1", Name: "console"})
	}()

	select {
	case status := <-ch:
		if status.ID != "s1" {
			t.Errorf("received ID = %v, want %v", status.ID, "s1")
		}
	case <-time.After(1 * time.Second):
		t.Error("Subscribe() channel did not receive update")
	}
}

func TestMemoryStore_MultipleSubscribers(t *testing.T) {
	store := NewMemoryStore()

	ch1 := store.Subscribe()
	ch2 := store.Subscribe()
	ch3 := store.Subscribe()

	go func() {
		store.Update(SessionStatus{ID: "s1"})
	}()

	received := 0
	timeout := time.After(1 * time.Second)

	for received < 3 {
		select {
		case <-ch1:
			received++
		case <-ch2:
			received++
		case <-ch3:
			received++
		case <-timeout:
			t.Fatalf("Only received %d/3 updates", received)
		}
	}
}

func TestMemoryStore_Unsubscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	store.Unsubscribe(ch)
	store.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Unsubscribe() channel should be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Unsubscribe() channel should be closed immediately")
	}
}

func TestMemoryStore_SlowSubscriberDoesNotBlock(t *testing.T) {
	store := NewMemoryStore()

	// never read
	_ = store.Subscribe()
	ch2 := store.Subscribe()

	done := make(chan bool)
	go func() {
		for i := 0; i < 2*subscriberBuffer; i++ {
			store.Update(SessionStatus{ID: "s1"})
		}
		done <- true
	}()

	go func() {
		for range ch2 {
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("Update() blocked on slow subscriber")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	numGoroutines := 10
	numUpdates := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numUpdates; j++ {
				store.Update(SessionStatus{ID: "s1", Name: "console"})
				if j%10 == 0 {
					store.Remove("s1")
				}
			}
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numUpdates; j++ {
				_ = store.GetAll()
			}
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := store.Subscribe()
			time.Sleep(10 * time.Millisecond)
			store.Unsubscribe(ch)
		}()
	}

	wg.Wait()
}
