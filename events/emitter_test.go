package events

import (
	"sync"
	"testing"
)

func TestEmitterFanOutOrder(t *testing.T) {
	e := NewEmitter()
	var order []string
	e.AddListener(ListenerFunc(func(*Event) { order = append(order, "first") }))
	e.AddListener(ListenerFunc(func(*Event) { order = append(order, "second") }))

	e.Emit(New("run", RunStart, 0, nil))

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("delivery order = %v", order)
	}
}

func TestEmitterIgnoresNil(t *testing.T) {
	e := NewEmitter()
	e.AddListener(nil)
	e.Emit(nil)

	called := false
	e.AddListener(ListenerFunc(func(*Event) { called = true }))
	e.Emit(New("run", ToolCall, 1, nil))
	if !called {
		t.Error("listener not called after nil listener was ignored")
	}

	var nilEmitter *Emitter
	nilEmitter.Emit(New("run", RunEnd, 0, nil))
}

func TestEmitterConcurrentAddAndEmit(t *testing.T) {
	e := NewEmitter()
	var mu sync.Mutex
	count := 0
	e.AddListener(ListenerFunc(func(*Event) {
		mu.Lock()
		count++
		mu.Unlock()
	}))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			e.Emit(New("run", ToolResult, 0, nil))
		}()
		go func() {
			defer wg.Done()
			e.AddListener(ListenerFunc(func(*Event) {}))
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if count != 10 {
		t.Errorf("first listener saw %d events, want 10", count)
	}
}

func TestNewEventFields(t *testing.T) {
	ev := New("run-1", Retry, 3, &RetryData{Attempt: 1, Max: 2})
	if ev.ID == "" || ev.RunID != "run-1" || ev.Type != Retry || ev.Step != 3 {
		t.Errorf("event = %+v", ev)
	}
	if ev.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
	other := New("run-1", Retry, 3, nil)
	if other.ID == ev.ID {
		t.Error("event IDs not unique")
	}
}
