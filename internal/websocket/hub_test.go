package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, gymID string) *Client {
	return &Client{
		hub:   hub,
		conn:  nil,
		gymID: gymID,
		send:  make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.New(slog.DiscardHandler))

	c1 := mockClient(hub, "gym_a")
	c2 := mockClient(hub, "gym_a")

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.New(slog.DiscardHandler))
	c := mockClient(hub, "gym_a")
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcastScopedToGym(t *testing.T) {
	hub := NewHub(slog.New(slog.DiscardHandler))

	watching := mockClient(hub, "gym_a")
	other := mockClient(hub, "gym_b")
	hub.Register(watching)
	hub.Register(other)

	at := time.Date(2026, 9, 1, 7, 30, 0, 0, time.UTC)
	hub.Broadcast(CheckInMessage("gym_a", "member_1", "Alice", at))

	select {
	case data := <-watching.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Type != "attendance_check_in" {
			t.Errorf("type = %q, want attendance_check_in", got.Type)
		}
		if got.MemberName != "Alice" {
			t.Errorf("member name = %q, want Alice", got.MemberName)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}

	select {
	case <-other.send:
		t.Fatal("client for other gym should not receive the message")
	default:
	}

	hub.Unregister(watching)
	hub.Unregister(other)
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(slog.New(slog.DiscardHandler))
	// Should not panic
	hub.Broadcast(CheckOutMessage("gym_a", "member_1", "Alice", time.Now()))
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.New(slog.DiscardHandler))

	c := mockClient(hub, "gym_a")
	hub.Register(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(CheckInMessage("gym_a", "member_1", "Alice", time.Now()))
	}

	// This should drop the message, not panic or block
	hub.Broadcast(CheckInMessage("gym_a", "member_1", "Alice", time.Now()))

	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.New(slog.DiscardHandler))
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub, "gym_a")
			hub.Register(c)
			hub.Broadcast(CheckInMessage("gym_a", "member_1", "Alice", time.Now()))
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}
