package ws

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
)

type fakeClient struct {
	id     string
	mu     sync.Mutex
	got    [][]byte
	full   bool
	closed bool
}

func (f *fakeClient) ID() string { return f.id }

func (f *fakeClient) Send(msg []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return ErrSendBufferFull
	}
	f.got = append(f.got, msg)
	return nil
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeClient) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

func TestHub_BroadcastDeduplicates(t *testing.T) {
	h := NewConnHub(logger.Discard())
	a := &fakeClient{id: "a"}
	b := &fakeClient{id: "b"}
	if err := h.Add(a, "user:1", "drivers"); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if err := h.Add(b, "user:2", "passengers"); err != nil {
		t.Fatalf("add b: %v", err)
	}

	stats := h.Broadcast([]byte("x"), "user:1", "drivers", "user:1")
	if stats.Delivered != 1 || stats.Dropped != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if a.count() != 1 {
		t.Fatalf("a must receive exactly once, got %d", a.count())
	}
	if b.count() != 0 {
		t.Fatalf("b must not receive, got %d", b.count())
	}
}

func TestHub_DeleteDropsMemberships(t *testing.T) {
	h := NewConnHub(logger.Discard())
	a := &fakeClient{id: "a"}
	_ = h.Add(a, "user:1", "drivers")

	if err := h.Delete("a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if h.Len() != 0 {
		t.Fatalf("expected empty hub")
	}
	if got := h.Members("drivers", "user:1"); len(got) != 0 {
		t.Fatalf("expected no members after delete, got %d", len(got))
	}
	if err := h.Delete("a"); !errors.Is(err, ErrConnIsNotFound) {
		t.Fatalf("expected ErrConnIsNotFound, got %v", err)
	}
}

func TestHub_AddRejectsDuplicateID(t *testing.T) {
	h := NewConnHub(logger.Discard())
	_ = h.Add(&fakeClient{id: "a"}, "drivers")
	if err := h.Add(&fakeClient{id: "a"}, "drivers"); !errors.Is(err, ErrDuplicateConn) {
		t.Fatalf("expected ErrDuplicateConn, got %v", err)
	}
	if err := h.Add(nil); !errors.Is(err, ErrEmptyConn) {
		t.Fatalf("expected ErrEmptyConn, got %v", err)
	}
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	h := NewConnHub(logger.Discard())
	slow := &fakeClient{id: "slow", full: true}
	fast := &fakeClient{id: "fast"}
	_ = h.Add(slow, "drivers")
	_ = h.Add(fast, "drivers")

	stats := h.Broadcast([]byte("offer"), "drivers")
	if stats.Delivered != 1 || stats.Dropped != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if fast.count() != 1 {
		t.Fatalf("fast client must still receive")
	}
}

func TestHub_ConcurrentAccess(t *testing.T) {
	h := NewConnHub(logger.Discard())
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		id := strings.Repeat("c", i+1)
		go func() {
			defer wg.Done()
			_ = h.Add(&fakeClient{id: id}, "drivers")
			_ = h.Delete(id)
		}()
		go func() {
			defer wg.Done()
			h.Broadcast([]byte("x"), "drivers")
		}()
	}
	wg.Wait()
	if h.Len() != 0 {
		t.Fatalf("expected empty hub, got %d", h.Len())
	}
}

func TestHub_CloseClosesClients(t *testing.T) {
	h := NewConnHub(logger.Discard())
	a := &fakeClient{id: "a"}
	_ = h.Add(a, "drivers")
	h.Close()
	if !a.closed {
		t.Fatalf("client must be closed")
	}
	if h.Len() != 0 {
		t.Fatalf("hub must be empty after close")
	}
}

func TestConn_SendDoesNotBlock(t *testing.T) {
	c := NewConn("c1", nil, Options{SendBuffer: 1})

	if err := c.Send([]byte("first")); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if err := c.Send([]byte("second")); !errors.Is(err, ErrSendBufferFull) {
		t.Fatalf("expected ErrSendBufferFull, got %v", err)
	}

	_ = c.Close()
	if err := c.Send([]byte("third")); !errors.Is(err, ErrConnClosed) {
		t.Fatalf("expected ErrConnClosed, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close must be a no-op, got %v", err)
	}
}

func TestConn_WritePumpDelivers(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewConn("srv", raw, Options{})
		go c.WritePump()
		_ = c.Send([]byte(`{"event":"ride:created"}`))
		_ = c.Listen(func([]byte) {})
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != `{"event":"ride:created"}` {
		t.Fatalf("unexpected message %q", msg)
	}
}
