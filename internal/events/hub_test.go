package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mediahost/service/internal/media"
)

func dial(t *testing.T, srv *httptest.Server, collection string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?collection=" + collection
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitSubscribers(t *testing.T, hub *Hub, c media.Collection, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers(c) != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers on %s, have %d", n, c, hub.Subscribers(c))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPublish_ReachesOnlyItsCollection(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()
	srv := httptest.NewServer(http.HandlerFunc(NewHandler(hub, []string{"*"}).ServeWS))
	defer srv.Close()

	gallery := dial(t, srv, "gallery")
	pdfs := dial(t, srv, "pdfs")
	waitSubscribers(t, hub, media.Gallery, 1)
	waitSubscribers(t, hub, media.PDFs, 1)

	hub.Publish(media.Gallery)

	gallery.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := gallery.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != "invalidate" || msg.Collection != media.Gallery {
		t.Errorf("unexpected message %+v", msg)
	}

	pdfs.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := pdfs.ReadMessage(); err == nil {
		t.Error("pdf subscriber should not receive gallery invalidation")
	}
}

func TestServeWS_RejectsUnknownCollection(t *testing.T) {
	hub := NewHub(zap.NewNop())
	rec := httptest.NewRecorder()
	NewHandler(hub, nil).ServeWS(rec, httptest.NewRequest(http.MethodGet, "/ws?collection=videos", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestUnregisterOnDisconnect(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(NewHandler(hub, nil).ServeWS))
	defer srv.Close()

	conn := dial(t, srv, "gallery")
	waitSubscribers(t, hub, media.Gallery, 1)
	conn.Close()
	waitSubscribers(t, hub, media.Gallery, 0)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example.com"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	if check(req) {
		t.Error("unexpected origin accepted")
	}
	req.Header.Set("Origin", "https://app.example.com")
	if !check(req) {
		t.Error("allowed origin rejected")
	}
}

func TestPublish_DoesNotBlockOnStalledSubscriber(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()
	srv := httptest.NewServer(http.HandlerFunc(NewHandler(hub, []string{"*"}).ServeWS))
	defer srv.Close()

	healthy := dial(t, srv, "gallery")
	waitSubscribers(t, hub, media.Gallery, 1)

	// A subscriber whose writer never drains: its buffer is already full.
	stalled := &client{send: make(chan []byte, sendBuffer)}
	for i := 0; i < sendBuffer; i++ {
		stalled.send <- []byte("{}")
	}
	hub.mu.Lock()
	hub.add(media.Gallery, stalled)
	hub.mu.Unlock()
	waitSubscribers(t, hub, media.Gallery, 2)

	done := make(chan struct{})
	go func() {
		hub.Publish(media.Gallery)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a stalled subscriber")
	}

	if n := hub.Subscribers(media.Gallery); n != 1 {
		t.Errorf("stalled subscriber should be dropped, have %d subscribers", n)
	}

	healthy.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := healthy.ReadMessage(); err != nil {
		t.Fatalf("healthy subscriber read: %v", err)
	}
}
