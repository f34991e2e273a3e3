// Package events pushes invalidation notices to connected viewers over
// WebSocket so they re-read the authoritative order after every write.
package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mediahost/service/internal/media"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many notices a slow subscriber may fall behind
	// before it is dropped.
	sendBuffer = 8
)

// Message is the payload sent to subscribers.
type Message struct {
	Type       string           `json:"type"`
	Collection media.Collection `json:"collection"`
}

// client is one subscriber. Only its writer goroutine touches conn for
// writing; the hub only ever queues onto send.
type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (cl *client) close() {
	cl.once.Do(func() { close(cl.send) })
}

// writePump delivers queued notices until send is closed or a write fails.
func (cl *client) writePump(log *zap.Logger) {
	defer cl.conn.Close()
	for msg := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
		if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debug("subscriber write failed", zap.Error(err))
			return
		}
	}
	cl.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
	cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")) //nolint:errcheck
}

// Hub keeps one room of subscribers per collection.
type Hub struct {
	mu    sync.Mutex
	rooms map[media.Collection]map[*client]bool
	log   *zap.Logger
}

// NewHub creates an empty Hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		rooms: make(map[media.Collection]map[*client]bool),
		log:   log.Named("events"),
	}
}

// register adds conn to the room of collection c and starts its writer.
func (h *Hub) register(c media.Collection, conn *websocket.Conn) *client {
	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	go cl.writePump(h.log)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.add(c, cl)
	h.log.Debug("subscriber registered", zap.String("collection", string(c)), zap.Int("conns", len(h.rooms[c])))
	return cl
}

func (h *Hub) add(c media.Collection, cl *client) {
	if _, ok := h.rooms[c]; !ok {
		h.rooms[c] = make(map[*client]bool)
	}
	h.rooms[c][cl] = true
}

// unregister removes cl and stops its writer.
func (h *Hub) unregister(c media.Collection, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(c, cl)
}

func (h *Hub) drop(c media.Collection, cl *client) {
	conns, ok := h.rooms[c]
	if !ok {
		return
	}
	if _, ok := conns[cl]; ok {
		delete(conns, cl)
		cl.close()
	}
	if len(conns) == 0 {
		delete(h.rooms, c)
	}
}

// Subscribers returns the number of live connections for c.
func (h *Hub) Subscribers(c media.Collection) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[c])
}

// Publish tells every subscriber of c to invalidate its view. It never
// blocks on the network; subscribers whose buffer is full are dropped.
func (h *Hub) Publish(c media.Collection) {
	msg, err := json.Marshal(Message{Type: "invalidate", Collection: c})
	if err != nil {
		h.log.Error("marshal invalidate message", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for cl := range h.rooms[c] {
		select {
		case cl.send <- msg:
		default:
			h.log.Debug("drop slow subscriber", zap.String("collection", string(c)))
			h.drop(c, cl)
		}
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c, conns := range h.rooms {
		for cl := range conns {
			cl.close()
		}
		delete(h.rooms, c)
	}
}

// Handler upgrades requests on /ws?collection=gallery|pdfs.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler creates a WebSocket handler. allowed lists accepted origins;
// "*" or an empty list accepts any origin.
func NewHandler(hub *Hub, allowed []string) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowed),
		},
	}
}

// ServeWS godoc
//
//	@Summary		Subscribe to invalidations
//	@Description	Upgrades to a WebSocket that receives {"type":"invalidate","collection":...} after every write to the collection.
//	@Tags			events
//	@Param			collection	query	string	true	"gallery or pdfs"
//	@Success		101
//	@Failure		400	{object}	response.Envelope
//	@Router			/ws [get]
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	c := media.Collection(r.URL.Query().Get("collection"))
	if c != media.Gallery && c != media.PDFs {
		http.Error(w, "collection must be gallery or pdfs", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		return
	}

	cl := h.hub.register(c, conn)
	defer h.hub.unregister(c, cl)

	// Viewers only listen; reading detects the disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
