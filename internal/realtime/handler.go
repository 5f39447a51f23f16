package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/clinicdesk/clinicdesk/internal/events"
	"github.com/clinicdesk/clinicdesk/internal/session"
	"github.com/clinicdesk/clinicdesk/pkg/logging"
)

// Handler bridges per-doctor Redis channels onto WebSocket connections.
// Clients treat every event as a hint to refetch their current view.
type Handler struct {
	publisher *Publisher
	logger    *logging.Logger

	mu       sync.RWMutex
	sessions map[string][]*wsConn // doctorID -> open connections
}

type wsConn struct {
	conn *websocket.Conn
	done chan struct{}

	// writeMu serializes frames: the event-forwarding goroutine and the
	// pong reply in the read loop share one connection.
	writeMu sync.Mutex
}

func (c *wsConn) send(msg OutboundMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return websocket.JSON.Send(c.conn, msg)
}

// OutboundMessage is what the dashboard receives.
type OutboundMessage struct {
	Type   string            `json:"type"` // "recent", "event", "pong", "error"
	Event  *events.Envelope  `json:"event,omitempty"`
	Events []events.Envelope `json:"events,omitempty"`
	Text   string            `json:"text,omitempty"`
}

// InboundMessage is what the dashboard sends; only pings are expected.
type InboundMessage struct {
	Type string `json:"type"`
}

// NewHandler creates a realtime handler over the publisher's Redis
// client.
func NewHandler(publisher *Publisher, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		publisher: publisher,
		logger:    logger,
		sessions:  make(map[string][]*wsConn),
	}
}

// HandleWebSocket upgrades GET /me/events to a WebSocket stream for the
// authenticated doctor.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok || s.DoctorID == "" {
		http.Error(w, "missing doctor session", http.StatusUnauthorized)
		return
	}
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r, s.DoctorID)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request, doctorID string) {
	ctx := r.Context()
	wsc := &wsConn{conn: conn, done: make(chan struct{})}

	// Replay recent events so a reconnecting dashboard can catch up.
	if recent, err := h.publisher.Recent(ctx, doctorID, 20); err == nil && len(recent) > 0 {
		_ = wsc.send(OutboundMessage{Type: "recent", Events: recent})
	}

	sub := h.publisher.Subscribe(ctx, doctorID)
	if sub == nil {
		_ = wsc.send(OutboundMessage{Type: "error", Text: "realtime feed unavailable"})
		return
	}
	defer sub.Close()

	h.register(doctorID, wsc)
	defer h.unregister(doctorID, wsc)

	h.logger.Info("realtime: connection opened", "doctor_id", doctorID)

	go func() {
		ch := sub.Channel()
		for {
			select {
			case msg, open := <-ch:
				if !open {
					return
				}
				var env events.Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					h.logger.Warn("realtime: bad event payload", "error", err, "doctor_id", doctorID)
					continue
				}
				if err := wsc.send(OutboundMessage{Type: "event", Event: &env}); err != nil {
					return
				}
			case <-wsc.done:
				return
			}
		}
	}()

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("realtime: connection closed", "doctor_id", doctorID, "error", err)
			return
		}
		if msg.Type == "ping" {
			_ = wsc.send(OutboundMessage{Type: "pong"})
		}
	}
}

// HandleRecent is the HTTP fallback: GET /me/events/recent.
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok || s.DoctorID == "" {
		http.Error(w, "missing doctor session", http.StatusUnauthorized)
		return
	}

	recent, err := h.publisher.Recent(r.Context(), s.DoctorID, 20)
	if err != nil {
		h.logger.Error("failed to load recent events", "error", err, "doctor_id", s.DoctorID)
		http.Error(w, "failed to load recent events", http.StatusInternalServerError)
		return
	}
	if recent == nil {
		recent = []events.Envelope{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"events": recent,
		"count":  len(recent),
	})
}

func (h *Handler) register(doctorID string, wsc *wsConn) {
	h.mu.Lock()
	h.sessions[doctorID] = append(h.sessions[doctorID], wsc)
	h.mu.Unlock()
}

func (h *Handler) unregister(doctorID string, wsc *wsConn) {
	h.mu.Lock()
	conns := h.sessions[doctorID]
	for i, c := range conns {
		if c == wsc {
			h.sessions[doctorID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.sessions[doctorID]) == 0 {
		delete(h.sessions, doctorID)
	}
	h.mu.Unlock()
	close(wsc.done)
}

// ConnectedDoctors reports how many doctors hold open connections.
func (h *Handler) ConnectedDoctors() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
