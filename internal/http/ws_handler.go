package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/forgehq/forge/internal/http/middleware"
	"github.com/forgehq/forge/internal/ws"
	"github.com/forgehq/forge/pkg/logger"
)

// AgentHandler owns the WebSocket endpoint. It upgrades the connection,
// then hands open/message/close events to the session controller; the
// read loop never dispatches two messages for one connection
// concurrently, which is the ordering contract the controller relies on.
type AgentHandler struct {
	controller *ws.Controller
	logger     logger.Logger
	upgrader   websocket.Upgrader
}

func NewAgentHandler(controller *ws.Controller, logger logger.Logger) *AgentHandler {
	return &AgentHandler{
		controller: controller,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *AgentHandler) RegisterRoutes(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.Handle("/ws/projects/{projectID}", requireAuth(http.HandlerFunc(h.handleAgent)))
}

func (h *AgentHandler) handleAgent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	projectID := r.PathValue("projectID")
	if projectID == "" {
		WriteJSONError(w, "Missing project ID", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.WithField("error", err.Error()).Warn("WebSocket upgrade failed")
		return
	}

	connectionID := uuid.New().String()
	sender := newConnSender(conn)

	defer func() {
		h.controller.HandleClose(connectionID)
		conn.Close()
	}()

	h.controller.HandleOpen(r.Context(), connectionID, projectID, userID, sender)

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		h.controller.HandleMessage(r.Context(), connectionID, payload, sender)
	}
}

// connSender adapts a gorilla connection to the controller's Sender.
// gorilla allows one concurrent writer per connection; the mutex covers
// the case where a close races a send.
type connSender struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

func newConnSender(conn *websocket.Conn) *connSender {
	return &connSender{conn: conn}
}

func (s *connSender) Send(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return websocket.ErrCloseSent
	}
	return s.conn.WriteJSON(v)
}

func (s *connSender) Close(code int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	message := websocket.FormatCloseMessage(code, reason)
	deadline := time.Now().Add(time.Second)
	_ = s.conn.WriteControl(websocket.CloseMessage, message, deadline)
	_ = s.conn.Close()
}
