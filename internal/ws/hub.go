package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"tush00nka/chathub/internal/model"
	"tush00nka/chathub/internal/pkg/apperror"
	"tush00nka/chathub/internal/pkg/auth"
	"tush00nka/chathub/internal/pkg/httputils"
	"tush00nka/chathub/internal/pkg/metrics"
	"tush00nka/chathub/internal/repository"

	"github.com/gorilla/websocket"
)

// Frame исходящее событие
type Frame struct {
	Event model.Event `json:"event"`
	Data  any         `json:"data,omitempty"`
}

// InFrame входящее событие
type InFrame struct {
	Event  model.Event `json:"event"`
	ChatID uint        `json:"chatId,omitempty"`
}

func socketError(message string) Frame {
	return Frame{Event: model.EventSocketError, Data: map[string]string{"message": message}}
}

// Hub delivers events to live connections and serves the websocket endpoint.
type Hub struct {
	registry *Registry
	upgrader websocket.Upgrader
	tokens   *auth.Manager
	chats    repository.ChatRepository
	metrics  *metrics.Metrics
	log      *slog.Logger

	// ctx parents every connection; Shutdown cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub создает новый хаб
func NewHub(
	registry *Registry,
	upgrader websocket.Upgrader,
	tokens *auth.Manager,
	chats repository.ChatRepository,
	m *metrics.Metrics,
	log *slog.Logger,
) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		ctx:      ctx,
		cancel:   cancel,
		registry: registry,
		upgrader: upgrader,
		tokens:   tokens,
		chats:    chats,
		metrics:  m,
		log:      log.With("component", "ws"),
	}
}

// Deliver pushes an event to every live connection of userID. Offline users
// and full buffers drop the event.
func (h *Hub) Deliver(userID uint, event model.Event, payload any) {
	conns := h.registry.Connections(userID)
	if len(conns) == 0 {
		h.metrics.Dropped.WithLabelValues(string(event)).Inc()
		return
	}

	data, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		h.log.Error("failed to marshal event", "event", event, "error", err)
		return
	}
	h.send(conns, event, data)
}

func (h *Hub) send(conns []Conn, event model.Event, data []byte) {
	for _, conn := range conns {
		if conn.Send(data) {
			h.metrics.Delivered.WithLabelValues(string(event)).Inc()
		} else {
			h.metrics.Dropped.WithLabelValues(string(event)).Inc()
			h.log.Debug("event dropped", "event", event, "conn_id", conn.ID())
		}
	}
}

// ServeWS authenticates the request, upgrades it and runs the connection
// until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	claims, err := h.tokens.ValidateToken(auth.TokenFromRequest(r))
	if err != nil {
		httputils.ResponseError(w, apperror.Unauthorized("Unauthorized request"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	client := NewClient(r.Context(), conn, claims.UserID, h.log)
	stop := context.AfterFunc(h.ctx, client.Close)
	defer stop()
	h.registry.Enroll(client)
	h.metrics.Connections.Set(float64(h.registry.Count()))
	client.log.Debug("connected")
	client.SendFrame(Frame{Event: model.EventConnected})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := client.WritePump(); err != nil {
			client.log.Debug("write pump stopped", "error", err)
		}
		// разблокирует ReadPump
		conn.Close()
	}()

	if err := client.ReadPump(h.handle); err != nil {
		client.log.Debug("read pump stopped", "error", err)
		client.SendFrame(socketError("connection error"))
	}

	h.registry.Unenroll(client, client.Joined())
	h.metrics.Connections.Set(float64(h.registry.Count()))
	client.Close()
	<-done
	client.log.Debug("disconnected")
}

// Shutdown closes every live connection. The http server does not track
// hijacked connections, so it has to be called on server shutdown.
func (h *Hub) Shutdown() {
	h.cancel()
}

// handle обрабатывает входящие события
func (h *Hub) handle(c *Client, f InFrame) {
	switch f.Event {
	case model.EventJoinChat:
		h.joinChat(c, f.ChatID)
	case model.EventLeaveChat:
		h.registry.LeaveChat(f.ChatID, c)
		c.leave(f.ChatID)
	case model.EventTyping, model.EventStopTyping:
		h.typing(c, f)
	case model.EventDisconnect:
		c.Close()
	default:
		c.SendFrame(socketError("unknown event " + string(f.Event)))
	}
}

func (h *Hub) joinChat(c *Client, chatID uint) {
	chat, err := h.chats.FindByID(c.ctx, chatID)
	if err != nil || !chat.Participants.Has(c.userID) {
		c.SendFrame(socketError("You are not a part of this chat"))
		return
	}
	h.registry.JoinChat(chatID, c)
	c.join(chatID)
}

// typing рассылает индикатор всем, кто подписан на чат, кроме отправителя
func (h *Hub) typing(c *Client, f InFrame) {
	if !c.hasJoined(f.ChatID) {
		c.SendFrame(socketError("Join the chat first"))
		return
	}
	if f.Event == model.EventTyping && !c.typing.Allow() {
		return
	}

	data, err := json.Marshal(Frame{
		Event: f.Event,
		Data:  model.TypingPayload{ChatID: f.ChatID, UserID: c.userID},
	})
	if err != nil {
		return
	}

	conns := h.registry.ChatMembers(f.ChatID)
	others := conns[:0]
	for _, conn := range conns {
		if conn.ID() != c.id {
			others = append(others, conn)
		}
	}
	h.send(others, f.Event, data)
}
