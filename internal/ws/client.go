package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Константы
const (
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	maxMessageSize     = 64 * 1024 // 64KB
	maxSendChannelSize = 256
	typingInterval     = 200 * time.Millisecond
)

// errMalformedFrame is reported when a client frame cannot be decoded; the
// connection stays open.
var errMalformedFrame = errors.New("malformed frame")

// RateLimiter ограничитель частоты сообщений
type RateLimiter struct {
	mu       sync.Mutex
	lastSent time.Time
	interval time.Duration
}

// NewRateLimiter создает новый ограничитель
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{
		interval: interval,
		lastSent: time.Now().Add(-interval),
	}
}

// Allow проверяет, можно ли отправить сообщение
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSent) >= rl.interval {
		rl.lastSent = now
		return true
	}

	return false
}

// Client представляет WebSocket соединение
type Client struct {
	id       string
	userID   uint
	ctx      context.Context
	cancel   context.CancelFunc
	conn     *websocket.Conn
	send     chan []byte
	mu       sync.RWMutex
	isClosed bool
	joined   map[uint]struct{}
	typing   *RateLimiter
	log      *slog.Logger
}

// NewClient создает нового клиента
func NewClient(ctx context.Context, conn *websocket.Conn, userID uint, log *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(ctx)
	id := uuid.NewString()

	return &Client{
		id:     id,
		userID: userID,
		ctx:    ctx,
		cancel: cancel,
		conn:   conn,
		send:   make(chan []byte, maxSendChannelSize),
		joined: make(map[uint]struct{}),
		typing: NewRateLimiter(typingInterval),
		log:    log.With("conn_id", id, "user_id", userID),
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) UserID() uint { return c.userID }

// ReadPump читает кадры клиента и передает их handle. It returns nil when the
// peer closes normally and the transport error otherwise.
func (c *Client) ReadPump(handle func(*Client, InFrame)) error {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}

		var frame InFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.SendFrame(socketError(errMalformedFrame.Error()))
			continue
		}
		handle(c, frame)

		if c.ctx.Err() != nil {
			return nil
		}
	}
}

// WritePump отправляет сообщения клиенту, по одному кадру на событие
func (c *Client) WritePump() error {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.drain()
			return nil
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return err
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

// drain flushes frames queued before Close and says goodbye.
func (c *Client) drain() {
	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		default:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// SendFrame отправляет JSON кадр
func (c *Client) SendFrame(f Frame) bool {
	data, err := json.Marshal(f)
	if err != nil {
		c.log.Error("failed to marshal frame", "event", f.Event, "error", err)
		return false
	}

	return c.Send(data)
}

// Send ставит кадр в очередь; при переполнении кадр отбрасывается
func (c *Client) Send(data []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.isClosed {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close закрывает соединение
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isClosed {
		return
	}

	c.isClosed = true
	c.cancel()
}

// IsClosed проверяет, закрыто ли соединение
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isClosed
}

func (c *Client) join(chatID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joined[chatID] = struct{}{}
}

func (c *Client) leave(chatID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.joined, chatID)
}

func (c *Client) hasJoined(chatID uint) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.joined[chatID]
	return ok
}

// Joined lists the chats this connection subscribed to.
func (c *Client) Joined() []uint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]uint, 0, len(c.joined))
	for id := range c.joined {
		ids = append(ids, id)
	}
	return ids
}
