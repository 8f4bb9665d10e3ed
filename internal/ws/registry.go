package ws

import (
	"sync"

	"go.uber.org/atomic"
)

// Conn is a live connection as seen by the registry.
type Conn interface {
	ID() string
	UserID() uint
	Send(data []byte) bool
}

// bucket holds the connections of one channel. Structural changes take the
// bucket lock only; a bucket emptied by Unenroll is marked dead and removed,
// and a concurrent Enroll that still sees it retries with a fresh one.
type bucket struct {
	mu    sync.Mutex
	conns map[string]Conn
	dead  bool
}

// channels maps a channel key to its bucket.
type channels struct {
	m sync.Map // uint -> *bucket
}

func (c *channels) add(key uint, conn Conn) bool {
	for {
		v, _ := c.m.LoadOrStore(key, &bucket{conns: make(map[string]Conn)})
		b := v.(*bucket)

		b.mu.Lock()
		if b.dead {
			b.mu.Unlock()
			continue
		}
		_, exists := b.conns[conn.ID()]
		b.conns[conn.ID()] = conn
		b.mu.Unlock()
		return !exists
	}
}

func (c *channels) remove(key uint, conn Conn) bool {
	v, ok := c.m.Load(key)
	if !ok {
		return false
	}
	b := v.(*bucket)

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.conns[conn.ID()]; !ok {
		return false
	}
	delete(b.conns, conn.ID())
	if len(b.conns) == 0 {
		b.dead = true
		c.m.CompareAndDelete(key, b)
	}
	return true
}

// snapshot copies the bucket so delivery runs without holding its lock.
func (c *channels) snapshot(key uint) []Conn {
	v, ok := c.m.Load(key)
	if !ok {
		return nil
	}
	b := v.(*bucket)

	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Conn, 0, len(b.conns))
	for _, conn := range b.conns {
		out = append(out, conn)
	}
	return out
}

// Registry tracks live connections twice: by user identity for state events,
// and by joined chat for typing indicators.
type Registry struct {
	users       channels
	chats       channels
	connections atomic.Int64
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Enroll adds conn to its user's identity channel.
func (r *Registry) Enroll(conn Conn) {
	if r.users.add(conn.UserID(), conn) {
		r.connections.Inc()
	}
}

// Unenroll removes conn from its identity channel and from every chat in
// joined.
func (r *Registry) Unenroll(conn Conn, joined []uint) {
	for _, chatID := range joined {
		r.chats.remove(chatID, conn)
	}
	if r.users.remove(conn.UserID(), conn) {
		r.connections.Dec()
	}
}

func (r *Registry) JoinChat(chatID uint, conn Conn) {
	r.chats.add(chatID, conn)
}

func (r *Registry) LeaveChat(chatID uint, conn Conn) {
	r.chats.remove(chatID, conn)
}

// Connections returns the live connections of a user.
func (r *Registry) Connections(userID uint) []Conn {
	return r.users.snapshot(userID)
}

// ChatMembers returns the connections that joined a chat.
func (r *Registry) ChatMembers(chatID uint) []Conn {
	return r.chats.snapshot(chatID)
}

// Count is the number of enrolled connections.
func (r *Registry) Count() int64 {
	return r.connections.Load()
}
