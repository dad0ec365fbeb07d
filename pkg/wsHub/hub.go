package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
	ErrDuplicateConn  = errors.New("connection id already registered")
)

// Client is a live connection the hub can deliver to.
// Send must not block: a client that cannot accept a message returns an error.
type Client interface {
	ID() string
	Send(msg []byte) error
	Close() error
}

// Stats describes the outcome of one Broadcast call.
type Stats struct {
	Delivered int
	Dropped   int
}

// ConnectionHub is the membership table: connection id -> groups and
// group -> connection ids. Safe for concurrent use.
type ConnectionHub struct {
	mu      sync.RWMutex
	clients map[string]*member
	groups  map[string]map[string]struct{}

	l logger.Logger
}

type member struct {
	client Client
	groups []string
}

func NewConnHub(l logger.Logger) *ConnectionHub {
	return &ConnectionHub{
		clients: make(map[string]*member),
		groups:  make(map[string]map[string]struct{}),
		l:       l,
	}
}

// Add registers client and places it into groups.
func (h *ConnectionHub) Add(client Client, groups ...string) error {
	if client == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	id := client.ID()
	if _, ok := h.clients[id]; ok {
		return ErrDuplicateConn
	}

	h.clients[id] = &member{client: client, groups: groups}
	for _, g := range groups {
		set, ok := h.groups[g]
		if !ok {
			set = make(map[string]struct{})
			h.groups[g] = set
		}
		set[id] = struct{}{}
	}

	return nil
}

// Delete removes the connection and all of its memberships. It does not close it.
func (h *ConnectionHub) Delete(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.clients[id]
	if !ok {
		return ErrConnIsNotFound
	}

	for _, g := range m.groups {
		if set, ok := h.groups[g]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(h.groups, g)
			}
		}
	}
	delete(h.clients, id)

	return nil
}

// Groups returns the groups id currently belongs to.
func (h *ConnectionHub) Groups(id string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	m, ok := h.clients[id]
	if !ok {
		return nil
	}
	return append([]string(nil), m.groups...)
}

// Members returns the distinct clients that belong to any of groups.
func (h *ConnectionHub) Members(groups ...string) []Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]Client, 0)
	for _, g := range groups {
		for id := range h.groups[g] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, h.clients[id].client)
		}
	}
	return out
}

// Broadcast sends msg once to every distinct client in groups.
// Clients that refuse the message are counted as dropped and never retried.
func (h *ConnectionHub) Broadcast(msg []byte, groups ...string) Stats {
	var stats Stats
	for _, c := range h.Members(groups...) {
		if err := c.Send(msg); err != nil {
			stats.Dropped++
			continue
		}
		stats.Delivered++
	}
	return stats
}

// Len returns the number of registered connections.
func (h *ConnectionHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes and removes every connection.
func (h *ConnectionHub) Close() {
	ctx := wrap.WithAction(context.Background(), "hub_close")

	h.mu.Lock()
	clients := make([]Client, 0, len(h.clients))
	for _, m := range h.clients {
		clients = append(clients, m.client)
	}
	h.clients = make(map[string]*member)
	h.groups = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.Close(); err != nil {
			h.l.Warn(ctx, "failed to close conn", "conn_id", c.ID(), "err", err.Error())
		}
	}

	h.l.Info(ctx, "all websocket connections closed", "count", len(clients))
}
