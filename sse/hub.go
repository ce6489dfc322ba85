package sse

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/smartsearch/logger"
)

const clientBuffer = 256

// Frame is one event delivered to a client.
type Frame struct {
	Event string
	Data  []byte
}

// Client represents a connected SSE client.
type Client struct {
	id     string
	events chan Frame
	log    *logger.Logger
}

// NewClientID returns a fresh client ID scoped to sessionID.
func NewClientID(sessionID string) string {
	return sessionID + ":" + uuid.NewString()
}

// SessionPattern matches every client of sessionID.
func SessionPattern(sessionID string) string {
	return sessionID + ":*"
}

// NewClient creates a client with a buffered event channel.
func NewClient(id string) *Client {
	return &Client{id: id, events: make(chan Frame, clientBuffer), log: logger.GetGlobalLogger()}
}

// ID returns the client's unique identifier.
func (c *Client) ID() string {
	return c.id
}

// Events returns the channel for receiving frames.
func (c *Client) Events() <-chan Frame {
	return c.events
}

// Send queues f for the client. It returns false and drops the frame if the
// client is not keeping up.
func (c *Client) Send(f Frame) bool {
	select {
	case c.events <- f:
		return true
	default:
		c.log.Warn("sse client channel full, dropping frame", logger.Fields("client_id", c.id, "event", f.Event))
		return false
	}
}

// Close closes the client's event channel.
func (c *Client) Close() {
	close(c.events)
}

// Hub manages SSE client connections and message broadcasting.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
	stopped    bool
	wg         sync.WaitGroup
	mu         sync.RWMutex
	log        *logger.Logger
}

type message struct {
	pattern string
	frame   Frame
}

// NewHub creates a new SSE hub.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, clientBuffer),
		done:       make(chan struct{}),
		log:        log.WithComponent("sse"),
	}
}

// Start runs the hub loop in the background.
func (h *Hub) Start() {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.Run()
	}()
}

// Run is the hub's event loop. It blocks until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client registered", logger.Fields("client_id", client.id, "total_clients", total))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				client.Close()
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client unregistered", logger.Fields("client_id", client.id, "total_clients", total))

		case msg := <-h.broadcast:
			h.broadcastWithPattern(msg.pattern, msg.frame)
		}
	}
}

// Stop shuts the hub down, closing every client, and waits for a loop
// started with Start to return. Safe to call multiple times.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.stopped {
		h.stopped = true
		close(h.done)
	}
	h.mu.Unlock()
	h.wg.Wait()
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		client.Close()
		delete(h.clients, id)
	}
	h.log.Debug("all clients closed during shutdown")
}

// Register adds a client to the hub. It returns false if the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish implements Broadcaster.
func (h *Hub) Publish(pattern, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("sse: encode %s event: %w", event, err)
	}
	if event == "" {
		event = EventTypeMessage
	}
	select {
	case h.broadcast <- message{pattern: pattern, frame: Frame{Event: event, Data: data}}:
	case <-h.done:
	}
	return nil
}

func (h *Hub) broadcastWithPattern(pattern string, f Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	matchCount := 0
	for clientID, client := range h.clients {
		matched, err := filepath.Match(pattern, clientID)
		if err != nil {
			h.log.Error("pattern match error", logger.Fields("pattern", pattern, logger.FieldError, err.Error()))
			return
		}
		if matched && client.Send(f) {
			matchCount++
		}
	}
	h.log.Debug("broadcast sent", logger.Fields("pattern", pattern, "event", f.Event, "match_count", matchCount))
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var _ Broadcaster = (*Hub)(nil)
