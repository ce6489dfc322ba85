package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/smartsearch/logger"
)

// KeepAliveInterval is the comment interval on idle streams. It should stay
// below proxy idle timeouts.
var KeepAliveInterval = 30 * time.Second

// ConnectedEvent is sent when a client successfully connects.
type ConnectedEvent struct {
	ClientID  string `json:"client_id"`
	SessionID string `json:"session_id"`
}

// ServeSSE streams frames for clientID until the request ends or the hub
// stops.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request, clientID string) {
	log := hub.log.WithFields(logger.Fields("client_id", clientID))

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("streaming not supported")
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// SSE connections outlive the server's WriteTimeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("could not disable write deadline", logger.Fields(logger.FieldError, err.Error()))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := NewClient(clientID)
	if !hub.Register(client) {
		http.Error(w, "event stream closed", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	sessionID, _, _ := strings.Cut(clientID, ":")
	connected, _ := json.Marshal(ConnectedEvent{ClientID: clientID, SessionID: sessionID})
	writeFrame(w, Frame{Event: EventTypeConnected, Data: connected})
	flusher.Flush()

	log.Debug("client connected", logger.Fields("remote_addr", r.RemoteAddr))

	keepAlive := time.NewTicker(KeepAliveInterval)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debug("client disconnected", logger.Fields("reason", ctx.Err().Error()))
			return

		case f, ok := <-client.Events():
			if !ok {
				return
			}
			writeFrame(w, f)
			flusher.Flush()

		case <-keepAlive.C:
			_, _ = fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}

func writeFrame(w http.ResponseWriter, f Frame) {
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.Event, f.Data)
}
