package stream

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"signal-desk/internal/domain"
	"signal-desk/internal/metrics"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
)

// QualityThreshold supplies the minimum quality a signal needs to be pushed.
type QualityThreshold interface {
	MinimumQuality() int
}

type envelope struct {
	Type   string        `json:"type"`
	Signal domain.Signal `json:"signal"`
}

// Hub fans newly recorded signals out to websocket clients. Signals below the current
// minimum quality are never pushed; slow clients drop messages instead of blocking the
// recording path.
type Hub struct {
	threshold QualityThreshold
	metrics   *metrics.Metrics
	upgrader  websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub(threshold QualityThreshold, m *metrics.Metrics) *Hub {
	return &Hub{
		threshold: threshold,
		metrics:   m,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Publish is registered as a signal store subscriber.
func (h *Hub) Publish(sig domain.Signal) {
	if h.threshold != nil && sig.QualityScore < h.threshold.MinimumQuality() {
		return
	}
	payload, err := json.Marshal(envelope{Type: "signal", Signal: sig})
	if err != nil {
		log.Error().Err(err).Str("signal_id", sig.ID).Msg("stream encode failed")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.pair != "" && c.pair != sig.Pair {
			continue
		}
		select {
		case c.send <- payload:
		default:
			log.Warn().Str("signal_id", sig.ID).Msg("stream client lagging, message dropped")
		}
	}
}

// Serve upgrades the request and streams signals until the peer disconnects. An optional
// pair query parameter restricts the feed to one pair.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	pair := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("pair")))
	if pair != "" && !domain.IsSupportedPair(pair) {
		http.Error(w, "unsupported pair: "+pair, http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("stream upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer), pair: pair, hub: h}
	h.add(c)
	go c.writePump()
	c.readPump()
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		_ = c.conn.Close()
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.StreamClients.Inc()
	}
	log.Debug().Int("clients", count).Str("pair", c.pair).Msg("stream client connected")
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.StreamClients.Dec()
	}
	log.Debug().Msg("stream client disconnected")
}
