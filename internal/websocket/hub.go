package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"dsstool/internal/operations"
	"dsstool/internal/runlog"
)

const broadcastQueueSize = 256

type envelope struct {
	runID   string
	kind    string
	payload []byte
}

// Hub maintains the set of active clients and broadcasts run events to them
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *OTelMetrics

	totalConnections atomic.Int64
	messagesSent     atomic.Int64
	messagesDropped  atomic.Int64

	lifecycle sync.Mutex
	running   bool
	stopped   bool
	quit      chan struct{}
	done      chan struct{}
}

// NewHub creates a hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *OTelMetrics) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, broadcastQueueSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in its own goroutine. Calling it again, or after
// Stop, is a no-op.
func (h *Hub) Start() {
	h.lifecycle.Lock()
	defer h.lifecycle.Unlock()
	if h.running || h.stopped {
		return
	}
	h.running = true
	go h.run()
}

// Stop disconnects every client and waits for the hub loop to exit.
func (h *Hub) Stop() {
	h.lifecycle.Lock()
	if h.stopped {
		h.lifecycle.Unlock()
		<-h.done
		return
	}
	h.stopped = true
	running := h.running
	close(h.quit)
	h.lifecycle.Unlock()

	if !running {
		close(h.done)
	}
	<-h.done
}

func (h *Hub) run() {
	defer close(h.done)
	ctx := context.Background()

	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
				h.metrics.RecordDisconnection(ctx, time.Since(client.connectedAt), "shutdown")
			}
			h.mu.Unlock()
			h.logger.Info("hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.totalConnections.Add(1)
			h.metrics.RecordConnection(ctx, client.runID != "")

			h.logger.Info("client registered",
				slog.String("client_id", client.id),
				slog.String("run_filter", client.runID),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("total_clients", count))

			h.greet(client)

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			if ok {
				h.metrics.RecordDisconnection(ctx, time.Since(client.connectedAt), "normal")
				h.logger.Info("client unregistered",
					slog.String("client_id", client.id),
					slog.Int("total_clients", count),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
			}

		case env := <-h.broadcast:
			h.deliver(ctx, env)
		}
	}
}

func (h *Hub) greet(client *Client) {
	data, err := json.Marshal(Message{
		Type:  TypeConnection,
		RunID: client.runID,
		Data: ConnectionData{
			Status:   "connected",
			ClientID: client.id,
			RunID:    client.runID,
		},
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
		h.logger.Warn("client buffer full, greeting dropped", slog.String("client_id", client.id))
	}
}

// deliver runs on the hub loop only.
func (h *Hub) deliver(ctx context.Context, env envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.runID != "" && client.runID != env.runID {
			continue
		}
		select {
		case client.send <- env.payload:
			h.messagesSent.Add(1)
			h.metrics.RecordMessageSent(ctx, env.kind, len(env.payload))
		default:
			close(client.send)
			delete(h.clients, client)
			h.messagesDropped.Add(1)
			h.metrics.RecordDroppedMessage(ctx, env.kind, "client_buffer_full")
			h.metrics.RecordDisconnection(ctx, time.Since(client.connectedAt), "slow_consumer")
			h.logger.Warn("client send buffer full, disconnecting",
				slog.String("client_id", client.id))
		}
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client. It never blocks after the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// PublishLog queues a run:log message.
func (h *Hub) PublishLog(runID string, entry runlog.Entry) {
	h.publish(runID, Message{
		Type:      TypeRunLog,
		RunID:     runID,
		Data:      LogData{Entry: entry, Line: entry.Line()},
		Timestamp: entry.Time,
	})
}

// PublishStatus queues a run:status message.
func (h *Hub) PublishStatus(runID string, status operations.RunStatus) {
	h.publish(runID, Message{
		Type:      TypeRunStatus,
		RunID:     runID,
		Data:      StatusData{Status: status},
		Timestamp: time.Now().UTC(),
	})
}

func (h *Hub) publish(runID string, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal message",
			slog.String("type", msg.Type),
			slog.String("error", err.Error()))
		return
	}

	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.broadcast <- envelope{runID: runID, kind: msg.Type, payload: payload}:
	default:
		h.messagesDropped.Add(1)
		h.metrics.RecordDroppedMessage(context.Background(), msg.Type, "queue_full")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns the hub counters.
func (h *Hub) Stats() map[string]int64 {
	return map[string]int64{
		"active_clients":    int64(h.ClientCount()),
		"total_connections": h.totalConnections.Load(),
		"messages_sent":     h.messagesSent.Load(),
		"messages_dropped":  h.messagesDropped.Load(),
	}
}
