package notifier

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"storefront-service/internal/util"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

// FeedMessage is one frame pushed to admin dashboards
type FeedMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// OrderFeed fans order activity out to connected admin websocket clients
type OrderFeed struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewOrderFeed creates a feed accepting upgrades from the given origins
func NewOrderFeed(allowedOrigins []string) *OrderFeed {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return &OrderFeed{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
		logger: util.GetLogger(),
	}
}

// ServeHTTP upgrades the request and holds the connection until the client leaves
func (f *OrderFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	f.mu.Lock()
	f.clients[conn] = struct{}{}
	f.mu.Unlock()

	defer f.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *OrderFeed) remove(conn *websocket.Conn) {
	f.mu.Lock()
	delete(f.clients, conn)
	f.mu.Unlock()
	conn.Close()
}

// Broadcast sends msg to every connected client, dropping clients that fail
func (f *OrderFeed) Broadcast(msgType string, data interface{}) error {
	payload, err := json.Marshal(FeedMessage{Type: msgType, Data: data})
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for conn := range f.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			util.NotificationsSentTotal.WithLabelValues("websocket", "error").Inc()
			delete(f.clients, conn)
			conn.Close()
			continue
		}
		util.NotificationsSentTotal.WithLabelValues("websocket", "ok").Inc()
	}
	return nil
}

// ClientCount returns the number of connected clients
func (f *OrderFeed) ClientCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// Close disconnects every client
func (f *OrderFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.clients {
		conn.Close()
		delete(f.clients, conn)
	}
}
