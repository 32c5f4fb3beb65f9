package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/internal/logger"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local tool; any origin may watch.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHub serves the event feed as JSON text messages, one event per
// message.
type WebSocketHub struct {
	hub *Broadcaster

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewWebSocketHub(hub *Broadcaster) *WebSocketHub {
	return &WebSocketHub{hub: hub, conns: make(map[*websocket.Conn]struct{})}
}

// Clients returns the number of connected WebSocket watchers.
func (h *WebSocketHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *WebSocketHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("WS: failed to upgrade connection: %v", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
	logger.Debugf("WS: client connected from %s", r.RemoteAddr)

	sub := h.hub.Subscribe()
	closed := make(chan struct{})
	go h.readPump(conn, closed)
	h.writePump(conn, sub, closed)

	sub.Cancel()
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
	logger.Debugf("WS: client disconnected from %s", r.RemoteAddr)
}

// readPump only services control frames. closed is closed once the peer
// goes away.
func (h *WebSocketHub) readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debugf("WS: read error: %v", err)
			}
			return
		}
	}
}

func (h *WebSocketHub) writePump(conn *websocket.Conn, sub *Subscription, closed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-sub.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWebSocket serves the hub at /events on addr until ctx is done.
func ServeWebSocket(ctx context.Context, addr string, hub *WebSocketHub) error {
	mux := http.NewServeMux()
	mux.Handle("/events", hub)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("WebSocket feed listening on %s/events", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// WatchWebSocket reads JSON events from a WebSocket feed at url until ctx
// is done, the server closes, or fn returns an error. A normal close
// returns nil.
func WatchWebSocket(ctx context.Context, url string, fn func(event.Event) error) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		var ev event.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("failed to decode event: %w", err)
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}
