// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"spectro/internal/log"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	broadcastQueue = 256
	writeTimeout   = time.Second
)

// WebSocketTransport broadcasts JSON messages to every client connected to
// /ws. Send never blocks: when the queue is full the message is dropped.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]string // Client ID for logs.
	clientsMu sync.Mutex
	broadcast chan []byte
	server    *http.Server
	listener  net.Listener
	logger    *log.Logger

	dropped   atomic.Uint64
	closeOnce sync.Once
	done      chan struct{}
}

// NewWebSocketTransport creates a transport that will serve on addr
// (host:port) once Start is called.
func NewWebSocketTransport(addr string) *WebSocketTransport {
	wst := &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Viewers are served from other origins.
			},
		},
		clients:   make(map[*websocket.Conn]string),
		broadcast: make(chan []byte, broadcastQueue),
		logger:    log.New("websocket"),
		done:      make(chan struct{}),
	}
	return wst
}

// Handler returns the HTTP handler serving /ws, for mounting in another
// server or in tests.
func (wst *WebSocketTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wst.handleWebSocket)
	return mux
}

// Start listens on the configured address and begins broadcasting.
func (wst *WebSocketTransport) Start() error {
	ln, err := net.Listen("tcp", wst.addr)
	if err != nil {
		return err
	}
	wst.listener = ln
	wst.server = &http.Server{
		Handler:           wst.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		wst.logger.Infof("Starting WebSocket server on %s", ln.Addr())
		if err := wst.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			wst.logger.Errorf("Server error: %v", err)
		}
	}()

	wst.Run()
	return nil
}

// Run starts the broadcast loop without a listener; use with Handler.
func (wst *WebSocketTransport) Run() {
	go wst.handleBroadcasts()
}

// Addr returns the listening address once started, else the configured one.
func (wst *WebSocketTransport) Addr() string {
	if wst.listener != nil {
		return wst.listener.Addr().String()
	}
	return wst.addr
}

// Clients returns the number of connected clients.
func (wst *WebSocketTransport) Clients() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

// Dropped returns how many messages were discarded because the queue was full.
func (wst *WebSocketTransport) Dropped() uint64 {
	return wst.dropped.Load()
}

// handleWebSocket upgrades HTTP connections to WebSocket.
func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		wst.logger.Warnf("Upgrade error: %v", err)
		return
	}

	id := uuid.NewString()
	wst.clientsMu.Lock()
	wst.clients[conn] = id
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	wst.logger.Infof("Client %s connected from %s, total: %d", id, r.RemoteAddr, total)

	// Clients never send anything; a read error means they went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		wst.removeClient(conn)
	}()
}

func (wst *WebSocketTransport) removeClient(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	id, ok := wst.clients[conn]
	delete(wst.clients, conn)
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	conn.Close()
	if ok {
		wst.logger.Infof("Client %s disconnected, total: %d", id, total)
	}
}

// handleBroadcasts sends messages to all connected clients.
func (wst *WebSocketTransport) handleBroadcasts() {
	for {
		select {
		case <-wst.done:
			return
		case msg := <-wst.broadcast:
			wst.clientsMu.Lock()
			for client, id := range wst.clients {
				client.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := client.WriteMessage(websocket.TextMessage, msg); err != nil {
					wst.logger.Warnf("Error sending to client %s: %v", id, err)
					client.Close()
					delete(wst.clients, client)
				}
			}
			wst.clientsMu.Unlock()
		}
	}
}

// Send encodes data as JSON and queues it for every client.
func (wst *WebSocketTransport) Send(data any) error {
	msg, err := json.Marshal(data)
	if err != nil {
		return err
	}
	select {
	case wst.broadcast <- msg:
	default:
		wst.dropped.Add(1)
	}
	return nil
}

// Close disconnects every client and shuts the server down.
func (wst *WebSocketTransport) Close() error {
	var err error
	wst.closeOnce.Do(func() {
		wst.logger.Infof("Closing server")
		close(wst.done)

		wst.clientsMu.Lock()
		for client := range wst.clients {
			client.Close()
		}
		wst.clients = make(map[*websocket.Conn]string)
		wst.clientsMu.Unlock()

		if wst.server != nil {
			err = wst.server.Close()
		}
	})
	return err
}

// Ensure WebSocketTransport satisfies the interface
var _ Transport = (*WebSocketTransport)(nil)
