// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"earshot/internal/log"

	"github.com/gorilla/websocket"
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("transport closed")

const (
	writeWait      = 5 * time.Second
	broadcastDepth = 16
)

// WebSocketTransport implements the Transport interface for WebSocket
// connections. Clients connect to /ws; the latest message is replayed to each
// client on connect and is also served as JSON from /latest.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan []byte
	latest    []byte
	closed    bool
	server    *http.Server
	listener  net.Listener
	done      chan struct{}
	logger    *log.Logger
}

// NewWebSocketTransport creates a transport for addr (host:port). It does
// not listen until Start is called.
func NewWebSocketTransport(addr string) *WebSocketTransport {
	wst := &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local dashboards connect from file:// and other ports
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, broadcastDepth),
		done:      make(chan struct{}),
		logger:    log.New("websocket"),
	}

	go wst.handleBroadcasts()
	return wst
}

// Handler returns the HTTP routes served by the transport.
func (wst *WebSocketTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wst.handleWebSocket)
	mux.HandleFunc("/latest", wst.handleLatest)
	return mux
}

// Start binds the listen address and serves in the background.
func (wst *WebSocketTransport) Start() error {
	ln, err := net.Listen("tcp", wst.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", wst.addr, err)
	}
	wst.listener = ln
	wst.server = &http.Server{
		Handler:           wst.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		wst.logger.Infof("serving on ws://%s/ws", ln.Addr())
		if err := wst.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			wst.logger.Errorf("server error: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound address once Start succeeded, or the configured one.
func (wst *WebSocketTransport) Addr() string {
	if wst.listener != nil {
		return wst.listener.Addr().String()
	}
	return wst.addr
}

// ClientCount returns the number of connected clients.
func (wst *WebSocketTransport) ClientCount() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

// handleWebSocket upgrades HTTP connections to WebSocket
func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		wst.logger.Warnf("upgrade error: %v", err)
		return
	}

	// Register client and catch it up under the same lock as broadcasts so
	// it never sees messages out of order.
	wst.clientsMu.Lock()
	if wst.closed {
		wst.clientsMu.Unlock()
		conn.Close()
		return
	}
	if wst.latest != nil {
		if err := writeMessage(conn, wst.latest); err != nil {
			wst.clientsMu.Unlock()
			conn.Close()
			return
		}
	}
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	wst.logger.Infof("client connected, total: %d", total)

	// Handle disconnect
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		wst.drop(conn)
	}()
}

func (wst *WebSocketTransport) handleLatest(w http.ResponseWriter, _ *http.Request) {
	wst.clientsMu.Lock()
	latest := wst.latest
	wst.clientsMu.Unlock()

	if latest == nil {
		http.Error(w, "no analysis published yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(latest)
}

func (wst *WebSocketTransport) drop(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	_, ok := wst.clients[conn]
	delete(wst.clients, conn)
	total := len(wst.clients)
	wst.clientsMu.Unlock()

	conn.Close()
	if ok {
		wst.logger.Infof("client disconnected, total: %d", total)
	}
}

// handleBroadcasts sends messages to all connected clients
func (wst *WebSocketTransport) handleBroadcasts() {
	defer close(wst.done)
	for payload := range wst.broadcast {
		wst.clientsMu.Lock()
		wst.latest = payload
		for client := range wst.clients {
			if err := writeMessage(client, payload); err != nil {
				wst.logger.Warnf("error sending to client: %v", err)
				client.Close()
				delete(wst.clients, client)
			}
		}
		wst.clientsMu.Unlock()
	}
}

func writeMessage(conn *websocket.Conn, payload []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// Send encodes data as JSON and queues it for every client. When the queue
// is full the message is dropped.
func (wst *WebSocketTransport) Send(data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding %T: %w", data, err)
	}

	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	if wst.closed {
		return ErrClosed
	}

	select {
	case wst.broadcast <- payload:
	default:
		wst.logger.Warnf("broadcast queue full, dropping %d byte message", len(payload))
	}
	return nil
}

// Close shuts down the WebSocket server
func (wst *WebSocketTransport) Close() error {
	wst.clientsMu.Lock()
	if wst.closed {
		wst.clientsMu.Unlock()
		return nil
	}
	wst.closed = true
	close(wst.broadcast)
	wst.clientsMu.Unlock()
	<-wst.done

	wst.logger.Debugf("closing server")

	// Close all client connections
	wst.clientsMu.Lock()
	for client := range wst.clients {
		client.Close()
	}
	wst.clients = make(map[*websocket.Conn]bool)
	wst.clientsMu.Unlock()

	if wst.server != nil {
		return wst.server.Close()
	}
	return nil
}

// Ensure WebSocketTransport satisfies the interface
var _ Transport = (*WebSocketTransport)(nil)
