package server

import (
	"context"
	"encoding/json"
	"net/http"

	"stock-predictor/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop. Clients join in addClient and leave
// through unregister; the loop owns closing their send channels.
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case client := <-s.unregister:
			s.clientsMu.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}
			s.clientsMu.Unlock()

		case <-s.quit:
			s.clientsMu.Lock()
			s.closed = true
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.clientsMu.Unlock()
			return
		}
	}
}

// -----------------------------------------------------------------------------

// addClient registers the client and queues the greeting. It fails once the
// server is shutting down.
func (s *DashboardServer) addClient(client *Client) bool {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if s.closed {
		return false
	}
	s.clients[client] = struct{}{}

	// Greet with the selection list
	client.send <- &models.MSessionMessage{Type: "TICKERS", Tickers: s.Dashboard.Tickers()}
	return true
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		hub:    s,
		conn:   conn,
		ctx:    ctx,
		cancel: cancel,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MSessionMessage, 16),
	}

	if !s.addClient(client) {
		cancel()
		conn.Close()
		return
	}

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage runs one full pass per select command. Passes of one
// session run in order; sessions are independent.
func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSelectCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "select" {
		client.reply(&models.MSessionMessage{Type: "ERROR", Error: "unknown command: " + cmd.Command})
		return
	}

	result, err := s.Dashboard.Run(client.ctx, cmd.Ticker, cmd.Horizon)
	if err != nil {
		s.Errors.Handle(err, "websocket select "+cmd.Ticker)
		client.reply(&models.MSessionMessage{Type: "ERROR", Error: err.Error()})
		return
	}

	client.reply(&models.MSessionMessage{Type: "RESULT", Result: result})
}
