package gateway

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const maxFrameSize = 64 * 1024

var upgrader = websocket.Upgrader{
	// The bridge is a server-side plugin, not a browser.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleStream answers every text frame carrying one raw event with one
// outcome frame, in order.
func (s *Server) handleStream(c *gin.Context) {
	if !s.ready.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "index not installed"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()
	ws.SetReadLimit(maxFrameSize)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-s.streams.Done():
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(time.Second))
			_ = ws.Close()
		case <-done:
		}
	}()

	remote := c.Request.RemoteAddr
	s.logger.Info("Event stream connected", zap.String("remote", remote))

	for {
		msgType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("Event stream closed unexpectedly", zap.String("remote", remote), zap.Error(err))
			} else {
				s.logger.Info("Event stream disconnected", zap.String("remote", remote))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		resp := s.decodeAndProcess(c.Request.Context(), data)
		if err := ws.WriteJSON(resp); err != nil {
			s.logger.Warn("Failed to write outcome frame", zap.String("remote", remote), zap.Error(err))
			return
		}
	}
}
