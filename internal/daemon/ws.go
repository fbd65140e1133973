package daemon

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"snatch/internal/events"
	"snatch/internal/logging"
)

const wsWriteTimeout = 10 * time.Second

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The daemon binds to loopback; browser origin checks add nothing
	// for the local UI case.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsMessage is the inbound client frame.
type wsMessage struct {
	Type   string `json:"type"`
	ItemID string `json:"itemId"`
}

// wsConn adapts one WebSocket connection to the event hub. Writes are
// serialized; gorilla connections allow only one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) Send(evt events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteJSON(evt)
}

func (s *apiServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log().Warn("websocket upgrade failed", logging.Error(err))
		return
	}

	client := &wsConn{conn: conn}
	s.daemon.hub.Subscribe(client)
	s.log().Debug("websocket client connected", logging.String("remote", conn.RemoteAddr().String()))

	defer func() {
		s.daemon.hub.Unsubscribe(client)
		_ = conn.Close()
		s.log().Debug("websocket client disconnected", logging.String("remote", conn.RemoteAddr().String()))
	}()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == "retry_download" && msg.ItemID != "" {
			s.daemon.Retry(msg.ItemID)
		}
	}
}
