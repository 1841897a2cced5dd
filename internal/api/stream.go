package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mosiko1234/heimdal/netinfo/internal/protostats"
)

// StreamMessage is one update sent to a stream client
type StreamMessage struct {
	Type      string                `json:"type"` // "snapshot" or "error"
	Snapshots []protostats.Snapshot `json:"snapshots,omitempty"`
	Error     string                `json:"error,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	defaultStreamInterval = time.Second
	minStreamInterval     = 100 * time.Millisecond
)

// handleStream upgrades to a WebSocket and pushes fresh snapshots of the
// requested protocols (?protocol=udp, repeatable; all by default) every
// interval (?interval=5s).
func (s *APIServer) handleStream(w http.ResponseWriter, r *http.Request) {
	protos := protostats.Protocols
	if names := r.URL.Query()["protocol"]; len(names) > 0 {
		protos = make([]protostats.Protocol, 0, len(names))
		for _, name := range names {
			proto, ok := protostats.ParseProtocol(name)
			if !ok {
				respondError(w, http.StatusBadRequest, "unknown protocol")
				return
			}
			protos = append(protos, proto)
		}
	}

	interval := defaultStreamInterval
	if v := r.URL.Query().Get("interval"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < minStreamInterval {
			respondError(w, http.StatusBadRequest, "interval must be a duration of at least 100ms")
			return
		}
		interval = d
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade error: %v", err)
		return
	}

	s.logger.Debug("Stream client %s connected (interval %s)", r.RemoteAddr, interval)
	done := make(chan struct{})
	go s.readPump(conn, done)
	s.writePump(conn, done, protos, interval)
	s.logger.Debug("Stream client %s disconnected", r.RemoteAddr)
}

// readPump drains the connection so pongs and close frames are processed
func (s *APIServer) readPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Debug("Unexpected close error: %v", err)
			}
			return
		}
	}
}

// writePump sends a message immediately and then on every interval until
// the client goes away or the server stops
func (s *APIServer) writePump(conn *websocket.Conn, done chan struct{}, protos []protostats.Protocol, interval time.Duration) {
	ticker := time.NewTicker(interval)
	pinger := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		pinger.Stop()
		conn.Close()
	}()

	send := func() bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(s.streamMessage(protos)) == nil
	}

	if !send() {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-s.stopCh:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case <-ticker.C:
			if !send() {
				return
			}
		case <-pinger.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *APIServer) streamMessage(protos []protostats.Protocol) StreamMessage {
	msg := StreamMessage{Type: "snapshot", Timestamp: time.Now()}
	for _, proto := range protos {
		snap, err := protostats.Capture(s.inspector.Platform(), proto)
		if err != nil {
			return StreamMessage{Type: "error", Error: err.Error(), Timestamp: msg.Timestamp}
		}
		msg.Snapshots = append(msg.Snapshots, snap)
	}
	return msg
}
