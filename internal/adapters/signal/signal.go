package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/hushcall/hush/internal/app"
	"github.com/hushcall/hush/internal/core"
	"github.com/hushcall/hush/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Orch *app.Orchestrator

	// ReadLimit bounds one inbound message; PingPeriod drives keepalive
	// pings from the write pump. Zero values fall back to defaults.
	ReadLimit  int64
	PingPeriod time.Duration
}

func NewController(orch *app.Orchestrator) *Controller {
	return &Controller{Orch: orch}
}

// outbound is one queued wire message. Media travels as binary frames,
// everything else as JSON text; a text frame with raw media bytes would make
// a compliant peer fail the connection on invalid UTF-8.
type outbound struct {
	mt   int
	data core.Frame
}

// wsConn adapts a gorilla socket to core.SignalConnection: bounded send
// channel, TrySend never blocks.
type wsConn struct {
	conn *websocket.Conn
	send chan outbound

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	return c.trySend(websocket.TextMessage, f)
}

func (c *wsConn) TrySendMedia(f core.Frame) error {
	return c.trySend(websocket.BinaryMessage, f)
}

func (c *wsConn) trySend(mt int, f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- outbound{mt: mt, data: f}:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &wsConn{
		conn: ws,
		send: make(chan outbound, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Sessions.BindSignal(sid, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}

// BroadcastRoom sends v to every signal connection bound to the room.
func (ctl *Controller) BroadcastRoom(roomID domain.RoomID, v any) {
	for _, snap := range ctl.Orch.Sessions.MembersOfRoom(roomID) {
		if snap.Signal != nil {
			ctl.sendJSON(snap.Signal, v)
		}
	}
}
