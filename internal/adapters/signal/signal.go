package signal

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/app"
	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/auth"
	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/config"
	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/core"
	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/domain"
)

// Controller owns the WebSocket side of the coordinator: it admits
// authenticated channels, pumps frames, and feeds decoded messages to the
// router.
type Controller struct {
	Cfg      *config.Config
	Registry *app.Registry
	Router   *app.Router
	Hub      *Hub
	Limiter  *JoinRateLimiter
}

func NewController(cfg *config.Config, registry *app.Registry, router *app.Router, hub *Hub) *Controller {
	return &Controller{
		Cfg:      cfg,
		Registry: registry,
		Router:   router,
		Hub:      hub,
		Limiter:  NewJoinRateLimiter(cfg.JoinRateLimit, cfg.JoinRateWindow),
	}
}

type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWSConn(ws *websocket.Conn, buffer int) *wsConn {
	return &wsConn{conn: ws, send: make(chan core.Frame, buffer)}
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
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

// HandleSignal upgrades an authenticated request to a channel session. The
// identity was verified by the auth middleware; everything after this point
// trusts only that string, never message fields.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	identity := domain.Identity(c.GetString(auth.IdentityKey))
	if identity == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.Cfg.ReadLimit)

	sid := ctl.Registry.Admit(identity)
	conn := newWSConn(ws, ctl.Cfg.SendBuffer)
	ctl.Hub.Register(sid, conn)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("identity", string(identity)).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, sid, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}
