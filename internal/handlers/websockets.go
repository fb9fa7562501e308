package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	minInterval      = 50 * time.Millisecond
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000
)

// wsEnvelope is the shape of every message pushed to a stream client.
type wsEnvelope struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Frame stream
// @Description  Pushes {"type":"frame","data":Frame} every interval (default 1s, 50ms..10s). Frames are only sent when their sequence changed. visible=true trims to the window.
// @Tags         monitoring
// @Param        interval     query  string  false  "Go duration, e.g. 200ms"
// @Param        interval_ms  query  int     false  "Interval in milliseconds"
// @Param        visible      query  bool    false  "Only points inside the window"
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)
	visible := visibleOnly(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	ctx := c.Request.Context()
	s := &frameStream{conn: conn, visible: visible, sent: -1}
	if err := h.sendFrame(ctx, s); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.sendFrame(ctx, s); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// parseInterval reads ?interval=200ms or ?interval_ms=200 within bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d >= minInterval && d <= maxInterval {
			return d
		}
	}
	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			d := time.Duration(v) * time.Millisecond
			if d >= minInterval {
				return d
			}
		}
	}
	return defaultInterval
}

// startReader drains incoming messages so control frames are handled and a
// disconnect is noticed.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// frameStream tracks the last sequence written to one client.
type frameStream struct {
	conn    *websocket.Conn
	visible bool
	sent    int64
}

// sendFrame writes the latest frame unless the client already has it.
func (h *Handler) sendFrame(ctx context.Context, s *frameStream) error {
	f, err := h.services.Monitoring.GetFrame(ctx)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_get_frame_failed", "err", err)
		}
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		return s.conn.WriteJSON(wsEnvelope{Type: "error", Error: "failed to load frame"})
	}
	if int64(f.Seq) == s.sent {
		return nil
	}
	s.sent = int64(f.Seq)
	if s.visible {
		f = f.Visible()
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(wsEnvelope{Type: "frame", Data: f})
}
