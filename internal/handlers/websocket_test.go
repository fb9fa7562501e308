package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"myo_monitor/internal/models"
	"myo_monitor/internal/service"
)

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 1 * time.Second},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws?interval=20s", 1 * time.Second},
		{"interval_too_small", "/ws?interval=1ms", 1 * time.Second},
		{"interval_ms_too_large", "/ws?interval_ms=20000", 1 * time.Second},
		{"interval_ms_too_small", "/ws?interval_ms=10", 1 * time.Second},
		{"interval_invalid_string", "/ws?interval=bogus", 1 * time.Second},
		{"interval_ms_invalid", "/ws?interval_ms=NaN", 1 * time.Second},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, tc.u, nil)
			if got := h.parseInterval(c); got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

// seqMonitoring bumps the frame sequence on every call.
type seqMonitoring struct {
	mu  sync.Mutex
	seq uint64
}

func (m *seqMonitoring) GetFrame(ctx context.Context) (models.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return models.Frame{
		Seq:    m.seq,
		Time:   []float64{0.001, 0.002, 10.5},
		Values: []float64{1, 2, 3},
		Window: models.WindowRange{Start: 10, End: 20},
		Mode:   models.ModeBandpass,
	}, nil
}

type wsTestEnvelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialWS(t *testing.T, mon service.Monitoring, query url.Values) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(&service.Service{Monitoring: mon}, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = query.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) wsTestEnvelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var env wsTestEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func TestWebSocket_FrameStream_InitialAndPeriodic(t *testing.T) {
	conn := dialWS(t, &seqMonitoring{}, url.Values{"interval_ms": {"60"}})

	env := readEnvelope(t, conn)
	if env.Type != "frame" || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var f models.Frame
	if err := json.Unmarshal(env.Data, &f); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if f.Seq != 1 || len(f.Values) != 3 || f.Mode != models.ModeBandpass {
		t.Fatalf("unexpected frame: %+v", f)
	}

	env = readEnvelope(t, conn)
	_ = json.Unmarshal(env.Data, &f)
	if env.Type != "frame" || f.Seq != 2 {
		t.Fatalf("expected second frame, got %+v seq=%d", env, f.Seq)
	}
}

func TestWebSocket_VisibleOnly(t *testing.T) {
	conn := dialWS(t, &seqMonitoring{}, url.Values{"visible": {"true"}})

	env := readEnvelope(t, conn)
	var f models.Frame
	if err := json.Unmarshal(env.Data, &f); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if len(f.Time) != 1 || f.Time[0] != 10.5 {
		t.Fatalf("expected only in-window points, got %+v", f.Time)
	}
}

func TestWebSocket_UnchangedFrameNotResent(t *testing.T) {
	mon := &mockMonitoring{frame: models.Frame{Seq: 7, Time: []float64{}, Values: []float64{}}}
	conn := dialWS(t, mon, url.Values{"interval_ms": {"50"}})

	env := readEnvelope(t, conn)
	if env.Type != "frame" {
		t.Fatalf("bad envelope: %+v", env)
	}

	_ = conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected no message for unchanged frame, got %s", string(raw))
	}
}

func TestWebSocket_GetFrameError_SendsErrorEnvelope(t *testing.T) {
	conn := dialWS(t, &mockMonitoring{err: errors.New("boom")}, url.Values{})

	env := readEnvelope(t, conn)
	if env.Type != "error" || env.Error == "" {
		t.Fatalf("expected error envelope, got %+v", env)
	}
}
