package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"myo_monitor/internal/models"
	"myo_monitor/internal/service"
)

func TestLogsHandler_ListAndValidation(t *testing.T) {
	auth := &mockAuth{parseID: 99}
	now := time.Now().UTC().Truncate(time.Second)
	events := []models.PipelineEvent{
		{EventID: "e1", OccurredAt: now, Type: models.EventStart, Description: "acquisition started"},
		{EventID: "e2", OccurredAt: now.Add(time.Second), Type: models.EventGainChange, Description: "gain x8"},
	}
	logs := &mockEventLog{resp: events}
	r := newTestRouter(&service.Service{Authorization: auth, EventLog: logs})

	w := httptest.NewRecorder()
	req := withHeaders(httptest.NewRequest(http.MethodGet, "/api/v1/logs?from=notatime", nil), authHeader("valid"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid 'from', got %d", w.Code)
	}

	w = httptest.NewRecorder()
	q := "/api/v1/logs?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) + "&type=gain_change"
	req = withHeaders(httptest.NewRequest(http.MethodGet, q, nil), authHeader("valid"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                    `json:"count"`
		Events []models.PipelineEvent `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Events) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if logs.lastType != models.EventGainChange {
		t.Fatalf("expected lastType GAIN_CHANGE, got %q", logs.lastType)
	}
	if !logs.lastFrom.Equal(now) {
		t.Fatalf("from = %v, want %v", logs.lastFrom, now)
	}
}

func TestLogsHandler_DateOnlyToCoversWholeDay(t *testing.T) {
	logs := &mockEventLog{}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{}, EventLog: logs})

	w := httptest.NewRecorder()
	req := withHeaders(httptest.NewRequest(http.MethodGet, "/api/v1/logs?from=2026-10-01&to=2026-10-01", nil), authHeader("valid"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	wantTo := time.Date(2026, 10, 1, 23, 59, 59, 999999999, time.UTC)
	if !logs.lastTo.Equal(wantTo) {
		t.Fatalf("to = %v, want %v", logs.lastTo, wantTo)
	}
	if !logs.lastFrom.Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("from = %v", logs.lastFrom)
	}
}

func TestLogsHandler_ServiceErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"range", service.ErrInvalidTimeRange, http.StatusBadRequest},
		{"type", fmt.Errorf("%w: %q", service.ErrUnknownEventType, "BOGUS"), http.StatusBadRequest},
		{"storage", fmt.Errorf("query events: disk I/O error"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Authorization: &mockAuth{}, EventLog: &mockEventLog{err: tc.err}})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, withHeaders(httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil), authHeader("valid")))
			if w.Code != tc.code {
				t.Fatalf("status=%d, want %d", w.Code, tc.code)
			}
		})
	}
}

func TestLogsHandler_RequiresToken(t *testing.T) {
	r := newTestRouter(&service.Service{Authorization: &mockAuth{}, EventLog: &mockEventLog{}})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
