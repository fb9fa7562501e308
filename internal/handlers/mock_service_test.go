package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"myo_monitor/internal/models"
	"myo_monitor/internal/service"
)

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastGenUsername    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockAcquisition struct {
	startErr    error
	stopErr     error
	status      models.AcquisitionStatus
	startCalled int
	stopCalled  int
}

func (m *mockAcquisition) Start(ctx context.Context) error {
	m.startCalled++
	return m.startErr
}
func (m *mockAcquisition) Stop(ctx context.Context) error {
	m.stopCalled++
	return m.stopErr
}
func (m *mockAcquisition) Status() models.AcquisitionStatus {
	return m.status
}

type mockPipeline struct {
	cfg       models.FilterConfig
	cfgErr    error
	updateErr error
	gainErr   error

	lastUpdate *models.FilterConfig
	lastGain   models.Gain
	gainCalls  int
}

func (m *mockPipeline) UpdateFilter(ctx context.Context, cfg models.FilterConfig) error {
	m.lastUpdate = &cfg
	return m.updateErr
}
func (m *mockPipeline) FilterConfig(ctx context.Context) (models.FilterConfig, error) {
	return m.cfg, m.cfgErr
}
func (m *mockPipeline) SetGain(ctx context.Context, g models.Gain) error {
	m.gainCalls++
	m.lastGain = g
	return m.gainErr
}

type mockMonitoring struct {
	frame models.Frame
	err   error
}

func (m *mockMonitoring) GetFrame(ctx context.Context) (models.Frame, error) {
	return m.frame, m.err
}

type mockEventLog struct {
	resp     []models.PipelineEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.PipelineEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withHeaders(req *http.Request, hdr http.Header) *http.Request {
	for k, vv := range hdr {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
