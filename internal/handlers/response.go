package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"myo_monitor/internal/dsp"
	"myo_monitor/internal/service"
)

const (
	statusOK      = "ok"
	statusStarted = "started"
	statusStopped = "stopped"
	statusApplied = "applied"

	errInvalidBodyPref = "invalid body: "
)

// logAndJSONError logs err (when a logger is set) and writes {"error": userMsg}.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...any) {
	if h.log != nil && err != nil {
		fields := append([]any{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// statusFor maps service errors onto HTTP codes. Operator input problems
// are 400, state conflicts 409, a stopped pipeline 503, anything else 500.
func statusFor(err error) int {
	var cfgErr *dsp.ConfigError
	switch {
	case errors.As(err, &cfgErr),
		errors.Is(err, dsp.ErrInvalidCutoff),
		errors.Is(err, dsp.ErrInvalidSampleRate),
		errors.Is(err, service.ErrInvalidGain),
		errors.Is(err, service.ErrInvalidTimeRange),
		errors.Is(err, service.ErrUnknownEventType):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAcquisitionRunning):
		return http.StatusConflict
	case errors.Is(err, service.ErrPipelineStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}
