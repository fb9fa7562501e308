package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"myo_monitor/internal/models"
)

type gainRequest struct {
	Gain *int `json:"gain" binding:"required"`
}

// SetGainRequest documents the gain payload.
type SetGainRequest struct {
	// One of 1, 2, 4, 5, 8, 10, 16, 32
	Gain int `json:"gain" example:"8"`
}

// @Summary      Set amplifier gain
// @Description  Writes one raw byte equal to the multiplier to the sensor. Nothing is read back.
// @Tags         device
// @Accept       json
// @Produce      json
// @Param        body  body      SetGainRequest  true  "Gain payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/gain [post]
// @Security     BearerAuth
func (h *Handler) setGain(c *gin.Context) {
	var req gainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if *req.Gain < 0 || *req.Gain > 255 || !models.Gain(*req.Gain).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported gain " + strconv.Itoa(*req.Gain)})
		return
	}
	g := models.Gain(*req.Gain)
	if err := h.services.Pipeline.SetGain(c.Request.Context(), g); err != nil {
		h.logAndJSONError(c, statusFor(err), err.Error(), "gain_set_failed", err, "operator", operatorID(c), "gain", g.String())
		return
	}
	h.auditControl(c, "gain_applied", "gain", g.String())
	c.JSON(http.StatusOK, gin.H{"status": statusApplied, "gain": int(g)})
}

// @Summary      Get filter configuration
// @Tags         filter
// @Produce      json
// @Success      200  {object}  models.FilterConfig
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/filter [get]
// @Security     BearerAuth
func (h *Handler) getFilter(c *gin.Context) {
	cfg, err := h.services.Pipeline.FilterConfig(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, statusFor(err), "failed to load filter configuration", "filter_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": cfg, "mode": cfg.Mode()})
}

// @Summary      Update filter configuration
// @Description  Cutoffs of every enabled filter must satisfy 0 < low < high < fs/2. The new configuration refilters the whole retained history.
// @Tags         filter
// @Accept       json
// @Produce      json
// @Param        body  body      models.FilterConfig  true  "Filter configuration"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/filter [put]
// @Security     BearerAuth
func (h *Handler) updateFilter(c *gin.Context) {
	var cfg models.FilterConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Pipeline.UpdateFilter(c.Request.Context(), cfg); err != nil {
		h.logAndJSONError(c, statusFor(err), err.Error(), "filter_update_failed", err, "operator", operatorID(c), "mode", cfg.Mode())
		return
	}
	h.auditControl(c, "filter_applied", "mode", cfg.Mode())
	c.JSON(http.StatusOK, gin.H{"status": statusApplied, "config": cfg, "mode": cfg.Mode()})
}

// @Summary      Latest frame
// @Description  Filtered series over the retained history plus the visible window. visible=true trims the series to the window.
// @Tags         monitoring
// @Produce      json
// @Param        visible  query     bool  false  "Only points inside the window"
// @Success      200      {object}  models.Frame
// @Failure      401      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /api/v1/frame [get]
// @Security     BearerAuth
func (h *Handler) getFrame(c *gin.Context) {
	f, err := h.services.Monitoring.GetFrame(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load frame", "frame_get_failed", err)
		return
	}
	if visibleOnly(c) {
		f = f.Visible()
	}
	c.JSON(http.StatusOK, f)
}

func visibleOnly(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.Query("visible"))
	return v
}
