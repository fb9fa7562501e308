package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Start acquisition
// @Description  Starts the background serial reader. History is kept across stop/start.
// @Tags         acquisition
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, acquisition"
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/acquisition/start [post]
// @Security     BearerAuth
func (h *Handler) startAcquisition(c *gin.Context) {
	if err := h.services.Acquisition.Start(c.Request.Context()); err != nil {
		h.logAndJSONError(c, statusFor(err), err.Error(), "acquisition_start_failed", err, "operator", operatorID(c))
		return
	}
	h.auditControl(c, "acquisition_started")
	c.JSON(http.StatusOK, gin.H{"status": statusStarted, "acquisition": h.services.Acquisition.Status()})
}

// @Summary      Stop acquisition
// @Description  Signals the reader and waits, bounded, for it to exit.
// @Tags         acquisition
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/acquisition/stop [post]
// @Security     BearerAuth
func (h *Handler) stopAcquisition(c *gin.Context) {
	if err := h.services.Acquisition.Stop(c.Request.Context()); err != nil {
		h.logAndJSONError(c, statusFor(err), "failed to stop acquisition", "acquisition_stop_failed", err, "operator", operatorID(c))
		return
	}
	h.auditControl(c, "acquisition_stopped")
	c.JSON(http.StatusOK, gin.H{"status": statusStopped, "acquisition": h.services.Acquisition.Status()})
}

// @Summary      Acquisition status
// @Tags         acquisition
// @Produce      json
// @Success      200  {object}  models.AcquisitionStatus
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/acquisition/status [get]
// @Security     BearerAuth
func (h *Handler) acquisitionStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Acquisition.Status())
}
