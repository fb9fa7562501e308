package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"myo_monitor/internal/logger"
	"myo_monitor/internal/service"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds the Gin router.
//
//	GET  /health
//	GET  /swagger/*any
//	POST /auth/sign-up, /auth/sign-in
//	     /api/v1/...   (bearer token required)
//	GET  /ws           frame stream
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	router.GET("/ws", h.wsConnect)
	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.operatorMiddleware)
	{
		acq := api.Group("/acquisition")
		{
			acq.POST("/start", h.startAcquisition)
			acq.POST("/stop", h.stopAcquisition)
			acq.GET("/status", h.acquisitionStatus)
		}

		// Body example: {"gain":8}
		api.POST("/gain", h.setGain)

		api.GET("/filter", h.getFilter)
		api.PUT("/filter", h.updateFilter)

		api.GET("/frame", h.getFrame)
		api.GET("/logs", h.getLogs)
	}
}
