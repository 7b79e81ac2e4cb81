package api

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterRoutes(r *gin.Engine, h *Handler) {
	exportLimit := rateLimit(rate.NewLimiter(rate.Limit(h.cfg.ExportRate), max(h.cfg.ExportBurst, 1)))

	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.GET("/qr", qrHandler)
		api.GET("/palette", palette)
		api.GET("/templates", h.listTemplates)
		api.GET("/stats", h.getStats)
		api.GET("/shared/:token", h.getShared)
		api.GET("/shared/:token/qr", h.getSharedQR)

		api.POST("/sessions", h.createSession)
		s := api.Group("/sessions/:id")
		{
			s.GET("", h.getSession)
			s.POST("/image", h.uploadImage)
			s.POST("/template", h.selectTemplate)
			s.POST("/caption/generate", h.generateCaption)
			s.GET("/caption/stream", h.streamCaption)
			s.PUT("/caption", h.setCaption)
			s.PUT("/style", h.setStyle)
			s.PUT("/position", h.setPosition)
			s.POST("/drag/begin", h.dragBegin)
			s.POST("/drag/move", h.dragMove)
			s.POST("/drag/end", h.dragEnd)
			s.POST("/preview", h.preview)
			s.GET("/export", exportLimit, h.export)
			s.POST("/share", exportLimit, h.share)
			s.GET("/ads/:slot", h.adSlot)
		}
	}
}
