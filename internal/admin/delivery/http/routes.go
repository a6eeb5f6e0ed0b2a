package http

import (
	"github.com/labstack/echo/v4"

	"github.com/lectio/lectio/internal/admin"
	"github.com/lectio/lectio/internal/middleware"
)

func MapAdminRoutes(adminGroup *echo.Group, h admin.Handlers, mw *middleware.MiddlewareManager) {
	adminGroup.GET("/version", h.Version())
	adminGroup.Use(mw.AdminJWTMiddleware())
	adminGroup.POST("/update-all-playlists", h.UpdateAllPlaylists())
	adminGroup.POST("/update-playlist/:playlist_id", h.UpdatePlaylist())
	adminGroup.POST("/download-media/:media_id", h.DownloadMedia())
	adminGroup.POST("/convert-media/:video_id", h.ConvertMedia())
	adminGroup.POST("/transcribe-video/:video_id", h.TranscribeVideo())
	adminGroup.POST("/retranscribe-playlist/:playlist_id", h.ReTranscribePlaylist())
	adminGroup.POST("/periodic-check", h.PeriodicCheck())
	adminGroup.GET("/status", h.Status())
	adminGroup.POST("/captions/:caption_id/vote", h.VoteCaption())
}
