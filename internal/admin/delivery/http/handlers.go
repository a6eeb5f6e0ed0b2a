package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lectio/lectio/internal/admin"
	"github.com/lectio/lectio/internal/config"
	"github.com/lectio/lectio/internal/pipeline"
	"github.com/lectio/lectio/pkg/logger"
)

type adminHandlers struct {
	cfg     *config.Config
	adminUC admin.UseCase
	logger  logger.Logger
}

func NewAdminHandlers(cfg *config.Config, adminUC admin.UseCase, logger logger.Logger) admin.Handlers {
	return &adminHandlers{
		cfg:     cfg,
		adminUC: adminUC,
		logger:  logger,
	}
}

// accepted is the uniform trigger response: the work is queued, not done.
func accepted(c echo.Context) error {
	return c.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
}

func paramUUID(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

func (h *adminHandlers) UpdateAllPlaylists() echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.adminUC.UpdateAllPlaylists(c.Request().Context()); err != nil {
			h.logger.Errorf("UpdateAllPlaylists: %v", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		}
		return accepted(c)
	}
}

func (h *adminHandlers) UpdatePlaylist() echo.HandlerFunc {
	return func(c echo.Context) error {
		playlistID, err := paramUUID(c, "playlist_id")
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid playlist id"})
		}
		if err := h.adminUC.UpdatePlaylist(c.Request().Context(), playlistID); err != nil {
			h.logger.Errorf("UpdatePlaylist: %v", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		}
		return accepted(c)
	}
}

func (h *adminHandlers) DownloadMedia() echo.HandlerFunc {
	return func(c echo.Context) error {
		mediaID, err := paramUUID(c, "media_id")
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid media id"})
		}
		if err := h.adminUC.DownloadMedia(c.Request().Context(), mediaID); err != nil {
			h.logger.Errorf("DownloadMedia: %v", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		}
		return accepted(c)
	}
}

func (h *adminHandlers) ConvertMedia() echo.HandlerFunc {
	return func(c echo.Context) error {
		videoID, err := paramUUID(c, "video_id")
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid video id"})
		}
		if err := h.adminUC.ConvertMedia(c.Request().Context(), videoID); err != nil {
			h.logger.Errorf("ConvertMedia: %v", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		}
		return accepted(c)
	}
}

func (h *adminHandlers) TranscribeVideo() echo.HandlerFunc {
	return func(c echo.Context) error {
		videoID, err := paramUUID(c, "video_id")
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid video id"})
		}
		language := c.QueryParam("language")
		if err := h.adminUC.TranscribeVideo(c.Request().Context(), videoID, language); err != nil {
			h.logger.Errorf("TranscribeVideo: %v", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		}
		return accepted(c)
	}
}

func (h *adminHandlers) ReTranscribePlaylist() echo.HandlerFunc {
	return func(c echo.Context) error {
		playlistID, err := paramUUID(c, "playlist_id")
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid playlist id"})
		}
		language := c.QueryParam("language")
		if err := h.adminUC.ReTranscribePlaylist(c.Request().Context(), playlistID, language); err != nil {
			h.logger.Errorf("ReTranscribePlaylist: %v", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		}
		return accepted(c)
	}
}

func (h *adminHandlers) PeriodicCheck() echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.adminUC.PeriodicCheck(c.Request().Context()); err != nil {
			h.logger.Errorf("PeriodicCheck: %v", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		}
		return accepted(c)
	}
}

func (h *adminHandlers) Status() echo.HandlerFunc {
	return func(c echo.Context) error {
		status, err := h.adminUC.Status(c.Request().Context())
		if err != nil {
			h.logger.Errorf("Status: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, status)
	}
}

type voteRequest struct {
	Up bool `json:"up"`
}

func (h *adminHandlers) VoteCaption() echo.HandlerFunc {
	return func(c echo.Context) error {
		captionID, err := paramUUID(c, "caption_id")
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid caption id"})
		}
		req := &voteRequest{}
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		caption, err := h.adminUC.VoteCaption(c.Request().Context(), captionID, req.Up)
		if err != nil {
			if errors.Is(err, pipeline.ErrConcurrentModification) {
				return c.JSON(http.StatusConflict, map[string]string{"error": "caption changed, retry"})
			}
			if errors.Is(err, pipeline.ErrNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "caption not found"})
			}
			h.logger.Errorf("VoteCaption: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, caption)
	}
}

func (h *adminHandlers) Version() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"version": h.cfg.Server.AppVersion})
	}
}
