// Package admin is the trigger surface of the pipeline: every operation
// republishes scheduler messages or records a caption vote. Triggers never
// run pipeline work inline.
package admin

import (
	"context"

	"github.com/google/uuid"

	"github.com/lectio/lectio/internal/models"
)

type UseCase interface {
	UpdateAllPlaylists(ctx context.Context) error
	UpdatePlaylist(ctx context.Context, playlistID uuid.UUID) error
	DownloadMedia(ctx context.Context, mediaID uuid.UUID) error
	ConvertMedia(ctx context.Context, videoID uuid.UUID) error
	TranscribeVideo(ctx context.Context, videoID uuid.UUID, language string) error
	ReTranscribePlaylist(ctx context.Context, playlistID uuid.UUID, language string) error
	PeriodicCheck(ctx context.Context) error
	Status(ctx context.Context) (*models.PipelineStatus, error)
	VoteCaption(ctx context.Context, captionID uuid.UUID, up bool) (*models.Caption, error)
}
