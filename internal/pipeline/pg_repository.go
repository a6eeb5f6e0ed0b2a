// Package pipeline is the feature package of the caption pipeline: the
// persistence and source boundaries its stages work against, the stage
// handlers themselves under tasks/, and the concrete repositories under
// repository/.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/pkg/utils"
)

// Repository is the relational surface the pipeline stages and the awaker
// sweeps read and write. Stages are the single writer of their entity;
// sweeps only read.
type Repository interface {
	GetOfferingsByTermWindow(ctx context.Context, from, to time.Time) ([]*models.Offering, error)
	GetPlaylistsByOffering(ctx context.Context, offeringID uuid.UUID) ([]*models.Playlist, error)
	GetPlaylistByID(ctx context.Context, playlistID uuid.UUID) (*models.Playlist, error)
	GetPlaylists(ctx context.Context, pq *utils.Pagination) ([]*models.Playlist, error)

	CreateMedia(ctx context.Context, media *models.Media) (*models.Media, error)
	GetMediaByID(ctx context.Context, mediaID uuid.UUID) (*models.Media, error)
	GetMediaBySourceKey(ctx context.Context, playlistID uuid.UUID, sourceKey string) (*models.Media, error)
	GetMediaByPlaylist(ctx context.Context, playlistID uuid.UUID) ([]*models.Media, error)
	GetMediaMissingVideo(ctx context.Context) ([]*models.Media, error)

	CreateVideo(ctx context.Context, video *models.Video) (*models.Video, error)
	GetVideoByID(ctx context.Context, videoID uuid.UUID) (*models.Video, error)
	GetVideoByMediaID(ctx context.Context, mediaID uuid.UUID) (*models.Video, error)
	UpdateVideo(ctx context.Context, video *models.Video) (*models.Video, error)
	GetVideosMissingAudio(ctx context.Context) ([]*models.Video, error)
	GetVideosMissingTranscription(ctx context.Context, language string) ([]*models.Video, error)
	GetVideosMissingEPub(ctx context.Context, language string) ([]*models.Video, error)

	CreateTranscription(ctx context.Context, tr *models.Transcription) (*models.Transcription, error)
	GetTranscriptionByID(ctx context.Context, trID uuid.UUID) (*models.Transcription, error)
	GetTranscriptionByVideoAndLanguage(ctx context.Context, videoID uuid.UUID, language string) (*models.Transcription, error)
	UpdateTranscription(ctx context.Context, tr *models.Transcription) (*models.Transcription, error)
	GetTranscriptionsMissingCaptions(ctx context.Context) ([]*models.Transcription, error)

	CreateCaptions(ctx context.Context, captions []*models.Caption) error
	GetCaptionsByTranscription(ctx context.Context, trID uuid.UUID) ([]*models.Caption, error)
	GetCaptionByID(ctx context.Context, captionID uuid.UUID) (*models.Caption, error)
	UpdateCaptionVote(ctx context.Context, caption *models.Caption) (*models.Caption, error)

	CreateEPub(ctx context.Context, epub *models.EPub) (*models.EPub, error)
	GetEPubByVideoAndLanguage(ctx context.Context, videoID uuid.UUID, language string) (*models.EPub, error)

	CreateFileRecord(ctx context.Context, record *models.FileRecord) (*models.FileRecord, error)
	GetFileRecordByID(ctx context.Context, recordID uuid.UUID) (*models.FileRecord, error)
	GetFileRecordByHash(ctx context.Context, hash string) (*models.FileRecord, error)
	DeleteFileRecord(ctx context.Context, recordID uuid.UUID) error
}
