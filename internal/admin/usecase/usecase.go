package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/lectio/lectio/internal/admin"
	"github.com/lectio/lectio/internal/config"
	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/pipeline"
	"github.com/lectio/lectio/pkg/logger"
)

// AwakePublisher is the one queue the trigger surface writes to. The
// scheduler fans the message out to the right stage.
type AwakePublisher interface {
	Publish(ctx context.Context, msg models.AwakeMessage) error
}

type adminUC struct {
	cfg       *config.Config
	awaker    AwakePublisher
	repo      pipeline.Repository
	redisRepo pipeline.RedisRepository
	logger    logger.Logger
}

func NewAdminUseCase(cfg *config.Config, awaker AwakePublisher, repo pipeline.Repository, redisRepo pipeline.RedisRepository, log logger.Logger) admin.UseCase {
	return &adminUC{
		cfg:       cfg,
		awaker:    awaker,
		repo:      repo,
		redisRepo: redisRepo,
		logger:    log,
	}
}

func (u *adminUC) UpdateAllPlaylists(ctx context.Context) error {
	return u.awaker.Publish(ctx, models.AwakeMessage{Type: models.AwakeDownloadAllPlaylists})
}

func (u *adminUC) UpdatePlaylist(ctx context.Context, playlistID uuid.UUID) error {
	return u.awaker.Publish(ctx, models.AwakeMessage{
		Type:       models.AwakeDownloadPlaylist,
		PlaylistID: playlistID,
	})
}

func (u *adminUC) DownloadMedia(ctx context.Context, mediaID uuid.UUID) error {
	return u.awaker.Publish(ctx, models.AwakeMessage{
		Type:    models.AwakeDownloadMedia,
		MediaID: mediaID,
	})
}

func (u *adminUC) ConvertMedia(ctx context.Context, videoID uuid.UUID) error {
	return u.awaker.Publish(ctx, models.AwakeMessage{
		Type:    models.AwakeConvertMedia,
		VideoID: videoID,
	})
}

func (u *adminUC) TranscribeVideo(ctx context.Context, videoID uuid.UUID, language string) error {
	return u.awaker.Publish(ctx, models.AwakeMessage{
		Type:     models.AwakeTranscribeVideo,
		VideoID:  videoID,
		Language: language,
	})
}

func (u *adminUC) ReTranscribePlaylist(ctx context.Context, playlistID uuid.UUID, language string) error {
	return u.awaker.Publish(ctx, models.AwakeMessage{
		Type:       models.AwakeReTranscribePlaylist,
		PlaylistID: playlistID,
		Language:   language,
	})
}

func (u *adminUC) PeriodicCheck(ctx context.Context) error {
	return u.awaker.Publish(ctx, models.AwakeMessage{Type: models.AwakePeriodicCheck})
}

func (u *adminUC) Status(ctx context.Context) (*models.PipelineStatus, error) {
	lastSweep, err := u.redisRepo.GetStageStatus(ctx, "last_sweep")
	if err != nil {
		return nil, err
	}
	return &models.PipelineStatus{LastSweep: lastSweep}, nil
}

// VoteCaption applies one vote under the caption's optimistic version. A
// lost race surfaces as ErrConcurrentModification; the caller re-reads and
// decides, the pipeline never retries votes.
func (u *adminUC) VoteCaption(ctx context.Context, captionID uuid.UUID, up bool) (*models.Caption, error) {
	caption, err := u.repo.GetCaptionByID(ctx, captionID)
	if err != nil {
		return nil, err
	}
	if up {
		caption.UpVote++
	} else {
		caption.DownVote++
	}
	return u.repo.UpdateCaptionVote(ctx, caption)
}
