package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectio/lectio/internal/config"
	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/pipeline"
	"github.com/lectio/lectio/pkg/logger"
)

type fakeAwaker struct {
	mu       sync.Mutex
	messages []models.AwakeMessage
}

func (f *fakeAwaker) Publish(_ context.Context, msg models.AwakeMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

// captionRepo fakes only the caption surface; everything else panics if
// touched.
type captionRepo struct {
	pipeline.Repository
	caption    *models.Caption
	updateErr  error
	lastUpdate *models.Caption
}

func (r *captionRepo) GetCaptionByID(_ context.Context, captionID uuid.UUID) (*models.Caption, error) {
	if r.caption == nil || r.caption.ID != captionID {
		return nil, pipeline.ErrNotFound
	}
	cp := *r.caption
	return &cp, nil
}

func (r *captionRepo) UpdateCaptionVote(_ context.Context, caption *models.Caption) (*models.Caption, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	cp := *caption
	cp.Version++
	r.lastUpdate = &cp
	return &cp, nil
}

type fakeStatusRedis struct {
	pipeline.RedisRepository
	lastSweep string
}

func (r *fakeStatusRedis) GetStageStatus(_ context.Context, _ string) (string, error) {
	return r.lastSweep, nil
}

func adminTestLogger(t *testing.T) logger.Logger {
	t.Helper()
	cfg := &config.Config{}
	cfg.Logger.Development = true
	cfg.Logger.Encoding = "console"
	cfg.Logger.Level = "error"
	l := logger.NewApiLogger(cfg)
	l.InitLogger()
	return l
}

func TestAdminUC_TriggersPublishAwakeMessages(t *testing.T) {
	awaker := &fakeAwaker{}
	uc := NewAdminUseCase(&config.Config{}, awaker, nil, nil, adminTestLogger(t))
	ctx := context.Background()

	playlistID := uuid.New()
	videoID := uuid.New()
	require.NoError(t, uc.UpdateAllPlaylists(ctx))
	require.NoError(t, uc.UpdatePlaylist(ctx, playlistID))
	require.NoError(t, uc.TranscribeVideo(ctx, videoID, "de-DE"))
	require.NoError(t, uc.PeriodicCheck(ctx))

	require.Len(t, awaker.messages, 4)
	assert.Equal(t, models.AwakeDownloadAllPlaylists, awaker.messages[0].Type)
	assert.Equal(t, playlistID, awaker.messages[1].PlaylistID)
	assert.Equal(t, models.AwakeTranscribeVideo, awaker.messages[2].Type)
	assert.Equal(t, videoID, awaker.messages[2].VideoID)
	assert.Equal(t, "de-DE", awaker.messages[2].Language)
	assert.Equal(t, models.AwakePeriodicCheck, awaker.messages[3].Type)
}

func TestAdminUC_Status(t *testing.T) {
	redis := &fakeStatusRedis{lastSweep: "2026-08-31T10:00:00Z"}
	uc := NewAdminUseCase(&config.Config{}, &fakeAwaker{}, nil, redis, adminTestLogger(t))

	status, err := uc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31T10:00:00Z", status.LastSweep)
}

func TestAdminUC_VoteCaption(t *testing.T) {
	caption := &models.Caption{ID: uuid.New(), Text: "hello", UpVote: 2, DownVote: 1, Version: 3}
	repo := &captionRepo{caption: caption}
	uc := NewAdminUseCase(&config.Config{}, &fakeAwaker{}, repo, nil, adminTestLogger(t))
	ctx := context.Background()

	updated, err := uc.VoteCaption(ctx, caption.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.UpVote)
	assert.Equal(t, 1, updated.DownVote)
	assert.Equal(t, 4, updated.Version)

	updated, err = uc.VoteCaption(ctx, caption.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.DownVote)
}

func TestAdminUC_VoteCaption_LostRace(t *testing.T) {
	caption := &models.Caption{ID: uuid.New(), Version: 1}
	repo := &captionRepo{caption: caption, updateErr: pipeline.ErrConcurrentModification}
	uc := NewAdminUseCase(&config.Config{}, &fakeAwaker{}, repo, nil, adminTestLogger(t))

	_, err := uc.VoteCaption(context.Background(), caption.ID, true)
	assert.ErrorIs(t, err, pipeline.ErrConcurrentModification)
}

func TestAdminUC_VoteCaption_UnknownCaption(t *testing.T) {
	repo := &captionRepo{}
	uc := NewAdminUseCase(&config.Config{}, &fakeAwaker{}, repo, nil, adminTestLogger(t))

	_, err := uc.VoteCaption(context.Background(), uuid.New(), true)
	assert.ErrorIs(t, err, pipeline.ErrNotFound)
}
