package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/pipeline"
	"github.com/lectio/lectio/pkg/utils"
)

type pipelineRepo struct {
	db *sqlx.DB
}

func NewPipelineRepo(db *sqlx.DB) pipeline.Repository {
	return &pipelineRepo{
		db: db,
	}
}

func (r *pipelineRepo) GetOfferingsByTermWindow(ctx context.Context, from, to time.Time) ([]*models.Offering, error) {
	var offerings []*models.Offering
	if err := r.db.SelectContext(ctx, &offerings, getOfferingsByTermWindowQuery, from, to); err != nil {
		return nil, fmt.Errorf("failed to get offerings by term window: %w", err)
	}
	return offerings, nil
}

func (r *pipelineRepo) GetPlaylistsByOffering(ctx context.Context, offeringID uuid.UUID) ([]*models.Playlist, error) {
	var playlists []*models.Playlist
	if err := r.db.SelectContext(ctx, &playlists, getPlaylistsByOfferingQuery, offeringID); err != nil {
		return nil, fmt.Errorf("failed to get playlists by offering: %w", err)
	}
	return playlists, nil
}

func (r *pipelineRepo) GetPlaylistByID(ctx context.Context, playlistID uuid.UUID) (*models.Playlist, error) {
	playlist := &models.Playlist{}
	if err := r.db.GetContext(ctx, playlist, getPlaylistByIDQuery, playlistID); err != nil {
		return nil, wrapNotFound(err, "failed to get playlist by id")
	}
	return playlist, nil
}

func (r *pipelineRepo) GetPlaylists(ctx context.Context, pq *utils.Pagination) ([]*models.Playlist, error) {
	var playlists []*models.Playlist
	if err := r.db.SelectContext(ctx, &playlists, getPlaylistsQuery, pq.GetOffset(), pq.GetLimit()); err != nil {
		return nil, fmt.Errorf("failed to get playlists: %w", err)
	}
	return playlists, nil
}

func (r *pipelineRepo) CreateMedia(ctx context.Context, media *models.Media) (*models.Media, error) {
	created := &models.Media{}
	if err := r.db.QueryRowxContext(
		ctx,
		createMediaQuery,
		uuid.New(),
		media.PlaylistID,
		media.SourceKey,
		media.Name,
	).StructScan(created); err != nil {
		return nil, fmt.Errorf("failed to create media: %w", err)
	}
	return created, nil
}

func (r *pipelineRepo) GetMediaByID(ctx context.Context, mediaID uuid.UUID) (*models.Media, error) {
	media := &models.Media{}
	if err := r.db.GetContext(ctx, media, getMediaByIDQuery, mediaID); err != nil {
		return nil, wrapNotFound(err, "failed to get media by id")
	}
	return media, nil
}

func (r *pipelineRepo) GetMediaBySourceKey(ctx context.Context, playlistID uuid.UUID, sourceKey string) (*models.Media, error) {
	media := &models.Media{}
	if err := r.db.GetContext(ctx, media, getMediaBySourceKeyQuery, playlistID, sourceKey); err != nil {
		return nil, wrapNotFound(err, "failed to get media by source key")
	}
	return media, nil
}

func (r *pipelineRepo) GetMediaByPlaylist(ctx context.Context, playlistID uuid.UUID) ([]*models.Media, error) {
	var media []*models.Media
	if err := r.db.SelectContext(ctx, &media, getMediaByPlaylistQuery, playlistID); err != nil {
		return nil, fmt.Errorf("failed to get media by playlist: %w", err)
	}
	return media, nil
}

func (r *pipelineRepo) GetMediaMissingVideo(ctx context.Context) ([]*models.Media, error) {
	var media []*models.Media
	if err := r.db.SelectContext(ctx, &media, getMediaMissingVideoQuery); err != nil {
		return nil, fmt.Errorf("failed to get media missing video: %w", err)
	}
	return media, nil
}

func (r *pipelineRepo) CreateVideo(ctx context.Context, video *models.Video) (*models.Video, error) {
	created := &models.Video{}
	if err := r.db.QueryRowxContext(
		ctx,
		createVideoQuery,
		uuid.New(),
		video.MediaID,
		video.Video1ID,
		video.Video2ID,
		video.AudioID,
		video.SceneData,
		video.Duration,
	).StructScan(created); err != nil {
		return nil, fmt.Errorf("failed to create video: %w", err)
	}
	return created, nil
}

func (r *pipelineRepo) GetVideoByID(ctx context.Context, videoID uuid.UUID) (*models.Video, error) {
	video := &models.Video{}
	if err := r.db.GetContext(ctx, video, getVideoByIDQuery, videoID); err != nil {
		return nil, wrapNotFound(err, "failed to get video by id")
	}
	return video, nil
}

func (r *pipelineRepo) GetVideoByMediaID(ctx context.Context, mediaID uuid.UUID) (*models.Video, error) {
	video := &models.Video{}
	if err := r.db.GetContext(ctx, video, getVideoByMediaIDQuery, mediaID); err != nil {
		return nil, wrapNotFound(err, "failed to get video by media id")
	}
	return video, nil
}

func (r *pipelineRepo) UpdateVideo(ctx context.Context, video *models.Video) (*models.Video, error) {
	updated := &models.Video{}
	if err := r.db.QueryRowxContext(
		ctx,
		updateVideoQuery,
		video.Video1ID,
		video.Video2ID,
		video.AudioID,
		video.SceneData,
		video.Duration,
		video.ID,
	).StructScan(updated); err != nil {
		return nil, wrapNotFound(err, "failed to update video")
	}
	return updated, nil
}

func (r *pipelineRepo) GetVideosMissingAudio(ctx context.Context) ([]*models.Video, error) {
	var videos []*models.Video
	if err := r.db.SelectContext(ctx, &videos, getVideosMissingAudioQuery); err != nil {
		return nil, fmt.Errorf("failed to get videos missing audio: %w", err)
	}
	return videos, nil
}

func (r *pipelineRepo) GetVideosMissingTranscription(ctx context.Context, language string) ([]*models.Video, error) {
	var videos []*models.Video
	if err := r.db.SelectContext(ctx, &videos, getVideosMissingTranscriptionQuery, language); err != nil {
		return nil, fmt.Errorf("failed to get videos missing transcription: %w", err)
	}
	return videos, nil
}

func (r *pipelineRepo) GetVideosMissingEPub(ctx context.Context, language string) ([]*models.Video, error) {
	var videos []*models.Video
	if err := r.db.SelectContext(ctx, &videos, getVideosMissingEPubQuery, language); err != nil {
		return nil, fmt.Errorf("failed to get videos missing epub: %w", err)
	}
	return videos, nil
}

func (r *pipelineRepo) CreateTranscription(ctx context.Context, tr *models.Transcription) (*models.Transcription, error) {
	created := &models.Transcription{}
	if err := r.db.QueryRowxContext(
		ctx,
		createTranscriptionQuery,
		uuid.New(),
		tr.VideoID,
		tr.Language,
		tr.FileID,
		tr.SrtFileID,
	).StructScan(created); err != nil {
		return nil, fmt.Errorf("failed to create transcription: %w", err)
	}
	return created, nil
}

func (r *pipelineRepo) GetTranscriptionByID(ctx context.Context, trID uuid.UUID) (*models.Transcription, error) {
	tr := &models.Transcription{}
	if err := r.db.GetContext(ctx, tr, getTranscriptionByIDQuery, trID); err != nil {
		return nil, wrapNotFound(err, "failed to get transcription by id")
	}
	return tr, nil
}

func (r *pipelineRepo) GetTranscriptionByVideoAndLanguage(ctx context.Context, videoID uuid.UUID, language string) (*models.Transcription, error) {
	tr := &models.Transcription{}
	if err := r.db.GetContext(ctx, tr, getTranscriptionByVideoAndLanguageQuery, videoID, language); err != nil {
		return nil, wrapNotFound(err, "failed to get transcription by video and language")
	}
	return tr, nil
}

func (r *pipelineRepo) UpdateTranscription(ctx context.Context, tr *models.Transcription) (*models.Transcription, error) {
	updated := &models.Transcription{}
	if err := r.db.QueryRowxContext(
		ctx,
		updateTranscriptionQuery,
		tr.FileID,
		tr.SrtFileID,
		tr.ID,
	).StructScan(updated); err != nil {
		return nil, wrapNotFound(err, "failed to update transcription")
	}
	return updated, nil
}

func (r *pipelineRepo) GetTranscriptionsMissingCaptions(ctx context.Context) ([]*models.Transcription, error) {
	var trs []*models.Transcription
	if err := r.db.SelectContext(ctx, &trs, getTranscriptionsMissingCaptionsQuery); err != nil {
		return nil, fmt.Errorf("failed to get transcriptions missing captions: %w", err)
	}
	return trs, nil
}

// CreateCaptions inserts a transcription's cues in one transaction so a
// crashed worker never leaves a half-written caption sequence behind.
func (r *pipelineRepo) CreateCaptions(ctx context.Context, captions []*models.Caption) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin captions tx: %w", err)
	}
	defer tx.Rollback() // nolint: errcheck
	for _, c := range captions {
		id := c.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		if _, err := tx.ExecContext(
			ctx,
			createCaptionQuery,
			id,
			c.TranscriptionID,
			c.Index,
			c.Begin,
			c.End,
			c.Text,
		); err != nil {
			return fmt.Errorf("failed to create caption %d: %w", c.Index, err)
		}
	}
	return tx.Commit()
}

func (r *pipelineRepo) GetCaptionsByTranscription(ctx context.Context, trID uuid.UUID) ([]*models.Caption, error) {
	var captions []*models.Caption
	if err := r.db.SelectContext(ctx, &captions, getCaptionsByTranscriptionQuery, trID); err != nil {
		return nil, fmt.Errorf("failed to get captions by transcription: %w", err)
	}
	return captions, nil
}

func (r *pipelineRepo) GetCaptionByID(ctx context.Context, captionID uuid.UUID) (*models.Caption, error) {
	caption := &models.Caption{}
	if err := r.db.GetContext(ctx, caption, getCaptionByIDQuery, captionID); err != nil {
		return nil, wrapNotFound(err, "failed to get caption by id")
	}
	return caption, nil
}

func (r *pipelineRepo) UpdateCaptionVote(ctx context.Context, caption *models.Caption) (*models.Caption, error) {
	updated := &models.Caption{}
	err := r.db.QueryRowxContext(
		ctx,
		updateCaptionVoteQuery,
		caption.UpVote,
		caption.DownVote,
		caption.ID,
		caption.Version,
	).StructScan(updated)
	if err == sql.ErrNoRows {
		return nil, pipeline.ErrConcurrentModification
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update caption vote: %w", err)
	}
	return updated, nil
}

func (r *pipelineRepo) CreateEPub(ctx context.Context, epub *models.EPub) (*models.EPub, error) {
	created := &models.EPub{}
	if err := r.db.QueryRowxContext(
		ctx,
		createEPubQuery,
		uuid.New(),
		epub.VideoID,
		epub.Language,
		epub.FileID,
	).StructScan(created); err != nil {
		return nil, fmt.Errorf("failed to create epub: %w", err)
	}
	return created, nil
}

func (r *pipelineRepo) GetEPubByVideoAndLanguage(ctx context.Context, videoID uuid.UUID, language string) (*models.EPub, error) {
	epub := &models.EPub{}
	if err := r.db.GetContext(ctx, epub, getEPubByVideoAndLanguageQuery, videoID, language); err != nil {
		return nil, wrapNotFound(err, "failed to get epub by video and language")
	}
	return epub, nil
}

// CreateFileRecord upserts on hash, so two workers registering the same
// bytes end up sharing one row. The returned record carries the canonical
// id.
func (r *pipelineRepo) CreateFileRecord(ctx context.Context, record *models.FileRecord) (*models.FileRecord, error) {
	created := &models.FileRecord{}
	if err := r.db.QueryRowxContext(
		ctx,
		createFileRecordQuery,
		record.ID,
		record.FileName,
		record.PrivatePath,
		record.Hash,
	).StructScan(created); err != nil {
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}
	return created, nil
}

func (r *pipelineRepo) GetFileRecordByID(ctx context.Context, recordID uuid.UUID) (*models.FileRecord, error) {
	record := &models.FileRecord{}
	if err := r.db.GetContext(ctx, record, getFileRecordByIDQuery, recordID); err != nil {
		return nil, wrapNotFound(err, "failed to get file record by id")
	}
	return record, nil
}

func (r *pipelineRepo) GetFileRecordByHash(ctx context.Context, hash string) (*models.FileRecord, error) {
	record := &models.FileRecord{}
	if err := r.db.GetContext(ctx, record, getFileRecordByHashQuery, hash); err != nil {
		return nil, wrapNotFound(err, "failed to get file record by hash")
	}
	return record, nil
}

func (r *pipelineRepo) DeleteFileRecord(ctx context.Context, recordID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, deleteFileRecordQuery, recordID); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}
	return nil
}

func wrapNotFound(err error, msg string) error {
	if err == sql.ErrNoRows {
		return fmt.Errorf("%s: %w", msg, pipeline.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
