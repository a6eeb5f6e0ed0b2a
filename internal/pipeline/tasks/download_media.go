package tasks

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/pipeline"
	"github.com/lectio/lectio/internal/task"
)

// HandleDownloadMedia fetches one recording from the source, registers it in
// the content store, and creates or completes the Video row. A video that
// already has its primary stream only gets its downstream messages
// republished.
func (s *service) HandleDownloadMedia(ctx context.Context, msg models.MediaMessage) error {
	media, err := s.deps.Repo.GetMediaByID(ctx, msg.MediaID)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			return errors.Wrapf(task.ErrStructuralInconsistency, "media %s: %v", msg.MediaID, err)
		}
		return err
	}

	video, err := s.deps.Repo.GetVideoByMediaID(ctx, media.ID)
	if err != nil && !errors.Is(err, pipeline.ErrNotFound) {
		return err
	}
	if video != nil && video.Video1ID != nil {
		s.publishVideoFollowups(ctx, video.ID)
		return nil
	}

	record, err := s.fetchObject(ctx, media.SourceKey, media.ID.String())
	if err != nil {
		return err
	}
	resolved, err := s.deps.Store.Resolve(record)
	if err != nil {
		return err
	}
	duration, err := s.probeDuration(ctx, resolved)
	if err != nil {
		return err
	}

	secondaryID := s.fetchSecondaryStream(ctx, media)

	if video == nil {
		video, err = s.deps.Repo.CreateVideo(ctx, &models.Video{
			MediaID:  media.ID,
			Video1ID: &record.ID,
			Video2ID: secondaryID,
			Duration: duration,
		})
	} else {
		video.Video1ID = &record.ID
		if video.Video2ID == nil {
			video.Video2ID = secondaryID
		}
		video.Duration = duration
		video, err = s.deps.Repo.UpdateVideo(ctx, video)
	}
	if err != nil {
		return err
	}

	s.deps.Logger.Infof("media %s: video %s ready (%s)", media.ID, video.ID, duration)
	s.publishVideoFollowups(ctx, video.ID)
	return nil
}

func (s *service) publishVideoFollowups(ctx context.Context, videoID uuid.UUID) {
	if err := s.t.ConvertVideo.Publish(ctx, models.VideoMessage{VideoID: videoID}); err != nil {
		s.deps.Logger.Warnf("video %s: publish convert: %v", videoID, err)
	}
	if err := s.t.ProcessVideo.Publish(ctx, models.VideoMessage{VideoID: videoID}); err != nil {
		s.deps.Logger.Warnf("video %s: publish process: %v", videoID, err)
	}
}

// fetchObject downloads one source object into the temp dir and moves it
// into the content store, returning its persisted record.
func (s *service) fetchObject(ctx context.Context, key, localName string) (*models.FileRecord, error) {
	dest := filepath.Join(s.deps.Cfg.Store.TempDir, localName+filepath.Ext(key))
	if err := s.deps.Source.DownloadObject(ctx, key, dest); err != nil {
		return nil, errors.Wrapf(err, "download %s", key)
	}
	record, err := s.deps.Store.Put(dest)
	if err != nil {
		return nil, err
	}
	return s.deps.Repo.CreateFileRecord(ctx, record)
}

// fetchSecondaryStream looks for the screen-capture track next to the
// primary object. Most recordings have none; any failure just means the
// video stays single-stream.
func (s *service) fetchSecondaryStream(ctx context.Context, media *models.Media) *uuid.UUID {
	ext := filepath.Ext(media.SourceKey)
	base := strings.TrimSuffix(media.SourceKey, ext)
	record, err := s.fetchObject(ctx, base+secondaryMarker+ext, media.ID.String()+secondaryMarker)
	if err != nil {
		s.deps.Logger.Debugf("media %s: no secondary stream: %v", media.ID, err)
		return nil
	}
	return &record.ID
}
