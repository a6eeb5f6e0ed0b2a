package tasks

import (
	"context"

	"github.com/pkg/errors"

	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/pipeline"
	"github.com/lectio/lectio/internal/task"
)

// HandleConvertVideo asks the transcoding worker for the mono 16 kHz wav of
// the primary stream and registers it on the video. Transcriptions for every
// configured language are published afterwards, also when the audio already
// existed, so a lost message downstream heals on redelivery.
func (s *service) HandleConvertVideo(ctx context.Context, msg models.VideoMessage) error {
	video, err := s.deps.Repo.GetVideoByID(ctx, msg.VideoID)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			return errors.Wrapf(task.ErrStructuralInconsistency, "video %s: %v", msg.VideoID, err)
		}
		return err
	}
	if video.AudioID != nil {
		s.publishTranscriptions(ctx, video)
		return nil
	}
	if video.Video1ID == nil {
		return errors.Wrapf(task.ErrPrerequisiteNotReady, "video %s has no primary stream", video.ID)
	}

	source, err := s.deps.Repo.GetFileRecordByID(ctx, *video.Video1ID)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			return errors.Wrapf(task.ErrStructuralInconsistency, "video %s: dangling primary stream record: %v", video.ID, err)
		}
		return err
	}
	sourcePath, err := s.deps.Store.Resolve(source)
	if err != nil {
		return errors.Wrap(task.ErrStructuralInconsistency, err.Error())
	}

	wavPath, err := s.deps.Transcoder.ConvertVideoToWav(ctx, sourcePath)
	if err != nil {
		return errors.Wrapf(err, "convert video %s", video.ID)
	}
	record, err := s.deps.Store.Put(wavPath)
	if err != nil {
		return err
	}
	record, err = s.deps.Repo.CreateFileRecord(ctx, record)
	if err != nil {
		return err
	}

	video.AudioID = &record.ID
	if video, err = s.deps.Repo.UpdateVideo(ctx, video); err != nil {
		return err
	}
	s.deps.Logger.Infof("video %s: audio extracted (%s)", video.ID, record.Hash[:12])
	s.publishTranscriptions(ctx, video)
	return nil
}

func (s *service) publishTranscriptions(ctx context.Context, video *models.Video) {
	for _, language := range s.deps.Cfg.Scheduler.Languages {
		msg := models.TranscribeMessage{VideoID: video.ID, Language: language}
		if err := s.t.Transcribe.Publish(ctx, msg); err != nil {
			s.deps.Logger.Warnf("video %s: publish transcribe %s: %v", video.ID, language, err)
		}
	}
}
