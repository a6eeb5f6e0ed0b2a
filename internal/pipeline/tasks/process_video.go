package tasks

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/pipeline"
	"github.com/lectio/lectio/internal/task"
	"github.com/lectio/lectio/pkg/utils"
)

// HandleProcessVideo extracts scene-change frames from the primary stream
// and persists them as the video's scene data. Frame extraction runs ffmpeg
// locally, so the handler backs off when the host is already saturated.
func (s *service) HandleProcessVideo(ctx context.Context, msg models.VideoMessage) error {
	video, err := s.deps.Repo.GetVideoByID(ctx, msg.VideoID)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			return errors.Wrapf(task.ErrStructuralInconsistency, "video %s: %v", msg.VideoID, err)
		}
		return err
	}
	if len(video.SceneData) > 0 {
		s.publishEPubs(ctx, video)
		return nil
	}
	if video.Video1ID == nil {
		return errors.Wrapf(task.ErrPrerequisiteNotReady, "video %s has no primary stream", video.ID)
	}

	if ok, usage := utils.CheckCPUUsage(s.deps.Cfg.Worker.MaxCPUUsage); !ok {
		return errors.Errorf("cpu usage %.1f%% above limit, backing off video %s", usage, video.ID)
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

	outDir := filepath.Join(s.deps.Cfg.Store.TempDir, "scenes", video.ID.String())
	frames, err := s.extractScenes(ctx, sourcePath, outDir)
	if err != nil {
		return err
	}

	scenes := make([]models.Scene, len(frames))
	for i, frame := range frames {
		record, err := s.deps.Store.Put(frame.ImagePath)
		if err != nil {
			return err
		}
		if record, err = s.deps.Repo.CreateFileRecord(ctx, record); err != nil {
			return err
		}
		scenes[i] = models.Scene{
			Start:     frame.Timestamp,
			End:       video.Duration,
			ImageFile: record.ID.String(),
		}
		if i > 0 {
			scenes[i-1].End = frame.Timestamp
		}
	}

	sceneData, err := json.Marshal(scenes)
	if err != nil {
		return errors.Wrap(err, "marshal scene data")
	}
	video.SceneData = sceneData
	if video, err = s.deps.Repo.UpdateVideo(ctx, video); err != nil {
		return err
	}
	s.deps.Logger.Infof("video %s: %d scenes extracted", video.ID, len(scenes))
	s.publishEPubs(ctx, video)
	return nil
}

func (s *service) publishEPubs(ctx context.Context, video *models.Video) {
	for _, language := range s.deps.Cfg.Scheduler.Languages {
		msg := models.EPubMessage{VideoID: video.ID, Language: language}
		if err := s.t.GenerateEPub.Publish(ctx, msg); err != nil {
			s.deps.Logger.Warnf("video %s: publish epub %s: %v", video.ID, language, err)
		}
	}
}
