package tasks

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/pipeline"
	"github.com/lectio/lectio/internal/task"
)

// HandleGenerateEPub combines a video's scene frames with its captions into
// chaptered text+image units. Both inputs are produced by independent
// stages, so either may still be missing; that is not an error, the next
// sweep re-publishes the request once the inputs exist.
func (s *service) HandleGenerateEPub(ctx context.Context, msg models.EPubMessage) error {
	video, err := s.deps.Repo.GetVideoByID(ctx, msg.VideoID)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			return errors.Wrapf(task.ErrStructuralInconsistency, "video %s: %v", msg.VideoID, err)
		}
		return err
	}
	if _, err := s.deps.Repo.GetEPubByVideoAndLanguage(ctx, video.ID, msg.Language); err == nil {
		return nil
	} else if !errors.Is(err, pipeline.ErrNotFound) {
		return err
	}

	if len(video.SceneData) == 0 {
		return errors.Wrapf(task.ErrPrerequisiteNotReady, "video %s has no scene data yet", video.ID)
	}
	tr, err := s.deps.Repo.GetTranscriptionByVideoAndLanguage(ctx, video.ID, msg.Language)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			return errors.Wrapf(task.ErrPrerequisiteNotReady, "video %s has no %s transcription yet", video.ID, msg.Language)
		}
		return err
	}
	cues, err := s.deps.Repo.GetCaptionsByTranscription(ctx, tr.ID)
	if err != nil {
		return err
	}
	if len(cues) == 0 {
		return errors.Wrapf(task.ErrPrerequisiteNotReady, "transcription %s has no captions yet", tr.ID)
	}

	var scenes []models.Scene
	if err := json.Unmarshal(video.SceneData, &scenes); err != nil {
		return errors.Wrapf(task.ErrStructuralInconsistency, "video %s: bad scene data: %v", video.ID, err)
	}

	chapters := buildChapters(scenes, cues)
	body, err := json.Marshal(chapters)
	if err != nil {
		return errors.Wrap(err, "marshal chapters")
	}
	record, err := s.storeDocument(ctx,
		video.ID.String()+"."+msg.Language+".epub.json",
		string(body))
	if err != nil {
		return err
	}

	if _, err := s.deps.Repo.CreateEPub(ctx, &models.EPub{
		VideoID:  video.ID,
		Language: msg.Language,
		FileID:   &record.ID,
	}); err != nil {
		return err
	}
	s.deps.Logger.Infof("video %s: epub generated with %d chapters (%s)", video.ID, len(chapters), msg.Language)
	return nil
}

// buildChapters assigns every cue to the scene whose time range contains its
// begin. The final scene takes everything from its start on, so trailing
// cues are never lost to rounding in the scene boundaries.
func buildChapters(scenes []models.Scene, cues []*models.Caption) []models.EPubChapter {
	chapters := make([]models.EPubChapter, len(scenes))
	for i, scene := range scenes {
		var parts []string
		for _, cue := range cues {
			if cue.Begin < scene.Start {
				continue
			}
			if i < len(scenes)-1 && cue.Begin >= scene.End {
				continue
			}
			parts = append(parts, cue.Text)
		}
		chapters[i] = models.EPubChapter{
			Image: scene.ImageFile,
			Text:  strings.Join(parts, " "),
			Start: scene.Start,
			End:   scene.End,
		}
	}
	return chapters
}
