package tasks

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/lectio/lectio/internal/captions"
	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/pipeline"
	"github.com/lectio/lectio/internal/task"
)

// HandleTranscribe runs speech recognition over the video's audio and
// persists the raw spans as a WebVTT artifact on a new Transcription. The
// caption stage later decodes that artifact and splits it into bounded cues.
// An existing transcription for the language is never redone; at most its
// caption stage is republished.
func (s *service) HandleTranscribe(ctx context.Context, msg models.TranscribeMessage) error {
	video, err := s.deps.Repo.GetVideoByID(ctx, msg.VideoID)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			return errors.Wrapf(task.ErrStructuralInconsistency, "video %s: %v", msg.VideoID, err)
		}
		return err
	}

	if tr, err := s.deps.Repo.GetTranscriptionByVideoAndLanguage(ctx, video.ID, msg.Language); err == nil {
		if tr.SrtFileID == nil {
			s.publishCaptions(ctx, tr)
		}
		return nil
	} else if !errors.Is(err, pipeline.ErrNotFound) {
		return err
	}

	if video.AudioID == nil {
		return errors.Wrapf(task.ErrPrerequisiteNotReady, "video %s has no audio yet", video.ID)
	}
	audio, err := s.deps.Repo.GetFileRecordByID(ctx, *video.AudioID)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			return errors.Wrapf(task.ErrStructuralInconsistency, "video %s: dangling audio record: %v", video.ID, err)
		}
		return err
	}
	audioPath, err := s.deps.Store.Resolve(audio)
	if err != nil {
		return errors.Wrap(task.ErrStructuralInconsistency, err.Error())
	}

	spans, err := s.deps.Recognizer.Recognize(ctx, audioPath, msg.Language)
	if err != nil {
		return errors.Wrapf(err, "recognize video %s (%s)", video.ID, msg.Language)
	}

	raw := make([]models.Caption, len(spans))
	for i, span := range spans {
		raw[i] = models.Caption{
			Index: i,
			Begin: span.Begin,
			End:   span.End,
			Text:  span.Text,
		}
	}
	record, err := s.storeDocument(ctx,
		video.ID.String()+"."+msg.Language+".raw.vtt",
		captions.EncodeVTT(raw, msg.Language))
	if err != nil {
		return err
	}

	tr, err := s.deps.Repo.CreateTranscription(ctx, &models.Transcription{
		VideoID:  video.ID,
		Language: msg.Language,
		FileID:   &record.ID,
	})
	if err != nil {
		return err
	}
	s.deps.Logger.Infof("video %s: transcription %s created with %d spans", video.ID, tr.ID, len(spans))
	s.publishCaptions(ctx, tr)
	return nil
}

func (s *service) publishCaptions(ctx context.Context, tr *models.Transcription) {
	if err := s.t.GenerateCaptions.Publish(ctx, models.TranscriptionMessage{TranscriptionID: tr.ID}); err != nil {
		s.deps.Logger.Warnf("transcription %s: publish captions: %v", tr.ID, err)
	}
}

// storeDocument writes a generated text artifact through the temp dir into
// the content store and persists its record.
func (s *service) storeDocument(ctx context.Context, name, body string) (*models.FileRecord, error) {
	tmp := filepath.Join(s.deps.Cfg.Store.TempDir, name)
	if err := os.MkdirAll(filepath.Dir(tmp), 0o755); err != nil {
		return nil, errors.Wrap(err, "create temp dir")
	}
	if err := os.WriteFile(tmp, []byte(body), 0o644); err != nil {
		return nil, errors.Wrapf(err, "write %s", name)
	}
	record, err := s.deps.Store.Put(tmp)
	if err != nil {
		return nil, err
	}
	return s.deps.Repo.CreateFileRecord(ctx, record)
}

// removeDocument drops an artifact's bytes and row once nothing references
// it anymore. Best-effort: a failure leaves an orphan on disk, never a
// dangling reference.
func (s *service) removeDocument(ctx context.Context, recordID uuid.UUID) {
	record, err := s.deps.Repo.GetFileRecordByID(ctx, recordID)
	if err != nil {
		if !errors.Is(err, pipeline.ErrNotFound) {
			s.deps.Logger.Warnf("remove artifact %s: %v", recordID, err)
		}
		return
	}
	if err := s.deps.Store.Delete(record); err != nil {
		s.deps.Logger.Warnf("remove artifact %s: %v", recordID, err)
		return
	}
	if err := s.deps.Repo.DeleteFileRecord(ctx, recordID); err != nil {
		s.deps.Logger.Warnf("remove artifact %s: %v", recordID, err)
	}
}
