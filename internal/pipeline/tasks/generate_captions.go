package tasks

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/lectio/lectio/internal/captions"
	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/pipeline"
	"github.com/lectio/lectio/internal/task"
)

// HandleGenerateCaptions turns a transcription's raw span artifact into
// bounded cues: caption rows plus SRT and WebVTT files registered on the
// transcription. A transcription that already carries its SRT artifact is
// done and skipped, which makes redelivery harmless.
func (s *service) HandleGenerateCaptions(ctx context.Context, msg models.TranscriptionMessage) error {
	tr, err := s.deps.Repo.GetTranscriptionByID(ctx, msg.TranscriptionID)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			return errors.Wrapf(task.ErrStructuralInconsistency, "transcription %s: %v", msg.TranscriptionID, err)
		}
		return err
	}
	if tr.SrtFileID != nil {
		return nil
	}
	if tr.FileID == nil {
		return errors.Wrapf(task.ErrPrerequisiteNotReady, "transcription %s has no span artifact yet", tr.ID)
	}

	cues, err := s.loadOrSynthesize(ctx, tr)
	if err != nil {
		return err
	}

	srtRecord, err := s.storeDocument(ctx,
		tr.ID.String()+"."+tr.Language+".srt",
		captions.EncodeSRT(cues))
	if err != nil {
		return err
	}
	vttRecord, err := s.storeDocument(ctx,
		tr.ID.String()+"."+tr.Language+".vtt",
		captions.EncodeVTT(cues, tr.Language))
	if err != nil {
		return err
	}

	rawID := *tr.FileID
	tr.FileID = &vttRecord.ID
	tr.SrtFileID = &srtRecord.ID
	if tr, err = s.deps.Repo.UpdateTranscription(ctx, tr); err != nil {
		return err
	}
	// The raw span artifact is superseded by the final files, unless hash
	// dedup made them one record.
	if rawID != vttRecord.ID && rawID != srtRecord.ID {
		s.removeDocument(ctx, rawID)
	}
	s.deps.Logger.Infof("transcription %s: %d cues synthesized", tr.ID, len(cues))

	if err := s.t.GenerateEPub.Publish(ctx, models.EPubMessage{VideoID: tr.VideoID, Language: tr.Language}); err != nil {
		s.deps.Logger.Warnf("transcription %s: publish epub: %v", tr.ID, err)
	}
	return nil
}

// loadOrSynthesize returns the transcription's cues, splitting the raw spans
// on first run and reusing the persisted rows on redelivery.
func (s *service) loadOrSynthesize(ctx context.Context, tr *models.Transcription) ([]models.Caption, error) {
	existing, err := s.deps.Repo.GetCaptionsByTranscription(ctx, tr.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		cues := make([]models.Caption, len(existing))
		for i, c := range existing {
			cues[i] = *c
		}
		return cues, nil
	}

	record, err := s.deps.Repo.GetFileRecordByID(ctx, *tr.FileID)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			return nil, errors.Wrapf(task.ErrStructuralInconsistency, "transcription %s: dangling span record: %v", tr.ID, err)
		}
		return nil, err
	}
	path, err := s.deps.Store.Resolve(record)
	if err != nil {
		return nil, errors.Wrap(task.ErrStructuralInconsistency, err.Error())
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read span artifact for transcription %s", tr.ID)
	}
	spans, err := captions.DecodeVTT(string(body))
	if err != nil {
		return nil, errors.Wrapf(task.ErrStructuralInconsistency, "transcription %s: bad span artifact: %v", tr.ID, err)
	}

	limit := s.deps.Cfg.Scheduler.CueLength
	if limit <= 0 {
		limit = captions.MaxCueLength
	}
	var cues []models.Caption
	for _, span := range spans {
		cues = append(cues, captions.SplitWithLimit(len(cues), span.Begin, span.End, span.Text, limit)...)
	}
	rows := make([]*models.Caption, len(cues))
	for i := range cues {
		cues[i].TranscriptionID = tr.ID
		rows[i] = &cues[i]
	}
	if err := s.deps.Repo.CreateCaptions(ctx, rows); err != nil {
		return nil, err
	}
	return cues, nil
}
