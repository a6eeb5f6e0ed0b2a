package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/lectio/lectio/internal/metrics"
	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/pipeline"
	"github.com/lectio/lectio/internal/task"
	"github.com/lectio/lectio/pkg/utils"
)

const sweepPageSize = 200

// HandleAwake drives the scheduler. A periodic check runs every sweep
// category under the global sweep lock; the other message types are manual
// re-drives of one category or one entity. Sweeps only read state and
// publish messages, they never mutate pipeline entities.
func (s *service) HandleAwake(ctx context.Context, msg models.AwakeMessage) error {
	switch msg.Type {
	case models.AwakePeriodicCheck:
		return s.runFullSweep(ctx)

	case models.AwakeDownloadAllPlaylists:
		return s.sweepAllPlaylists(ctx)

	case models.AwakeDownloadPlaylist:
		return s.t.DownloadPlaylist.Publish(ctx, models.PlaylistMessage{PlaylistID: msg.PlaylistID})

	case models.AwakeDownloadMedia:
		return s.t.DownloadMedia.Publish(ctx, models.MediaMessage{MediaID: msg.MediaID})

	case models.AwakeConvertMedia:
		return s.t.ConvertVideo.Publish(ctx, models.VideoMessage{VideoID: msg.VideoID})

	case models.AwakeTranscribeVideo:
		return s.publishTranscribe(ctx, msg.VideoID, msg.Language)

	case models.AwakeReTranscribePlaylist:
		return s.retranscribePlaylist(ctx, msg)

	default:
		return errors.Wrapf(task.ErrStructuralInconsistency, "unknown awake type %q", msg.Type)
	}
}

// runFullSweep executes the five sweep categories. The redis lock keeps
// concurrent ticks from different workers off each other; losing the race
// is not an error, the work is already being done.
func (s *service) runFullSweep(ctx context.Context) error {
	locked, err := s.deps.RedisRepo.AcquireSweepLock(ctx, s.deps.Cfg.Scheduler.SweepLockTTL)
	if err != nil {
		return errors.Wrap(err, "acquire sweep lock")
	}
	if !locked {
		s.deps.Logger.Info("sweep already running elsewhere, skipping")
		return nil
	}
	defer func() {
		if err := s.deps.RedisRepo.ReleaseSweepLock(ctx); err != nil {
			s.deps.Logger.Warnf("release sweep lock: %v", err)
		}
	}()

	started := time.Now()
	if err := s.sweepOfferings(ctx); err != nil {
		return err
	}
	if err := s.sweepMedia(ctx); err != nil {
		return err
	}
	if err := s.sweepTranscriptions(ctx); err != nil {
		return err
	}
	if err := s.sweepCaptions(ctx); err != nil {
		return err
	}
	if err := s.sweepEPubs(ctx); err != nil {
		return err
	}
	if err := s.deps.RedisRepo.SetStageStatus(ctx, "last_sweep", time.Now().UTC().Format(time.RFC3339), 0); err != nil {
		s.deps.Logger.Warnf("record sweep status: %v", err)
	}
	s.deps.Logger.Infof("full sweep finished in %s", time.Since(started))
	return nil
}

// sweepOfferings republishes playlist syncs for every offering whose term
// start falls inside the configured window around now.
func (s *service) sweepOfferings(ctx context.Context) error {
	window := s.deps.Cfg.Scheduler.OfferingWindow
	now := time.Now().UTC()
	offerings, err := s.deps.Repo.GetOfferingsByTermWindow(ctx, now.Add(-window), now.Add(window))
	if err != nil {
		return err
	}
	for _, offering := range offerings {
		playlists, err := s.deps.Repo.GetPlaylistsByOffering(ctx, offering.ID)
		if err != nil {
			return err
		}
		for _, playlist := range playlists {
			if err := s.t.DownloadPlaylist.Publish(ctx, models.PlaylistMessage{PlaylistID: playlist.ID}); err != nil {
				s.deps.Logger.Warnf("sweep: publish playlist %s: %v", playlist.ID, err)
				continue
			}
			metrics.SweepPublishesTotal.WithLabelValues("playlists").Inc()
		}
	}
	return nil
}

// sweepMedia republishes downloads for media without a complete video and
// audio conversions for videos still lacking their wav.
func (s *service) sweepMedia(ctx context.Context) error {
	media, err := s.deps.Repo.GetMediaMissingVideo(ctx)
	if err != nil {
		return err
	}
	for _, m := range media {
		if err := s.t.DownloadMedia.Publish(ctx, models.MediaMessage{MediaID: m.ID}); err != nil {
			s.deps.Logger.Warnf("sweep: publish media %s: %v", m.ID, err)
			continue
		}
		metrics.SweepPublishesTotal.WithLabelValues("media").Inc()
	}

	videos, err := s.deps.Repo.GetVideosMissingAudio(ctx)
	if err != nil {
		return err
	}
	for _, v := range videos {
		if err := s.t.ConvertVideo.Publish(ctx, models.VideoMessage{VideoID: v.ID}); err != nil {
			s.deps.Logger.Warnf("sweep: publish convert %s: %v", v.ID, err)
			continue
		}
		metrics.SweepPublishesTotal.WithLabelValues("audio").Inc()
	}
	return nil
}

// sweepTranscriptions republishes transcription requests for videos that
// have their audio but no transcription in a requested language.
func (s *service) sweepTranscriptions(ctx context.Context) error {
	for _, language := range s.deps.Cfg.Scheduler.Languages {
		videos, err := s.deps.Repo.GetVideosMissingTranscription(ctx, language)
		if err != nil {
			return err
		}
		for _, v := range videos {
			msg := models.TranscribeMessage{VideoID: v.ID, Language: language}
			if err := s.t.Transcribe.Publish(ctx, msg); err != nil {
				s.deps.Logger.Warnf("sweep: publish transcribe %s (%s): %v", v.ID, language, err)
				continue
			}
			metrics.SweepPublishesTotal.WithLabelValues("transcriptions").Inc()
		}
	}
	return nil
}

// sweepCaptions republishes caption synthesis for transcriptions whose
// subtitle artifacts are still missing.
func (s *service) sweepCaptions(ctx context.Context) error {
	trs, err := s.deps.Repo.GetTranscriptionsMissingCaptions(ctx)
	if err != nil {
		return err
	}
	for _, tr := range trs {
		if err := s.t.GenerateCaptions.Publish(ctx, models.TranscriptionMessage{TranscriptionID: tr.ID}); err != nil {
			s.deps.Logger.Warnf("sweep: publish captions %s: %v", tr.ID, err)
			continue
		}
		metrics.SweepPublishesTotal.WithLabelValues("captions").Inc()
	}
	return nil
}

// sweepEPubs republishes epub generation for videos that have their scene
// data but no epub in a requested language. The handler re-checks the
// caption prerequisite itself.
func (s *service) sweepEPubs(ctx context.Context) error {
	for _, language := range s.deps.Cfg.Scheduler.Languages {
		videos, err := s.deps.Repo.GetVideosMissingEPub(ctx, language)
		if err != nil {
			return err
		}
		for _, v := range videos {
			msg := models.EPubMessage{VideoID: v.ID, Language: language}
			if err := s.t.GenerateEPub.Publish(ctx, msg); err != nil {
				s.deps.Logger.Warnf("sweep: publish epub %s (%s): %v", v.ID, language, err)
				continue
			}
			metrics.SweepPublishesTotal.WithLabelValues("epubs").Inc()
		}
	}
	return nil
}

// sweepAllPlaylists pages through every playlist regardless of offering
// window. Manual full resync.
func (s *service) sweepAllPlaylists(ctx context.Context) error {
	pq := &utils.Pagination{Page: 1, Size: sweepPageSize}
	for {
		playlists, err := s.deps.Repo.GetPlaylists(ctx, pq)
		if err != nil {
			return err
		}
		if len(playlists) == 0 {
			return nil
		}
		for _, playlist := range playlists {
			if err := s.t.DownloadPlaylist.Publish(ctx, models.PlaylistMessage{PlaylistID: playlist.ID}); err != nil {
				s.deps.Logger.Warnf("sweep: publish playlist %s: %v", playlist.ID, err)
				continue
			}
			metrics.SweepPublishesTotal.WithLabelValues("playlists").Inc()
		}
		pq.Page++
	}
}

func (s *service) publishTranscribe(ctx context.Context, videoID uuid.UUID, language string) error {
	languages := s.deps.Cfg.Scheduler.Languages
	if language != "" {
		languages = []string{language}
	}
	for _, lang := range languages {
		if err := s.t.Transcribe.Publish(ctx, models.TranscribeMessage{VideoID: videoID, Language: lang}); err != nil {
			return err
		}
	}
	return nil
}

// retranscribePlaylist republishes transcription for every video of a
// playlist, used after a recognizer upgrade.
func (s *service) retranscribePlaylist(ctx context.Context, msg models.AwakeMessage) error {
	media, err := s.deps.Repo.GetMediaByPlaylist(ctx, msg.PlaylistID)
	if err != nil {
		return err
	}
	for _, m := range media {
		video, err := s.deps.Repo.GetVideoByMediaID(ctx, m.ID)
		if err != nil {
			if errors.Is(err, pipeline.ErrNotFound) {
				continue
			}
			return err
		}
		if err := s.publishTranscribe(ctx, video.ID, msg.Language); err != nil {
			return err
		}
	}
	return nil
}
