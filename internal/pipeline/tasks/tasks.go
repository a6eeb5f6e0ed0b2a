// Package tasks holds the pipeline stage handlers and the queue awaker. Each
// stage consumes one message type and publishes whatever triggers the next
// stage; nothing here calls another stage directly.
package tasks

import (
	"context"
	"time"

	"github.com/lectio/lectio/internal/config"
	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/pipeline"
	"github.com/lectio/lectio/internal/recognizer"
	"github.com/lectio/lectio/internal/store"
	"github.com/lectio/lectio/internal/task"
	"github.com/lectio/lectio/pkg/logger"
)

// Transcoder is the slice of the external transcoding worker the convert
// stage needs. rpcclient.Client satisfies it.
type Transcoder interface {
	ConvertVideoToWav(ctx context.Context, sourcePath string) (string, error)
}

// Deps bundles everything the stage handlers work against.
type Deps struct {
	Cfg        *config.Config
	Repo       pipeline.Repository
	RedisRepo  pipeline.RedisRepository
	Source     pipeline.SourceRepository
	Store      *store.FileStore
	Transcoder Transcoder
	Recognizer recognizer.Recognizer
	Logger     logger.Logger
}

// Tasks is the wired stage graph.
type Tasks struct {
	Awaker           *task.Task[models.AwakeMessage]
	DownloadPlaylist *task.Task[models.PlaylistMessage]
	DownloadMedia    *task.Task[models.MediaMessage]
	ConvertVideo     *task.Task[models.VideoMessage]
	Transcribe       *task.Task[models.TranscribeMessage]
	GenerateCaptions *task.Task[models.TranscriptionMessage]
	ProcessVideo     *task.Task[models.VideoMessage]
	GenerateEPub     *task.Task[models.EPubMessage]

	service *service
}

type service struct {
	deps Deps
	t    *Tasks

	// Seams for tests; production wiring keeps the ffmpeg-backed defaults.
	probeDuration func(ctx context.Context, path string) (time.Duration, error)
	extractScenes func(ctx context.Context, src, outDir string) ([]sceneFrame, error)
}

// NewTasks declares every stage queue and binds the handlers. Handlers reach
// downstream stages through the returned struct, which is fully wired before
// any consumption starts.
func NewTasks(b task.Broker, deps Deps) (*Tasks, error) {
	s := &service{
		deps:          deps,
		probeDuration: probeDuration,
		extractScenes: extractSceneFrames,
	}
	t := &Tasks{service: s}
	s.t = t

	suffix := deps.Cfg.RabbitMQ.QueueSuffix
	maxAttempts := deps.Cfg.RabbitMQ.MaxAttempts
	log := deps.Logger

	var err error
	if t.GenerateEPub, err = task.New(b, task.TypeGenerateEPub, suffix, maxAttempts, log, s.HandleGenerateEPub); err != nil {
		return nil, err
	}
	if t.GenerateCaptions, err = task.New(b, task.TypeGenerateCaptions, suffix, maxAttempts, log, s.HandleGenerateCaptions); err != nil {
		return nil, err
	}
	if t.Transcribe, err = task.New(b, task.TypeTranscribeVideo, suffix, maxAttempts, log, s.HandleTranscribe); err != nil {
		return nil, err
	}
	if t.ConvertVideo, err = task.New(b, task.TypeConvertVideoToWav, suffix, maxAttempts, log, s.HandleConvertVideo); err != nil {
		return nil, err
	}
	if t.ProcessVideo, err = task.New(b, task.TypeProcessVideo, suffix, maxAttempts, log, s.HandleProcessVideo); err != nil {
		return nil, err
	}
	if t.DownloadMedia, err = task.New(b, task.TypeDownloadMedia, suffix, maxAttempts, log, s.HandleDownloadMedia); err != nil {
		return nil, err
	}
	if t.DownloadPlaylist, err = task.New(b, task.TypeDownloadPlaylistInfo, suffix, maxAttempts, log, s.HandleDownloadPlaylist); err != nil {
		return nil, err
	}
	if t.Awaker, err = task.New(b, task.TypeQueueAwaker, suffix, maxAttempts, log, s.HandleAwake); err != nil {
		return nil, err
	}
	return t, nil
}

// StartAwakerTicker publishes a periodic check every interval until ctx is
// cancelled. The persistent queue fans the tick out to exactly one consumer;
// the redis sweep lock covers the rest.
func (t *Tasks) StartAwakerTicker(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				msg := models.AwakeMessage{Type: models.AwakePeriodicCheck}
				if err := t.Awaker.Publish(ctx, msg); err != nil {
					t.service.deps.Logger.Warnf("publish periodic check: %v", err)
				}
			}
		}
	}()
}

// ConsumeAll starts the worker pools of every stage.
func (t *Tasks) ConsumeAll(ctx context.Context, workers int) error {
	for _, c := range t.consumers() {
		if err := c.Consume(ctx, workers); err != nil {
			return err
		}
	}
	return nil
}

// Wait blocks until every stage pool has drained after ctx cancellation.
func (t *Tasks) Wait() {
	for _, c := range t.consumers() {
		c.Wait()
	}
}

type consumer interface {
	Consume(ctx context.Context, workers int) error
	Wait()
}

func (t *Tasks) consumers() []consumer {
	return []consumer{
		t.Awaker,
		t.DownloadPlaylist,
		t.DownloadMedia,
		t.ConvertVideo,
		t.Transcribe,
		t.GenerateCaptions,
		t.ProcessVideo,
		t.GenerateEPub,
	}
}
