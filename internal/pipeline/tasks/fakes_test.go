package tasks

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/pipeline"
	"github.com/lectio/lectio/internal/recognizer"
	"github.com/lectio/lectio/pkg/utils"
)

type fakeBroker struct {
	mu        sync.Mutex
	declared  []string
	published map[string][][]byte
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{published: make(map[string][][]byte)}
}

func (b *fakeBroker) QueueDeclare(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.declared = append(b.declared, name)
	return nil
}

func (b *fakeBroker) Publish(_ context.Context, queue string, body []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published[queue] = append(b.published[queue], body)
	return nil
}

func (b *fakeBroker) PublishRetry(ctx context.Context, queue string, body []byte, _ int) error {
	return b.Publish(ctx, queue, body)
}

func (b *fakeBroker) PublishDead(_ context.Context, _ string, _ []byte, _ string) error {
	return nil
}

func (b *fakeBroker) Consume(_ context.Context, _ string) (<-chan amqp.Delivery, error) {
	ch := make(chan amqp.Delivery)
	close(ch)
	return ch, nil
}

func (b *fakeBroker) count(queue string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published[queue])
}

type fakeRepo struct {
	mu             sync.Mutex
	offerings      map[uuid.UUID]*models.Offering
	playlists      map[uuid.UUID]*models.Playlist
	media          map[uuid.UUID]*models.Media
	videos         map[uuid.UUID]*models.Video
	transcriptions map[uuid.UUID]*models.Transcription
	captions       map[uuid.UUID][]*models.Caption
	epubs          map[uuid.UUID]*models.EPub
	records        map[uuid.UUID]*models.FileRecord
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		offerings:      make(map[uuid.UUID]*models.Offering),
		playlists:      make(map[uuid.UUID]*models.Playlist),
		media:          make(map[uuid.UUID]*models.Media),
		videos:         make(map[uuid.UUID]*models.Video),
		transcriptions: make(map[uuid.UUID]*models.Transcription),
		captions:       make(map[uuid.UUID][]*models.Caption),
		epubs:          make(map[uuid.UUID]*models.EPub),
		records:        make(map[uuid.UUID]*models.FileRecord),
	}
}

func (r *fakeRepo) GetOfferingsByTermWindow(_ context.Context, from, to time.Time) ([]*models.Offering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Offering
	for _, o := range r.offerings {
		if !o.TermStart.Before(from) && !o.TermStart.After(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetPlaylistsByOffering(_ context.Context, offeringID uuid.UUID) ([]*models.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Playlist
	for _, p := range r.playlists {
		if p.OfferingID == offeringID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetPlaylistByID(_ context.Context, playlistID uuid.UUID) (*models.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.playlists[playlistID]
	if !ok {
		return nil, pipeline.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) GetPlaylists(_ context.Context, pq *utils.Pagination) ([]*models.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*models.Playlist
	for _, p := range r.playlists {
		all = append(all, p)
	}
	offset := pq.GetOffset()
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + pq.GetLimit()
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeRepo) CreateMedia(_ context.Context, media *models.Media) (*models.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := *media
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	r.media[m.ID] = &m
	return &m, nil
}

func (r *fakeRepo) GetMediaByID(_ context.Context, mediaID uuid.UUID) (*models.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.media[mediaID]
	if !ok {
		return nil, pipeline.ErrNotFound
	}
	return m, nil
}

func (r *fakeRepo) GetMediaBySourceKey(_ context.Context, playlistID uuid.UUID, sourceKey string) (*models.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.media {
		if m.PlaylistID == playlistID && m.SourceKey == sourceKey {
			return m, nil
		}
	}
	return nil, pipeline.ErrNotFound
}

func (r *fakeRepo) GetMediaByPlaylist(_ context.Context, playlistID uuid.UUID) ([]*models.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Media
	for _, m := range r.media {
		if m.PlaylistID == playlistID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetMediaMissingVideo(_ context.Context) ([]*models.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Media
	for _, m := range r.media {
		complete := false
		for _, v := range r.videos {
			if v.MediaID == m.ID && v.Video1ID != nil {
				complete = true
				break
			}
		}
		if !complete {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateVideo(_ context.Context, video *models.Video) (*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := *video
	v.ID = uuid.New()
	v.CreatedAt = time.Now()
	r.videos[v.ID] = &v
	return &v, nil
}

func (r *fakeRepo) GetVideoByID(_ context.Context, videoID uuid.UUID) (*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[videoID]
	if !ok {
		return nil, pipeline.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeRepo) GetVideoByMediaID(_ context.Context, mediaID uuid.UUID) (*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.videos {
		if v.MediaID == mediaID {
			cp := *v
			return &cp, nil
		}
	}
	return nil, pipeline.ErrNotFound
}

func (r *fakeRepo) UpdateVideo(_ context.Context, video *models.Video) (*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[video.ID]; !ok {
		return nil, pipeline.ErrNotFound
	}
	cp := *video
	r.videos[video.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeRepo) GetVideosMissingAudio(_ context.Context) ([]*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Video
	for _, v := range r.videos {
		if v.Video1ID != nil && v.AudioID == nil {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetVideosMissingTranscription(_ context.Context, language string) ([]*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Video
	for _, v := range r.videos {
		if v.AudioID == nil {
			continue
		}
		found := false
		for _, tr := range r.transcriptions {
			if tr.VideoID == v.ID && tr.Language == language {
				found = true
				break
			}
		}
		if !found {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetVideosMissingEPub(_ context.Context, language string) ([]*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Video
	for _, v := range r.videos {
		if len(v.SceneData) == 0 {
			continue
		}
		found := false
		for _, e := range r.epubs {
			if e.VideoID == v.ID && e.Language == language {
				found = true
				break
			}
		}
		if !found {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateTranscription(_ context.Context, tr *models.Transcription) (*models.Transcription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *tr
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	r.transcriptions[cp.ID] = &cp
	return &cp, nil
}

func (r *fakeRepo) GetTranscriptionByID(_ context.Context, trID uuid.UUID) (*models.Transcription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tr, ok := r.transcriptions[trID]
	if !ok {
		return nil, pipeline.ErrNotFound
	}
	cp := *tr
	return &cp, nil
}

func (r *fakeRepo) GetTranscriptionByVideoAndLanguage(_ context.Context, videoID uuid.UUID, language string) (*models.Transcription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tr := range r.transcriptions {
		if tr.VideoID == videoID && tr.Language == language {
			cp := *tr
			return &cp, nil
		}
	}
	return nil, pipeline.ErrNotFound
}

func (r *fakeRepo) UpdateTranscription(_ context.Context, tr *models.Transcription) (*models.Transcription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transcriptions[tr.ID]; !ok {
		return nil, pipeline.ErrNotFound
	}
	cp := *tr
	r.transcriptions[tr.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeRepo) GetTranscriptionsMissingCaptions(_ context.Context) ([]*models.Transcription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Transcription
	for _, tr := range r.transcriptions {
		if tr.FileID != nil && tr.SrtFileID == nil {
			out = append(out, tr)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateCaptions(_ context.Context, captions []*models.Caption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range captions {
		cp := *c
		if cp.ID == uuid.Nil {
			cp.ID = uuid.New()
		}
		cp.Version = 1
		r.captions[cp.TranscriptionID] = append(r.captions[cp.TranscriptionID], &cp)
	}
	return nil
}

func (r *fakeRepo) GetCaptionsByTranscription(_ context.Context, trID uuid.UUID) ([]*models.Caption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Caption(nil), r.captions[trID]...), nil
}

func (r *fakeRepo) GetCaptionByID(_ context.Context, captionID uuid.UUID) (*models.Caption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, list := range r.captions {
		for _, c := range list {
			if c.ID == captionID {
				cp := *c
				return &cp, nil
			}
		}
	}
	return nil, pipeline.ErrNotFound
}

func (r *fakeRepo) UpdateCaptionVote(_ context.Context, caption *models.Caption) (*models.Caption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, list := range r.captions {
		for _, c := range list {
			if c.ID == caption.ID {
				if c.Version != caption.Version {
					return nil, pipeline.ErrConcurrentModification
				}
				c.UpVote = caption.UpVote
				c.DownVote = caption.DownVote
				c.Version++
				cp := *c
				return &cp, nil
			}
		}
	}
	return nil, pipeline.ErrConcurrentModification
}

func (r *fakeRepo) CreateEPub(_ context.Context, epub *models.EPub) (*models.EPub, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *epub
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	r.epubs[cp.ID] = &cp
	return &cp, nil
}

func (r *fakeRepo) GetEPubByVideoAndLanguage(_ context.Context, videoID uuid.UUID, language string) (*models.EPub, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.epubs {
		if e.VideoID == videoID && e.Language == language {
			cp := *e
			return &cp, nil
		}
	}
	return nil, pipeline.ErrNotFound
}

func (r *fakeRepo) CreateFileRecord(_ context.Context, record *models.FileRecord) (*models.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.Hash == record.Hash {
			cp := *existing
			return &cp, nil
		}
	}
	cp := *record
	r.records[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeRepo) GetFileRecordByID(_ context.Context, recordID uuid.UUID) (*models.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[recordID]
	if !ok {
		return nil, pipeline.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeRepo) GetFileRecordByHash(_ context.Context, hash string) (*models.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Hash == hash {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, pipeline.ErrNotFound
}

func (r *fakeRepo) DeleteFileRecord(_ context.Context, recordID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, recordID)
	return nil
}

func (r *fakeRepo) recordCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type fakeRedis struct {
	mu       sync.Mutex
	locked   bool
	statuses map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{statuses: make(map[string]string)}
}

func (r *fakeRedis) AcquireSweepLock(_ context.Context, _ time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked {
		return false, nil
	}
	r.locked = true
	return true, nil
}

func (r *fakeRedis) ReleaseSweepLock(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = false
	return nil
}

func (r *fakeRedis) SetStageStatus(_ context.Context, key, status string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[key] = status
	return nil
}

func (r *fakeRedis) GetStageStatus(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statuses[key], nil
}

type fakeSource struct {
	objects []pipeline.SourceObject
	bodies  map[string][]byte
}

func sourceObj(key string) pipeline.SourceObject {
	return pipeline.SourceObject{Key: key, Name: filepath.Base(key), Size: 1}
}

func (s *fakeSource) ListObjects(_ context.Context, prefix string) ([]pipeline.SourceObject, error) {
	var out []pipeline.SourceObject
	for _, obj := range s.objects {
		if strings.HasPrefix(obj.Key, prefix) {
			out = append(out, obj)
		}
	}
	return out, nil
}

func (s *fakeSource) DownloadObject(_ context.Context, key, destPath string) error {
	body, ok := s.bodies[key]
	if !ok {
		return os.ErrNotExist
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(destPath, body, 0o644)
}

type fakeTranscoder struct {
	dir   string
	calls int
}

func (f *fakeTranscoder) ConvertVideoToWav(_ context.Context, sourcePath string) (string, error) {
	f.calls++
	out := filepath.Join(f.dir, filepath.Base(sourcePath)+".wav")
	return out, os.WriteFile(out, []byte("pcm:"+filepath.Base(sourcePath)), 0o644)
}

type fakeRecognizer struct {
	spans []recognizer.Span
}

func (f *fakeRecognizer) Recognize(_ context.Context, _, _ string) ([]recognizer.Span, error) {
	return f.spans, nil
}
