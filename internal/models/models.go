package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Offering is one run of a course in a term. Playlists hang off it.
type Offering struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title" validate:"required,lte=255"`
	TermStart time.Time `json:"term_start" db:"term_start"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Playlist maps to a prefix in the recordings bucket. Every object below the
// prefix becomes a Media once the playlist is synced.
type Playlist struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OfferingID   uuid.UUID `json:"offering_id" db:"offering_id"`
	Name         string    `json:"name" db:"name" validate:"required,lte=255"`
	SourcePrefix string    `json:"source_prefix" db:"source_prefix" validate:"required,lte=1024"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Media struct {
	ID         uuid.UUID `json:"id" db:"id"`
	PlaylistID uuid.UUID `json:"playlist_id" db:"playlist_id"`
	// SourceKey is the external object key; it is what makes a playlist
	// sync idempotent.
	SourceKey string    `json:"source_key" db:"source_key" validate:"required,lte=1024"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Video is the downloaded form of a Media. Video1 is the primary stream,
// Video2 an optional secondary (e.g. a screen capture track). Audio is the
// mono 16 kHz wav extraction the recognizer consumes.
type Video struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	MediaID   uuid.UUID       `json:"media_id" db:"media_id"`
	Video1ID  *uuid.UUID      `json:"video1_id" db:"video1_id"`
	Video2ID  *uuid.UUID      `json:"video2_id" db:"video2_id"`
	AudioID   *uuid.UUID      `json:"audio_id" db:"audio_id"`
	SceneData json.RawMessage `json:"scene_data" db:"scene_data"`
	Duration  time.Duration   `json:"duration" db:"duration_ns"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

type Transcription struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	VideoID   uuid.UUID  `json:"video_id" db:"video_id"`
	Language  string     `json:"language" db:"language" validate:"required,lte=16"`
	FileID    *uuid.UUID `json:"file_id" db:"file_id"`
	SrtFileID *uuid.UUID `json:"srt_file_id" db:"srt_file_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Caption is one cue of a transcription, ordered by Index. Begin/End are
// offsets from the start of the video. Votes are the only mutable fields
// after synthesis; Version backs the optimistic concurrency check on them.
type Caption struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	TranscriptionID uuid.UUID     `json:"transcription_id" db:"transcription_id"`
	Index           int           `json:"index" db:"idx"`
	Begin           time.Duration `json:"begin" db:"begin_ns"`
	End             time.Duration `json:"end" db:"end_ns"`
	Text            string        `json:"text" db:"text"`
	UpVote          int           `json:"up_vote" db:"up_vote"`
	DownVote        int           `json:"down_vote" db:"down_vote"`
	Version         int           `json:"version" db:"version"`
}

type EPub struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	VideoID   uuid.UUID  `json:"video_id" db:"video_id"`
	Language  string     `json:"language" db:"language"`
	FileID    *uuid.UUID `json:"file_id" db:"file_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// EPubChapter is one text+image unit combined from scene data and captions.
type EPubChapter struct {
	Image string        `json:"image"`
	Text  string        `json:"text"`
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
}

// Scene is one detected scene change of a video, persisted as JSON on the
// Video row by the process-video stage.
type Scene struct {
	Start     time.Duration `json:"start"`
	End       time.Duration `json:"end"`
	ImageFile string        `json:"img_file"`
}

// PipelineStatus is the trigger API's status payload.
type PipelineStatus struct {
	LastSweep string `json:"last_sweep"`
}

// FileRecord is a hash-addressed reference to bytes under the shared data
// root. Two records with the same hash point at the same artifact; the hash
// is computed once at creation and never changes.
type FileRecord struct {
	ID       uuid.UUID `json:"id" db:"id"`
	FileName string    `json:"file_name" db:"file_name"`
	// PrivatePath is anchored at the /data/ marker so the record resolves
	// on any host regardless of where the data root is mounted.
	PrivatePath string    `json:"-" db:"private_path"`
	Hash        string    `json:"hash" db:"hash"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
