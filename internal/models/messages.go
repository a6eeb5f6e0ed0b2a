package models

import "github.com/google/uuid"

// Task payloads carry identifiers only; consumers always re-read current
// state instead of trusting an embedded snapshot.

type PlaylistMessage struct {
	PlaylistID uuid.UUID `json:"playlist_id"`
}

type MediaMessage struct {
	MediaID uuid.UUID `json:"media_id"`
}

type VideoMessage struct {
	VideoID uuid.UUID `json:"video_id"`
}

type TranscribeMessage struct {
	VideoID  uuid.UUID `json:"video_id"`
	Language string    `json:"language"`
}

type TranscriptionMessage struct {
	TranscriptionID uuid.UUID `json:"transcription_id"`
}

type EPubMessage struct {
	VideoID  uuid.UUID `json:"video_id"`
	Language string    `json:"language"`
}

type AwakeType string

const (
	AwakePeriodicCheck        AwakeType = "PeriodicCheck"
	AwakeDownloadAllPlaylists AwakeType = "DownloadAllPlaylists"
	AwakeDownloadPlaylist     AwakeType = "DownloadPlaylist"
	AwakeDownloadMedia        AwakeType = "DownloadMedia"
	AwakeConvertMedia         AwakeType = "ConvertMedia"
	AwakeTranscribeVideo      AwakeType = "TranscribeVideo"
	AwakeReTranscribePlaylist AwakeType = "ReTranscribePlaylist"
)

// AwakeMessage drives the awaker scheduler: a periodic full sweep or a
// manual re-drive of one entity.
type AwakeMessage struct {
	Type       AwakeType `json:"type"`
	PlaylistID uuid.UUID `json:"playlist_id,omitempty"`
	MediaID    uuid.UUID `json:"media_id,omitempty"`
	VideoID    uuid.UUID `json:"video_id,omitempty"`
	Language   string    `json:"language,omitempty"`
}
