package admin

import "github.com/labstack/echo/v4"

type Handlers interface {
	UpdateAllPlaylists() echo.HandlerFunc
	UpdatePlaylist() echo.HandlerFunc
	DownloadMedia() echo.HandlerFunc
	ConvertMedia() echo.HandlerFunc
	TranscribeVideo() echo.HandlerFunc
	ReTranscribePlaylist() echo.HandlerFunc
	PeriodicCheck() echo.HandlerFunc
	Status() echo.HandlerFunc
	VoteCaption() echo.HandlerFunc
	Version() echo.HandlerFunc
}
