package tasks

import (
	"context"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/pipeline"
	"github.com/lectio/lectio/internal/task"
	"github.com/lectio/lectio/pkg/utils"
)

var mediaKeyRe = regexp.MustCompile(`\.(mp4|mkv|avi|mov|wmv|flv|webm|m4v|mpeg|mpg|ts)$`)

// secondaryMarker tags the screen-capture track that belongs to a primary
// recording object. Such objects never become Media of their own; the
// download stage picks them up as the video's secondary stream.
const secondaryMarker = "_slides"

// HandleDownloadPlaylist syncs one playlist against the external source:
// every new media object becomes a Media row plus a download message.
// Objects already known by source key are skipped, so consuming the same
// playlist twice creates nothing.
func (s *service) HandleDownloadPlaylist(ctx context.Context, msg models.PlaylistMessage) error {
	playlist, err := s.deps.Repo.GetPlaylistByID(ctx, msg.PlaylistID)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			return errors.Wrapf(task.ErrStructuralInconsistency, "playlist %s: %v", msg.PlaylistID, err)
		}
		return err
	}

	objects, err := s.deps.Source.ListObjects(ctx, playlist.SourcePrefix)
	if err != nil {
		return errors.Wrapf(err, "list playlist %s", playlist.ID)
	}

	for _, obj := range objects {
		if !mediaKeyRe.MatchString(strings.ToLower(obj.Key)) {
			continue
		}
		if strings.Contains(obj.Name, secondaryMarker) {
			continue
		}
		if _, err := s.deps.Repo.GetMediaBySourceKey(ctx, playlist.ID, obj.Key); err == nil {
			continue
		} else if !errors.Is(err, pipeline.ErrNotFound) {
			return err
		}
		candidate := &models.Media{
			PlaylistID: playlist.ID,
			SourceKey:  obj.Key,
			Name:       obj.Name,
		}
		if err := utils.ValidateStruct(ctx, candidate); err != nil {
			s.deps.Logger.Warnf("playlist %s: skipping invalid object %q: %v", playlist.ID, obj.Key, err)
			continue
		}
		media, err := s.deps.Repo.CreateMedia(ctx, candidate)
		if err != nil {
			return err
		}
		s.deps.Logger.Infof("playlist %s: new media %s (%s)", playlist.ID, media.ID, media.SourceKey)
		if err := s.t.DownloadMedia.Publish(ctx, models.MediaMessage{MediaID: media.ID}); err != nil {
			// The media row exists; the next sweep republishes it.
			s.deps.Logger.Warnf("playlist %s: publish download for media %s: %v", playlist.ID, media.ID, err)
		}
	}
	return nil
}
