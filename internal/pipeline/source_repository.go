package pipeline

import "context"

// SourceObject is one media object advertised by the external source.
type SourceObject struct {
	Key  string
	Name string
	Size int64
}

// SourceRepository is the external media source: listing a playlist's
// objects and downloading one of them to a local path.
type SourceRepository interface {
	ListObjects(ctx context.Context, prefix string) ([]SourceObject, error)
	DownloadObject(ctx context.Context, key, destPath string) error
}
