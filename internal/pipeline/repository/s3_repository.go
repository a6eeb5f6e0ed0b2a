package repository

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/lectio/lectio/internal/pipeline"
)

type s3Repository struct {
	client *s3.Client
	bucket string
}

func NewS3Repository(client *s3.Client, bucket string) pipeline.SourceRepository {
	return &s3Repository{
		client: client,
		bucket: bucket,
	}
}

// ListObjects enumerates the recordings below a playlist prefix, following
// continuation tokens so large playlists come back complete.
func (r *s3Repository) ListObjects(ctx context.Context, prefix string) ([]pipeline.SourceObject, error) {
	var objects []pipeline.SourceObject
	var token *string
	for {
		res, err := r.client.ListObjectsV2(
			ctx,
			&s3.ListObjectsV2Input{
				Bucket:            aws.String(r.bucket),
				Prefix:            aws.String(prefix),
				ContinuationToken: token,
			},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		for _, obj := range res.Contents {
			if obj.Key == nil {
				continue
			}
			objects = append(objects, pipeline.SourceObject{
				Key:  *obj.Key,
				Name: path.Base(*obj.Key),
				Size: aws.ToInt64(obj.Size),
			})
		}
		if res.NextContinuationToken == nil {
			break
		}
		token = res.NextContinuationToken
	}
	return objects, nil
}

// DownloadObject streams one recording to destPath. The partial file is
// removed on failure so a retry never resumes from torn bytes.
func (r *s3Repository) DownloadObject(ctx context.Context, key, destPath string) error {
	res, err := r.client.GetObject(
		ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(r.bucket),
			Key:    aws.String(key),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer res.Body.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create download dir: %w", err)
	}
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	if _, err := out.ReadFrom(res.Body); err != nil {
		out.Close()
		os.Remove(destPath) // nolint: errcheck
		return fmt.Errorf("failed to download %s: %w", key, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", destPath, err)
	}
	return nil
}
