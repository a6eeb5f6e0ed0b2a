// Package store implements the content-addressable file store shared by all
// pipeline workers. Artifacts are identified by the sha256 digest of their
// bytes; identical bytes share one on-disk file.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/lectio/lectio/internal/config"
	"github.com/lectio/lectio/internal/models"
)

// dataAnchor marks the store root inside a persisted private path. Records
// written on one host resolve on any other by re-anchoring everything after
// this segment at the local data root.
const dataAnchor = "/data/"

// FileStore resolves and writes hash-addressed artifacts under a data root,
// typically a network mount shared by every worker.
type FileStore struct {
	dataDir string
}

func NewFileStore(cfg *config.Config) *FileStore {
	return &FileStore{dataDir: cfg.Store.DataDir}
}

// NewFileRecord hashes the file at path and builds the record that identifies
// it in the store. The record is not persisted and the bytes are not moved;
// callers pair this with Put and the repository.
func (s *FileStore) NewFileRecord(path string) (*models.FileRecord, error) {
	hash, err := hashFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "FileStore.NewFileRecord.hashFile")
	}
	name := filepath.Base(path)
	return &models.FileRecord{
		ID:          uuid.New(),
		FileName:    name,
		PrivatePath: dataAnchor + hash + filepath.Ext(name),
		Hash:        hash,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Resolve maps a record's private path onto the local data root. The stored
// path must contain the data anchor; everything after it is the store-relative
// location, independent of which host originally wrote the file.
func (s *FileStore) Resolve(record *models.FileRecord) (string, error) {
	idx := strings.Index(record.PrivatePath, dataAnchor)
	if idx == -1 {
		return "", errors.Errorf("FileStore.Resolve: path %q not under data root", record.PrivatePath)
	}
	return filepath.Join(s.dataDir, record.PrivatePath[idx+len(dataAnchor):]), nil
}

// Put moves a produced file into the store and returns its record. Writes are
// append-once: when the hash is already present the source is discarded and
// the existing artifact is shared, which keeps two workers producing the same
// bytes concurrently from clobbering each other.
func (s *FileStore) Put(srcPath string) (*models.FileRecord, error) {
	record, err := s.NewFileRecord(srcPath)
	if err != nil {
		return nil, err
	}
	target, err := s.Resolve(record)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(target); err == nil {
		if err := os.Remove(srcPath); err != nil {
			return nil, errors.Wrap(err, "FileStore.Put.Remove")
		}
		return record, nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, errors.Wrap(err, "FileStore.Put.MkdirAll")
	}
	if err := moveFile(srcPath, target); err != nil {
		return nil, errors.Wrap(err, "FileStore.Put.moveFile")
	}
	return record, nil
}

// Delete removes the artifact's bytes. A missing file is not an error; the
// row may outlive the bytes after a partial cleanup.
func (s *FileStore) Delete(record *models.FileRecord) error {
	target, err := s.Resolve(record)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "FileStore.Delete.Remove")
	}
	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// moveFile renames when possible and falls back to copy + remove when the
// temp dir and the data root live on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
