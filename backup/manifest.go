// Package backup implements the snapshot/verify/restore pipeline for agent
// session stores: verified point-in-time copies on both machines, durable
// manifests describing them, and a confirmation-gated restore path that
// snapshots the pre-restore state before overwriting anything.
package backup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/grovetools/vault/errors"
	"github.com/grovetools/vault/logging"
	"github.com/sirupsen/logrus"
)

// TimestampLayout is the identity key format for backups.
const TimestampLayout = "20060102-150405"

// SideInfo describes one machine's half of a backup.
type SideInfo struct {
	Host         string `json:"host,omitempty"`
	Path         string `json:"path"`
	SessionCount int    `json:"session_count"`
	SizeBytes    int64  `json:"size_bytes"`
}

// Manifest is the durable, structured description of one backup. Counts are
// always measured after the snapshot is written, never assumed from the
// request.
type Manifest struct {
	BackupID          string    `json:"backup_id"`
	Timestamp         string    `json:"timestamp"`
	CreatedAt         time.Time `json:"created_at"`
	Local             SideInfo  `json:"local"`
	Remote            SideInfo  `json:"remote"`
	IntegrityVerified bool      `json:"integrity_verified"`
	RestoreCommand    string    `json:"restore_command"`
}

// ManifestStore persists one manifest file per backup timestamp under a
// fixed directory.
type ManifestStore struct {
	dir string
	log *logrus.Entry
}

// NewManifestStore creates a store rooted at dir.
func NewManifestStore(dir string) *ManifestStore {
	return &ManifestStore{
		dir: dir,
		log: logging.NewLogger("manifest"),
	}
}

// Path returns the manifest file path for a timestamp.
func (s *ManifestStore) Path(timestamp string) string {
	return filepath.Join(s.dir, "backup_"+timestamp+".json")
}

// Exists reports whether a manifest for the timestamp is already present.
func (s *ManifestStore) Exists(timestamp string) bool {
	_, err := os.Stat(s.Path(timestamp))
	return err == nil
}

// Write serializes the manifest and returns the path it was written to.
func (s *ManifestStore) Write(m *Manifest) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "cannot create manifest directory")
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "cannot serialize manifest")
	}

	path := s.Path(m.Timestamp)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "cannot write manifest")
	}
	return path, nil
}

// Read loads the manifest for a timestamp. A missing file is a distinct
// error from an unparseable one: "no such backup" and "backup corrupt" need
// different operator responses.
func (s *ManifestStore) Read(timestamp string) (*Manifest, error) {
	path := s.Path(timestamp)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ManifestNotFound(timestamp)
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "cannot read manifest "+path)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.ManifestCorrupt(path, err)
	}
	return &m, nil
}

// List enumerates every parseable manifest, newest first. A corrupt manifest
// is skipped with a warning; it must never prevent discovery of the others.
func (s *ManifestStore) List() ([]*Manifest, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "cannot read manifest directory "+s.dir)
	}

	var manifests []*Manifest
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "backup_") || !strings.HasSuffix(name, ".json") {
			continue
		}

		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			s.log.Warnf("skipping unreadable manifest %s: %v", path, err)
			continue
		}
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			s.log.Warnf("skipping corrupt manifest %s: %v", path, err)
			continue
		}
		manifests = append(manifests, &m)
	}

	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].Timestamp > manifests[j].Timestamp
	})
	return manifests, nil
}
