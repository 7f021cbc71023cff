package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grovetools/vault/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleManifest(ts string) *Manifest {
	return &Manifest{
		BackupID:  "2f1c0a52-1111-4222-8333-444455556666",
		Timestamp: ts,
		CreatedAt: time.Date(2026, 8, 23, 10, 15, 0, 0, time.UTC),
		Local: SideInfo{
			Path:         "/backups/local_" + ts,
			SessionCount: 12,
			SizeBytes:    3400,
		},
		Remote: SideInfo{
			Host:         "dev@eon",
			Path:         "/home/dev/.claude-backups/remote_" + ts,
			SessionCount: 12,
			SizeBytes:    4096,
		},
		IntegrityVerified: true,
		RestoreCommand:    "vault restore " + ts,
	}
}

func TestManifestRoundTrip(t *testing.T) {
	store := NewManifestStore(t.TempDir())
	want := sampleManifest("20260823-101500")

	path, err := store.Write(want)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, store.Path(want.Timestamp), path)

	got, err := store.Read(want.Timestamp)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestManifestReadNotFound(t *testing.T) {
	store := NewManifestStore(t.TempDir())
	_, err := store.Read("20260101-000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeManifestNotFound),
		"a missing manifest must be NOT_FOUND, not corrupt: %v", err)
}

func TestManifestReadCorrupt(t *testing.T) {
	dir := t.TempDir()
	store := NewManifestStore(dir)
	require.NoError(t, os.WriteFile(store.Path("20260101-000000"), []byte("{nope"), 0644))

	_, err := store.Read("20260101-000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeManifestCorrupt),
		"an unparseable manifest must be CORRUPT, not NOT_FOUND: %v", err)
}

func TestManifestListSkipsCorrupt(t *testing.T) {
	dir := t.TempDir()
	store := NewManifestStore(dir)

	_, err := store.Write(sampleManifest("20260823-101500"))
	require.NoError(t, err)
	_, err = store.Write(sampleManifest("20260824-090000"))
	require.NoError(t, err)
	// One corrupt manifest must never prevent discovery of the others.
	require.NoError(t, os.WriteFile(store.Path("20260825-000000"), []byte("{nope"), 0644))
	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("hi"), 0644))

	manifests, err := store.List()
	require.NoError(t, err)
	require.Len(t, manifests, 2)
	// Newest first.
	assert.Equal(t, "20260824-090000", manifests[0].Timestamp)
	assert.Equal(t, "20260823-101500", manifests[1].Timestamp)
}

func TestManifestListMissingDir(t *testing.T) {
	store := NewManifestStore(filepath.Join(t.TempDir(), "absent"))
	manifests, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, manifests)
}

func TestManifestExists(t *testing.T) {
	store := NewManifestStore(t.TempDir())
	assert.False(t, store.Exists("20260823-101500"))
	_, err := store.Write(sampleManifest("20260823-101500"))
	require.NoError(t, err)
	assert.True(t, store.Exists("20260823-101500"))
}
