package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testdb "github.com/avramidis/dealscout/internal/testing"
)

func TestCreateArchiveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "leads.db"), []byte("leads-bytes"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, metadataArchiveName), []byte(`{"ok":true}`), 0644))

	archivePath := filepath.Join(dir, "out.tar.gz")
	require.NoError(t, createArchive(archivePath, dir, []string{"leads.db", metadataArchiveName}))

	f, err := os.Open(archivePath)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	contents := map[string]string{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		contents[hdr.Name] = string(data)
	}

	assert.Equal(t, "leads-bytes", contents["leads.db"])
	assert.Equal(t, `{"ok":true}`, contents[metadataArchiveName])
}

func TestChecksumFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	sum, err := checksumFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sum, "sha256:"))

	// deterministic
	again, err := checksumFile(path)
	require.NoError(t, err)
	assert.Equal(t, sum, again)
}

func TestWriteMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, metadataArchiveName)

	meta := BackupMetadata{
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Databases: []DatabaseMetadata{{Name: "leads", Filename: "leads.db", SizeBytes: 42, Checksum: "sha256:x"}},
	}
	require.NoError(t, writeMetadata(path, meta))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded BackupMetadata
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Databases, 1)
	assert.Equal(t, "leads", decoded.Databases[0].Name)
}

func TestDatabaseSnapshotFeedsArchive(t *testing.T) {
	db, cleanup := testdb.NewTestDB(t, "leads")
	t.Cleanup(cleanup)

	dir := t.TempDir()
	snapshotPath := filepath.Join(dir, "leads.db")
	require.NoError(t, db.BackupTo(snapshotPath))

	info, err := os.Stat(snapshotPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "VACUUM INTO must produce a real file")

	sum, err := checksumFile(snapshotPath)
	require.NoError(t, err)
	assert.NotEmpty(t, sum)
}

func TestCreateAndUploadBackupWithoutStorage(t *testing.T) {
	svc := NewBackupService(nil, nil, t.TempDir(), 7, nil, zerolog.Nop())
	assert.Error(t, svc.CreateAndUploadBackup(context.Background()))
}
