package settings

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testdb "github.com/avramidis/dealscout/internal/testing"
)

func newTestRepo(t *testing.T) *Repository {
	db, cleanup := testdb.NewTestDB(t, "config")
	t.Cleanup(cleanup)
	return NewRepository(db.Conn(), zerolog.Nop())
}

func TestRepositoryGetMissing(t *testing.T) {
	repo := newTestRepo(t)

	value, err := repo.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestRepositorySetAndGet(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Set(KeyBackupBucket, "dealscout-backups", nil))

	value, err := repo.Get(KeyBackupBucket)
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "dealscout-backups", *value)

	// upsert replaces
	require.NoError(t, repo.Set(KeyBackupBucket, "other-bucket", nil))
	value, err = repo.Get(KeyBackupBucket)
	require.NoError(t, err)
	assert.Equal(t, "other-bucket", *value)
}

func TestRepositoryTypedGetters(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.SetInt(KeyBackupRetention, 7))
	retention, err := repo.GetInt(KeyBackupRetention, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, retention)

	// int parses float-formatted strings
	require.NoError(t, repo.Set(KeyQueuePageSize, "25.0", nil))
	pageSize, err := repo.GetInt(KeyQueuePageSize, 50)
	require.NoError(t, err)
	assert.Equal(t, 25, pageSize)

	require.NoError(t, repo.SetFloat("target_rent_ratio", 0.011))
	ratio, err := repo.GetFloat("target_rent_ratio", 0.01)
	require.NoError(t, err)
	assert.InDelta(t, 0.011, ratio, 1e-9)

	require.NoError(t, repo.SetBool("backups_enabled", true))
	enabled, err := repo.GetBool("backups_enabled", false)
	require.NoError(t, err)
	assert.True(t, enabled)

	// unparsable values fall back to the default
	require.NoError(t, repo.Set("bad_number", "not-a-number", nil))
	n, err := repo.GetInt("bad_number", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	// missing keys fall back to the default
	missing, err := repo.GetFloat("missing", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, missing)
}

func TestRepositoryGetAllAndDelete(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Set("a", "1", nil))
	require.NoError(t, repo.Set("b", "2", nil))

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Delete("a"))
	all, err = repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestServiceMasksSecrets(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewService(repo, zerolog.Nop())

	require.NoError(t, svc.Set(KeyBackupSecretKey, "super-secret"))
	require.NoError(t, svc.Set(KeyBackupBucket, "dealscout-backups"))

	all, err := svc.GetAll()
	require.NoError(t, err)
	assert.Equal(t, "********", all[KeyBackupSecretKey])
	assert.Equal(t, "dealscout-backups", all[KeyBackupBucket])
}

func TestServiceSetNormalizesTypes(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewService(repo, zerolog.Nop())

	require.NoError(t, svc.Set(KeyBackupRetention, 7.0))
	retention, err := repo.GetInt(KeyBackupRetention, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, retention)

	require.NoError(t, svc.Set("backups_enabled", true))
	enabled, err := repo.GetBool("backups_enabled", false)
	require.NoError(t, err)
	assert.True(t, enabled)

	// nil deletes
	require.NoError(t, svc.Set(KeyBackupRetention, nil))
	value, err := repo.Get(KeyBackupRetention)
	require.NoError(t, err)
	assert.Nil(t, value)

	assert.Error(t, svc.Set("bad", []string{"x"}))
}
