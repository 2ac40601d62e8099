package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/wkbadge/pkg/domain"
)

func setupTestRepos(t *testing.T) *Repositories {
	t.Helper()
	cfg := Config{
		DSN:             "file:" + filepath.Join(t.TempDir(), "test.db") + "?mode=rwc",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 30 * time.Second,
	}
	repos, err := NewRepositories(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, repos.Close()) })
	return repos
}

func TestRepositories_Integration(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	require.NoError(t, repos.Ping(ctx))

	t.Run("empty load", func(t *testing.T) {
		items, err := repos.Setting.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("save and load", func(t *testing.T) {
		items := domain.Items{}
		items.Put(domain.KeyAPIKey, "secret")
		items.Put(domain.KeyReviewsAvailable, 42)
		require.NoError(t, repos.Setting.Save(ctx, items))

		loaded, err := repos.Setting.Load(ctx)
		require.NoError(t, err)
		var key string
		var reviews int
		assert.True(t, loaded.Decode(domain.KeyAPIKey, &key))
		assert.True(t, loaded.Decode(domain.KeyReviewsAvailable, &reviews))
		assert.Equal(t, "secret", key)
		assert.Equal(t, 42, reviews)
	})

	t.Run("upsert overwrites", func(t *testing.T) {
		items := domain.Items{}
		items.Put(domain.KeyReviewsAvailable, 7)
		require.NoError(t, repos.Setting.Save(ctx, items))

		loaded, err := repos.Setting.Load(ctx)
		require.NoError(t, err)
		var reviews int
		require.True(t, loaded.Decode(domain.KeyReviewsAvailable, &reviews))
		assert.Equal(t, 7, reviews)
		assert.Len(t, loaded, 2)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repos.Setting.Delete(ctx, domain.KeyAPIKey, "not-there"))
		loaded, err := repos.Setting.Load(ctx)
		require.NoError(t, err)
		assert.False(t, loaded.Has(domain.KeyAPIKey))
		assert.True(t, loaded.Has(domain.KeyReviewsAvailable))
	})

	t.Run("purge", func(t *testing.T) {
		require.NoError(t, repos.Setting.Purge(ctx))
		loaded, err := repos.Setting.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})
}

func TestRepositories_Reopen(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "persist.db") + "?mode=rwc"
	ctx := context.Background()

	repos, err := NewRepositories(ctx, Config{DSN: dsn})
	require.NoError(t, err)
	items := domain.Items{}
	items.Put(domain.KeyUpdateInterval, 30)
	require.NoError(t, repos.Setting.Save(ctx, items))
	require.NoError(t, repos.Close())

	repos, err = NewRepositories(ctx, Config{DSN: dsn})
	require.NoError(t, err)
	defer repos.Close()

	loaded, err := repos.Setting.Load(ctx)
	require.NoError(t, err)
	var interval int
	require.True(t, loaded.Decode(domain.KeyUpdateInterval, &interval))
	assert.Equal(t, 30, interval)
}

func TestIsLockError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"busy", errors.New("SQLITE_BUSY: something"), true},
		{"locked", errors.New("database is locked"), true},
		{"table locked", errors.New("database table is locked"), true},
		{"other", errors.New("no such table"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isLockError(tt.err))
		})
	}
}

func TestCriticalError_Unwrap(t *testing.T) {
	base := errors.New("boom")
	err := &criticalError{err: base}
	assert.Equal(t, "boom", err.Error())
	assert.ErrorIs(t, err, base)
}

func TestRepositories_SchemaVersion(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "version.db") + "?mode=rwc"
	ctx := context.Background()

	repos, err := NewRepositories(ctx, Config{DSN: dsn})
	require.NoError(t, err)
	var version int
	require.NoError(t, repos.DB.GetContext(ctx, &version, "PRAGMA user_version"))
	assert.Equal(t, schemaVersion, version)

	_, err = repos.DB.ExecContext(ctx, "PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, repos.Close())

	_, err = NewRepositories(ctx, Config{DSN: dsn})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version 99 is newer")
}

func TestRepositories_BusyTimeout(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "busy.db") + "?mode=rwc"
	repos, err := NewRepositories(context.Background(), Config{DSN: dsn, MaxOpenConns: 1, BusyTimeout: 1500 * time.Millisecond})
	require.NoError(t, err)
	defer repos.Close()

	var timeout int
	require.NoError(t, repos.DB.Get(&timeout, "PRAGMA busy_timeout"))
	assert.Equal(t, 1500, timeout)
}

func TestClassify(t *testing.T) {
	lock := errors.New("database is locked (5) (SQLITE_BUSY)")
	assert.Equal(t, lock, classify("save settings", "begin", lock))

	base := errors.New("no such table: settings")
	err := classify("save settings", "commit", base)
	var crit *criticalError
	require.ErrorAs(t, err, &crit)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "save settings, commit: no such table: settings", err.Error())

	assert.Equal(t, "purge settings: no such table: settings", classify("purge settings", "", base).Error())
}

func TestInTx_Retries(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	t.Run("other errors end at once", func(t *testing.T) {
		calls := 0
		base := errors.New("no such table: widgets")
		err := inTx(ctx, repos.DB, "update widgets", func(*sqlx.Tx) error {
			calls++
			return base
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, base)
		assert.Equal(t, 1, calls)
	})

	t.Run("lock errors retried", func(t *testing.T) {
		calls := 0
		err := inTx(ctx, repos.DB, "update widgets", func(*sqlx.Tx) error {
			calls++
			if calls < 3 {
				return errors.New("database is locked (5) (SQLITE_BUSY)")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})
}
