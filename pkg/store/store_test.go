package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/wkbadge/pkg/domain"
	"github.com/umputun/wkbadge/pkg/repository"
	"github.com/umputun/wkbadge/pkg/store/mocks"
)

func newTier(t *testing.T, name string) *repository.SettingRepository {
	t.Helper()
	repos, err := repository.NewRepositories(context.Background(), repository.Config{
		DSN:          "file:" + filepath.Join(t.TempDir(), name) + "?mode=rwc",
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return repos.Setting
}

// collector gathers change sets delivered to a subscriber
type collector struct {
	mu      sync.Mutex
	changes []Changes
}

func (c *collector) add(ch Changes) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, ch)
}

func (c *collector) all() []Changes {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Changes(nil), c.changes...)
}

func TestOpen_SeedsDefaults(t *testing.T) {
	local := newTier(t, "local.db")
	s, err := Open(context.Background(), Params{Local: local, Defaults: domain.DefaultPreferences()})
	require.NoError(t, err)
	defer s.Close()

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", snap.APIKey)
	assert.Equal(t, 15, snap.UpdateInterval)
	assert.Equal(t, 5, snap.NotifLife)
	assert.False(t, snap.Notifications)
	assert.False(t, snap.HasSummary)
	assert.False(t, s.HasSync())

	// defaults are persisted
	items, err := local.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, items.Has(domain.KeyUpdateInterval))
}

func TestOpen_KeepsExistingValues(t *testing.T) {
	ctx := context.Background()
	local := newTier(t, "local.db")
	items := domain.Items{}
	items.Put(domain.KeyUpdateInterval, 42)
	require.NoError(t, local.Save(ctx, items))

	s, err := Open(ctx, Params{Local: local, Defaults: domain.DefaultPreferences()})
	require.NoError(t, err)
	defer s.Close()

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, snap.UpdateInterval)
}

func TestOpen_MirrorsSyncTier(t *testing.T) {
	ctx := context.Background()
	local := newTier(t, "local.db")
	syncTier := newTier(t, "sync.db")

	localItems := domain.Items{}
	localItems.Put(domain.KeyAPIKey, "old-key")
	require.NoError(t, local.Save(ctx, localItems))

	syncItems := domain.Items{}
	syncItems.Put(domain.KeyAPIKey, "synced-key")
	syncItems.Put(domain.KeyNotifications, true)
	syncItems.Put(domain.KeyReviewsAvailable, 99) // not a synced key, ignored
	require.NoError(t, syncTier.Save(ctx, syncItems))

	s, err := Open(ctx, Params{Local: local, Sync: syncTier, Defaults: domain.DefaultPreferences()})
	require.NoError(t, err)
	defer s.Close()
	assert.True(t, s.HasSync())

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "synced-key", snap.APIKey)
	assert.True(t, snap.Notifications)
	assert.False(t, snap.HasSummary)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), Params{})
	require.Error(t, err)

	tier := &mocks.TierMock{LoadFunc: func(context.Context) (domain.Items, error) { return nil, errors.New("disk gone") }}
	_, err = Open(context.Background(), Params{Local: tier})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load local tier")
}

func TestStore_SetGetAndNotify(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Params{Local: newTier(t, "local.db"), Defaults: domain.DefaultPreferences()})
	require.NoError(t, err)
	defer s.Close()

	col := &collector{}
	unsubscribe := s.Subscribe(col.add)
	defer unsubscribe()

	items := domain.Items{}
	items.Put(domain.KeyReviewsAvailable, 3)
	items.Put(domain.KeyUpdateInterval, 15) // same as default, not a change
	require.NoError(t, s.Set(ctx, items))

	got, err := s.Get(ctx, domain.KeyReviewsAvailable, "missing")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.JSONEq(t, "3", string(got[domain.KeyReviewsAvailable]))

	require.Eventually(t, func() bool { return len(col.all()) == 1 }, time.Second, 5*time.Millisecond)
	ch := col.all()[0]
	assert.True(t, ch.Has(domain.KeyReviewsAvailable))
	assert.False(t, ch.Has(domain.KeyUpdateInterval))
	assert.Nil(t, ch[domain.KeyReviewsAvailable].Old)
	assert.JSONEq(t, "3", string(ch[domain.KeyReviewsAvailable].New))

	// same value again produces no notification
	require.NoError(t, s.Set(ctx, items))
	items.Put(domain.KeyReviewsAvailable, 4)
	require.NoError(t, s.Set(ctx, items))
	require.Eventually(t, func() bool { return len(col.all()) == 2 }, time.Second, 5*time.Millisecond)
	ch = col.all()[1]
	assert.JSONEq(t, "3", string(ch[domain.KeyReviewsAvailable].Old))
	assert.Equal(t, []string{domain.KeyReviewsAvailable}, ch.Keys())
}

func TestStore_SetFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	tier := &mocks.TierMock{
		LoadFunc: func(context.Context) (domain.Items, error) { return domain.Items{}, nil },
		SaveFunc: func(_ context.Context, items domain.Items) error {
			if items.Has(domain.KeyReviewsAvailable) {
				return errors.New("disk full")
			}
			return nil
		},
	}
	s, err := Open(ctx, Params{Local: tier, Defaults: domain.DefaultPreferences()})
	require.NoError(t, err)
	defer s.Close()

	items := domain.Items{}
	items.Put(domain.KeyReviewsAvailable, 10)
	err = s.Set(ctx, items)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	got, err := s.Get(ctx, domain.KeyReviewsAvailable)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_UpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Params{Local: newTier(t, "local.db"), Defaults: domain.DefaultPreferences()})
	require.NoError(t, err)
	defer s.Close()

	// concurrent read-modify-write of the same map key must not lose entries
	var wg sync.WaitGroup
	for _, r := range domain.Resources {
		wg.Add(1)
		go func(r domain.Resource) {
			defer wg.Done()
			err := s.Update(ctx, func(cur domain.Items) (domain.Items, error) {
				statuses := map[domain.Resource]int{}
				cur.Decode(domain.KeyLastStatus, &statuses)
				statuses[r] = 200
				res := domain.Items{}
				res.Put(domain.KeyLastStatus, statuses)
				return res, nil
			})
			assert.NoError(t, err)
		}(r)
	}
	wg.Wait()

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200, snap.Book.LastStatus[domain.ResourceUser])
	assert.Equal(t, 200, snap.Book.LastStatus[domain.ResourceSummary])

	// error from update fn is returned and nothing is written
	err = s.Update(ctx, func(domain.Items) (domain.Items, error) { return nil, errors.New("nope") })
	require.Error(t, err)
}

func TestStore_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	syncTier := newTier(t, "sync.db")
	s, err := Open(ctx, Params{Local: newTier(t, "local.db"), Sync: syncTier, Defaults: domain.DefaultPreferences()})
	require.NoError(t, err)
	defer s.Close()

	col := &collector{}
	s.Subscribe(col.add)

	items := domain.Items{}
	items.Put(domain.KeyReviewsAvailable, 5)
	items.Put(domain.KeyAPIKey, "key")
	require.NoError(t, s.Set(ctx, items))
	require.NoError(t, s.SyncSet(ctx, items))

	require.NoError(t, s.Remove(ctx, domain.KeyReviewsAvailable))
	require.NoError(t, s.Remove(ctx, "never-existed")) // no-op
	got, err := s.Get(ctx, domain.KeyReviewsAvailable)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Set(ctx, domain.Items{domain.KeyUsername: []byte(`"bob"`)}))
	require.NoError(t, s.Clear(ctx))
	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap.User.Username)
	assert.Equal(t, "key", snap.APIKey, "synced api key restored after reset")
	assert.Equal(t, 15, snap.UpdateInterval)

	require.Eventually(t, func() bool { return len(col.all()) == 4 }, time.Second, 5*time.Millisecond)
	removed := col.all()[1]
	assert.Nil(t, removed[domain.KeyReviewsAvailable].New)
	cleared := col.all()[3]
	assert.True(t, cleared.Has(domain.KeyUsername))
	assert.False(t, cleared.Has(domain.KeyAPIKey))
}

func TestStore_SyncSetFiltersKeys(t *testing.T) {
	ctx := context.Background()
	syncTier := newTier(t, "sync.db")
	s, err := Open(ctx, Params{Local: newTier(t, "local.db"), Sync: syncTier, Defaults: domain.DefaultPreferences()})
	require.NoError(t, err)
	defer s.Close()

	items := domain.Items{}
	items.Put(domain.KeyNotifLife, 9)
	items.Put(domain.KeyReviewsAvailable, 1)
	require.NoError(t, s.SyncSet(ctx, items))

	stored, err := syncTier.Load(ctx)
	require.NoError(t, err)
	assert.True(t, stored.Has(domain.KeyNotifLife))
	assert.False(t, stored.Has(domain.KeyReviewsAvailable))

	// without sync tier it is a no-op
	s2, err := Open(ctx, Params{Local: newTier(t, "other.db")})
	require.NoError(t, err)
	defer s2.Close()
	require.NoError(t, s2.SyncSet(ctx, items))
}

func TestStore_Closed(t *testing.T) {
	s, err := Open(context.Background(), Params{Local: newTier(t, "local.db")})
	require.NoError(t, err)
	s.Close()
	s.Close() // idempotent

	_, err = s.Get(context.Background())
	require.ErrorIs(t, err, ErrClosed)
}
