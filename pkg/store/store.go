// Package store provides the persistent key-value store with change notifications.
// All state is owned by a single goroutine; every read and write is a request
// processed in order, so callers never race on the underlying map.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/wkbadge/pkg/domain"
)

//go:generate moq -out mocks/tier.go -pkg mocks -skip-ensure -fmt goimports . Tier

// ErrClosed is returned for operations on a closed store
var ErrClosed = errors.New("store closed")

// Tier is a persistence backend for store items
type Tier interface {
	Load(ctx context.Context) (domain.Items, error)
	Save(ctx context.Context, items domain.Items) error
	Delete(ctx context.Context, keys ...string) error
	Purge(ctx context.Context) error
}

// Params for Open
type Params struct {
	Local    Tier // required
	Sync     Tier // optional cross-device tier
	Defaults domain.Preferences
}

// Store serializes access to items through one owner goroutine
type Store struct {
	local    Tier
	sync     Tier
	defaults domain.Preferences

	reqs     chan request
	done     chan struct{}
	wg       sync.WaitGroup
	notifier *dispatcher
	once     sync.Once
}

// request is an operation executed inside the owner goroutine
type request struct {
	ctx   context.Context
	op    func(ctx context.Context, state domain.Items) (Changes, error)
	reply chan error
}

// Open loads the local tier, seeds defaults, mirrors synced values and starts the owner
func Open(ctx context.Context, params Params) (*Store, error) {
	if params.Local == nil {
		return nil, errors.New("local tier is required")
	}

	s := &Store{
		local:    params.Local,
		sync:     params.Sync,
		defaults: params.Defaults,
		reqs:     make(chan request),
		done:     make(chan struct{}),
		notifier: newDispatcher(),
	}

	state, err := s.local.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load local tier: %w", err)
	}

	initial, err := s.initialItems(ctx, state)
	if err != nil {
		return nil, err
	}
	if len(initial) > 0 {
		if err := s.local.Save(ctx, initial); err != nil {
			return nil, fmt.Errorf("save initial items: %w", err)
		}
		state.Merge(initial)
	}

	s.wg.Add(1)
	go s.run(state)
	lgr.Printf("[DEBUG] store opened with %d items, sync tier: %v", len(state), s.HasSync())
	return s, nil
}

// initialItems returns defaults for absent preference keys and synced values from the sync tier
func (s *Store) initialItems(ctx context.Context, state domain.Items) (domain.Items, error) {
	res := domain.Items{}
	for key, value := range s.defaults.Items() {
		if _, ok := state[key]; !ok {
			res[key] = value
		}
	}

	if s.sync == nil {
		return res, nil
	}

	synced, err := s.sync.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sync tier: %w", err)
	}
	for _, key := range domain.SyncedKeys {
		if value, ok := synced[key]; ok && !bytes.Equal(state[key], value) {
			res[key] = value
		}
	}
	return res, nil
}

// HasSync reports whether a sync tier is configured
func (s *Store) HasSync() bool {
	return s.sync != nil
}

// Subscribe registers fn to be called with every committed change set, in commit order.
// Returns a function removing the subscription.
func (s *Store) Subscribe(fn func(Changes)) (unsubscribe func()) {
	return s.notifier.subscribe(fn)
}

// Get returns a copy of requested items, or all items if no keys given
func (s *Store) Get(ctx context.Context, keys ...string) (domain.Items, error) {
	var res domain.Items
	err := s.do(ctx, func(_ context.Context, state domain.Items) (Changes, error) {
		res = copyItems(state, keys)
		return nil, nil
	})
	return res, err
}

// Snapshot returns a typed view of all items
func (s *Store) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	items, err := s.Get(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return domain.NewSnapshot(items), nil
}

// Set upserts items, persisting them before they become visible
func (s *Store) Set(ctx context.Context, items domain.Items) error {
	return s.do(ctx, func(ctx context.Context, state domain.Items) (Changes, error) {
		return s.apply(ctx, state, items)
	})
}

// Update runs fn against a copy of the current items and stores what it returns.
// The read and the write happen in one step, nothing else can interleave.
func (s *Store) Update(ctx context.Context, fn func(current domain.Items) (domain.Items, error)) error {
	return s.do(ctx, func(ctx context.Context, state domain.Items) (Changes, error) {
		upd, err := fn(copyItems(state, nil))
		if err != nil {
			return nil, err
		}
		return s.apply(ctx, state, upd)
	})
}

// Remove deletes keys
func (s *Store) Remove(ctx context.Context, keys ...string) error {
	return s.do(ctx, func(ctx context.Context, state domain.Items) (Changes, error) {
		var present []string
		for _, k := range keys {
			if _, ok := state[k]; ok {
				present = append(present, k)
			}
		}
		if len(present) == 0 {
			return nil, nil
		}
		if err := s.local.Delete(ctx, present...); err != nil {
			return nil, fmt.Errorf("delete from local tier: %w", err)
		}
		changes := Changes{}
		for _, k := range present {
			changes[k] = Change{Old: state[k]}
			delete(state, k)
		}
		return changes, nil
	})
}

// Clear wipes the local tier, then re-seeds defaults and re-mirrors synced values
func (s *Store) Clear(ctx context.Context) error {
	return s.do(ctx, func(ctx context.Context, state domain.Items) (Changes, error) {
		if err := s.local.Purge(ctx); err != nil {
			return nil, fmt.Errorf("purge local tier: %w", err)
		}
		fresh, err := s.initialItems(ctx, domain.Items{})
		if err != nil {
			return nil, err
		}
		if err := s.local.Save(ctx, fresh); err != nil {
			return nil, fmt.Errorf("save initial items: %w", err)
		}

		changes := Changes{}
		for k, old := range state {
			if value, ok := fresh[k]; !ok || !bytes.Equal(old, value) {
				changes[k] = Change{Old: old, New: fresh[k]}
			}
		}
		for k, value := range fresh {
			if _, ok := state[k]; !ok {
				changes[k] = Change{New: value}
			}
		}
		for k := range state {
			delete(state, k)
		}
		state.Merge(fresh)
		return changes, nil
	})
}

// SyncSet writes synced keys to the sync tier. Non-synced keys are ignored.
// The local tier and subscribers are not involved.
func (s *Store) SyncSet(ctx context.Context, items domain.Items) error {
	if s.sync == nil {
		return nil
	}
	filtered := domain.Items{}
	for k, v := range items {
		if domain.IsSynced(k) {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if err := s.sync.Save(ctx, filtered); err != nil {
		return fmt.Errorf("save sync tier: %w", err)
	}
	return nil
}

// Close stops the owner goroutine and the change dispatcher
func (s *Store) Close() {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.notifier.close()
	})
}

// apply persists items and merges them into state, returning what actually changed
func (s *Store) apply(ctx context.Context, state, items domain.Items) (Changes, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if err := s.local.Save(ctx, items); err != nil {
		return nil, fmt.Errorf("save to local tier: %w", err)
	}
	changes := Changes{}
	for k, v := range items {
		if old, ok := state[k]; !ok || !bytes.Equal(old, v) {
			changes[k] = Change{Old: state[k], New: v}
		}
		state[k] = v
	}
	return changes, nil
}

// do sends op to the owner goroutine and waits for its result
func (s *Store) do(ctx context.Context, op func(ctx context.Context, state domain.Items) (Changes, error)) error {
	req := request{ctx: ctx, op: op, reply: make(chan error, 1)}
	select {
	case s.reqs <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the owner loop, the only place state is touched
func (s *Store) run(state domain.Items) {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case req := <-s.reqs:
			changes, err := req.op(context.WithoutCancel(req.ctx), state)
			if err == nil && len(changes) > 0 {
				s.notifier.push(changes)
			}
			req.reply <- err
		}
	}
}

func copyItems(state domain.Items, keys []string) domain.Items {
	if len(keys) == 0 {
		res := make(domain.Items, len(state))
		for k, v := range state {
			res[k] = append(json.RawMessage(nil), v...)
		}
		return res
	}
	res := make(domain.Items, len(keys))
	for _, k := range keys {
		if v, ok := state[k]; ok {
			res[k] = append(json.RawMessage(nil), v...)
		}
	}
	return res
}
