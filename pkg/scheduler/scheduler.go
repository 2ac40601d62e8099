package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/wkbadge/pkg/domain"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store

// RefreshAlarm is the name of the only wake timer
const RefreshAlarm = "refresh"

// Store is the part of the persistent store holding alarm state and the update interval
type Store interface {
	Get(ctx context.Context, keys ...string) (domain.Items, error)
	Set(ctx context.Context, items domain.Items) error
	Remove(ctx context.Context, keys ...string) error
}

// Config holds scheduler configuration
type Config struct {
	Now func() time.Time // optional, time.Now if nil
}

// Scheduler keeps at most one pending wake timer. The pending alarm is persisted
// in the store, so a restarted process picks it up in Start.
type Scheduler struct {
	store Store
	now   func() time.Time

	mu      sync.Mutex
	ctx     context.Context
	timer   *time.Timer
	gen     uint64 // incremented on every re-arm, stale timer callbacks compare against it
	pending *domain.Alarm
	onFire  func(ctx context.Context, alarm domain.Alarm)
	stopped bool
	wg      sync.WaitGroup
}

// NewScheduler creates a new scheduler instance
func NewScheduler(store Store, cfg Config) *Scheduler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Scheduler{store: store, now: cfg.Now, ctx: context.Background()}
}

// OnFire sets the function called when the alarm goes off. Must be set before Start.
func (s *Scheduler) OnFire(fn func(ctx context.Context, alarm domain.Alarm)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFire = fn
}

// Start restores the persisted alarm, if any. An overdue alarm fires right away.
func (s *Scheduler) Start(ctx context.Context) error {
	items, err := s.store.Get(ctx, domain.KeyAlarmRefresh)
	if err != nil {
		return fmt.Errorf("load alarm: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = context.WithoutCancel(ctx)
	s.stopped = false

	var alarm domain.Alarm
	if !items.Decode(domain.KeyAlarmRefresh, &alarm) || alarm.ScheduledAt.IsZero() {
		lgr.Printf("[INFO] scheduler started, no pending alarm")
		return nil
	}
	alarm.Name = RefreshAlarm
	s.schedule(alarm)
	lgr.Printf("[INFO] scheduler started, restored alarm at %s, period %v", alarm.ScheduledAt.Format(time.RFC3339), alarm.Period)
	return nil
}

// Stop cancels the pending timer. Persisted alarm state is kept for the next Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// ArmAt replaces the pending alarm with a one-shot wake at the given instant
func (s *Scheduler) ArmAt(ctx context.Context, when time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil && !s.pending.Periodic() && s.pending.ScheduledAt.Equal(when) {
		return nil
	}
	return s.arm(ctx, domain.Alarm{Name: RefreshAlarm, ScheduledAt: when})
}

// Arm replaces the pending alarm with a periodic wake every update_interval minutes.
// A periodic alarm with the same period already pending is kept as is.
func (s *Scheduler) Arm(ctx context.Context) error {
	period, err := s.interval(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil && s.pending.Period == period {
		return nil
	}
	return s.arm(ctx, domain.Alarm{Name: RefreshAlarm, ScheduledAt: s.now().Add(period), Period: period})
}

// OnIntervalChange re-arms with the current update_interval, only if the pending alarm is periodic
func (s *Scheduler) OnIntervalChange(ctx context.Context) error {
	pending, ok := s.Pending()
	if !ok || !pending.Periodic() {
		lgr.Printf("[DEBUG] update interval changed, no periodic alarm to reschedule")
		return nil
	}
	return s.Arm(ctx)
}

// Pending returns the alarm waiting to fire
func (s *Scheduler) Pending() (domain.Alarm, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return domain.Alarm{}, false
	}
	return *s.pending, true
}

// arm persists the alarm and replaces the timer, must be called with mu held
func (s *Scheduler) arm(ctx context.Context, alarm domain.Alarm) error {
	if s.stopped {
		return errors.New("scheduler stopped")
	}
	items := domain.Items{}
	items.Put(domain.KeyAlarmRefresh, alarm)
	if err := s.store.Set(ctx, items); err != nil {
		return fmt.Errorf("save alarm: %w", err)
	}
	s.schedule(alarm)
	lgr.Printf("[DEBUG] alarm %s armed at %s, period %v", alarm.Name, alarm.ScheduledAt.Format(time.RFC3339), alarm.Period)
	return nil
}

// schedule replaces the in-memory timer, must be called with mu held
func (s *Scheduler) schedule(alarm domain.Alarm) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.pending = &alarm
	delay := max(alarm.ScheduledAt.Sub(s.now()), 0)
	s.timer = time.AfterFunc(delay, func() { s.fire(gen) })
}

// fire handles an expired timer: periodic alarms are re-armed for the next period,
// one-shot alarms are removed, then the callback is invoked outside of the lock
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.stopped || gen != s.gen || s.pending == nil {
		s.mu.Unlock()
		return
	}
	alarm := *s.pending
	ctx, onFire := s.ctx, s.onFire
	s.wg.Add(1)
	defer s.wg.Done()

	if alarm.Periodic() {
		next := alarm
		next.ScheduledAt = alarm.ScheduledAt.Add(alarm.Period)
		if now := s.now(); next.ScheduledAt.Before(now) {
			next.ScheduledAt = now.Add(alarm.Period)
		}
		if err := s.arm(ctx, next); err != nil {
			lgr.Printf("[WARN] can't re-arm periodic alarm: %v", err)
		}
	} else {
		s.pending, s.timer = nil, nil
		if err := s.store.Remove(ctx, domain.KeyAlarmRefresh); err != nil {
			lgr.Printf("[WARN] can't clear fired alarm: %v", err)
		}
	}
	s.mu.Unlock()

	lgr.Printf("[DEBUG] alarm %s fired", alarm.Name)
	if onFire != nil {
		onFire(ctx, alarm)
	}
}

// interval reads update_interval from the store, default applies if missing or invalid
func (s *Scheduler) interval(ctx context.Context) (time.Duration, error) {
	items, err := s.store.Get(ctx, domain.KeyUpdateInterval)
	if err != nil {
		return 0, fmt.Errorf("get update interval: %w", err)
	}
	prefs := domain.DefaultPreferences()
	items.Decode(domain.KeyUpdateInterval, &prefs.UpdateInterval)
	return prefs.Interval(), nil
}
