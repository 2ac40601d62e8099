// Package reactor is the event loop tying store changes, alarms, clicks and page
// observer signals to the fetcher, the presenter and the scheduler.
package reactor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/wkbadge/pkg/badge"
	"github.com/umputun/wkbadge/pkg/domain"
	"github.com/umputun/wkbadge/pkg/store"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store
//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/presenter.go -pkg mocks -skip-ensure -fmt goimports . Presenter
//go:generate moq -out mocks/scheduler.go -pkg mocks -skip-ensure -fmt goimports . Scheduler
//go:generate moq -out mocks/browser.go -pkg mocks -skip-ensure -fmt goimports . Browser
//go:generate moq -out mocks/notifier.go -pkg mocks -skip-ensure -fmt goimports . Notifier

// DefaultSiteURL is the site opened for home and sessions
const DefaultSiteURL = "https://www.wanikani.com"

// page titles used to detect already open sessions
const (
	reviewsTitle = "WaniKani / Reviews"
	lessonsTitle = "WaniKani / Lessons"
)

const eventsBuffer = 64

// Store is the persistent store as seen by the reactor
type Store interface {
	Snapshot(ctx context.Context) (domain.Snapshot, error)
	Set(ctx context.Context, items domain.Items) error
	SyncSet(ctx context.Context, items domain.Items) error
	HasSync() bool
	Subscribe(fn func(store.Changes)) (unsubscribe func())
}

// Fetcher refreshes remote resources
type Fetcher interface {
	Refresh(ctx context.Context, r domain.Resource, force bool) error
}

// Presenter renders the badge
type Presenter interface {
	Render(ctx context.Context) (badge.State, error)
}

// Scheduler owns the refresh alarm
type Scheduler interface {
	Start(ctx context.Context) error
	OnFire(fn func(ctx context.Context, alarm domain.Alarm))
	OnIntervalChange(ctx context.Context) error
}

// Browser opens site pages
type Browser interface {
	Open(ctx context.Context, url string) error
	CountTabs(ctx context.Context, title string) int
}

// Notifier shows desktop notifications
type Notifier interface {
	Notify(ctx context.Context, title, body string, life time.Duration) error
}

// Params for New
type Params struct {
	Store      Store
	Fetcher    Fetcher
	Presenter  Presenter
	Scheduler  Scheduler
	Browser    Browser
	Notifier   Notifier // optional, no notifications if nil
	SiteURL    string   // DefaultSiteURL if empty
	OptionsURL string   // options page, opened when the api key is missing or rejected
}

// Reactor dispatches events to handlers one at a time. Handlers run their I/O
// on background goroutines, so the loop is never held by it.
type Reactor struct {
	store      Store
	fetcher    Fetcher
	presenter  Presenter
	sched      Scheduler
	browser    Browser
	notifier   Notifier
	siteURL    string
	optionsURL string

	handlers map[Kind]func(ctx context.Context, ev Event)
	menus    map[string]func(ctx context.Context)
	events   chan Event
	done     chan struct{}
	bg       sync.WaitGroup
}

// New makes a reactor, Run starts it
func New(p Params) *Reactor {
	if p.SiteURL == "" {
		p.SiteURL = DefaultSiteURL
	}
	r := &Reactor{
		store:      p.Store,
		fetcher:    p.Fetcher,
		presenter:  p.Presenter,
		sched:      p.Scheduler,
		browser:    p.Browser,
		notifier:   p.Notifier,
		siteURL:    strings.TrimSuffix(p.SiteURL, "/"),
		optionsURL: p.OptionsURL,
		events:     make(chan Event, eventsBuffer),
		done:       make(chan struct{}),
	}

	r.handlers = map[Kind]func(ctx context.Context, ev Event){
		KindAlarm:           r.onAlarm,
		KindStoreChange:     r.onStoreChange,
		KindActionClick:     r.onActionClick,
		KindMenu:            r.onMenu,
		KindPageReviewCount: r.onPageReviewCount,
		KindPageRefresh:     func(ctx context.Context, _ Event) { r.refresh(ctx, domain.ResourceSummary, true) },
	}
	r.menus = map[string]func(ctx context.Context){
		MenuRefresh:     func(ctx context.Context) { r.refresh(ctx, domain.ResourceSummary, true) },
		MenuOpenOptions: r.openOptions,
		MenuOpenHome:    r.openHome,
		MenuStartReview: r.openReviews,
		MenuStartLesson: r.openLessons,
	}
	return r
}

// Post queues an event. Page review counts are validated and menu ids checked here,
// so the caller learns about bad input. Blocks only if the queue is full.
func (r *Reactor) Post(ev Event) error {
	if _, ok := r.handlers[ev.Kind]; !ok {
		return fmt.Errorf("unsupported event %s", ev.Kind)
	}
	switch ev.Kind {
	case KindPageReviewCount:
		n, err := ClampReviewCount(ev.Reviews)
		if err != nil {
			return err
		}
		ev.Reviews = n
	case KindMenu:
		if _, ok := r.menus[ev.MenuID]; !ok {
			return fmt.Errorf("%w %q", ErrUnknownMenu, ev.MenuID)
		}
	}

	select {
	case <-r.done:
		return ErrStopped
	default:
	}
	select {
	case r.events <- ev:
		return nil
	case <-r.done:
		return ErrStopped
	}
}

// Run subscribes to the store and the alarm, renders the badge, restores the alarm and
// requests a fresh summary, then handles events until ctx is canceled.
func (r *Reactor) Run(ctx context.Context) error {
	defer close(r.done)

	unsubscribe := r.store.Subscribe(func(changes store.Changes) {
		if err := r.Post(Event{Kind: KindStoreChange, Changes: changes}); err != nil {
			lgr.Printf("[DEBUG] store change dropped: %v", err)
		}
	})
	defer unsubscribe()

	r.sched.OnFire(func(_ context.Context, alarm domain.Alarm) {
		if err := r.Post(Event{Kind: KindAlarm, Alarm: alarm}); err != nil {
			lgr.Printf("[DEBUG] alarm %s dropped: %v", alarm.Name, err)
		}
	})

	r.render(ctx)
	if err := r.sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	r.refresh(ctx, domain.ResourceSummary, true)
	lgr.Printf("[INFO] reactor started")

	for {
		select {
		case <-ctx.Done():
			r.bg.Wait()
			lgr.Printf("[INFO] reactor stopped")
			return ctx.Err()
		case ev := <-r.events:
			lgr.Printf("[DEBUG] event %s", ev.Kind)
			r.handlers[ev.Kind](ctx, ev)
		}
	}
}

func (r *Reactor) onAlarm(ctx context.Context, ev Event) {
	lgr.Printf("[DEBUG] alarm %s fired, refreshing summary", ev.Alarm.Name)
	r.refresh(ctx, domain.ResourceSummary, false)
}

func (r *Reactor) onStoreChange(ctx context.Context, ev Event) {
	changes := ev.Changes

	if changes.Has(domain.KeyAPIKey) {
		r.refreshAll(ctx)
	}

	if changes.Has(domain.KeyAPIKey, domain.KeyReviewsAvailable, domain.KeyLessonsAvailable, domain.KeyNextReviewsAt) {
		st, ok := r.render(ctx)
		if ok && changes.Has(domain.KeyReviewsAvailable) {
			r.notify(ctx, changes[domain.KeyReviewsAvailable], st)
		}
	}

	if changes.Has(domain.KeyUpdateInterval) {
		if err := r.sched.OnIntervalChange(ctx); err != nil {
			lgr.Printf("[WARN] can't reschedule alarm: %v", err)
		}
	}

	if r.store.HasSync() {
		r.propagate(ctx, changes)
	}
}

// onActionClick opens the page matching the current state
func (r *Reactor) onActionClick(ctx context.Context, _ Event) {
	snap, err := r.store.Snapshot(ctx)
	if err != nil {
		lgr.Printf("[WARN] can't handle click: %v", err)
		return
	}
	switch {
	case !snap.Authenticated() || snap.Book.AnyStatus(http.StatusUnauthorized):
		r.openOptions(ctx)
	case snap.Summary.ReviewsAvailable == 0 && snap.Summary.LessonsAvailable == 0:
		r.openHome(ctx)
	case snap.Summary.ReviewsAvailable == 0:
		r.openLessons(ctx)
	default:
		r.openReviews(ctx)
	}
}

func (r *Reactor) onMenu(ctx context.Context, ev Event) {
	if fn, ok := r.menus[ev.MenuID]; ok {
		fn(ctx)
	}
}

// onPageReviewCount stores the count seen on the page, the fetcher is not involved
func (r *Reactor) onPageReviewCount(ctx context.Context, ev Event) {
	items := domain.Items{}
	items.Put(domain.KeyReviewsAvailable, ev.Reviews)
	if err := r.store.Set(ctx, items); err != nil {
		lgr.Printf("[WARN] can't store review count from page: %v", err)
	}
}

// refresh requests the resource in background
func (r *Reactor) refresh(ctx context.Context, res domain.Resource, force bool) {
	r.background(func() {
		if err := r.fetcher.Refresh(ctx, res, force); err != nil {
			lgr.Printf("[WARN] refresh %s failed: %v", res, err)
		}
	})
}

// background runs fn on a goroutine Run waits for before returning
func (r *Reactor) background(fn func()) {
	r.bg.Add(1)
	go func() {
		defer r.bg.Done()
		fn()
	}()
}

// refreshAll force-refreshes user and summary together in background
func (r *Reactor) refreshAll(ctx context.Context) {
	r.background(func() {
		g, gctx := errgroup.WithContext(ctx)
		for _, res := range []domain.Resource{domain.ResourceUser, domain.ResourceSummary} {
			g.Go(func() error { return r.fetcher.Refresh(gctx, res, true) })
		}
		if err := g.Wait(); err != nil {
			lgr.Printf("[WARN] refresh after api key change failed: %v", err)
		}
	})
}

func (r *Reactor) render(ctx context.Context) (badge.State, bool) {
	st, err := r.presenter.Render(ctx)
	if err != nil {
		lgr.Printf("[WARN] can't render badge: %v", err)
		return badge.State{}, false
	}
	return st, true
}

// notify shows a notification when available reviews went up, if notifications are on
func (r *Reactor) notify(ctx context.Context, change store.Change, st badge.State) {
	if r.notifier == nil {
		return
	}
	var prev, curr int
	if change.Old != nil {
		_ = json.Unmarshal(change.Old, &prev)
	}
	if change.New == nil || json.Unmarshal(change.New, &curr) != nil || curr <= prev || curr < 1 {
		return
	}
	snap, err := r.store.Snapshot(ctx)
	if err != nil || !snap.Notifications {
		return
	}
	life := time.Duration(snap.NotifLife) * time.Second
	r.background(func() {
		if err := r.notifier.Notify(ctx, "WaniKani", st.Title, life); err != nil {
			lgr.Printf("[WARN] can't show notification: %v", err)
		}
	})
}

// propagate copies changed synced keys to the sync tier, removed keys are not propagated
func (r *Reactor) propagate(ctx context.Context, changes store.Changes) {
	items := domain.Items{}
	for _, key := range domain.SyncedKeys {
		if change, ok := changes[key]; ok && change.New != nil {
			items[key] = change.New
		}
	}
	if len(items) == 0 {
		return
	}
	if err := r.store.SyncSet(ctx, items); err != nil {
		lgr.Printf("[WARN] can't propagate to sync tier: %v", err)
	}
}

func (r *Reactor) openOptions(ctx context.Context) {
	if r.optionsURL == "" {
		lgr.Printf("[WARN] options page is not configured")
		return
	}
	r.open(ctx, r.optionsURL)
}

func (r *Reactor) openHome(ctx context.Context) {
	r.open(ctx, r.siteURL)
}

func (r *Reactor) openReviews(ctx context.Context) {
	r.openOnce(ctx, reviewsTitle, r.siteURL+"/review/session")
}

func (r *Reactor) openLessons(ctx context.Context) {
	r.openOnce(ctx, lessonsTitle, r.siteURL+"/lesson/session")
}

// openOnce opens url unless a page with the title is already open. Runs in background.
func (r *Reactor) openOnce(ctx context.Context, title, url string) {
	r.background(func() {
		if n := r.browser.CountTabs(ctx, title); n > 0 {
			lgr.Printf("[DEBUG] %q already open in %d tabs", title, n)
			return
		}
		r.openURL(ctx, url)
	})
}

func (r *Reactor) open(ctx context.Context, url string) {
	r.background(func() { r.openURL(ctx, url) })
}

func (r *Reactor) openURL(ctx context.Context, url string) {
	if err := r.browser.Open(ctx, url); err != nil {
		lgr.Printf("[WARN] %v", err)
	}
}
