// Package badge renders the badge text and the tooltip title from the store snapshot
// and arms the refresh alarm accordingly.
package badge

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/text/message"

	"github.com/umputun/wkbadge/pkg/domain"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store
//go:generate moq -out mocks/scheduler.go -pkg mocks -skip-ensure -fmt goimports . Scheduler

// nextReviewMargin is how far in the future a review must be to get its own alarm
const nextReviewMargin = 30 * time.Second

// Store provides the whole-store snapshot
type Store interface {
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

// Scheduler arms the refresh alarm
type Scheduler interface {
	ArmAt(ctx context.Context, when time.Time) error
	Arm(ctx context.Context) error
}

// State is the rendered badge
type State struct {
	Text       string    `json:"text"`
	Title      string    `json:"title"`
	RenderedAt time.Time `json:"rendered_at"`
}

// Wake is the alarm a render asks for. Zero value means none.
type Wake struct {
	At       time.Time // one-shot instant
	Periodic bool      // interval-based wake
}

// IsZero reports whether no wake is requested
func (w Wake) IsZero() bool {
	return w.At.IsZero() && !w.Periodic
}

// Config for Presenter
type Config struct {
	Lang     string         // language for the title, english by default
	Location *time.Location // time zone for the next review instant, local by default
	Now      func() time.Time
}

// Presenter renders the badge state and keeps the last one
type Presenter struct {
	store   Store
	sched   Scheduler
	printer *message.Printer
	layout  string
	loc     *time.Location
	now     func() time.Time

	mu   sync.Mutex
	last State
}

// NewPresenter makes a presenter for the language and time zone from cfg
func NewPresenter(store Store, sched Scheduler, cfg Config) *Presenter {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	tag := matchLanguage(cfg.Lang)
	return &Presenter{
		store:   store,
		sched:   sched,
		printer: message.NewPrinter(tag),
		layout:  dateLayouts[tag],
		loc:     cfg.Location,
		now:     cfg.Now,
	}
}

// Render reads the store, updates the last state and arms the alarm the title asks for.
// Rendering the same store state twice gives the same result and the same alarm.
func (p *Presenter) Render(ctx context.Context) (State, error) {
	snap, err := p.store.Snapshot(ctx)
	if err != nil {
		return State{}, fmt.Errorf("get snapshot: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	st := State{RenderedAt: now}
	var wake Wake
	if !snap.Authenticated() || !snap.HasSummary {
		st.Text = "!"
		st.Title = p.printer.Sprintf(msgEnterAPIKey)
	} else {
		st.Text = BadgeText(snap.APIKey, snap.Summary.ReviewsAvailable)
		st.Title, wake = p.title(snap.Summary, now)
	}

	switch {
	case !wake.At.IsZero():
		if err := p.sched.ArmAt(ctx, wake.At); err != nil {
			lgr.Printf("[WARN] can't arm alarm at %v: %v", wake.At, err)
		}
	case wake.Periodic:
		if err := p.sched.Arm(ctx); err != nil {
			lgr.Printf("[WARN] can't arm periodic alarm: %v", err)
		}
	}

	p.last = st
	lgr.Printf("[DEBUG] badge %q, title %q", st.Text, st.Title)
	return st, nil
}

// LastState returns the most recent render, zero if nothing rendered yet
func (p *Presenter) LastState() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *Presenter) title(s domain.Summary, now time.Time) (string, Wake) {
	return Title(s, now, func(key string, args ...any) string {
		if len(args) == 1 {
			if t, ok := args[0].(time.Time); ok {
				args = []any{t.In(p.loc).Format(p.layout)}
			}
		}
		return p.printer.Sprintf(key, args...)
	})
}

// BadgeText is the badge for the api key and the number of available reviews
func BadgeText(apiKey string, reviews int) string {
	switch {
	case apiKey == "":
		return "!"
	case reviews < 1:
		return ""
	case reviews > 999:
		return strconv.Itoa(reviews/1000) + "K+"
	default:
		return strconv.Itoa(reviews)
	}
}

// Title composes tooltip lines for the summary and returns the wake they call for.
// A review more than 30s ahead gets a one-shot wake at that instant, reviews available
// now get a periodic one. Lines are produced by sprintf from message keys.
func Title(s domain.Summary, now time.Time, sprintf func(key string, args ...any) string) (string, Wake) {
	var lines []string
	var wake Wake
	switch {
	case s.NextReviewsAt != nil && s.NextReviewsAt.After(now.Add(nextReviewMargin)):
		lines = append(lines, sprintf(msgNextReview, *s.NextReviewsAt))
		wake.At = *s.NextReviewsAt
	case s.NextReviewsAt != nil && s.ReviewsAvailable > 0:
		lines = append(lines, sprintf(msgReviewsNow, s.ReviewsAvailable))
		wake.Periodic = true
	}
	if s.LessonsAvailable > 0 {
		lines = append(lines, sprintf(msgLessonsNow, s.LessonsAvailable))
	}
	return strings.Join(lines, "\n"), wake
}

