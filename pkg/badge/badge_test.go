package badge

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/wkbadge/pkg/badge/mocks"
	"github.com/umputun/wkbadge/pkg/domain"
)

func TestBadgeText(t *testing.T) {
	tbl := []struct {
		apiKey  string
		reviews int
		want    string
	}{
		{"", 10, "!"},
		{"key", 0, ""},
		{"key", -1, ""},
		{"key", 1, "1"},
		{"key", 999, "999"},
		{"key", 1000, "1K+"},
		{"key", 1500, "1K+"},
		{"key", 12345, "12K+"},
	}
	for _, tt := range tbl {
		t.Run(fmt.Sprintf("%s-%d", tt.apiKey, tt.reviews), func(t *testing.T) {
			assert.Equal(t, tt.want, BadgeText(tt.apiKey, tt.reviews))
		})
	}
}

func TestTitle(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}
	sprintf := func(key string, args ...any) string {
		if len(args) == 1 {
			if tm, ok := args[0].(time.Time); ok {
				return fmt.Sprintf(key, tm.Format(time.RFC3339))
			}
		}
		return fmt.Sprintf(key, args...)
	}

	tbl := []struct {
		name    string
		summary domain.Summary
		title   string
		wake    Wake
	}{
		{name: "nothing", summary: domain.Summary{}, title: ""},
		{name: "next review ahead", summary: domain.Summary{NextReviewsAt: at(time.Minute)},
			title: "Next review at 2024-05-01T10:01:00Z", wake: Wake{At: now.Add(time.Minute)}},
		{name: "next review within margin", summary: domain.Summary{NextReviewsAt: at(20 * time.Second), ReviewsAvailable: 2},
			title: "2 reviews available now", wake: Wake{Periodic: true}},
		{name: "reviews now", summary: domain.Summary{NextReviewsAt: at(-time.Second), ReviewsAvailable: 3},
			title: "3 reviews available now", wake: Wake{Periodic: true}},
		{name: "past review without reviews", summary: domain.Summary{NextReviewsAt: at(-time.Second)}, title: ""},
		{name: "reviews without next time", summary: domain.Summary{ReviewsAvailable: 5}, title: ""},
		{name: "lessons only", summary: domain.Summary{LessonsAvailable: 7}, title: "7 lessons available now"},
		{name: "reviews and lessons", summary: domain.Summary{NextReviewsAt: at(-time.Hour), ReviewsAvailable: 3, LessonsAvailable: 2},
			title: "3 reviews available now\n2 lessons available now", wake: Wake{Periodic: true}},
		{name: "next review and lessons", summary: domain.Summary{NextReviewsAt: at(time.Hour), LessonsAvailable: 2},
			title: "Next review at 2024-05-01T11:00:00Z\n2 lessons available now", wake: Wake{At: now.Add(time.Hour)}},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			title, wake := Title(tt.summary, now, sprintf)
			assert.Equal(t, tt.title, title)
			assert.Equal(t, tt.wake, wake)
			assert.Equal(t, tt.wake == Wake{}, wake.IsZero())
		})
	}
}

func snapshotStore(snap domain.Snapshot) *mocks.StoreMock {
	return &mocks.StoreMock{SnapshotFunc: func(context.Context) (domain.Snapshot, error) { return snap, nil }}
}

func scheduler() *mocks.SchedulerMock {
	return &mocks.SchedulerMock{
		ArmAtFunc: func(context.Context, time.Time) error { return nil },
		ArmFunc:   func(context.Context) error { return nil },
	}
}

func authSnapshot(s domain.Summary) domain.Snapshot {
	snap := domain.NewSnapshot(domain.Items{})
	snap.APIKey = "key"
	snap.HasSummary = true
	snap.Summary = s
	return snap
}

func TestPresenter_Render(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	nowFn := func() time.Time { return now }

	t.Run("no api key", func(t *testing.T) {
		sched := scheduler()
		p := NewPresenter(snapshotStore(domain.NewSnapshot(domain.Items{})), sched, Config{Now: nowFn})
		st, err := p.Render(ctx)
		require.NoError(t, err)
		assert.Equal(t, "!", st.Text)
		assert.Equal(t, "Enter your WaniKani API key in the options", st.Title)
		assert.Equal(t, now, st.RenderedAt)
		assert.Empty(t, sched.ArmAtCalls())
		assert.Empty(t, sched.ArmCalls())
		assert.Equal(t, st, p.LastState())
	})

	t.Run("summary never fetched", func(t *testing.T) {
		snap := domain.NewSnapshot(domain.Items{})
		snap.APIKey = "key"
		p := NewPresenter(snapshotStore(snap), scheduler(), Config{Now: nowFn})
		st, err := p.Render(ctx)
		require.NoError(t, err)
		assert.Equal(t, "!", st.Text)
	})

	t.Run("next review in a minute arms one-shot", func(t *testing.T) {
		next := now.Add(60 * time.Second)
		sched := scheduler()
		p := NewPresenter(snapshotStore(authSnapshot(domain.Summary{NextReviewsAt: &next})), sched,
			Config{Now: nowFn, Location: time.UTC})
		st, err := p.Render(ctx)
		require.NoError(t, err)
		assert.Equal(t, "", st.Text)
		assert.Equal(t, "Next review at May 1, 2024, 10:01 AM", st.Title)
		require.Len(t, sched.ArmAtCalls(), 1)
		assert.Equal(t, next, sched.ArmAtCalls()[0].When)
		assert.Empty(t, sched.ArmCalls())
	})

	t.Run("reviews available arms periodic", func(t *testing.T) {
		past := now.Add(-time.Second)
		sched := scheduler()
		p := NewPresenter(snapshotStore(authSnapshot(domain.Summary{NextReviewsAt: &past, ReviewsAvailable: 3})), sched,
			Config{Now: nowFn})
		st, err := p.Render(ctx)
		require.NoError(t, err)
		assert.Equal(t, "3", st.Text)
		assert.Equal(t, "3 reviews available now", st.Title)
		assert.Len(t, sched.ArmCalls(), 1)
		assert.Empty(t, sched.ArmAtCalls())
	})

	t.Run("single lesson uses singular", func(t *testing.T) {
		p := NewPresenter(snapshotStore(authSnapshot(domain.Summary{LessonsAvailable: 1})), scheduler(), Config{Now: nowFn})
		st, err := p.Render(ctx)
		require.NoError(t, err)
		assert.Equal(t, "1 lesson available now", st.Title)
	})

	t.Run("idempotent", func(t *testing.T) {
		next := now.Add(time.Hour)
		sched := scheduler()
		p := NewPresenter(snapshotStore(authSnapshot(domain.Summary{NextReviewsAt: &next, ReviewsAvailable: 1500})), sched,
			Config{Now: nowFn})
		first, err := p.Render(ctx)
		require.NoError(t, err)
		second, err := p.Render(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, "1K+", first.Text)
		require.Len(t, sched.ArmAtCalls(), 2)
		assert.Equal(t, sched.ArmAtCalls()[0].When, sched.ArmAtCalls()[1].When)
	})

	t.Run("german", func(t *testing.T) {
		next := now.Add(2 * time.Hour)
		p := NewPresenter(snapshotStore(authSnapshot(domain.Summary{NextReviewsAt: &next, LessonsAvailable: 4})), scheduler(),
			Config{Now: nowFn, Lang: "de-DE", Location: time.UTC})
		st, err := p.Render(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Nächste Wiederholung um 01.05.2024, 12:00\n4 Lektionen jetzt verfügbar", st.Title)
	})

	t.Run("unknown language falls back to english", func(t *testing.T) {
		p := NewPresenter(snapshotStore(domain.NewSnapshot(domain.Items{})), scheduler(), Config{Lang: "xx-invalid-"})
		st, err := p.Render(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Enter your WaniKani API key in the options", st.Title)
	})

	t.Run("alarm failure doesn't fail render", func(t *testing.T) {
		past := now.Add(-time.Minute)
		sched := &mocks.SchedulerMock{ArmFunc: func(context.Context) error { return errors.New("stopped") }}
		p := NewPresenter(snapshotStore(authSnapshot(domain.Summary{NextReviewsAt: &past, ReviewsAvailable: 2})), sched,
			Config{Now: nowFn})
		st, err := p.Render(ctx)
		require.NoError(t, err)
		assert.Equal(t, "2", st.Text)
	})

	t.Run("store failure", func(t *testing.T) {
		st := &mocks.StoreMock{SnapshotFunc: func(context.Context) (domain.Snapshot, error) {
			return domain.Snapshot{}, errors.New("closed")
		}}
		p := NewPresenter(st, scheduler(), Config{})
		_, err := p.Render(ctx)
		require.Error(t, err)
		assert.Equal(t, State{}, p.LastState())
	})
}
