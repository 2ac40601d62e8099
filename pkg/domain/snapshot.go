package domain

import "time"

// Snapshot is a typed view of the whole store taken at one moment
type Snapshot struct {
	Preferences
	Book       Bookkeeping
	Summary    Summary
	HasSummary bool // summary was fetched at least once
	User       User
}

// NewSnapshot decodes items into a snapshot, missing keys keep defaults
func NewSnapshot(items Items) Snapshot {
	s := Snapshot{Preferences: DefaultPreferences(), Book: NewBookkeeping()}
	items.Decode(KeyAPIKey, &s.APIKey)
	items.Decode(KeyUpdateInterval, &s.UpdateInterval)
	items.Decode(KeyNotifications, &s.Notifications)
	items.Decode(KeyNotifLife, &s.NotifLife)

	items.Decode(KeyRequestedAt, &s.Book.RequestedAt)
	items.Decode(KeyReceivedAt, &s.Book.ReceivedAt)
	items.Decode(KeyUpdatedAt, &s.Book.UpdatedAt)
	items.Decode(KeyLastStatus, &s.Book.LastStatus)
	items.Decode(KeyETag, &s.Book.ETag)

	s.HasSummary = items.Has(KeyReviewsAvailable)
	items.Decode(KeyReviewsAvailable, &s.Summary.ReviewsAvailable)
	items.Decode(KeyLessonsAvailable, &s.Summary.LessonsAvailable)
	items.Decode(KeyNextReviewsAt, &s.Summary.NextReviewsAt)

	items.Decode(KeyUsername, &s.User.Username)
	items.Decode(KeyVacationStarted, &s.User.CurrentVacationStartedAt)
	return s
}

// Authenticated reports whether an api key is configured
func (s Snapshot) Authenticated() bool {
	return s.APIKey != ""
}

// Alarm is the persisted state of a named wake timer
type Alarm struct {
	Name        string        `json:"name"`
	ScheduledAt time.Time     `json:"scheduled_at"`
	Period      time.Duration `json:"period,omitempty"` // zero for one-shot
}

// Periodic reports whether the alarm repeats
func (a Alarm) Periodic() bool {
	return a.Period > 0
}
