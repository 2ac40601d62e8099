package domain

import "time"

// Resource is a remote data category polled from the API
type Resource string

// enumerated resources, nothing else is ever requested
const (
	ResourceUser    Resource = "user"
	ResourceSummary Resource = "summary"
)

// Resources lists all allowed resources
var Resources = []Resource{ResourceUser, ResourceSummary}

// Valid reports whether the resource is one of the enumerated kinds
func (r Resource) Valid() bool {
	return r == ResourceUser || r == ResourceSummary
}

// ResourceCache is the per-resource bookkeeping recorded by the fetcher.
// RequestedAt changes whenever a request is issued, UpdatedAt only when the
// server confirms new data.
type ResourceCache struct {
	RequestedAt time.Time `json:"data_requested_at,omitempty"`
	ReceivedAt  time.Time `json:"data_received_at,omitempty"`
	UpdatedAt   time.Time `json:"data_updated_at,omitempty"`
	LastStatus  int       `json:"last_response_status,omitempty"`
	ETag        string    `json:"etag,omitempty"`
}

// Bookkeeping holds the cache fields of all resources, keyed by resource.
// Each field is persisted under its own store key.
type Bookkeeping struct {
	RequestedAt map[Resource]time.Time
	ReceivedAt  map[Resource]time.Time
	UpdatedAt   map[Resource]time.Time
	LastStatus  map[Resource]int
	ETag        map[Resource]string
}

// NewBookkeeping makes empty bookkeeping with all maps allocated
func NewBookkeeping() Bookkeeping {
	return Bookkeeping{
		RequestedAt: map[Resource]time.Time{},
		ReceivedAt:  map[Resource]time.Time{},
		UpdatedAt:   map[Resource]time.Time{},
		LastStatus:  map[Resource]int{},
		ETag:        map[Resource]string{},
	}
}

// Cache extracts cache fields for a single resource
func (b Bookkeeping) Cache(r Resource) ResourceCache {
	return ResourceCache{
		RequestedAt: b.RequestedAt[r],
		ReceivedAt:  b.ReceivedAt[r],
		UpdatedAt:   b.UpdatedAt[r],
		LastStatus:  b.LastStatus[r],
		ETag:        b.ETag[r],
	}
}

// AnyStatus reports whether any resource last responded with the given status
func (b Bookkeeping) AnyStatus(status int) bool {
	for _, s := range b.LastStatus {
		if s == status {
			return true
		}
	}
	return false
}

// Summary is the projection of the summary resource
type Summary struct {
	ReviewsAvailable int        `json:"reviews_available"`
	LessonsAvailable int        `json:"lessons_available"`
	NextReviewsAt    *time.Time `json:"next_reviews_at"`
}

// User is the projection of the user resource
type User struct {
	Username                 *string    `json:"username"`
	CurrentVacationStartedAt *time.Time `json:"current_vacation_started_at"`
}
