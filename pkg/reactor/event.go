package reactor

import (
	"errors"
	"fmt"

	"github.com/umputun/wkbadge/pkg/domain"
	"github.com/umputun/wkbadge/pkg/store"
)

// MaxReviewCount is the largest review count accepted from the page observer
const MaxReviewCount = 100000

// errors returned by Post
var (
	ErrStopped     = errors.New("reactor stopped")
	ErrUnknownMenu = errors.New("unknown menu item")
)

// Kind enumerates event triggers
type Kind int

// event kinds
const (
	KindAlarm Kind = iota
	KindStoreChange
	KindActionClick
	KindMenu
	KindPageReviewCount
	KindPageRefresh
)

func (k Kind) String() string {
	switch k {
	case KindAlarm:
		return "alarm"
	case KindStoreChange:
		return "store-change"
	case KindActionClick:
		return "action-click"
	case KindMenu:
		return "menu"
	case KindPageReviewCount:
		return "page-review-count"
	case KindPageRefresh:
		return "page-refresh"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is a trigger with its payload. Only the field matching Kind is set.
type Event struct {
	Kind    Kind
	Alarm   domain.Alarm  // KindAlarm
	Changes store.Changes // KindStoreChange
	MenuID  string        // KindMenu
	Reviews int           // KindPageReviewCount
}

// menu item ids
const (
	MenuRefresh     = "refreshInformation"
	MenuOpenOptions = "openOptions"
	MenuOpenHome    = "openHome"
	MenuStartReview = "startReview"
	MenuStartLesson = "startLesson"
)

// MenuIDs lists menu items in display order
var MenuIDs = []string{MenuOpenHome, MenuStartReview, MenuStartLesson, MenuRefresh, MenuOpenOptions}

// ClampReviewCount checks a review count reported by the page observer.
// Negative counts become zero, implausibly large ones are rejected.
func ClampReviewCount(n int) (int, error) {
	if n < 0 {
		return 0, nil
	}
	if n > MaxReviewCount {
		return 0, fmt.Errorf("review count %d exceeds %d", n, MaxReviewCount)
	}
	return n, nil
}
