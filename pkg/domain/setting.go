package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// store keys
const (
	KeyAPIKey         = "api_key"
	KeyUpdateInterval = "update_interval"
	KeyNotifications  = "notifications"
	KeyNotifLife      = "notif_life"

	KeyRequestedAt = "data_requested_at"
	KeyReceivedAt  = "data_received_at"
	KeyUpdatedAt   = "data_updated_at"
	KeyLastStatus  = "last_response_status"
	KeyETag        = "etag"

	KeyReviewsAvailable = "reviews_available"
	KeyLessonsAvailable = "lessons_available"
	KeyNextReviewsAt    = "next_reviews_at"

	KeyUsername        = "username"
	KeyVacationStarted = "current_vacation_started_at"

	KeyAlarmRefresh = "alarm_refresh"
)

// SyncedKeys are mirrored to the sync tier in addition to the local one
var SyncedKeys = []string{KeyAPIKey, KeyNotifications, KeyUpdateInterval, KeyNotifLife}

// IsSynced reports whether the key belongs to the synced set
func IsSynced(key string) bool {
	for _, k := range SyncedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// default preference values
const (
	DefaultUpdateInterval = 15
	DefaultNotifLife      = 5
)

// Preferences are user-controlled settings, edited by the options surface
type Preferences struct {
	APIKey         string `json:"api_key"`
	UpdateInterval int    `json:"update_interval"` // minutes
	Notifications  bool   `json:"notifications"`
	NotifLife      int    `json:"notif_life"` // seconds
}

// DefaultPreferences returns preferences used on first install
func DefaultPreferences() Preferences {
	return Preferences{UpdateInterval: DefaultUpdateInterval, NotifLife: DefaultNotifLife}
}

// Validate checks preference ranges
func (p Preferences) Validate() error {
	if p.UpdateInterval < 1 {
		return fmt.Errorf("update_interval must be at least 1 minute, got %d", p.UpdateInterval)
	}
	if p.NotifLife < 1 {
		return fmt.Errorf("notif_life must be at least 1 second, got %d", p.NotifLife)
	}
	return nil
}

// Interval returns update interval as duration, falling back to default
func (p Preferences) Interval() time.Duration {
	if p.UpdateInterval < 1 {
		return DefaultUpdateInterval * time.Minute
	}
	return time.Duration(p.UpdateInterval) * time.Minute
}

// Items converts preferences to store items
func (p Preferences) Items() Items {
	res := Items{}
	res.Put(KeyAPIKey, p.APIKey)
	res.Put(KeyUpdateInterval, p.UpdateInterval)
	res.Put(KeyNotifications, p.Notifications)
	res.Put(KeyNotifLife, p.NotifLife)
	return res
}

// Items is a flat key-value map with json-encoded values, the store's unit of exchange
type Items map[string]json.RawMessage

// Put encodes value under key. Values are plain data, encoding can't fail for them.
func (it Items) Put(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte("null")
	}
	it[key] = data
}

// Decode decodes value stored under key into v, reports false if missing or undecodable
func (it Items) Decode(key string, v any) bool {
	raw, ok := it[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// Has reports whether key is present with a non-null value
func (it Items) Has(key string) bool {
	raw, ok := it[key]
	return ok && string(raw) != "null"
}

// Merge copies all items from other, overwriting existing keys
func (it Items) Merge(other Items) {
	for k, v := range other {
		it[k] = v
	}
}
