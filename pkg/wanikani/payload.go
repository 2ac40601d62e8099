package wanikani

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/umputun/wkbadge/pkg/domain"
)

// response is the common envelope of API resources
type response struct {
	Object        string          `json:"object"`
	URL           string          `json:"url"`
	DataUpdatedAt *time.Time      `json:"data_updated_at"`
	Data          json.RawMessage `json:"data"`
}

// batch is a group of subjects becoming available at the same time
type batch struct {
	AvailableAt time.Time `json:"available_at"`
	SubjectIDs  []int64   `json:"subject_ids"`
}

type summaryData struct {
	Lessons       []batch    `json:"lessons"`
	Reviews       []batch    `json:"reviews"`
	NextReviewsAt *time.Time `json:"next_reviews_at"`
}

type userData struct {
	Username                 *string    `json:"username"`
	CurrentVacationStartedAt *time.Time `json:"current_vacation_started_at"`
}

// firstBatchSize counts subjects of the first batch only, further batches are ignored
func firstBatchSize(batches []batch) int {
	if len(batches) == 0 {
		return 0
	}
	return len(batches[0].SubjectIDs)
}

// project decodes resource-specific data and returns store items for it
func project(r domain.Resource, data json.RawMessage) (domain.Items, error) {
	res := domain.Items{}
	switch r {
	case domain.ResourceSummary:
		var sd summaryData
		if err := json.Unmarshal(data, &sd); err != nil {
			return nil, fmt.Errorf("decode summary data: %w", err)
		}
		res.Put(domain.KeyReviewsAvailable, firstBatchSize(sd.Reviews))
		res.Put(domain.KeyLessonsAvailable, firstBatchSize(sd.Lessons))
		res.Put(domain.KeyNextReviewsAt, sd.NextReviewsAt)
	case domain.ResourceUser:
		var ud userData
		if err := json.Unmarshal(data, &ud); err != nil {
			return nil, fmt.Errorf("decode user data: %w", err)
		}
		res.Put(domain.KeyUsername, ud.Username)
		res.Put(domain.KeyVacationStarted, ud.CurrentVacationStartedAt)
	default:
		return nil, fmt.Errorf("unsupported resource %q", r)
	}
	return res, nil
}
