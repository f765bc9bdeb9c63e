package activity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dan-solli/jarvis-core/pkg/metrics"
	"github.com/dan-solli/jarvis-core/pkg/model"
)

// Summary aggregates a user's activity over a date range.
type Summary struct {
	TotalActions int
	Creates      int
	Updates      int
	Completes    int
	Views        int
	Searches     int
	// MostActiveHour is the hour of day (0-23) with the most actions, or
	// nil when the range holds no actions. Ties go to the earliest hour.
	MostActiveHour *int
	StartDate      time.Time
	EndDate        time.Time
}

// GetActionCounts returns how often the user performed each action type.
func (s *Service) GetActionCounts(ctx context.Context, userID uuid.UUID) (_ map[model.ActionType]int, err error) {
	start := time.Now()
	defer func() { metrics.Observe(ctx, s.metrics, "action_counts", start, err) }()

	actions, err := s.store.Query(ctx, model.ActionQuery{UserID: &userID})
	if err != nil {
		return nil, err
	}

	counts := make(map[model.ActionType]int)
	for _, a := range actions {
		counts[a.ActionType]++
	}
	return counts, nil
}

// GetActivitySummary counts the user's actions between start and end
// (inclusive) and finds the busiest hour of day in the service's location.
func (s *Service) GetActivitySummary(ctx context.Context, userID uuid.UUID, start, end time.Time) (_ Summary, err error) {
	began := time.Now()
	defer func() { metrics.Observe(ctx, s.metrics, "activity_summary", began, err) }()

	actions, err := s.GetActionsInRange(ctx, userID, start, end)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		TotalActions: len(actions),
		StartDate:    start,
		EndDate:      end,
	}

	var hours [24]int
	for _, a := range actions {
		switch a.ActionType {
		case model.ActionCreate:
			summary.Creates++
		case model.ActionUpdate:
			summary.Updates++
		case model.ActionComplete:
			summary.Completes++
		case model.ActionView:
			summary.Views++
		case model.ActionSearch:
			summary.Searches++
		}
		hours[a.Timestamp.In(s.location).Hour()]++
	}

	summary.MostActiveHour = busiestHour(hours)
	return summary, nil
}

// busiestHour scans the histogram from hour 0 upward and returns the first
// hour holding the maximum count, or nil if every count is zero.
func busiestHour(hours [24]int) *int {
	best, bestCount := -1, 0
	for hour, count := range hours {
		if count > bestCount {
			best, bestCount = hour, count
		}
	}
	if best < 0 {
		return nil
	}
	return &best
}
