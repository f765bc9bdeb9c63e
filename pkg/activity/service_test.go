package activity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dan-solli/jarvis-core/pkg/model"
	"github.com/dan-solli/jarvis-core/pkg/store"
)

var day = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

// scriptedClock hands out the given times in order, then repeats the last.
func scriptedClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func TestLog_StampsAndPersists(t *testing.T) {
	ctx := context.Background()
	st := store.NewActionStore()
	svc := New(st, WithClock(scriptedClock(at(10, 0))), WithLocation(time.UTC))
	user := uuid.New()

	a, err := svc.Log(ctx, Entry{
		UserID:      user,
		ActionType:  model.ActionLogin,
		TargetType:  model.TargetUser,
		Description: "Signed in",
		DeviceID:    "laptop",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.Equal(t, at(10, 0), a.Timestamp)
	assert.NotNil(t, a.Metadata, "nil metadata becomes an empty map")

	stored, ok, _ := st.Fetch(ctx, a.ID)
	require.True(t, ok)
	assert.Equal(t, "laptop", stored.DeviceID)
}

func TestLog_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	st := store.NewActionStore()
	svc := New(st)

	_, err := svc.Log(ctx, Entry{UserID: uuid.New(), ActionType: model.ActionView, TargetType: model.TargetItem})
	assert.ErrorIs(t, err, model.ErrInvalidData, "empty description")

	_, err = svc.Log(ctx, Entry{UserID: uuid.New(), ActionType: "poke", TargetType: model.TargetItem, Description: "x"})
	assert.ErrorIs(t, err, model.ErrInvalidData)

	_, err = svc.Log(ctx, Entry{UserID: uuid.New(), ActionType: model.ActionView, TargetType: model.TargetItem, Description: "x"})
	require.NoError(t, err)

	n, _ := st.Count(ctx)
	assert.Equal(t, 1, n)
}

func TestLog_ZeroClockIsRejected(t *testing.T) {
	svc := New(store.NewActionStore(), WithClock(func() time.Time { return time.Time{} }))

	_, err := svc.LogView(context.Background(), uuid.New(), model.TargetSystem, nil, "Opened app")
	assert.ErrorIs(t, err, model.ErrInvalidData)
}

func TestWrappers(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewActionStore(), WithClock(scriptedClock(at(8, 0), at(8, 1), at(8, 2), at(8, 3), at(8, 4), at(8, 5))))
	user := uuid.New()
	item := uuid.New()

	created, err := svc.LogCreate(ctx, user, model.TargetItem, item, "Created: Pay rent", map[string]string{"source": "voice"})
	require.NoError(t, err)
	assert.Equal(t, model.ActionCreate, created.ActionType)
	assert.Equal(t, item, *created.TargetID)
	assert.Equal(t, "voice", created.Metadata["source"])

	updated, err := svc.LogUpdate(ctx, user, model.TargetItem, item, "Renamed", nil)
	require.NoError(t, err)
	assert.Equal(t, model.ActionUpdate, updated.ActionType)

	completed, err := svc.LogItemComplete(ctx, user, item, "Pay rent")
	require.NoError(t, err)
	assert.Equal(t, model.ActionComplete, completed.ActionType)
	assert.Equal(t, model.TargetItem, completed.TargetType)
	assert.Equal(t, "Completed: Pay rent", completed.Description)
	assert.Equal(t, "Pay rent", completed.Metadata["title"])

	viewed, err := svc.LogView(ctx, user, model.TargetCalendar, nil, "Opened calendar")
	require.NoError(t, err)
	assert.Nil(t, viewed.TargetID)

	searched, err := svc.LogSearch(ctx, user, "rent", 3)
	require.NoError(t, err)
	assert.Equal(t, model.ActionSearch, searched.ActionType)
	assert.Equal(t, model.TargetSystem, searched.TargetType)
	assert.Equal(t, "Search: rent", searched.Description)
	assert.Equal(t, map[string]string{"query": "rent", "resultCount": "3"}, searched.Metadata)

	deleted, err := svc.LogDelete(ctx, user, model.TargetItem, item, "Deleted: Pay rent")
	require.NoError(t, err)
	assert.Equal(t, model.ActionDelete, deleted.ActionType)

	forTarget, err := svc.GetActionsForTarget(ctx, item, model.TargetItem, user)
	require.NoError(t, err)
	require.Len(t, forTarget, 4)
	assert.Equal(t, deleted.ID, forTarget[0].ID, "newest first")

	recent, err := svc.GetRecentActions(ctx, user, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, deleted.ID, recent[0].ID)
	assert.Equal(t, searched.ID, recent[1].ID)

	all, err := svc.GetRecentActions(ctx, user, 0)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	searches, err := svc.GetActionsOfType(ctx, model.ActionSearch, user, 0)
	require.NoError(t, err)
	require.Len(t, searches, 1)
	assert.Equal(t, searched.ID, searches[0].ID)

	inRange, err := svc.GetActionsInRange(ctx, user, at(8, 1), at(8, 3))
	require.NoError(t, err)
	assert.Len(t, inRange, 3, "range bounds are inclusive")
}

func TestGetRecentActions_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewActionStore())
	user := uuid.New()

	for i := 0; i < DefaultRecentLimit+5; i++ {
		_, err := svc.LogView(ctx, user, model.TargetSystem, nil, "tick")
		require.NoError(t, err)
	}

	recent, err := svc.GetRecentActions(ctx, user, -1)
	require.NoError(t, err)
	assert.Len(t, recent, DefaultRecentLimit)
}

func TestGetActionCounts(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewActionStore())
	user := uuid.New()
	target := uuid.New()

	_, _ = svc.LogCreate(ctx, user, model.TargetItem, target, "a", nil)
	_, _ = svc.LogCreate(ctx, user, model.TargetItem, target, "b", nil)
	_, _ = svc.LogSearch(ctx, user, "q", 0)
	_, _ = svc.LogSearch(ctx, uuid.New(), "other user", 0)

	counts, err := svc.GetActionCounts(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, map[model.ActionType]int{
		model.ActionCreate: 2,
		model.ActionSearch: 1,
	}, counts)
}

// Scenario: two creates at nine and a view at two in the afternoon.
func TestGetActivitySummary_BusiestHour(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewActionStore(),
		WithClock(scriptedClock(at(9, 5), at(9, 40), at(14, 0))),
		WithLocation(time.UTC),
	)
	user := uuid.New()

	_, err := svc.LogCreate(ctx, user, model.TargetItem, uuid.New(), "first", nil)
	require.NoError(t, err)
	_, err = svc.LogCreate(ctx, user, model.TargetItem, uuid.New(), "second", nil)
	require.NoError(t, err)
	_, err = svc.LogView(ctx, user, model.TargetItem, nil, "looked")
	require.NoError(t, err)

	summary, err := svc.GetActivitySummary(ctx, user, day, day.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalActions)
	assert.Equal(t, 2, summary.Creates)
	assert.Equal(t, 1, summary.Views)
	assert.Zero(t, summary.Updates)
	assert.Zero(t, summary.Completes)
	assert.Zero(t, summary.Searches)
	require.NotNil(t, summary.MostActiveHour)
	assert.Equal(t, 9, *summary.MostActiveHour)
	assert.Equal(t, day, summary.StartDate)
}

func TestGetActivitySummary_TieGoesToEarliestHour(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewActionStore(),
		WithClock(scriptedClock(at(16, 0), at(7, 0))),
		WithLocation(time.UTC),
	)
	user := uuid.New()

	_, _ = svc.LogView(ctx, user, model.TargetSystem, nil, "late")
	_, _ = svc.LogView(ctx, user, model.TargetSystem, nil, "early")

	summary, err := svc.GetActivitySummary(ctx, user, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, summary.MostActiveHour)
	assert.Equal(t, 7, *summary.MostActiveHour)
}

func TestGetActivitySummary_UsesLocation(t *testing.T) {
	ctx := context.Background()
	plusTwo := time.FixedZone("UTC+2", 2*60*60)
	svc := New(store.NewActionStore(),
		WithClock(scriptedClock(at(9, 0))),
		WithLocation(plusTwo),
	)
	user := uuid.New()

	_, _ = svc.LogView(ctx, user, model.TargetSystem, nil, "x")

	summary, err := svc.GetActivitySummary(ctx, user, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, summary.MostActiveHour)
	assert.Equal(t, 11, *summary.MostActiveHour)
}

func TestGetActivitySummary_Empty(t *testing.T) {
	svc := New(store.NewActionStore())

	summary, err := svc.GetActivitySummary(context.Background(), uuid.New(), day, day.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, summary.TotalActions)
	assert.Nil(t, summary.MostActiveHour)
}

func TestBusiestHour(t *testing.T) {
	var hours [24]int
	assert.Nil(t, busiestHour(hours))

	hours[3], hours[20] = 2, 2
	require.NotNil(t, busiestHour(hours))
	assert.Equal(t, 3, *busiestHour(hours))

	hours[23] = 5
	assert.Equal(t, 23, *busiestHour(hours))
}
