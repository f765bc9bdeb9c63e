package item

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

func steppingClock() func() time.Time {
	t := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newTestService() (*Service, *store.ItemStore) {
	st := store.NewItemStore()
	return New(st, WithClock(steppingClock())), st
}

func TestCreate_Defaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	user := uuid.New()

	it, err := svc.Create(ctx, NewItem{UserID: user, Title: "Water the plants"})
	require.NoError(t, err)

	assert.Equal(t, model.ItemTypeTask, it.ItemType)
	assert.Equal(t, model.ItemStatusInbox, it.Status)
	assert.Equal(t, model.PriorityMedium, it.Priority)
	assert.Equal(t, model.SourceManual, it.SourceType)
	assert.Equal(t, it.CreatedAt, it.UpdatedAt)

	low := model.PriorityLow
	explicit, err := svc.Create(ctx, NewItem{UserID: user, Title: "Someday", Priority: &low, Status: model.ItemStatusSomeday})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityLow, explicit.Priority)
	assert.Equal(t, model.ItemStatusSomeday, explicit.Status)
}

func TestCreate_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService()

	_, err := svc.Create(ctx, NewItem{UserID: uuid.New(), Title: ""})
	assert.ErrorIs(t, err, model.ErrInvalidData)

	_, err = svc.Create(ctx, NewItem{Title: "orphan"})
	assert.ErrorIs(t, err, model.ErrInvalidData)

	_, err = svc.Create(ctx, NewItem{UserID: uuid.New(), Title: "odd", ItemType: "chore"})
	assert.ErrorIs(t, err, model.ErrInvalidData)

	n, _ := st.Count(ctx)
	assert.Zero(t, n)
}

func TestCreate_CopiesCallerTags(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	tags := []string{"home"}

	it, err := svc.Create(ctx, NewItem{UserID: uuid.New(), Title: "Fix sink", Tags: tags})
	require.NoError(t, err)
	tags[0] = "changed"

	got, ok, err := svc.Get(ctx, it.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"home"}, got.Tags)
}

func TestUpdate_PreservesIdentity(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	user := uuid.New()
	it, _ := svc.Create(ctx, NewItem{UserID: user, Title: "Draft"})

	updated, err := svc.Update(ctx, it.ID, func(cur model.Item) model.Item {
		cur.Title = "Final"
		cur.UserID = uuid.New()
		cur.CreatedAt = time.Time{}
		cur.Status = model.ItemStatusToday
		return cur
	})
	require.NoError(t, err)

	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, model.ItemStatusToday, updated.Status)
	assert.Equal(t, user, updated.UserID)
	assert.Equal(t, it.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(it.UpdatedAt))

	_, err = svc.Update(ctx, it.ID, func(cur model.Item) model.Item {
		cur.Title = ""
		return cur
	})
	assert.ErrorIs(t, err, model.ErrInvalidData)

	got, _, _ := svc.Get(ctx, it.ID)
	assert.Equal(t, "Final", got.Title, "rejected update must not be saved")
}

func TestComplete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	it, _ := svc.Create(ctx, NewItem{UserID: uuid.New(), Title: "Ship it"})

	done, err := svc.Complete(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, done.UpdatedAt, *done.CompletedAt)

	_, err = svc.Complete(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDelete_IsSoft(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService()
	user := uuid.New()
	it, _ := svc.Create(ctx, NewItem{UserID: user, Title: "Temporary"})

	require.NoError(t, svc.Delete(ctx, it.ID))

	_, ok, err := svc.Get(ctx, it.ID)
	require.NoError(t, err)
	assert.False(t, ok, "deleted items are hidden")

	stored, ok, _ := st.Fetch(ctx, it.ID)
	require.True(t, ok, "tombstone stays in storage")
	assert.NotNil(t, stored.DeletedAt)

	listed, _ := svc.Query(ctx, model.ItemQuery{UserID: &user})
	assert.Empty(t, listed)

	assert.ErrorIs(t, svc.Delete(ctx, it.ID), store.ErrNotFound)
	_, err = svc.Complete(ctx, it.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), store.ErrNotFound)
}

func TestDueBeforeAndByTag(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	user := uuid.New()
	cutoff := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	soon, _ := svc.Create(ctx, NewItem{UserID: user, Title: "Soon", DueDate: model.Ptr(cutoff.Add(-time.Hour)), Tags: []string{"work"}})
	_, _ = svc.Create(ctx, NewItem{UserID: user, Title: "Later", DueDate: model.Ptr(cutoff.Add(time.Hour))})
	_, _ = svc.Create(ctx, NewItem{UserID: user, Title: "Undated", Tags: []string{"home"}})

	due, err := svc.DueBefore(ctx, user, cutoff)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, soon.ID, due[0].ID)

	work, err := svc.ByTag(ctx, user, "work")
	require.NoError(t, err)
	require.Len(t, work, 1)
	assert.Equal(t, soon.ID, work[0].ID)
}

func TestForUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	user := uuid.New()

	first, _ := svc.Create(ctx, NewItem{UserID: user, Title: "First"})
	second, _ := svc.Create(ctx, NewItem{UserID: user, Title: "Second"})
	gone, _ := svc.Create(ctx, NewItem{UserID: user, Title: "Gone"})
	_, _ = svc.Create(ctx, NewItem{UserID: uuid.New(), Title: "Not mine"})
	require.NoError(t, svc.Delete(ctx, gone.ID))

	items, err := svc.ForUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID, "newest first")
	assert.Equal(t, first.ID, items[1].ID)

	none, err := svc.ForUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}
