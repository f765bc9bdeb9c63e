package jarvis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dan-solli/jarvis-core/pkg/metrics"
	"github.com/dan-solli/jarvis-core/pkg/model"
)

func newTestJarvis(t *testing.T, cfg Config, opts ...Option) *Jarvis {
	t.Helper()
	clock := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	opts = append([]Option{WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})}, opts...)

	j, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestNew_Defaults(t *testing.T) {
	j := newTestJarvis(t, Config{})

	assert.NotNil(t, j.Items())
	assert.NotNil(t, j.Memories())
	assert.NotNil(t, j.Activity())
	assert.IsType(t, &metrics.NoopCollector{}, j.Metrics())
	assert.Equal(t, DefaultConfig(), j.Config())
}

func TestNew_MetricsEnabled(t *testing.T) {
	j := newTestJarvis(t, Config{MetricsEnabled: true})
	assert.IsType(t, &metrics.MetricsCollector{}, j.Metrics())
}

func TestNew_InvalidTimezone(t *testing.T) {
	_, err := New(Config{Timezone: "Nowhere/Special"})
	assert.ErrorIs(t, err, ErrInvalidData)
	assert.Equal(t, ErrTypeValidation, ClassifyError(err))
}

func TestNew_CacheDisabled(t *testing.T) {
	j := newTestJarvis(t, Config{EmbeddingCacheSize: -1})
	assert.Nil(t, j.cache)

	mem, err := j.RememberFact(context.Background(), NewMemory{UserID: uuid.New(), Content: "cache-free memory"})
	require.NoError(t, err)
	assert.Len(t, mem.Embedding, 256)
}

func TestNew_InstancesAreIsolated(t *testing.T) {
	ctx := context.Background()
	a := newTestJarvis(t, Config{})
	b := newTestJarvis(t, Config{})
	user := uuid.New()

	_, err := a.RememberFact(ctx, NewMemory{UserID: user, Content: "only in a"})
	require.NoError(t, err)

	inB, err := b.Memories().GetMemories(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, inB)
}

func TestCompleteItem_LogsCompletion(t *testing.T) {
	ctx := context.Background()
	j := newTestJarvis(t, Config{Timezone: "UTC"})
	user := uuid.New()

	it, err := j.Items().Create(ctx, NewItem{UserID: user, Title: "Renew passport"})
	require.NoError(t, err)

	done, err := j.CompleteItem(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusCompleted, done.Status)

	actions, err := j.Activity().GetActionsForTarget(ctx, it.ID, model.TargetItem, user)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, model.ActionComplete, actions[0].ActionType)
	assert.Equal(t, "Completed: Renew passport", actions[0].Description)

	_, err = j.CompleteItem(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, ErrTypeNotFound, ClassifyError(err))
}

func TestRememberFactAndRecall(t *testing.T) {
	ctx := context.Background()
	j := newTestJarvis(t, Config{DefaultMinSimilarity: model.Ptr(0.0)})
	user := uuid.New()

	mem, err := j.RememberFact(ctx, NewMemory{
		UserID:     user,
		Content:    "I prefer tea over coffee in the morning",
		MemoryType: model.MemoryTypePreference,
	})
	require.NoError(t, err)

	created, err := j.Activity().GetActionsOfType(ctx, model.ActionCreate, user, 0)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, model.TargetMemory, created[0].TargetType)
	assert.Equal(t, mem.ID, *created[0].TargetID)
	assert.Equal(t, "preference", created[0].Metadata["type"])

	results, err := j.Recall(ctx, user, "What does U prefer to drink?")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, mem.ID, results[0].Memory.ID)
	assert.Greater(t, results[0].Score, 0.0)

	searches, err := j.Activity().GetActionsOfType(ctx, model.ActionSearch, user, 0)
	require.NoError(t, err)
	require.Len(t, searches, 1)
	assert.Equal(t, fmt.Sprint(len(results)), searches[0].Metadata["resultCount"])
}

func TestRememberFact_Invalid(t *testing.T) {
	ctx := context.Background()
	j := newTestJarvis(t, Config{})
	user := uuid.New()

	_, err := j.RememberFact(ctx, NewMemory{UserID: user, Content: ""})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidData))

	actions, _ := j.Activity().GetRecentActions(ctx, user, 0)
	assert.Empty(t, actions, "nothing is logged for a rejected memory")
}

func TestActivitySummaryThroughJarvis(t *testing.T) {
	ctx := context.Background()
	j := newTestJarvis(t, Config{Timezone: "UTC"})
	user := uuid.New()

	for _, title := range []string{"a", "b"} {
		it, err := j.Items().Create(ctx, NewItem{UserID: user, Title: title})
		require.NoError(t, err)
		_, err = j.CompleteItem(ctx, it.ID)
		require.NoError(t, err)
	}

	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	summary, err := j.Activity().GetActivitySummary(ctx, user, start, start.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Completes)
	require.NotNil(t, summary.MostActiveHour)
	assert.Equal(t, 9, *summary.MostActiveHour)
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, "", ClassifyError(nil))
	assert.Equal(t, ErrTypeNotFound, ClassifyError(fmt.Errorf("x: %w", ErrNotFound)))
	assert.Equal(t, ErrTypeValidation, ClassifyError(fmt.Errorf("x: %w", ErrInvalidData)))
	assert.Equal(t, ErrTypeCanceled, ClassifyError(context.Canceled))
	assert.Equal(t, ErrTypeStorage, ClassifyError(errors.New("disk full")))
}
