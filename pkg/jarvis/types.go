package jarvis

import (
	"github.com/dan-solli/jarvis-core/pkg/activity"
	"github.com/dan-solli/jarvis-core/pkg/item"
	"github.com/dan-solli/jarvis-core/pkg/memory"
	"github.com/dan-solli/jarvis-core/pkg/model"
)

// Type re-exports for caller convenience

// Item is re-exported from model package
type Item = model.Item

// Memory is re-exported from model package
type Memory = model.Memory

// Action is re-exported from model package
type Action = model.Action

// NewItem is re-exported from item package
type NewItem = item.NewItem

// NewMemory is re-exported from memory package
type NewMemory = memory.NewMemory

// SearchResult is re-exported from memory package
type SearchResult = memory.SearchResult

// ActivitySummary is re-exported from activity package
type ActivitySummary = activity.Summary
