package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ItemType classifies an inbox entry.
type ItemType string

const (
	ItemTypeTask      ItemType = "task"
	ItemTypeNote      ItemType = "note"
	ItemTypeEvent     ItemType = "event"
	ItemTypeReminder  ItemType = "reminder"
	ItemTypeReference ItemType = "reference"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeTask, ItemTypeNote, ItemTypeEvent, ItemTypeReminder, ItemTypeReference:
		return true
	}
	return false
}

// ItemStatus is the workflow position of an item.
type ItemStatus string

const (
	ItemStatusInbox     ItemStatus = "inbox"
	ItemStatusToday     ItemStatus = "today"
	ItemStatusScheduled ItemStatus = "scheduled"
	ItemStatusSomeday   ItemStatus = "someday"
	ItemStatusCompleted ItemStatus = "completed"
	ItemStatusArchived  ItemStatus = "archived"
)

// Valid reports whether s is a known item status.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusInbox, ItemStatusToday, ItemStatusScheduled,
		ItemStatusSomeday, ItemStatusCompleted, ItemStatusArchived:
		return true
	}
	return false
}

// Priority orders items; higher is more pressing.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

// Valid reports whether p is within the known range.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityUrgent
}

var priorityNames = [...]string{"low", "medium", "high", "urgent"}

func (p Priority) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Priority(%d)", int(p))
	}
	return priorityNames[p]
}

// ParsePriority maps a priority name, ignoring case, to its value.
func ParsePriority(name string) (Priority, error) {
	for i, n := range priorityNames {
		if strings.EqualFold(n, name) {
			return Priority(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown priority %q", ErrInvalidData, name)
}

// SourceType records where a captured item came from.
type SourceType string

const (
	SourceManual   SourceType = "manual"
	SourceEmail    SourceType = "email"
	SourceCalendar SourceType = "calendar"
	SourceSiri     SourceType = "siri"
	SourceShortcut SourceType = "shortcut"
	SourceAPI      SourceType = "api"
)

// Item is a task, note or other inbox entry owned by a single user.
type Item struct {
	ID          uuid.UUID  `json:"id" yaml:"id"`
	UserID      uuid.UUID  `json:"user_id" yaml:"user_id"`
	Title       string     `json:"title" yaml:"title"`
	Content     string     `json:"content,omitempty" yaml:"content,omitempty"`
	ItemType    ItemType   `json:"item_type" yaml:"item_type"`
	Status      ItemStatus `json:"status" yaml:"status"`
	Priority    Priority   `json:"priority" yaml:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	SourceID    string     `json:"source_id,omitempty" yaml:"source_id,omitempty"`
	SourceType  SourceType `json:"source_type,omitempty" yaml:"source_type,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" yaml:"deleted_at,omitempty"`
}

// RecordID implements Record.
func (i Item) RecordID() uuid.UUID { return i.ID }

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	c := i
	c.DueDate = cloneTime(i.DueDate)
	c.CompletedAt = cloneTime(i.CompletedAt)
	c.DeletedAt = cloneTime(i.DeletedAt)
	c.ParentID = cloneUUID(i.ParentID)
	c.Tags = cloneStrings(i.Tags)
	return c
}

// IsDeleted reports whether the item carries a tombstone.
func (i Item) IsDeleted() bool { return i.DeletedAt != nil }

// HasAnyTag reports whether the item carries at least one of tags.
func (i Item) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range i.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Matches reports whether the lowercased needle occurs in the title or content.
func (i Item) Matches(needle string) bool {
	return strings.Contains(strings.ToLower(i.Title), needle) ||
		strings.Contains(strings.ToLower(i.Content), needle)
}

// WithStatus returns a copy with status changed and UpdatedAt refreshed.
func (i Item) WithStatus(status ItemStatus, now time.Time) Item {
	c := i.Clone()
	c.Status = status
	c.UpdatedAt = now
	return c
}

// Completed returns a copy marked completed at now.
func (i Item) Completed(now time.Time) Item {
	c := i.WithStatus(ItemStatusCompleted, now)
	c.CompletedAt = &now
	return c
}

// SoftDeleted returns a copy carrying a deletion tombstone.
func (i Item) SoftDeleted(now time.Time) Item {
	c := i.Clone()
	c.DeletedAt = &now
	c.UpdatedAt = now
	return c
}

// Validate checks the field invariants of an item.
func (i Item) Validate() error {
	if i.ID == uuid.Nil {
		return fmt.Errorf("%w: item id is required", ErrInvalidData)
	}
	if i.UserID == uuid.Nil {
		return fmt.Errorf("%w: item %s has no owner", ErrInvalidData, i.ID)
	}
	if strings.TrimSpace(i.Title) == "" {
		return fmt.Errorf("%w: item %s title cannot be empty", ErrInvalidData, i.ID)
	}
	if !i.ItemType.Valid() {
		return fmt.Errorf("%w: unknown item type %q", ErrInvalidData, i.ItemType)
	}
	if !i.Status.Valid() {
		return fmt.Errorf("%w: unknown item status %q", ErrInvalidData, i.Status)
	}
	if !i.Priority.Valid() {
		return fmt.Errorf("%w: priority %d out of range", ErrInvalidData, i.Priority)
	}
	return nil
}
