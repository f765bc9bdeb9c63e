package model

import (
	"time"

	"github.com/google/uuid"
)

// Every criteria field is optional; a nil pointer, empty slice or empty
// string imposes no filter. Limit and Offset values <= 0 are ignored.

// ItemQuery selects items. Deleted items are never returned.
type ItemQuery struct {
	UserID    *uuid.UUID
	Status    *ItemStatus
	ItemType  *ItemType
	DueBefore *time.Time // strictly before
	DueAfter  *time.Time // strictly after
	Tags      []string   // matches items carrying any of these tags
	Search    string     // case-insensitive substring of title or content
	Limit     int
	Offset    int
}

// MemoryQuery selects memories.
type MemoryQuery struct {
	UserID        *uuid.UUID
	Category      *MemoryCategory
	MemoryType    *MemoryType
	Source        *MemorySource
	RelatedItemID *uuid.UUID
	// Active selects the active set when nil or true and the inactive set
	// when false.
	Active *bool
	Search string
	Limit  int
	Offset int
}

// ActionQuery selects logged actions. StartDate and EndDate are inclusive.
type ActionQuery struct {
	UserID      *uuid.UUID
	ActionTypes []ActionType
	TargetTypes []TargetType
	TargetID    *uuid.UUID
	SessionID   *uuid.UUID
	DeviceID    string
	StartDate   *time.Time
	EndDate     *time.Time
	Limit       int
	Offset      int
}

// Ptr returns a pointer to v. It keeps criteria literals short.
func Ptr[T any](v T) *T { return &v }
