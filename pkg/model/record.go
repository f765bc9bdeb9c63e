// Package model defines the record types held by the jarvis core: items,
// memories and logged actions, plus the criteria objects used to query them.
//
// Records are plain values. A logical change never mutates a stored record;
// it derives a copy through one of the With* helpers and saves the copy,
// which replaces the previous version for that ID.
package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidData is returned when a record or argument is rejected before
// any mutation takes place.
var ErrInvalidData = errors.New("invalid data")

// Record is implemented by every value the storage engine can hold.
type Record[T any] interface {
	RecordID() uuid.UUID
	Clone() T
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
