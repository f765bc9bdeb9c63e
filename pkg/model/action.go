package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActionType is the verb of a logged action.
type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionRead   ActionType = "read"
	ActionUpdate ActionType = "update"
	ActionDelete ActionType = "delete"

	ActionComplete   ActionType = "complete"
	ActionUncomplete ActionType = "uncomplete"
	ActionArchive    ActionType = "archive"
	ActionRestore    ActionType = "restore"
	ActionSchedule   ActionType = "schedule"
	ActionReschedule ActionType = "reschedule"
	ActionPrioritize ActionType = "prioritize"
	ActionTag        ActionType = "tag"
	ActionUntag      ActionType = "untag"

	ActionView   ActionType = "view"
	ActionSearch ActionType = "search"
	ActionFilter ActionType = "filter"

	ActionSync           ActionType = "sync"
	ActionLogin          ActionType = "login"
	ActionLogout         ActionType = "logout"
	ActionSettingsChange ActionType = "settingsChange"
)

var validActionTypes = map[ActionType]bool{
	ActionCreate: true, ActionRead: true, ActionUpdate: true, ActionDelete: true,
	ActionComplete: true, ActionUncomplete: true, ActionArchive: true, ActionRestore: true,
	ActionSchedule: true, ActionReschedule: true, ActionPrioritize: true, ActionTag: true,
	ActionUntag: true, ActionView: true, ActionSearch: true, ActionFilter: true,
	ActionSync: true, ActionLogin: true, ActionLogout: true, ActionSettingsChange: true,
}

// Valid reports whether t is a known action type.
func (t ActionType) Valid() bool { return validActionTypes[t] }

// TargetType is the kind of entity an action touched.
type TargetType string

const (
	TargetItem     TargetType = "item"
	TargetMemory   TargetType = "memory"
	TargetUser     TargetType = "user"
	TargetCalendar TargetType = "calendar"
	TargetSettings TargetType = "settings"
	TargetSystem   TargetType = "system"
)

// Valid reports whether t is a known target type.
func (t TargetType) Valid() bool {
	switch t {
	case TargetItem, TargetMemory, TargetUser, TargetCalendar, TargetSettings, TargetSystem:
		return true
	}
	return false
}

// Action is an append-only activity log entry.
type Action struct {
	ID          uuid.UUID         `json:"id" yaml:"id"`
	UserID      uuid.UUID         `json:"user_id" yaml:"user_id"`
	ActionType  ActionType        `json:"action_type" yaml:"action_type"`
	TargetType  TargetType        `json:"target_type" yaml:"target_type"`
	TargetID    *uuid.UUID        `json:"target_id,omitempty" yaml:"target_id,omitempty"`
	Description string            `json:"description" yaml:"description"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	DeviceID    string            `json:"device_id,omitempty" yaml:"device_id,omitempty"`
	SessionID   *uuid.UUID        `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Timestamp   time.Time         `json:"timestamp" yaml:"timestamp"`
}

// RecordID implements Record.
func (a Action) RecordID() uuid.UUID { return a.ID }

// Clone returns a deep copy of the action.
func (a Action) Clone() Action {
	c := a
	c.TargetID = cloneUUID(a.TargetID)
	c.SessionID = cloneUUID(a.SessionID)
	if a.Metadata != nil {
		c.Metadata = make(map[string]string, len(a.Metadata))
		for k, v := range a.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}

// Validate checks the field invariants of an action.
func (a Action) Validate() error {
	if a.ID == uuid.Nil {
		return fmt.Errorf("%w: action id is required", ErrInvalidData)
	}
	if a.UserID == uuid.Nil {
		return fmt.Errorf("%w: action %s has no owner", ErrInvalidData, a.ID)
	}
	if !a.ActionType.Valid() {
		return fmt.Errorf("%w: unknown action type %q", ErrInvalidData, a.ActionType)
	}
	if !a.TargetType.Valid() {
		return fmt.Errorf("%w: unknown target type %q", ErrInvalidData, a.TargetType)
	}
	if strings.TrimSpace(a.Description) == "" {
		return fmt.Errorf("%w: action description cannot be empty", ErrInvalidData)
	}
	if a.Timestamp.IsZero() {
		return fmt.Errorf("%w: action timestamp is required", ErrInvalidData)
	}
	return nil
}
