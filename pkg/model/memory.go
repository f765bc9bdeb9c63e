package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MemoryType describes what kind of knowledge a memory holds.
type MemoryType string

const (
	MemoryTypeFact         MemoryType = "fact"
	MemoryTypePreference   MemoryType = "preference"
	MemoryTypeContext      MemoryType = "context"
	MemoryTypeRoutine      MemoryType = "routine"
	MemoryTypeRelationship MemoryType = "relationship"
)

// Valid reports whether t is a known memory type.
func (t MemoryType) Valid() bool {
	switch t {
	case MemoryTypeFact, MemoryTypePreference, MemoryTypeContext,
		MemoryTypeRoutine, MemoryTypeRelationship:
		return true
	}
	return false
}

// MemoryCategory groups memories by area of life.
type MemoryCategory string

const (
	CategoryGeneral  MemoryCategory = "general"
	CategoryWork     MemoryCategory = "work"
	CategoryPersonal MemoryCategory = "personal"
	CategoryHealth   MemoryCategory = "health"
	CategoryFinance  MemoryCategory = "finance"
	CategoryTravel   MemoryCategory = "travel"
	CategorySocial   MemoryCategory = "social"
	CategoryLearning MemoryCategory = "learning"
)

// Valid reports whether c is a known category.
func (c MemoryCategory) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryWork, CategoryPersonal, CategoryHealth,
		CategoryFinance, CategoryTravel, CategorySocial, CategoryLearning:
		return true
	}
	return false
}

// MemorySource records how a memory was acquired.
type MemorySource string

const (
	SourceExplicit  MemorySource = "explicit"
	SourceInferred  MemorySource = "inferred"
	SourceImported  MemorySource = "imported"
	SourceCorrected MemorySource = "corrected"
)

// Valid reports whether s is a known memory source.
func (s MemorySource) Valid() bool {
	switch s {
	case SourceExplicit, SourceInferred, SourceImported, SourceCorrected:
		return true
	}
	return false
}

// Memory is a piece of knowledge the assistant holds about its user.
type Memory struct {
	ID             uuid.UUID      `json:"id" yaml:"id"`
	UserID         uuid.UUID      `json:"user_id" yaml:"user_id"`
	Content        string         `json:"content" yaml:"content"`
	MemoryType     MemoryType     `json:"memory_type" yaml:"memory_type"`
	Category       MemoryCategory `json:"category" yaml:"category"`
	Confidence     float64        `json:"confidence" yaml:"confidence"`
	Source         MemorySource   `json:"source" yaml:"source"`
	RelatedItemIDs []uuid.UUID    `json:"related_item_ids,omitempty" yaml:"related_item_ids,omitempty"`
	Embedding      []float32      `json:"embedding,omitempty" yaml:"-"`
	CreatedAt      time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" yaml:"updated_at"`
	LastAccessedAt *time.Time     `json:"last_accessed_at,omitempty" yaml:"last_accessed_at,omitempty"`
	AccessCount    int            `json:"access_count" yaml:"access_count"`
	IsActive       bool           `json:"is_active" yaml:"is_active"`
}

// ClampConfidence bounds c to [0, 1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// RecordID implements Record.
func (m Memory) RecordID() uuid.UUID { return m.ID }

// Clone returns a deep copy of the memory, including its embedding.
func (m Memory) Clone() Memory {
	c := m
	c.LastAccessedAt = cloneTime(m.LastAccessedAt)
	if m.RelatedItemIDs != nil {
		c.RelatedItemIDs = make([]uuid.UUID, len(m.RelatedItemIDs))
		copy(c.RelatedItemIDs, m.RelatedItemIDs)
	}
	if m.Embedding != nil {
		c.Embedding = make([]float32, len(m.Embedding))
		copy(c.Embedding, m.Embedding)
	}
	return c
}

// RelatesTo reports whether itemID is among the related items.
func (m Memory) RelatesTo(itemID uuid.UUID) bool {
	for _, id := range m.RelatedItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

// Matches reports whether the lowercased needle occurs in the content.
func (m Memory) Matches(needle string) bool {
	return strings.Contains(strings.ToLower(m.Content), needle)
}

// WithAccess returns a copy recording one more access at now.
// UpdatedAt is left untouched: an access is not a change of content.
func (m Memory) WithAccess(now time.Time) Memory {
	c := m.Clone()
	c.LastAccessedAt = &now
	c.AccessCount++
	return c
}

// WithConfidence returns a copy with a clamped confidence.
func (m Memory) WithConfidence(confidence float64, now time.Time) Memory {
	c := m.Clone()
	c.Confidence = ClampConfidence(confidence)
	c.UpdatedAt = now
	return c
}

// WithActive returns a copy with the active flag set.
func (m Memory) WithActive(active bool, now time.Time) Memory {
	c := m.Clone()
	c.IsActive = active
	c.UpdatedAt = now
	return c
}

// WithContent returns a copy carrying new content and its embedding.
// A nil embedding clears any previous one.
func (m Memory) WithContent(content string, embedding []float32, now time.Time) Memory {
	c := m.Clone()
	c.Content = content
	c.Embedding = nil
	if embedding != nil {
		c.Embedding = make([]float32, len(embedding))
		copy(c.Embedding, embedding)
	}
	c.UpdatedAt = now
	return c
}

// Validate checks the field invariants of a memory.
func (m Memory) Validate() error {
	if m.ID == uuid.Nil {
		return fmt.Errorf("%w: memory id is required", ErrInvalidData)
	}
	if m.UserID == uuid.Nil {
		return fmt.Errorf("%w: memory %s has no owner", ErrInvalidData, m.ID)
	}
	if strings.TrimSpace(m.Content) == "" {
		return fmt.Errorf("%w: memory %s content cannot be empty", ErrInvalidData, m.ID)
	}
	if !m.MemoryType.Valid() {
		return fmt.Errorf("%w: unknown memory type %q", ErrInvalidData, m.MemoryType)
	}
	if !m.Category.Valid() {
		return fmt.Errorf("%w: unknown memory category %q", ErrInvalidData, m.Category)
	}
	if !m.Source.Valid() {
		return fmt.Errorf("%w: unknown memory source %q", ErrInvalidData, m.Source)
	}
	if m.Confidence < 0 || m.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v must be within [0, 1]", ErrInvalidData, m.Confidence)
	}
	if m.AccessCount < 0 {
		return fmt.Errorf("%w: negative access count", ErrInvalidData)
	}
	return nil
}

// ValidateEmbedding checks that an embedding, when present, has exactly
// dims components. A memory without an embedding always passes.
func (m Memory) ValidateEmbedding(dims int) error {
	if m.Embedding != nil && len(m.Embedding) != dims {
		return fmt.Errorf("%w: memory %s embedding has %d dimensions, want %d", ErrInvalidData, m.ID, len(m.Embedding), dims)
	}
	return nil
}
