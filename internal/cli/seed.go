package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dan-solli/jarvis-core/pkg/jarvis"
	"github.com/dan-solli/jarvis-core/pkg/model"
)

// Seed is the on-disk description of one user's items and memories.
type Seed struct {
	UserID   string       `yaml:"user_id"`
	Items    []SeedItem   `yaml:"items"`
	Memories []SeedMemory `yaml:"memories"`
}

// SeedItem describes an item to create. Empty enum fields take the item
// service defaults.
type SeedItem struct {
	Title     string     `yaml:"title"`
	Content   string     `yaml:"content"`
	Type      string     `yaml:"type"`
	Status    string     `yaml:"status"`
	Priority  string     `yaml:"priority"`
	Due       *time.Time `yaml:"due"`
	Tags      []string   `yaml:"tags"`
	Completed bool       `yaml:"completed"`
}

// SeedMemory describes a memory to create.
type SeedMemory struct {
	Content    string   `yaml:"content"`
	Type       string   `yaml:"type"`
	Category   string   `yaml:"category"`
	Source     string   `yaml:"source"`
	Confidence *float64 `yaml:"confidence"`
	Inactive   bool     `yaml:"inactive"`
}

// LoadSeed reads and decodes the seed file at path.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML seed document.
func ParseSeed(data []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("%w: parse seed: %v", model.ErrInvalidData, err)
	}
	return seed, nil
}

// Apply loads the seed into j through the services, so creations show up
// in the activity log. It returns the seed's user, generating one when
// the file names none.
func (s Seed) Apply(ctx context.Context, j *jarvis.Jarvis) (uuid.UUID, error) {
	userID := uuid.New()
	if s.UserID != "" {
		parsed, err := uuid.Parse(s.UserID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: user_id %q: %v", model.ErrInvalidData, s.UserID, err)
		}
		userID = parsed
	}

	for i, si := range s.Items {
		if err := applyItem(ctx, j, userID, si); err != nil {
			return uuid.Nil, fmt.Errorf("seed item %d: %w", i, err)
		}
	}
	for i, sm := range s.Memories {
		if err := applyMemory(ctx, j, userID, sm); err != nil {
			return uuid.Nil, fmt.Errorf("seed memory %d: %w", i, err)
		}
	}
	return userID, nil
}

func applyItem(ctx context.Context, j *jarvis.Jarvis, userID uuid.UUID, si SeedItem) error {
	p := jarvis.NewItem{
		UserID:   userID,
		Title:    si.Title,
		Content:  si.Content,
		ItemType: model.ItemType(si.Type),
		Status:   model.ItemStatus(si.Status),
		DueDate:  si.Due,
		Tags:     si.Tags,
	}
	if si.Priority != "" {
		pr, err := model.ParsePriority(si.Priority)
		if err != nil {
			return err
		}
		p.Priority = &pr
	}

	it, err := j.Items().Create(ctx, p)
	if err != nil {
		return err
	}
	if _, err := j.Activity().LogCreate(ctx, userID, model.TargetItem, it.ID, "Created: "+it.Title, nil); err != nil {
		return err
	}
	if si.Completed {
		if _, err := j.CompleteItem(ctx, it.ID); err != nil {
			return err
		}
	}
	return nil
}

func applyMemory(ctx context.Context, j *jarvis.Jarvis, userID uuid.UUID, sm SeedMemory) error {
	mem, err := j.RememberFact(ctx, jarvis.NewMemory{
		UserID:     userID,
		Content:    sm.Content,
		MemoryType: model.MemoryType(sm.Type),
		Category:   model.MemoryCategory(sm.Category),
		Source:     model.MemorySource(sm.Source),
	})
	if err != nil {
		return err
	}
	if sm.Confidence != nil {
		if err := j.Memories().UpdateConfidence(ctx, mem.ID, *sm.Confidence); err != nil {
			return err
		}
	}
	if sm.Inactive {
		if err := j.Memories().DeactivateMemory(ctx, mem.ID); err != nil {
			return err
		}
	}
	return nil
}
