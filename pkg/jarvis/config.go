package jarvis

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dan-solli/jarvis-core/pkg/embeddings"
	"github.com/dan-solli/jarvis-core/pkg/memory"
	"github.com/dan-solli/jarvis-core/pkg/model"
)

// Config holds configuration for the jarvis data layer.
// Zero values are replaced by defaults in New.
type Config struct {
	// Width of generated embeddings (default: 256)
	EmbeddingDimensions int `yaml:"embedding_dimensions"`

	// Content length in runes from which memories are embedded (default: 11)
	MinContentLength int `yaml:"min_content_length"`

	// Semantic search result cap when callers pass none (default: 10)
	DefaultSearchLimit int `yaml:"default_search_limit"`

	// Relevance floor used by Recall (default: 0.5)
	DefaultMinSimilarity *float64 `yaml:"default_min_similarity"`

	// Number of cached query/content embeddings; negative disables the cache (default: 4096)
	EmbeddingCacheSize int `yaml:"embedding_cache_size"`

	// Register Prometheus collectors instead of the no-op collector
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// IANA zone used for activity summaries (default: local time)
	Timezone string `yaml:"timezone"`
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.EmbeddingDimensions <= 0 {
		c.EmbeddingDimensions = embeddings.DefaultDimensions
	}
	if c.MinContentLength <= 0 {
		c.MinContentLength = memory.DefaultMinContentLength
	}
	if c.DefaultSearchLimit <= 0 {
		c.DefaultSearchLimit = memory.DefaultSearchLimit
	}
	if c.DefaultMinSimilarity == nil {
		c.DefaultMinSimilarity = model.Ptr(memory.DefaultMinSimilarity)
	}
	if c.EmbeddingCacheSize == 0 {
		c.EmbeddingCacheSize = embeddings.DefaultCacheSize
	}
}

// location resolves the configured time zone.
func (c Config) location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", model.ErrInvalidData, c.Timezone, err)
	}
	return loc, nil
}

// ParseConfig decodes a YAML document into a Config with defaults applied.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse config: %v", model.ErrInvalidData, err)
	}
	if cfg.DefaultMinSimilarity != nil && (*cfg.DefaultMinSimilarity < -1 || *cfg.DefaultMinSimilarity > 1) {
		return Config{}, fmt.Errorf("%w: default_min_similarity must be within [-1, 1]", model.ErrInvalidData)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadConfig reads and parses the YAML config file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}
