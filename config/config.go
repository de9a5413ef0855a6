package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"docqa/internal/domain"
)

// Config holds all configuration for docqa.
type Config struct {
	Chunk      ChunkConfig      `yaml:"chunk"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Retrieve   RetrieveConfig   `yaml:"retrieve"`
	Generation GenerationConfig `yaml:"generation"`
	History    HistoryConfig    `yaml:"history"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ChunkConfig controls how documents are split.
type ChunkConfig struct {
	MaxBytes int    `yaml:"max_bytes"`
	Boundary string `yaml:"boundary"` // "inclusive" or "exclusive"
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider          string  `yaml:"provider"` // "gemini", "openai", "mock"
	Model             string  `yaml:"model"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	BaseURL           string  `yaml:"base_url"`
	MaxInputBytes     int     `yaml:"max_input_bytes"`
	Concurrency       int     `yaml:"concurrency"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 = unlimited
	Burst             int     `yaml:"burst"`
	Dimension         int     `yaml:"dimension"` // mock provider only
}

// RetrieveConfig holds ranking configuration.
type RetrieveConfig struct {
	TopK             int    `yaml:"top_k"`
	DegeneratePolicy string `yaml:"degenerate_policy"` // "zero" or "error"
}

// GenerationConfig holds answer generation configuration.
type GenerationConfig struct {
	Provider        string        `yaml:"provider"` // "gemini", "openai", "mock"
	Model           string        `yaml:"model"`
	APIKeyEnv       string        `yaml:"api_key_env"`
	BaseURL         string        `yaml:"base_url"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	MaxInputTokens  int           `yaml:"max_input_tokens"` // warn only, 0 = disabled
	Preamble        string        `yaml:"preamble"`
	SeedHistory     []domain.Turn `yaml:"seed_history"`
}

// HistoryConfig controls persisted CLI sessions.
type HistoryConfig struct {
	Enabled  bool `yaml:"enabled"`
	MaxTurns int  `yaml:"max_turns"` // 0 = keep everything
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"; empty follows ENVIRONMENT
}

const DefaultPreamble = "We want an answer for the user query from the given text:"

// DefaultSeedHistory primes the model before the user's own conversation.
func DefaultSeedHistory() []domain.Turn {
	return []domain.Turn{
		{
			Role: domain.RoleUser,
			Text: "Hey, You are the best Storyteller and Research Scientist who helps readers understand research papers for anyone without a background. I want to know anything about these papers in the research board. Please help me.\n",
		},
		{
			Role: domain.RoleModel,
			Text: "I can answer any question regarding these papers. How can I help you?",
		},
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Chunk: ChunkConfig{
			MaxBytes: 500,
			Boundary: "inclusive",
		},
		Embedding: EmbeddingConfig{
			Provider:          "gemini",
			Model:             "embedding-001",
			APIKeyEnv:         "GEMINI_API_KEY",
			MaxInputBytes:     500,
			Concurrency:       8,
			RequestsPerSecond: 20,
			Burst:             5,
			Dimension:         768,
		},
		Retrieve: RetrieveConfig{
			TopK:             15,
			DegeneratePolicy: "zero",
		},
		Generation: GenerationConfig{
			Provider:        "gemini",
			Model:           "gemini-1.5-flash",
			APIKeyEnv:       "GEMINI_API_KEY",
			MaxOutputTokens: 1000,
			MaxInputTokens:  30000,
			Preamble:        DefaultPreamble,
			SeedHistory:     DefaultSeedHistory(),
		},
		History: HistoryConfig{
			Enabled:  true,
			MaxTurns: 40,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.Chunk.MaxBytes <= 0 {
		return fmt.Errorf("chunk.max_bytes must be positive, got %d", c.Chunk.MaxBytes)
	}
	switch c.Chunk.Boundary {
	case "inclusive", "exclusive":
	default:
		return fmt.Errorf("chunk.boundary must be inclusive or exclusive, got %q", c.Chunk.Boundary)
	}
	if c.Embedding.MaxInputBytes <= 0 {
		return fmt.Errorf("embedding.max_input_bytes must be positive, got %d", c.Embedding.MaxInputBytes)
	}
	if c.Embedding.Concurrency <= 0 {
		return fmt.Errorf("embedding.concurrency must be positive, got %d", c.Embedding.Concurrency)
	}
	if c.Retrieve.TopK <= 0 {
		return fmt.Errorf("retrieve.top_k must be positive, got %d", c.Retrieve.TopK)
	}
	switch c.Retrieve.DegeneratePolicy {
	case "zero", "error":
	default:
		return fmt.Errorf("retrieve.degenerate_policy must be zero or error, got %q", c.Retrieve.DegeneratePolicy)
	}
	for _, p := range []string{c.Embedding.Provider, c.Generation.Provider} {
		switch p {
		case "gemini", "openai", "mock":
		default:
			return fmt.Errorf("unknown provider %q", p)
		}
	}
	return nil
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docqa.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docqa.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".docqa", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// HistoryDBPath returns the path to the session database.
func HistoryDBPath(dir string) string {
	return filepath.Join(dir, ".docqa", "history.db")
}

// EnsureDir ensures the .docqa directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".docqa"), 0755)
}
