package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the gita tool.
type Config struct {
	Corpus     CorpusConfig     `yaml:"corpus"`
	Normalize  NormalizeConfig  `yaml:"normalize"`
	Similarity SimilarityConfig `yaml:"similarity"`
	Rank       RankConfig       `yaml:"rank"`
	Retrieve   RetrieveConfig   `yaml:"retrieve"`
	Session    SessionConfig    `yaml:"session"`
	Cache      CacheConfig      `yaml:"cache"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Answer     AnswerConfig     `yaml:"answer"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// CorpusConfig describes where the verse table lives and which field is matched.
type CorpusConfig struct {
	Path       string   `yaml:"path"`        // file or doublestar glob, .xz allowed
	Exclude    []string `yaml:"exclude"`     // glob patterns skipped when Path is a glob
	MatchField string   `yaml:"match_field"` // "verse_text", "meaning", "both"
	Workers    int      `yaml:"workers"`     // normalization pool size (0 = NumCPU)
}

// NormalizeConfig toggles the optional normalization stages.
type NormalizeConfig struct {
	FoldDiacritics bool   `yaml:"fold_diacritics"`
	Segmentation   string `yaml:"segmentation"` // "uax29" or "fields"
	Stopwords      bool   `yaml:"stopwords"`
	POSTagging     bool   `yaml:"pos_tagging"`
	Lemmatize      bool   `yaml:"lemmatize"`
}

// SimilarityConfig holds the scorer weights.
type SimilarityConfig struct {
	Semantic         bool    `yaml:"semantic"`
	JaccardWeight    float64 `yaml:"jaccard_weight"`
	SemanticWeight   float64 `yaml:"semantic_weight"`
	RelatedThreshold float64 `yaml:"related_threshold"`
	StemsAreRelated  bool    `yaml:"stems_are_related"`
}

// RankConfig holds the usage-aware ranking factors.
type RankConfig struct {
	UsagePenalty     float64 `yaml:"usage_penalty"`
	LastServedFactor float64 `yaml:"last_served_factor"`
	ChapterBoost     float64 `yaml:"chapter_boost"`
	JitterSpread     float64 `yaml:"jitter_spread"` // 0.05 = uniform(0.95, 1.05)
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopN int `yaml:"top_n"`
}

// SessionConfig holds session bookkeeping configuration.
type SessionConfig struct {
	Store        string        `yaml:"store"` // "memory" or "bolt"
	Timeout      time.Duration `yaml:"timeout"`
	SweepEvery   int           `yaml:"sweep_every"`
	HistoryTurns int           `yaml:"history_turns"`
}

// CacheConfig holds answer cache configuration.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	MaxSize int           `yaml:"max_size"`
	TTL     time.Duration `yaml:"ttl"`
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

// AnswerConfig holds answer synthesis configuration.
type AnswerConfig struct {
	Provider    string        `yaml:"provider"` // "openai" or "mock"
	Model       string        `yaml:"model"`
	APIKeyEnv   string        `yaml:"api_key_env"`
	BaseURL     string        `yaml:"base_url"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
	File   string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Path:       "data/bhagavad_gita.csv",
			MatchField: "verse_text",
			Workers:    0,
		},
		Normalize: NormalizeConfig{
			FoldDiacritics: false,
			Segmentation:   "uax29",
			Stopwords:      true,
			POSTagging:     true,
			Lemmatize:      true,
		},
		Similarity: SimilarityConfig{
			Semantic:         true,
			JaccardWeight:    0.6,
			SemanticWeight:   0.4,
			RelatedThreshold: 0.5,
			StemsAreRelated:  true,
		},
		Rank: RankConfig{
			UsagePenalty:     0.2,
			LastServedFactor: 0.5,
			ChapterBoost:     0.1,
			JitterSpread:     0.05,
		},
		Retrieve: RetrieveConfig{
			TopN: 5,
		},
		Session: SessionConfig{
			Store:        "memory",
			Timeout:      time.Hour,
			SweepEvery:   10,
			HistoryTurns: 3,
		},
		Cache: CacheConfig{
			Enabled: true,
			MaxSize: 100,
			TTL:     time.Hour,
		},
		RateLimit: RateLimitConfig{
			Enabled:     true,
			MaxRequests: 60,
			Window:      time.Minute,
		},
		Answer: AnswerConfig{
			Provider:    "openai",
			Model:       "gpt-4",
			APIKeyEnv:   "OPENAI_API_KEY",
			Temperature: 0.7,
			MaxTokens:   500,
			Timeout:     60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Validate resets out-of-range values to their defaults.
func (c *Config) Validate() {
	def := DefaultConfig()

	switch c.Corpus.MatchField {
	case "verse_text", "meaning", "both":
	default:
		c.Corpus.MatchField = def.Corpus.MatchField
	}
	if c.Corpus.Workers < 0 {
		c.Corpus.Workers = 0
	}
	switch c.Normalize.Segmentation {
	case "uax29", "fields":
	default:
		c.Normalize.Segmentation = def.Normalize.Segmentation
	}
	if c.Similarity.JaccardWeight < 0 || c.Similarity.SemanticWeight < 0 ||
		c.Similarity.JaccardWeight+c.Similarity.SemanticWeight <= 0 {
		c.Similarity.JaccardWeight = def.Similarity.JaccardWeight
		c.Similarity.SemanticWeight = def.Similarity.SemanticWeight
	}
	if c.Similarity.RelatedThreshold < 0 || c.Similarity.RelatedThreshold > 1 {
		c.Similarity.RelatedThreshold = def.Similarity.RelatedThreshold
	}
	if c.Rank.UsagePenalty < 0 {
		c.Rank.UsagePenalty = def.Rank.UsagePenalty
	}
	if c.Rank.LastServedFactor <= 0 || c.Rank.LastServedFactor > 1 {
		c.Rank.LastServedFactor = def.Rank.LastServedFactor
	}
	if c.Rank.ChapterBoost < 0 {
		c.Rank.ChapterBoost = def.Rank.ChapterBoost
	}
	if c.Rank.JitterSpread < 0 || c.Rank.JitterSpread >= 1 {
		c.Rank.JitterSpread = def.Rank.JitterSpread
	}
	if c.Retrieve.TopN <= 0 {
		c.Retrieve.TopN = def.Retrieve.TopN
	}
	if c.Session.Timeout <= 0 {
		c.Session.Timeout = def.Session.Timeout
	}
	if c.Session.SweepEvery <= 0 {
		c.Session.SweepEvery = def.Session.SweepEvery
	}
	if c.Session.HistoryTurns < 0 {
		c.Session.HistoryTurns = def.Session.HistoryTurns
	}
	if c.Cache.MaxSize <= 0 {
		c.Cache.MaxSize = def.Cache.MaxSize
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = def.Cache.TTL
	}
	if c.RateLimit.MaxRequests <= 0 {
		c.RateLimit.MaxRequests = def.RateLimit.MaxRequests
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = def.RateLimit.Window
	}
	if c.Answer.MaxTokens <= 0 {
		c.Answer.MaxTokens = def.Answer.MaxTokens
	}
	if c.Answer.Timeout <= 0 {
		c.Answer.Timeout = def.Answer.Timeout
	}
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
	cfg.Validate()

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for gita.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "gita.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".gita", "config.yaml")
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

// ResolvePath makes a config-relative path absolute against dir.
func ResolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// SessionDBPath returns the path to the session database.
func SessionDBPath(dir string) string {
	return filepath.Join(dir, ".gita", "sessions.db")
}

// EnsureStateDir ensures the .gita directory exists.
func EnsureStateDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".gita"), 0755)
}
