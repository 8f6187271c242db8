// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (including a .env file in the working directory)
//  2. Config file (~/.nexus/config.yaml or ./config.yaml)
//  3. Default values
//
// The Gemini API key is the only hard startup requirement: Load fails fast
// with ErrMissingAPIKey so a misconfigured deployment never reaches the first
// model call.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Sentinel errors returned by Validate. Check with errors.Is().
var (
	// ErrMissingAPIKey indicates no Gemini API key was found in the
	// environment. The assistant cannot run without one.
	ErrMissingAPIKey = errors.New("missing API key: set GEMINI_API_KEY (or GOOGLE_API_KEY)")

	// ErrInvalidModelName indicates an empty model name.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidStorageDir indicates an empty storage directory.
	ErrInvalidStorageDir = errors.New("invalid storage directory")

	// ErrInvalidCollection indicates an empty memory collection name.
	ErrInvalidCollection = errors.New("invalid collection name")

	// ErrInvalidTopK indicates a non-positive retrieval limit.
	ErrInvalidTopK = errors.New("invalid top_k: must be >= 1")

	// ErrInvalidChunking indicates an unusable chunk size/overlap pair.
	ErrInvalidChunking = errors.New("invalid chunking: size must be > overlap >= 0")

	// ErrInvalidHistoryTurns indicates a non-positive history window.
	ErrInvalidHistoryTurns = errors.New("invalid max_history_turns: must be >= 1")
)

// Defaults applied when neither config file nor environment provide a value.
const (
	// DefaultModelName is the Gemini model used for answer generation.
	DefaultModelName = "gemini-2.5-flash"

	// DefaultEmbedderModel is the Gemini model used for memory embeddings.
	DefaultEmbedderModel = "text-embedding-004"

	// DefaultStorageDir is the relative directory holding the persistent
	// memory store when no explicit path is configured.
	DefaultStorageDir = "./nexus_memory"

	// DefaultCollection is the memory collection name.
	DefaultCollection = "nexus_memory"

	// DefaultTopK is the number of memory snippets retrieved per query.
	DefaultTopK = 3

	// DefaultChunkSize and DefaultChunkOverlap define the sliding-window
	// chunking applied to ingested files (in characters).
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100

	// DefaultMaxHistoryTurns is the number of recent conversation turns
	// included in the prompt.
	DefaultMaxHistoryTurns = 20

	// sessionDBName is the SQLite file holding chat sessions, created
	// inside StorageDir.
	sessionDBName = "sessions.db"
)

// Config stores application configuration.
type Config struct {
	// Model configuration
	APIKey        string `mapstructure:"-"` // From env only, never from file
	ModelName     string `mapstructure:"model_name"`
	EmbedderModel string `mapstructure:"embedder_model"`

	// Memory store configuration
	StorageDir string `mapstructure:"storage_dir"`
	Collection string `mapstructure:"collection"`

	// Retrieval and ingestion configuration
	TopK         int `mapstructure:"top_k"`
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`

	// Conversation configuration
	MaxHistoryTurns int `mapstructure:"max_history_turns"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level"` // debug|info|warn|error
	LogJSON  bool   `mapstructure:"log_json"`
}

// Load loads configuration with priority: env > config file > defaults.
// A .env file in the working directory is folded into the environment first,
// matching how the assistant is typically run during development.
func Load() (*Config, error) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".nexus"))
	}
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No config file: defaults plus environment are enough.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	cfg.APIKey = resolveAPIKey()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("storage_dir", DefaultStorageDir)
	v.SetDefault("collection", DefaultCollection)
	v.SetDefault("top_k", DefaultTopK)
	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("chunk_overlap", DefaultChunkOverlap)
	v.SetDefault("max_history_turns", DefaultMaxHistoryTurns)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// bindEnvVariables binds NEXUS_* overrides explicitly. The API key is read
// directly via resolveAPIKey, not through viper, so it never round-trips
// through a config struct dump.
func bindEnvVariables(v *viper.Viper) {
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("model_name", "NEXUS_MODEL_NAME")
	mustBind("embedder_model", "NEXUS_EMBEDDER_MODEL")
	mustBind("storage_dir", "NEXUS_STORAGE_DIR")
	mustBind("collection", "NEXUS_COLLECTION")
	mustBind("top_k", "NEXUS_TOP_K")
	mustBind("max_history_turns", "NEXUS_MAX_HISTORY_TURNS")
	mustBind("log_level", "NEXUS_LOG_LEVEL")
	mustBind("log_json", "NEXUS_LOG_JSON")
}

// resolveAPIKey reads the Gemini API key from the environment.
// GEMINI_API_KEY wins over the legacy GOOGLE_API_KEY name.
func resolveAPIKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GOOGLE_API_KEY")
}

// Validate checks the configuration and returns the first violation found.
// A missing API key is fatal at startup, never at call time.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.ModelName == "" || c.EmbedderModel == "" {
		return ErrInvalidModelName
	}
	if c.StorageDir == "" {
		return ErrInvalidStorageDir
	}
	if c.Collection == "" {
		return ErrInvalidCollection
	}
	if c.TopK < 1 {
		return ErrInvalidTopK
	}
	if c.ChunkOverlap < 0 || c.ChunkSize <= c.ChunkOverlap {
		return ErrInvalidChunking
	}
	if c.MaxHistoryTurns < 1 {
		return ErrInvalidHistoryTurns
	}
	return nil
}

// SessionDBPath returns the SQLite path for session persistence.
func (c *Config) SessionDBPath() string {
	return filepath.Join(c.StorageDir, sessionDBName)
}

// String implements Stringer and masks the API key so the config can be
// logged safely.
func (c Config) String() string {
	masked := c
	if masked.APIKey != "" {
		masked.APIKey = "████████"
	}
	return fmt.Sprintf("Config{model:%s embedder:%s storage:%s collection:%s top_k:%d}",
		masked.ModelName, masked.EmbedderModel, masked.StorageDir, masked.Collection, masked.TopK)
}
