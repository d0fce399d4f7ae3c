// ABOUTME: Centralized configuration for the dongne recommender
// ABOUTME: Merges defaults, an optional YAML file, .env and environment variables via viper
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Session store backends
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config holds all configuration for the recommender
type Config struct {
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Neo4j    Neo4jConfig    `mapstructure:"neo4j"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Server   ServerConfig   `mapstructure:"server"`
	Sessions SessionsConfig `mapstructure:"sessions"`
	Dialogue DialogueConfig `mapstructure:"dialogue"`
	Charm    CharmConfig    `mapstructure:"charm"`
	Logging  LoggingConfig  `mapstructure:"logging"`

	// Catalog is an offline catalog JSON; when set the in-memory graph replaces Neo4j
	Catalog string `mapstructure:"catalog"`
}

type OpenAIConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	ChatModel      string        `mapstructure:"chat_model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
}

type Neo4jConfig struct {
	URI             string `mapstructure:"uri"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	VectorDimension int    `mapstructure:"vector_dimension"`
}

type RedisConfig struct {
	Address    string        `mapstructure:"address"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type ServerConfig struct {
	Address     string   `mapstructure:"address"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type SessionsConfig struct {
	Backend string `mapstructure:"backend"`
}

// DialogueConfig tunes the conversation's lookups
type DialogueConfig struct {
	MenuSuggestions int      `mapstructure:"menu_suggestions"`
	MoodTags        int      `mapstructure:"mood_tags"`
	RecommendLimit  int      `mapstructure:"recommend_limit"`
	Cuisines        []string `mapstructure:"cuisines"`
}

type CharmConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	DBName   string `mapstructure:"db_name"`
	AutoSync bool   `mapstructure:"auto_sync"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultCuisines is the fixed cuisine menu shown at the start of a conversation
var DefaultCuisines = []string{"한식", "중식", "일식", "양식", "세계음식", "치킨"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.chat_model", "gpt-4o-mini")
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("openai.timeout", 30*time.Second)
	v.SetDefault("openai.max_retries", 3)
	v.SetDefault("openai.retry_delay", 2*time.Second)

	v.SetDefault("neo4j.uri", "")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.password", "")
	v.SetDefault("neo4j.database", "neo4j")
	v.SetDefault("neo4j.vector_dimension", 1536)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.session_ttl", 24*time.Hour)

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("sessions.backend", SessionBackendMemory)

	v.SetDefault("dialogue.menu_suggestions", 5)
	v.SetDefault("dialogue.mood_tags", 4)
	v.SetDefault("dialogue.recommend_limit", 3)
	v.SetDefault("dialogue.cuisines", DefaultCuisines)

	v.SetDefault("charm.enabled", false)
	v.SetDefault("charm.host", "cloud.charm.sh")
	v.SetDefault("charm.db_name", "dongne")
	v.SetDefault("charm.auto_sync", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("catalog", "")
}

// Load reads configuration. path may name a YAML file; when empty, an
// optional dongne.yaml in the working directory is used. Environment
// variables override file values (neo4j.uri <- NEO4J_URI).
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("dongne")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	// The conventional variable name wins when set
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = key
	}

	return &cfg, cfg.Validate()
}

// Offline reports whether the in-memory catalog replaces the graph database
func (c *Config) Offline() bool {
	return c.Catalog != ""
}

func (c *Config) Validate() error {
	if c.OpenAI.MaxRetries < 0 || c.OpenAI.MaxRetries > 10 {
		return fmt.Errorf("openai.max_retries must be 0-10, got %d", c.OpenAI.MaxRetries)
	}
	if c.OpenAI.Timeout <= 0 {
		return fmt.Errorf("openai.timeout must be positive, got %v", c.OpenAI.Timeout)
	}
	if c.Dialogue.MenuSuggestions < 1 || c.Dialogue.MenuSuggestions > 20 {
		return fmt.Errorf("dialogue.menu_suggestions must be 1-20, got %d", c.Dialogue.MenuSuggestions)
	}
	if c.Dialogue.MoodTags < 1 || c.Dialogue.MoodTags > 20 {
		return fmt.Errorf("dialogue.mood_tags must be 1-20, got %d", c.Dialogue.MoodTags)
	}
	if c.Dialogue.RecommendLimit < 1 || c.Dialogue.RecommendLimit > 50 {
		return fmt.Errorf("dialogue.recommend_limit must be 1-50, got %d", c.Dialogue.RecommendLimit)
	}
	if len(c.Dialogue.Cuisines) == 0 {
		return errors.New("dialogue.cuisines must not be empty")
	}
	switch c.Sessions.Backend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.Redis.Address == "" {
			return errors.New("redis.address is required for the redis session backend")
		}
	default:
		return fmt.Errorf("sessions.backend must be %q or %q, got %q",
			SessionBackendMemory, SessionBackendRedis, c.Sessions.Backend)
	}
	if c.Neo4j.VectorDimension <= 0 {
		return fmt.Errorf("neo4j.vector_dimension must be positive, got %d", c.Neo4j.VectorDimension)
	}
	return nil
}

// RequireGraph checks the settings needed to reach the graph database
func (c *Config) RequireGraph() error {
	if c.Offline() {
		return nil
	}
	if c.Neo4j.URI == "" {
		return errors.New("neo4j.uri (NEO4J_URI) is required unless an offline catalog is set")
	}
	return nil
}
