// ABOUTME: Tests for centralized configuration system
// ABOUTME: Verifies defaults, YAML files, environment overrides and validation
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.ChatModel)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAI.EmbeddingModel)
	assert.Equal(t, 30*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, 3, cfg.OpenAI.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.OpenAI.RetryDelay)
	assert.Equal(t, 5, cfg.Dialogue.MenuSuggestions)
	assert.Equal(t, 4, cfg.Dialogue.MoodTags)
	assert.Equal(t, 3, cfg.Dialogue.RecommendLimit)
	assert.Equal(t, DefaultCuisines, cfg.Dialogue.Cuisines)
	assert.Equal(t, SessionBackendMemory, cfg.Sessions.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Redis.SessionTTL)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 1536, cfg.Neo4j.VectorDimension)
	assert.False(t, cfg.Charm.Enabled)
	assert.False(t, cfg.Offline())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("NEO4J_URI", "neo4j://graph:7687")
	t.Setenv("DIALOGUE_RECOMMEND_LIMIT", "7")
	t.Setenv("SESSIONS_BACKEND", "redis")
	t.Setenv("REDIS_SESSION_TTL", "90m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.OpenAI.APIKey)
	assert.Equal(t, "neo4j://graph:7687", cfg.Neo4j.URI)
	assert.Equal(t, 7, cfg.Dialogue.RecommendLimit)
	assert.Equal(t, SessionBackendRedis, cfg.Sessions.Backend)
	assert.Equal(t, 90*time.Minute, cfg.Redis.SessionTTL)
	assert.NoError(t, cfg.RequireGraph())
}

func TestLoad_YAMLFile(t *testing.T) {
	chdirTemp(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	body := `
dialogue:
  mood_tags: 6
  cuisines: ["한식", "치킨"]
catalog: ./catalog.json
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Dialogue.MoodTags)
	assert.Equal(t, []string{"한식", "치킨"}, cfg.Dialogue.Cuisines)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Offline())
	assert.NoError(t, cfg.RequireGraph())
}

func TestLoad_MissingFile(t *testing.T) {
	chdirTemp(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			OpenAI:   OpenAIConfig{Timeout: time.Second, MaxRetries: 3},
			Neo4j:    Neo4jConfig{VectorDimension: 1536},
			Redis:    RedisConfig{Address: "localhost:6379"},
			Sessions: SessionsConfig{Backend: SessionBackendMemory},
			Dialogue: DialogueConfig{MenuSuggestions: 5, MoodTags: 4, RecommendLimit: 3, Cuisines: DefaultCuisines},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"retries too high", func(c *Config) { c.OpenAI.MaxRetries = 11 }},
		{"negative retries", func(c *Config) { c.OpenAI.MaxRetries = -1 }},
		{"zero timeout", func(c *Config) { c.OpenAI.Timeout = 0 }},
		{"zero mood tags", func(c *Config) { c.Dialogue.MoodTags = 0 }},
		{"zero menu suggestions", func(c *Config) { c.Dialogue.MenuSuggestions = 0 }},
		{"zero recommend limit", func(c *Config) { c.Dialogue.RecommendLimit = 0 }},
		{"no cuisines", func(c *Config) { c.Dialogue.Cuisines = nil }},
		{"unknown backend", func(c *Config) { c.Sessions.Backend = "etcd" }},
		{"redis without address", func(c *Config) { c.Sessions.Backend = SessionBackendRedis; c.Redis.Address = "" }},
		{"zero dimension", func(c *Config) { c.Neo4j.VectorDimension = 0 }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRequireGraph_NeedsURIWhenOnline(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireGraph())

	cfg.Catalog = "catalog.json"
	assert.NoError(t, cfg.RequireGraph())
}
