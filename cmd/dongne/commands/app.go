// ABOUTME: Builds the runtime object graph shared by serve, chat and mcp
// ABOUTME: Chooses Neo4j or the offline catalog, OpenAI or local stand-ins, memory or Redis sessions
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/harper/dongne/internal/charm"
	"github.com/harper/dongne/internal/chat"
	"github.com/harper/dongne/internal/config"
	"github.com/harper/dongne/internal/core"
	"github.com/harper/dongne/internal/graph"
	"github.com/harper/dongne/internal/llm"
	"github.com/harper/dongne/internal/logger"
	"github.com/harper/dongne/internal/profile"
	"github.com/harper/dongne/internal/session"
	"github.com/harper/dongne/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// graphBackend is what both the Neo4j store and the in-memory graph provide
type graphBackend interface {
	core.MenuCatalog
	core.ChoiceStore
	chat.UserRegistry
	profile.Writer
}

type app struct {
	cfg     *config.Config
	log     *zap.Logger
	graph   graphBackend
	neo4j   *graph.Neo4jStore
	chat    *chat.Service
	closers []func(context.Context) error
}

// loadConfig reads config and applies the global flags on top
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if offlineCatalog != "" {
		cfg.Catalog = offlineCatalog
	}
	switch {
	case verbose:
		cfg.Logging.Level = "debug"
	case quiet:
		cfg.Logging.Level = "error"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(cfg.Logging.Level, cfg.Logging.Format)
}

// openGraph connects the graph backend only; import uses it without sessions
func openGraph(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	if err := cfg.RequireGraph(); err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}

	var embedder graph.Embedder
	if cfg.OpenAI.APIKey != "" {
		client, err := llm.NewOpenAIClientWithConfig(llm.ConfigFrom(cfg.OpenAI))
		if err != nil {
			return nil, err
		}
		embedder = client
	}

	if cfg.Offline() {
		catalog, err := storage.LoadCatalog(cfg.Catalog)
		if err != nil {
			return nil, err
		}
		if embedder == nil {
			log.Info("no OpenAI key, using the n-gram embedder")
			embedder = storage.GramEmbedder{}
		}
		g, err := storage.NewMemoryGraph(ctx, catalog, embedder, log)
		if err != nil {
			return nil, err
		}
		a.graph = g
		return a, nil
	}

	if embedder == nil {
		return nil, errors.New("OPENAI_API_KEY is required with the neo4j backend; use --offline for a local catalog")
	}
	store, err := graph.NewNeo4jStore(ctx, cfg.Neo4j, embedder, log)
	if err != nil {
		return nil, err
	}
	a.graph = store
	a.neo4j = store
	a.closers = append(a.closers, store.Close)
	return a, nil
}

// newApp wires everything a conversation needs
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a, err := openGraph(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	var labeler core.IntentLabeler = core.KeywordLabeler{}
	if cfg.OpenAI.APIKey != "" {
		client, err := llm.NewOpenAIClientWithConfig(llm.ConfigFrom(cfg.OpenAI))
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		labeler = client
	}

	store, err := a.sessionStore(ctx)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	var history core.ChoiceLog
	if cfg.Charm.Enabled {
		client, err := charm.NewClient(charm.ConfigFrom(cfg.Charm))
		if err != nil {
			log.Warn("charm history disabled", zap.Error(err))
		} else {
			history = charm.NewHistory(client)
			a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		}
	}

	opts := core.Options{
		MenuSuggestions: cfg.Dialogue.MenuSuggestions,
		MoodTags:        cfg.Dialogue.MoodTags,
		RecommendLimit:  cfg.Dialogue.RecommendLimit,
		Cuisines:        cfg.Dialogue.Cuisines,
	}
	controller := core.NewController(a.graph,
		core.NewIntentClassifier(labeler, log),
		core.NewChoiceRecorder(a.graph, history, log),
		opts, log)
	a.chat = chat.NewService(session.NewManager(store), controller, a.graph, log)
	return a, nil
}

func (a *app) sessionStore(ctx context.Context) (session.Store, error) {
	if a.cfg.Sessions.Backend != config.SessionBackendRedis {
		return session.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Address,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", a.cfg.Redis.Address, err)
	}
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	return session.NewRedisStore(client, a.cfg.Redis.SessionTTL), nil
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn("error during shutdown", zap.Error(err))
		}
	}
	a.closers = nil
}

// setup loads config, builds the logger and wires the app
func setup(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return a, nil
}
