// ABOUTME: Neo4j-backed catalog, choice writer and profile importer
// ABOUTME: Embeds query text on every lookup and decodes records into model types
package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harper/dongne/internal/config"
	"github.com/harper/dongne/internal/logger"
	"github.com/harper/dongne/internal/metrics"
	"github.com/harper/dongne/internal/models"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ErrChoiceNotCreated means the user or place node was missing, so nothing was written
var ErrChoiceNotCreated = errors.New("choice not created: user or place not found")

// Embedder turns text into a vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Neo4jStore runs the dialogue's queries against a Neo4j database
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	embedder Embedder
	logger   *zap.Logger
}

// NewNeo4jStore connects and verifies connectivity
func NewNeo4jStore(ctx context.Context, cfg config.Neo4jConfig, embedder Embedder, log *zap.Logger) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to reach neo4j at %s: %w", cfg.URI, err)
	}

	return &Neo4jStore{
		driver:   driver,
		database: cfg.Database,
		embedder: embedder,
		logger:   logger.OrNop(log),
	}, nil
}

// Close releases the driver
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) read(ctx context.Context, q Query) (*neo4j.EagerResult, error) {
	return neo4j.ExecuteQuery(ctx, s.driver, q.Cypher, q.Params, neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database), neo4j.ExecuteQueryWithReadersRouting())
}

func (s *Neo4jStore) write(ctx context.Context, q Query) (*neo4j.EagerResult, error) {
	return neo4j.ExecuteQuery(ctx, s.driver, q.Cypher, q.Params, neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database), neo4j.ExecuteQueryWithWritersRouting())
}

// ExactMenus returns menus of the cuisine whose names contain or are contained
// in text, deduplicated by normalized name
func (s *Neo4jStore) ExactMenus(ctx context.Context, cuisine, text string) ([]models.MenuCandidate, error) {
	if models.NormalizeName(text) == "" {
		return nil, nil
	}

	var matches []models.MenuMatch
	err := metrics.Observe(metrics.CallExactMenus, func() error {
		res, err := s.read(ctx, ExactMenus(cuisine, text))
		if err != nil {
			return err
		}
		matches, err = decodeMenus(res.Records, false)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("exact menu lookup: %w", err)
	}
	return models.DedupeMenusNormalized(matches), nil
}

// SimilarMenus embeds text and returns the k most similar menus of the cuisine
func (s *Neo4jStore) SimilarMenus(ctx context.Context, cuisine, text string, k int) ([]models.MenuMatch, error) {
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed menu text: %w", err)
	}

	var matches []models.MenuMatch
	err = metrics.Observe(metrics.CallSimilarMenu, func() error {
		res, err := s.read(ctx, SimilarMenus(cuisine, embedding, k))
		if err != nil {
			return err
		}
		matches, err = decodeMenus(res.Records, true)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("similar menu lookup: %w", err)
	}
	return matches, nil
}

// MoodTags embeds a mood description and returns the k nearest tags
func (s *Neo4jStore) MoodTags(ctx context.Context, text string, k int) ([]models.TagMatch, error) {
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed mood text: %w", err)
	}

	var tags []models.TagMatch
	err = metrics.Observe(metrics.CallMoodTags, func() error {
		res, err := s.read(ctx, MoodTags(embedding, k))
		if err != nil {
			return err
		}
		tags, err = decodeTags(res.Records)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("mood tag lookup: %w", err)
	}
	return tags, nil
}

// RecommendPlaces ranks places by mood tag overlap
func (s *Neo4jStore) RecommendPlaces(ctx context.Context, req models.RecommendRequest) ([]models.PlaceRecommendation, error) {
	var recs []models.PlaceRecommendation
	err := metrics.Observe(metrics.CallRecommend, func() error {
		res, err := s.read(ctx, Recommend(req))
		if err != nil {
			return err
		}
		recs, err = decodeRecommendations(res.Records)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("recommendation query: %w", err)
	}
	return recs, nil
}

// SaveChoice creates the Choice node
func (s *Neo4jStore) SaveChoice(ctx context.Context, c *models.Choice) error {
	return metrics.Observe(metrics.CallSaveChoice, func() error {
		res, err := s.write(ctx, CreateChoice(c))
		if err != nil {
			return fmt.Errorf("create choice: %w", err)
		}
		if len(res.Records) == 0 {
			return ErrChoiceNotCreated
		}
		return nil
	})
}

// EnsureUser merges the User node
func (s *Neo4jStore) EnsureUser(ctx context.Context, userID string) error {
	return metrics.Observe(metrics.CallEnsureUser, func() error {
		if _, err := s.write(ctx, EnsureUser(userID)); err != nil {
			return fmt.Errorf("ensure user: %w", err)
		}
		return nil
	})
}

// EnsureSchema creates constraints and vector indexes if missing
func (s *Neo4jStore) EnsureSchema(ctx context.Context, dimension int) error {
	for _, q := range SchemaStatements(dimension) {
		if _, err := s.write(ctx, q); err != nil {
			return fmt.Errorf("schema statement %q: %w", firstLine(q.Cypher), err)
		}
	}
	s.logger.Info("graph schema ensured", zap.Int("dimension", dimension))
	return nil
}

// ImportProfile upserts one place profile
func (s *Neo4jStore) ImportProfile(ctx context.Context, p models.PlaceProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, err := s.write(ctx, ImportProfile(p)); err != nil {
		return fmt.Errorf("import place %s: %w", p.PlaceID, err)
	}
	return nil
}

// EmbedMissingTags computes embeddings for tags the vector index cannot see yet
func (s *Neo4jStore) EmbedMissingTags(ctx context.Context) (int, error) {
	res, err := s.read(ctx, TagsMissingEmbedding())
	if err != nil {
		return 0, fmt.Errorf("list tags without embedding: %w", err)
	}

	count := 0
	for _, rec := range res.Records {
		tag, _, err := neo4j.GetRecordValue[string](rec, "tag")
		if err != nil {
			return count, err
		}
		embedding, err := s.embedder.Embed(ctx, tag)
		if err != nil {
			return count, fmt.Errorf("embed tag %q: %w", tag, err)
		}
		if _, err := s.write(ctx, SetTagEmbedding(tag, embedding)); err != nil {
			return count, fmt.Errorf("store tag embedding %q: %w", tag, err)
		}
		count++
	}
	return count, nil
}

func decodeMenus(records []*neo4j.Record, withScore bool) ([]models.MenuMatch, error) {
	out := make([]models.MenuMatch, 0, len(records))
	for _, rec := range records {
		id, err := stringValue(rec, "menu_id")
		if err != nil {
			return nil, err
		}
		name, _, err := neo4j.GetRecordValue[string](rec, "menu_name")
		if err != nil {
			return nil, err
		}
		m := models.MenuMatch{MenuID: id, MenuName: name}
		if withScore {
			if m.Score, _, err = neo4j.GetRecordValue[float64](rec, "score"); err != nil {
				return nil, err
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func decodeTags(records []*neo4j.Record) ([]models.TagMatch, error) {
	out := make([]models.TagMatch, 0, len(records))
	for _, rec := range records {
		tag, _, err := neo4j.GetRecordValue[string](rec, "tag")
		if err != nil {
			return nil, err
		}
		score, _, err := neo4j.GetRecordValue[float64](rec, "score")
		if err != nil {
			return nil, err
		}
		out = append(out, models.TagMatch{Tag: tag, Score: score})
	}
	return out, nil
}

func decodeRecommendations(records []*neo4j.Record) ([]models.PlaceRecommendation, error) {
	out := make([]models.PlaceRecommendation, 0, len(records))
	for _, rec := range records {
		id, err := stringValue(rec, "place_id")
		if err != nil {
			return nil, err
		}
		name, _, err := neo4j.GetRecordValue[string](rec, "place_name")
		if err != nil {
			return nil, err
		}
		menuIDs, err := stringList(rec, "menu_ids")
		if err != nil {
			return nil, err
		}
		tags, err := stringList(rec, "matched_tags")
		if err != nil {
			return nil, err
		}
		score, _, err := neo4j.GetRecordValue[int64](rec, "score")
		if err != nil {
			return nil, err
		}
		out = append(out, models.PlaceRecommendation{
			PlaceID:        id,
			PlaceName:      name,
			MatchedMenuIDs: menuIDs,
			MatchedTags:    tags,
			Score:          int(score),
		})
	}
	return out, nil
}

// stringValue reads an id that may have been stored as a string or an integer
func stringValue(rec *neo4j.Record, key string) (string, error) {
	raw, ok := rec.Get(key)
	if !ok {
		return "", fmt.Errorf("record has no %q column", key)
	}
	switch v := raw.(type) {
	case string:
		return v, nil
	case int64:
		return fmt.Sprintf("%d", v), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("column %q: unexpected type %T", key, raw)
	}
}

func stringList(rec *neo4j.Record, key string) ([]string, error) {
	raw, isNil, err := neo4j.GetRecordValue[[]any](rec, key)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	if isNil {
		return out, nil
	}
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case int64:
			out = append(out, fmt.Sprintf("%d", v))
		}
	}
	return out, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
