// ABOUTME: Parameterized Cypher for menu lookup, tag lookup, recommendation and writes
// ABOUTME: Builders return the statement and its parameters; nothing here talks to the database
package graph

import (
	"fmt"
	"time"

	"github.com/harper/dongne/internal/models"
)

// Vector index names
const (
	MenuIndex = "menu_embedding_index"
	TagIndex  = "tag_embedding_index"
)

// ExactMenuLimit caps the exact-match lookup before name deduplication
const ExactMenuLimit = 5

// similarityOverfetch widens the vector search so cuisine filtering still leaves k rows
const similarityOverfetch = 5

// Query is one Cypher statement with its parameters
type Query struct {
	Cypher string
	Params map[string]any
}

const exactMenusCypher = `
MATCH (:Cuisine {name: $cuisine})<-[:OF_CUISINE]-(m:Menu)
WITH m, toLower(replace(m.name, ' ', '')) AS norm
WHERE norm CONTAINS $text OR $text CONTAINS norm
RETURN m.id AS menu_id, m.name AS menu_name
ORDER BY m.name ASC, m.id ASC
LIMIT $limit`

// ExactMenus matches the normalized text against menu names of one cuisine,
// containment in either direction. Ordering makes the first row stable.
func ExactMenus(cuisine, text string) Query {
	return Query{
		Cypher: exactMenusCypher,
		Params: map[string]any{
			"cuisine": cuisine,
			"text":    models.NormalizeName(text),
			"limit":   ExactMenuLimit,
		},
	}
}

const similarMenusCypher = `
CALL db.index.vector.queryNodes('` + MenuIndex + `', $top_k, $embedding)
YIELD node, score
MATCH (node:Menu)-[:OF_CUISINE]->(:Cuisine {name: $cuisine})
RETURN node.id AS menu_id, node.name AS menu_name, score
ORDER BY score DESC
LIMIT $k`

// SimilarMenus searches k*5 nearest menus and keeps the top k of the cuisine
func SimilarMenus(cuisine string, embedding []float64, k int) Query {
	return Query{
		Cypher: similarMenusCypher,
		Params: map[string]any{
			"cuisine":   cuisine,
			"embedding": embedding,
			"top_k":     k * similarityOverfetch,
			"k":         k,
		},
	}
}

const moodTagsCypher = `
CALL db.index.vector.queryNodes('` + TagIndex + `', $k, $embedding)
YIELD node, score
RETURN node.name AS tag, score
ORDER BY score DESC`

// MoodTags returns the k tags nearest to a mood description
func MoodTags(embedding []float64, k int) Query {
	return Query{
		Cypher: moodTagsCypher,
		Params: map[string]any{
			"embedding": embedding,
			"k":         k,
		},
	}
}

const recommendByMenuCypher = `
MATCH (p:Place)-[:SERVES]->(:Cuisine {name: $cuisine})
MATCH (p)-[:SERVES_MENU]->(m:Menu)
WHERE toLower(replace(m.name, ' ', '')) CONTAINS $menu
WITH p, collect(DISTINCT m.id) AS menu_ids
OPTIONAL MATCH (p)-[:HAS_TAG]->(t:Tag)
WITH p, menu_ids, collect(DISTINCT t.name) AS all_tags
WITH p, menu_ids, [tag IN $tags WHERE tag IN all_tags] AS matched_tags
RETURN p.id AS place_id, p.name AS place_name, menu_ids, matched_tags, size(matched_tags) AS score
ORDER BY score DESC, place_name ASC
LIMIT $limit`

const recommendByCuisineCypher = `
MATCH (p:Place)-[:SERVES]->(:Cuisine {name: $cuisine})
WITH DISTINCT p
OPTIONAL MATCH (p)-[:HAS_TAG]->(t:Tag)
WITH p, collect(DISTINCT t.name) AS all_tags
WITH p, [tag IN $tags WHERE tag IN all_tags] AS matched_tags
RETURN p.id AS place_id, p.name AS place_name, [] AS menu_ids, matched_tags, size(matched_tags) AS score
ORDER BY score DESC, place_name ASC
LIMIT $limit`

// Recommend picks the menu+tag statement when a menu is set, else cuisine+tag
func Recommend(req models.RecommendRequest) Query {
	limit := req.Limit
	if limit <= 0 {
		limit = models.DefaultRecommendLimit
	}
	params := map[string]any{
		"cuisine": req.Cuisine,
		"tags":    uniqueStrings(req.MoodTags),
		"limit":   limit,
	}

	if req.MenuName == "" {
		return Query{Cypher: recommendByCuisineCypher, Params: params}
	}
	params["menu"] = models.NormalizeName(req.MenuName)
	return Query{Cypher: recommendByMenuCypher, Params: params}
}

const createChoiceCypher = `
MATCH (u:User {id: $user_id})
MATCH (p:Place {id: $place_id})
OPTIONAL MATCH (m:Menu {id: $menu_id})
CREATE (c:Choice {
  id: $choice_id,
  decided_at: $decided_at,
  session_id: $session_id,
  cuisine: $cuisine,
  mood_tags: $mood_tags,
  menu_text: $menu_text,
  score: $score
})
MERGE (u)-[:MADE]->(c)
MERGE (c)-[:AT_PLACE]->(p)
FOREACH (_ IN CASE WHEN m IS NULL THEN [] ELSE [1] END | MERGE (c)-[:OF_MENU]->(m))
RETURN c.id AS choice_id`

// CreateChoice writes one immutable Choice node and its relationships
func CreateChoice(c *models.Choice) Query {
	var menuID any
	if c.MenuID != "" {
		menuID = c.MenuID
	}
	tags := c.MoodTags
	if tags == nil {
		tags = []string{}
	}
	return Query{
		Cypher: createChoiceCypher,
		Params: map[string]any{
			"user_id":    c.UserID,
			"place_id":   c.PlaceID,
			"menu_id":    menuID,
			"choice_id":  c.ChoiceID,
			"decided_at": c.DecidedAt.UTC().Truncate(time.Millisecond),
			"session_id": c.SessionID,
			"cuisine":    c.Cuisine,
			"mood_tags":  tags,
			"menu_text":  c.MenuText,
			"score":      c.Score,
		},
	}
}

const ensureUserCypher = `
MERGE (u:User {id: $user_id})
ON CREATE SET u.created_at = timestamp()`

// EnsureUser registers a user id
func EnsureUser(userID string) Query {
	return Query{Cypher: ensureUserCypher, Params: map[string]any{"user_id": userID}}
}

const importProfileCypher = `
MERGE (p:Place {id: $place_id})
SET p.name = $store_name
FOREACH (cname IN $cuisines |
  MERGE (c:Cuisine {name: cname})
  MERGE (p)-[:SERVES]->(c))
FOREACH (tag IN $tags |
  MERGE (t:Tag {name: tag.name})
  MERGE (p)-[r:HAS_TAG]->(t)
  SET r.count = tag.count)`

// ImportProfile upserts a place with its cuisines and tag counts
func ImportProfile(p models.PlaceProfile) Query {
	tags := make([]map[string]any, 0, len(p.TagCounts))
	for _, name := range p.TagNames() {
		tags = append(tags, map[string]any{"name": name, "count": p.TagCounts[name]})
	}
	cuisines := p.Cuisine
	if cuisines == nil {
		cuisines = []string{}
	}
	return Query{
		Cypher: importProfileCypher,
		Params: map[string]any{
			"place_id":   p.PlaceID,
			"store_name": p.StoreName,
			"cuisines":   cuisines,
			"tags":       tags,
		},
	}
}

const tagsMissingEmbeddingCypher = `
MATCH (t:Tag)
WHERE t.embedding IS NULL
RETURN t.name AS tag
ORDER BY t.name`

// TagsMissingEmbedding lists tags that the tag vector index cannot see yet
func TagsMissingEmbedding() Query {
	return Query{Cypher: tagsMissingEmbeddingCypher, Params: map[string]any{}}
}

const setTagEmbeddingCypher = `
MATCH (t:Tag {name: $tag})
SET t.embedding = $embedding`

// SetTagEmbedding stores a tag's vector
func SetTagEmbedding(tag string, embedding []float64) Query {
	return Query{
		Cypher: setTagEmbeddingCypher,
		Params: map[string]any{"tag": tag, "embedding": embedding},
	}
}

// SchemaStatements returns the constraints and vector indexes the queries rely on.
// Index options cannot be parameters, so the dimension is formatted in.
func SchemaStatements(dimension int) []Query {
	constraint := func(name, label, prop string) Query {
		return Query{
			Cypher: fmt.Sprintf("CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE", name, label, prop),
			Params: map[string]any{},
		}
	}
	vectorIndex := func(name, label string) Query {
		return Query{
			Cypher: fmt.Sprintf("CREATE VECTOR INDEX %s IF NOT EXISTS FOR (n:%s) ON (n.embedding) "+
				"OPTIONS {indexConfig: {`vector.dimensions`: %d, `vector.similarity_function`: 'cosine'}}",
				name, label, dimension),
			Params: map[string]any{},
		}
	}
	return []Query{
		constraint("place_id_unique", "Place", "id"),
		constraint("menu_id_unique", "Menu", "id"),
		constraint("user_id_unique", "User", "id"),
		constraint("choice_id_unique", "Choice", "id"),
		constraint("cuisine_name_unique", "Cuisine", "name"),
		constraint("tag_name_unique", "Tag", "name"),
		vectorIndex(MenuIndex, "Menu"),
		vectorIndex(TagIndex, "Tag"),
	}
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
