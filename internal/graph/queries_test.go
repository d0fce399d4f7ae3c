// ABOUTME: Tests for Cypher builders and record decoding
// ABOUTME: Checks parameters, statement selection and list/number conversion
package graph

import (
	"strings"
	"testing"
	"time"

	"github.com/harper/dongne/internal/models"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactMenus_NormalizesText(t *testing.T) {
	q := ExactMenus("한식", " 김치 찌개 ")

	assert.Equal(t, "한식", q.Params["cuisine"])
	assert.Equal(t, "김치찌개", q.Params["text"])
	assert.Equal(t, ExactMenuLimit, q.Params["limit"])
	assert.Contains(t, q.Cypher, "norm CONTAINS $text OR $text CONTAINS norm")
	assert.Contains(t, q.Cypher, "ORDER BY m.name ASC, m.id ASC")
}

func TestSimilarMenus_OverfetchesFiveTimes(t *testing.T) {
	q := SimilarMenus("중식", []float64{0.1, 0.2}, 5)

	assert.Equal(t, 25, q.Params["top_k"])
	assert.Equal(t, 5, q.Params["k"])
	assert.Contains(t, q.Cypher, MenuIndex)
	assert.Contains(t, q.Cypher, "ORDER BY score DESC")
}

func TestMoodTags(t *testing.T) {
	q := MoodTags([]float64{1}, 4)

	assert.Equal(t, 4, q.Params["k"])
	assert.Contains(t, q.Cypher, TagIndex)
}

func TestRecommend_SelectsStatementByMenu(t *testing.T) {
	withMenu := Recommend(models.RecommendRequest{
		Cuisine:  "한식",
		MenuName: "김치 찌개",
		MoodTags: []string{"조용한", "데이트", "조용한"},
		Limit:    3,
	})
	assert.Contains(t, withMenu.Cypher, "SERVES_MENU")
	assert.Equal(t, "김치찌개", withMenu.Params["menu"])
	assert.Equal(t, []string{"조용한", "데이트"}, withMenu.Params["tags"], "duplicate mood tags are scored once")
	assert.Equal(t, 3, withMenu.Params["limit"])

	cuisineOnly := Recommend(models.RecommendRequest{Cuisine: "한식", MoodTags: []string{"조용한"}})
	assert.NotContains(t, cuisineOnly.Cypher, "SERVES_MENU")
	assert.NotContains(t, cuisineOnly.Params, "menu")
	assert.Equal(t, models.DefaultRecommendLimit, cuisineOnly.Params["limit"])

	for _, q := range []Query{withMenu, cuisineOnly} {
		assert.Contains(t, q.Cypher, "ORDER BY score DESC, place_name ASC")
	}
}

func TestCreateChoice_NullMenuWhenAbsent(t *testing.T) {
	decided := time.Date(2026, 5, 1, 12, 0, 0, 123456789, time.UTC)
	q := CreateChoice(&models.Choice{
		ChoiceID:  "c1",
		UserID:    "u1",
		PlaceID:   "p1",
		Cuisine:   "한식",
		DecidedAt: decided,
	})

	assert.Nil(t, q.Params["menu_id"])
	assert.Equal(t, []string{}, q.Params["mood_tags"])
	assert.Equal(t, decided.Truncate(time.Millisecond), q.Params["decided_at"])
	assert.Contains(t, q.Cypher, "MERGE (u)-[:MADE]->(c)")
	assert.Contains(t, q.Cypher, "MERGE (c)-[:AT_PLACE]->(p)")
	assert.Contains(t, q.Cypher, "MERGE (c)-[:OF_MENU]->(m)")
	assert.Contains(t, q.Cypher, "CREATE (c:Choice")

	withMenu := CreateChoice(&models.Choice{ChoiceID: "c2", MenuID: "m9"})
	assert.Equal(t, "m9", withMenu.Params["menu_id"])
}

func TestImportProfile_TagsOrderedByCount(t *testing.T) {
	q := ImportProfile(models.PlaceProfile{
		PlaceID:   "123",
		StoreName: "한옥집",
		Cuisine:   []string{"한식"},
		TagCounts: map[string]int{"친절해요": 2, "맛있어요": 9},
	})

	tags := q.Params["tags"].([]map[string]any)
	require.Len(t, tags, 2)
	assert.Equal(t, "맛있어요", tags[0]["name"])
	assert.Equal(t, 9, tags[0]["count"])
	assert.Contains(t, q.Cypher, "HAS_TAG")
}

func TestSchemaStatements(t *testing.T) {
	stmts := SchemaStatements(768)

	require.Len(t, stmts, 8)
	var vector int
	for _, s := range stmts {
		assert.Contains(t, s.Cypher, "IF NOT EXISTS")
		if strings.Contains(s.Cypher, "VECTOR INDEX") {
			vector++
			assert.Contains(t, s.Cypher, "`vector.dimensions`: 768")
		}
	}
	assert.Equal(t, 2, vector)
}

func record(keys []string, values ...any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

func TestDecodeMenus(t *testing.T) {
	keys := []string{"menu_id", "menu_name", "score"}
	got, err := decodeMenus([]*neo4j.Record{
		record(keys, "m1", "짬뽕", 0.91),
		record(keys, int64(42), "짜장면", 0.80),
	}, true)

	require.NoError(t, err)
	assert.Equal(t, []models.MenuMatch{
		{MenuID: "m1", MenuName: "짬뽕", Score: 0.91},
		{MenuID: "42", MenuName: "짜장면", Score: 0.80},
	}, got)
}

func TestDecodeTags(t *testing.T) {
	got, err := decodeTags([]*neo4j.Record{record([]string{"tag", "score"}, "조용한", 0.7)})

	require.NoError(t, err)
	assert.Equal(t, []models.TagMatch{{Tag: "조용한", Score: 0.7}}, got)
}

func TestDecodeRecommendations(t *testing.T) {
	keys := []string{"place_id", "place_name", "menu_ids", "matched_tags", "score"}
	got, err := decodeRecommendations([]*neo4j.Record{
		record(keys, "p1", "한옥집", []any{"m1", int64(7)}, []any{"조용한"}, int64(1)),
		record(keys, "p2", "골목집", []any{}, nil, int64(0)),
	})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"m1", "7"}, got[0].MatchedMenuIDs)
	assert.Equal(t, 1, got[0].Score)
	assert.Equal(t, []string{}, got[1].MatchedTags)
}

func TestDecodeRecommendations_MissingColumn(t *testing.T) {
	_, err := decodeRecommendations([]*neo4j.Record{record([]string{"place_name"}, "x")})
	assert.Error(t, err)
}
