// ABOUTME: Tests for profile parsing, the place list reader and the importer
// ABOUTME: Uses temp dirs and a recording Writer
package profile

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/dongne/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestParseCuisineTokens(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   []string
	}{
		{"quoted list", []string{`"치킨","닭강정"`}, []string{"치킨", "닭강정"}},
		{"split tokens", []string{"한식,", "분식"}, []string{"한식", "분식"}},
		{"repeats and blanks", []string{"한식, , 한식,'중식'"}, []string{"한식", "중식"}},
		{"empty", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCuisineTokens(tt.tokens...))
		})
	}
}

func TestCountTags(t *testing.T) {
	rows := [][]string{
		{"맛있어요", "맛있어요", " 친절해요 "},
		{"맛있어요", ""},
	}

	assert.Equal(t, map[string]int{"맛있어요": 2, "친절해요": 1}, CountTags(rows, true))
	assert.Equal(t, map[string]int{"맛있어요": 3, "친절해요": 1}, CountTags(rows, false))
}

func TestSaveAndLoadDir(t *testing.T) {
	dir := t.TempDir()
	p2 := models.PlaceProfile{PlaceID: "200", StoreName: "골목식당", TagCounts: map[string]int{"조용해요": 3}}
	p1 := models.PlaceProfile{PlaceID: "100", StoreName: "한옥집", Cuisine: []string{"한식"},
		TagCounts: map[string]int{"맛있어요": 6}}

	path, err := Save(dir, p2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "200_tags.json"), path)
	_, err = Save(dir, p1)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	got, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "100", got[0].PlaceID)
	assert.Equal(t, []string{}, got[1].Cuisine)
	assert.Equal(t, 3, got[1].TagCounts["조용해요"])
}

func TestSave_RejectsInvalid(t *testing.T) {
	_, err := Save(t.TempDir(), models.PlaceProfile{StoreName: "x"})
	assert.Error(t, err)
}

func TestLoadDir_BadJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1_tags.json"), []byte("{"), 0o644))

	_, err := LoadDir(dir)
	assert.Error(t, err)
}

func TestReadPlaceList_BOMAndNameColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "place_list.csv")
	content := "\xEF\xBB\xBFname,place_id,cuisine\n" +
		"신통치킨 단국대점,31751923,\"\"\"치킨\"\",\"\"닭강정\"\"\"\n" +
		",999,한식\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, err := ReadPlaceList(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "31751923", entries[0].PlaceID)
	assert.Equal(t, "신통치킨 단국대점", entries[0].StoreName)
	assert.Equal(t, []string{"치킨", "닭강정"}, entries[0].Cuisine)
	assert.Equal(t, "", entries[1].StoreName)
}

func TestParsePlaceList_RequiresPlaceID(t *testing.T) {
	_, err := ParsePlaceList(strings.NewReader("store_name,cuisine\n"))
	assert.Error(t, err)

	_, err = ParsePlaceList(strings.NewReader(""))
	assert.Error(t, err)
}

type recordingWriter struct {
	imported []models.PlaceProfile
	failOn   string
}

func (w *recordingWriter) ImportProfile(_ context.Context, p models.PlaceProfile) error {
	if p.PlaceID == w.failOn {
		return errors.New("graph unavailable")
	}
	w.imported = append(w.imported, p)
	return nil
}

func TestImporter_WithoutList(t *testing.T) {
	w := &recordingWriter{failOn: "2"}
	im := NewImporter(w, zaptest.NewLogger(t))

	rows := im.Import(context.Background(), []models.PlaceProfile{
		{PlaceID: "1", StoreName: "한옥집", Cuisine: []string{"한식", "분식"}},
		{PlaceID: "2", StoreName: "골목식당"},
		{PlaceID: "3"},
	}, nil)

	require.Len(t, rows, 3)
	assert.Equal(t, StatusOK, rows[0].Status)
	assert.Equal(t, "한식,분식", rows[0].CuisineRaw)
	assert.Equal(t, StatusFail, rows[1].Status)
	assert.Contains(t, rows[1].Error, "graph unavailable")
	assert.Equal(t, StatusFail, rows[2].Status)
	assert.Len(t, w.imported, 1)
	assert.Equal(t, map[Status]int{StatusOK: 1, StatusFail: 2}, Summarize(rows))
}

func TestImporter_WithList(t *testing.T) {
	w := &recordingWriter{}
	im := NewImporter(w, zaptest.NewLogger(t))

	profiles := []models.PlaceProfile{
		{PlaceID: "1", StoreName: "한옥집", TagCounts: map[string]int{"조용해요": 2}},
		{PlaceID: "9", StoreName: "목록에 없음"},
	}
	list := []models.PlaceListEntry{
		{PlaceID: "1", StoreName: "한옥집", CuisineRaw: "한식", Cuisine: []string{"한식"}},
		{PlaceID: "2", StoreName: "골목식당", CuisineRaw: "한식", Cuisine: []string{"한식"}},
		{PlaceID: "", StoreName: "이름만"},
	}

	rows := im.Import(context.Background(), profiles, list)
	require.Len(t, rows, 3)
	assert.Equal(t, StatusOK, rows[0].Status)
	assert.Equal(t, StatusMissing, rows[1].Status)
	assert.Equal(t, StatusFail, rows[2].Status)

	require.Len(t, w.imported, 1)
	assert.Equal(t, []string{"한식"}, w.imported[0].Cuisine, "list cuisine fills an empty profile")
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReport(&buf, []ReportRow{
		{PlaceID: "1", StoreName: "한옥집", CuisineRaw: "한식", Status: StatusOK},
		{PlaceID: "2", StoreName: "골목, 식당", Status: StatusFail, Error: "boom"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\xEF\xBB\xBFplace_id,store_name,cuisine_raw,status,error\n"))
	assert.Contains(t, out, "1,한옥집,한식,OK,\n")
	assert.Contains(t, out, "2,\"골목, 식당\",,FAIL,boom\n")

	entries, err := ParsePlaceList(strings.NewReader(strings.TrimPrefix(out, "\xEF\xBB\xBF")))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
