// ABOUTME: Reads the batch place_list.csv and writes the batch summary CSV
// ABOUTME: Headers are matched by name; a UTF-8 byte order mark is tolerated
package profile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/harper/dongne/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadPlaceList reads place_id, store_name (or name) and cuisine columns
func ReadPlaceList(path string) ([]models.PlaceListEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read place list: %w", err)
	}
	return ParsePlaceList(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
}

// ParsePlaceList parses place list CSV from r
func ParsePlaceList(r io.Reader) ([]models.PlaceListEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("place list is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read place list header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["place_id"]; !ok {
		return nil, errors.New("place list has no place_id column")
	}
	field := func(rec []string, names ...string) string {
		for _, n := range names {
			if i, ok := col[n]; ok && i < len(rec) {
				if v := strings.TrimSpace(rec[i]); v != "" {
					return v
				}
			}
		}
		return ""
	}

	var entries []models.PlaceListEntry
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read place list: %w", err)
		}

		raw := field(rec, "cuisine")
		entries = append(entries, models.PlaceListEntry{
			PlaceID:    field(rec, "place_id"),
			StoreName:  field(rec, "store_name", "name"),
			CuisineRaw: raw,
			Cuisine:    ParseCuisineTokens(raw),
		})
	}
	return entries, nil
}

// WriteReport writes the batch summary with a BOM so spreadsheet tools pick UTF-8
func WriteReport(w io.Writer, rows []ReportRow) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"place_id", "store_name", "cuisine_raw", "status", "error"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.PlaceID, r.StoreName, r.CuisineRaw, string(r.Status), r.Error}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
