// ABOUTME: Importer merges place profiles into the recommendation graph
// ABOUTME: Produces one report row per place so a batch never stops on a bad record
package profile

import (
	"context"
	"strings"

	"github.com/harper/dongne/internal/logger"
	"github.com/harper/dongne/internal/models"
	"go.uber.org/zap"
)

// Status is the outcome of importing one place
type Status string

const (
	StatusOK      Status = "OK"
	StatusFail    Status = "FAIL"
	StatusMissing Status = "MISSING"
)

// ReportRow is one line of the batch summary
type ReportRow struct {
	PlaceID    string `json:"place_id"`
	StoreName  string `json:"store_name"`
	CuisineRaw string `json:"cuisine_raw"`
	Status     Status `json:"status"`
	Error      string `json:"error,omitempty"`
}

// Writer MERGEs one profile's Place, Cuisine and Tag nodes
type Writer interface {
	ImportProfile(ctx context.Context, p models.PlaceProfile) error
}

// Importer writes profiles through a Writer
type Importer struct {
	writer Writer
	logger *zap.Logger
}

// NewImporter creates an Importer
func NewImporter(writer Writer, log *zap.Logger) *Importer {
	return &Importer{writer: writer, logger: logger.OrNop(log)}
}

// Import writes every profile. When list is non-empty it drives the batch:
// listed places without a profile are reported MISSING, unlisted profiles are
// skipped, and list cuisines fill profiles that have none.
func (im *Importer) Import(ctx context.Context, profiles []models.PlaceProfile, list []models.PlaceListEntry) []ReportRow {
	if len(list) == 0 {
		rows := make([]ReportRow, 0, len(profiles))
		for _, p := range profiles {
			rows = append(rows, im.importOne(ctx, p, strings.Join(p.Cuisine, ",")))
		}
		return rows
	}

	byID := make(map[string]models.PlaceProfile, len(profiles))
	for _, p := range profiles {
		byID[p.PlaceID] = p
	}

	rows := make([]ReportRow, 0, len(list))
	for _, entry := range list {
		row := ReportRow{PlaceID: entry.PlaceID, StoreName: entry.StoreName, CuisineRaw: entry.CuisineRaw}
		if entry.PlaceID == "" || entry.StoreName == "" {
			row.Status = StatusFail
			row.Error = "place_id/store_name missing"
			rows = append(rows, row)
			continue
		}

		p, ok := byID[entry.PlaceID]
		if !ok {
			row.Status = StatusMissing
			row.Error = "no " + entry.PlaceID + FileSuffix
			rows = append(rows, row)
			continue
		}
		if len(p.Cuisine) == 0 {
			p.Cuisine = entry.Cuisine
		}
		if p.StoreName == "" {
			p.StoreName = entry.StoreName
		}
		rows = append(rows, im.importOne(ctx, p, entry.CuisineRaw))
	}
	return rows
}

func (im *Importer) importOne(ctx context.Context, p models.PlaceProfile, cuisineRaw string) ReportRow {
	row := ReportRow{PlaceID: p.PlaceID, StoreName: p.StoreName, CuisineRaw: cuisineRaw, Status: StatusOK}

	err := p.Validate()
	if err == nil {
		err = im.writer.ImportProfile(ctx, p)
	}
	if err != nil {
		row.Status = StatusFail
		row.Error = err.Error()
		im.logger.Warn("failed to import place profile",
			zap.String("place_id", p.PlaceID),
			zap.Error(err))
		return row
	}

	im.logger.Debug("imported place profile",
		zap.String("place_id", p.PlaceID),
		zap.Int("tags", len(p.TagCounts)))
	return row
}

// Summarize counts report rows by status
func Summarize(rows []ReportRow) map[Status]int {
	out := map[Status]int{}
	for _, r := range rows {
		out[r.Status]++
	}
	return out
}
