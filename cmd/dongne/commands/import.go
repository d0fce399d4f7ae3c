// ABOUTME: Import command loads <place_id>_tags.json profiles into the graph
// ABOUTME: Optionally bootstraps the schema, embeds new tags and writes a batch summary CSV
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harper/dongne/internal/models"
	"github.com/harper/dongne/internal/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importPlaceList    string
	importReport       string
	importEnsureSchema bool
	importEmbedTags    bool
)

// NewImportCmd creates the import command
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Import place tag profiles into the graph",
		Long: `Import place profiles (<place_id>_tags.json) into the graph.

Each profile MERGEs its Place, Cuisine and Tag nodes with SERVES
and HAS_TAG{count} edges. With --place-list the CSV drives the
batch and listed places without a profile are reported MISSING.`,
		Example: `  dongne import outputs/places_json
  dongne import outputs/places_json --place-list place_list.csv --report summary.csv
  dongne import outputs/places_json --ensure-schema`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringVar(&importPlaceList, "place-list", "", "place_list.csv with place_id, store_name and cuisine columns")
	cmd.Flags().StringVar(&importReport, "report", "", "Write the batch summary CSV to this path")
	cmd.Flags().BoolVar(&importEnsureSchema, "ensure-schema", false, "Create constraints and vector indexes first")
	cmd.Flags().BoolVar(&importEmbedTags, "embed-tags", true, "Embed tags that have no vector yet")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	profiles, err := profile.LoadDir(args[0])
	if err != nil {
		return err
	}
	var list []models.PlaceListEntry
	if importPlaceList != "" {
		list, err = profile.ReadPlaceList(importPlaceList)
		if err != nil {
			return err
		}
	}

	a, err := openGraph(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if a.neo4j == nil && !quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), "offline catalog: profiles are validated in memory, nothing is persisted")
	}
	if importEnsureSchema && a.neo4j != nil {
		if err := a.neo4j.EnsureSchema(ctx, cfg.Neo4j.VectorDimension); err != nil {
			return err
		}
	}

	rows := profile.NewImporter(a.graph, log).Import(ctx, profiles, list)

	if importEmbedTags && a.neo4j != nil {
		n, err := a.neo4j.EmbedMissingTags(ctx)
		if err != nil {
			log.Warn("tag embedding stopped early", zap.Int("embedded", n), zap.Error(err))
		} else {
			log.Info("embedded new tags", zap.Int("count", n))
		}
	}

	if importReport != "" {
		f, err := os.Create(importReport)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		if err := profile.WriteReport(f, rows); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write report: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	return printImportRows(cmd, rows)
}

func printImportRows(cmd *cobra.Command, rows []profile.ReportRow) error {
	if wantJSON() {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	if verbose {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "PLACE ID\tSTORE\tSTATUS\tERROR\n")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.PlaceID, truncate(r.StoreName, 24), r.Status, truncate(r.Error, 40))
		}
		w.Flush()
	}

	counts := profile.Summarize(rows)
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Total: %d  OK: %d  FAIL: %d  MISSING: %d\n",
			len(rows), counts[profile.StatusOK], counts[profile.StatusFail], counts[profile.StatusMissing])
	}
	if counts[profile.StatusFail] > 0 {
		return fmt.Errorf("%d place(s) failed to import", counts[profile.StatusFail])
	}
	return nil
}
