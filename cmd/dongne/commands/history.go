// ABOUTME: History command lists a user's recorded choices from charm
// ABOUTME: Reads the same kv database the recorder mirrors choices into
package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/harper/dongne/internal/charm"
	"github.com/harper/dongne/internal/models"
	"github.com/spf13/cobra"
)

var historyUser string

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List a user's past choices",
		Long: `List the places a user picked, newest first.

Choices are mirrored into charm kv when charm.enabled is set,
so the history follows the user across linked machines.`,
		Example: `  dongne history --user harper
  dongne history --user harper --format json`,
		RunE: runHistory,
	}

	cmd.Flags().StringVar(&historyUser, "user", "", "User id (default $USER)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	user := historyUser
	if user == "" {
		user = os.Getenv("USER")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := charm.NewClient(charm.ConfigFrom(cfg.Charm))
	if err != nil {
		return err
	}
	defer client.Close()

	choices, err := charm.NewHistory(client).List(user)
	if err != nil {
		return fmt.Errorf("listing choices: %w", err)
	}
	return printChoices(cmd, choices)
}

func printChoices(cmd *cobra.Command, choices []models.ChoiceSummary) error {
	if len(choices) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No choices found\n")
		}
		return nil
	}

	if wantJSON() {
		data, err := json.MarshalIndent(choices, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "WHEN\tPLACE\tMENU\tCUISINE\tMOOD\tSCORE\n")
	fmt.Fprintf(w, "----\t-----\t----\t-------\t----\t-----\n")
	for _, c := range choices {
		menu := c.MenuText
		if menu == "" {
			menu = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			formatTime(c.DecidedAt),
			truncate(c.PlaceName, 24),
			truncate(menu, 16),
			c.Cuisine,
			truncate(strings.Join(c.MoodTags, ","), 24),
			c.Score)
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d choice(s)\n", len(choices))
	}
	return nil
}
