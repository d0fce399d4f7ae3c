// ABOUTME: Root command and global flags for the dongne CLI
// ABOUTME: Global flags pick the config file, offline catalog, verbosity and output format
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	verbose        bool
	quiet          bool
	outputFormat   string
	configPath     string
	offlineCatalog string
)

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dongne",
		Short: "Conversational neighborhood restaurant recommender",
		Long: `
██████╗  ██████╗ ███╗   ██╗ ██████╗ ███╗   ██╗███████╗
██╔══██╗██╔═══██╗████╗  ██║██╔════╝ ████╗  ██║██╔════╝
██║  ██║██║   ██║██╔██╗ ██║██║  ███╗██╔██╗ ██║█████╗
██║  ██║██║   ██║██║╚██╗██║██║   ██║██║╚██╗██║██╔══╝
██████╔╝╚██████╔╝██║ ╚████║╚██████╔╝██║ ╚████║███████╗
╚═════╝  ╚═════╝ ╚═╝  ╚═══╝ ╚═════╝ ╚═╝  ╚═══╝╚══════╝

Asks for a cuisine, a menu and a mood, then recommends places
from a Neo4j restaurant graph and records the one you pick.

Run it as an HTTP API (serve), a terminal chat (chat) or an
MCP server for LLM agents (mcp).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return errors.New("--verbose and --quiet are mutually exclusive")
			}
			switch outputFormat {
			case "auto", "table", "json":
			default:
				return fmt.Errorf("--format must be auto, table or json, got %q", outputFormat)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors and suppress hints")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table or json")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./dongne.yaml)")
	cmd.PersistentFlags().StringVar(&offlineCatalog, "offline", "", "Use an in-memory graph loaded from this catalog JSON instead of Neo4j")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewChatCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
