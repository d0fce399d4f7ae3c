// ABOUTME: dongne version command
// ABOUTME: Prints the release, commit, build date and Go runtime, as text or JSON
package commands

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionInfo = VersionInfo{
	Version: "dev",
	Commit:  "none",
	Date:    "unknown",
}

// VersionInfo is stamped into the binary by the release build via SetVersion
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

// SetVersion records build metadata; main calls it before Execute
func SetVersion(version, commit, date string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.Date = date
}

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show which dongne build is running",
		Long: `Print the dongne release, the commit it was built from, the build date
and the Go runtime. With --format json the same fields are printed as one object.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := versionInfo
			info.Go = runtime.Version()

			out := cmd.OutOrStdout()
			if wantJSON() {
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode version: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			fmt.Fprintf(out, "dongne %s\n", info.Version)
			fmt.Fprintf(out, "Commit: %s\n", info.Commit)
			fmt.Fprintf(out, "Built:  %s\n", info.Date)
			fmt.Fprintf(out, "Go:     %s\n", info.Go)
			return nil
		},
	}
}
