// ABOUTME: Serve command runs the HTTP API
// ABOUTME: Stops gracefully on SIGINT or SIGTERM
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/harper/dongne/internal/api"
	"github.com/spf13/cobra"
)

var serveAddr string

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the recommendation conversation as an HTTP API.

Endpoints live under /v1/sessions; /healthz and /metrics are served
at the root for probes and Prometheus.`,
		Example: `  dongne serve
  dongne serve --addr :9090
  dongne --offline catalog.json serve`,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from server.address)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if a.cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	addr := a.cfg.Server.Address
	if serveAddr != "" {
		addr = serveAddr
	}

	router := api.NewRouter(a.chat, a.cfg.Server.CORSOrigins, a.log)
	return api.NewServer(addr, router, a.log).Run(ctx)
}
