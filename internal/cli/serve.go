package cli

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/warden/internal/wire"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the supervision engine",
	Long: `Run the supervision engine: discover active workflows, watch each one
for consecutive polls with held tasks, and on reaching the held threshold
terminate the workflow and hand it to the remediation endpoint.

Runs until interrupted (SIGINT/SIGTERM); shutdown waits for every watcher
to stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := wire.Config()

		if v, _ := cmd.Flags().GetInt("poll-interval"); v > 0 {
			cfg.PollIntervalSeconds = v
		}
		if v, _ := cmd.Flags().GetInt("discovery-interval"); v > 0 {
			cfg.DiscoveryIntervalSeconds = v
		}
		if v, _ := cmd.Flags().GetInt("held-threshold"); v > 0 {
			cfg.HeldThreshold = v
		}
		if v, _ := cmd.Flags().GetString("metrics-listen"); v != "" {
			cfg.MetricsListen = v
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := wire.Logger()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.MetricsListen != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			server := &http.Server{Addr: cfg.MetricsListen, Handler: mux}
			go func() {
				logger.Info("metrics listener started", zap.String("addr", cfg.MetricsListen))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics listener failed", zap.Error(err))
				}
			}()
			defer server.Close()
		}

		return wire.Supervisor().Run(ctx)
	},
}

func init() {
	serveCmd.Flags().Int("poll-interval", 0, "Per-workflow poll interval in seconds (overrides config)")
	serveCmd.Flags().Int("discovery-interval", 0, "Discovery scan interval in seconds (overrides config)")
	serveCmd.Flags().Int("held-threshold", 0, "Consecutive held polls before escalation (overrides config)")
	serveCmd.Flags().String("metrics-listen", "", "Prometheus metrics listen address, e.g. :9090 (overrides config)")
}

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	return serveCmd
}
