package probe

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/enhealth/pkg/logger"
)

// Default configuration constants.
const (
	defaultBaseURL = "http://localhost:5000"
	defaultRepeat  = 3
	defaultWorkers = 4
	defaultTimeout = 10 * time.Second
	defaultBudget  = 2 * time.Minute
)

// NewCommand builds the probe CLI.
func NewCommand() *cobra.Command {
	config := &Config{}
	var budget time.Duration
	var jsonLogs bool

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Smoke-test a running enhealth server",
		Long: `probe posts a canned payload to every prediction endpoint, checks that the
answer is 200 and identical across repeats, then drops one required field and
expects a 400 naming it.`,
		Example: `  probe
  probe --url http://localhost:8080 --repeat 10
  probe --report out/probe.json -v`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithWriter(cmd.OutOrStdout(), jsonLogs); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			if config.Verbose {
				_ = logger.SetLevelString("debug")
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if budget > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, budget)
				defer cancel()
			}
			_, err := Run(ctx, config)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&config.BaseURL, "url", envOr("ENHEALTH_PROBE_URL", defaultBaseURL), "Base URL of the service")
	flags.IntVar(&config.Repeat, "repeat", defaultRepeat, "Identical requests per endpoint")
	flags.IntVar(&config.Workers, "workers", defaultWorkers, "Number of concurrent workers")
	flags.DurationVar(&config.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	flags.DurationVar(&budget, "budget", defaultBudget, "Overall time budget for the run")
	flags.StringVar(&config.ReportFile, "report", "", "Write a JSON report to this file")
	flags.BoolVarP(&config.Verbose, "verbose", "v", false, "Log every response")
	flags.BoolVar(&jsonLogs, "json", false, "Emit JSON log records")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
