package loadtest

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/cujulink/pkg/logger"
)

// Default flag values.
const (
	defaultRounds         = 1000
	defaultWorkersPerCPU  = 2
	defaultRequestTimeout = 30 * time.Second
)

// NewCommand returns the loadtest root command with its run and dump subcommands.
func NewCommand() *cobra.Command {
	var logFormat string

	root := &cobra.Command{
		Use:           "loadtest",
		Short:         "Exercise a running link engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithFormat(logFormat)); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(newRunCommand(), newDumpCommand())
	return root
}

func newRunCommand() *cobra.Command {
	cfg := &Config{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play challenge rounds against the API and verify every returned chain",
		Example: "  loadtest run --rounds 5000 --workers 16\n" +
			"  loadtest run --url http://localhost:8080 --verbose",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := Run(cmd.Context(), cfg)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	f.IntVar(&cfg.Rounds, "rounds", defaultRounds, "number of challenge rounds")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*defaultWorkersPerCPU, "concurrent rounds")
	f.DurationVar(&cfg.Timeout, "timeout", defaultRequestTimeout, "per-request timeout")
	f.BoolVar(&cfg.Verbose, "verbose", false, "log every failed round")
	return cmd
}

func newDumpCommand() *cobra.Command {
	var (
		cfg    DumpConfig
		output string
	)
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write a synthetic player dump for populate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" || output == "-" {
				return WriteDump(cmd.OutOrStdout(), cfg)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create file: %w", err)
			}
			if err := WriteDump(f, cfg); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			logger.Get().Info(cmd.Context(), "dump written",
				logger.String("path", output), logger.Int("players", cfg.withDefaults().Players))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	f.IntVar(&cfg.Players, "players", defaultPlayers, "number of players")
	f.IntVar(&cfg.Teams, "teams", defaultTeams, "number of clubs")
	f.IntVar(&cfg.Nations, "nations", defaultNations, "number of national teams")
	f.IntVar(&cfg.MaxStint, "max-stints", defaultMaxStint, "most club stints per player")
	f.Uint64Var(&cfg.Seed, "seed", 1, "random seed")
	return cmd
}
