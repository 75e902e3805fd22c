package importer

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/cujulink/internal/adapters/repository"
	"github.com/okian/cujulink/internal/config"
	"github.com/okian/cujulink/pkg/logger"
)

// NewCommand returns the populate command. Flags override the service config
// loaded from CUJULINK_CONFIG and the environment.
func NewCommand() *cobra.Command {
	var (
		driver   string
		dbPath   string
		replace  bool
		watch    bool
		workers  int
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "populate <dump-file>",
		Short: "Load a scraped player dump into the store",
		Long: "Parses every player block in the dump and writes the records to the configured store.\n" +
			"With --watch the command keeps running and re-imports the file whenever it changes.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			_ = logger.SetLevelString(cfg.LogLevel)

			flags := cmd.Flags()
			if !flags.Changed("driver") {
				driver = cfg.StoreDriver
			}
			if !flags.Changed("db") {
				dbPath = cfg.StorePath()
			}
			if !flags.Changed("replace") {
				replace = cfg.DumpReplace
			}
			if !flags.Changed("workers") {
				workers = cfg.ImportWorkers
			}
			if !flags.Changed("debounce") {
				debounce = cfg.ImportDebounce()
			}

			store, err := repository.Open(ctx, driver, dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			im := New(store, WithWorkers(workers), WithReplace(replace))
			report, err := im.ImportFile(ctx, args[0])
			if err != nil {
				return err
			}
			cmd.Printf("stored %d players (%d malformed, %d duplicates) at generation %d in %s\n",
				report.Stored, report.Malformed, report.Duplicates, report.Generation, report.Duration.Round(time.Millisecond))

			if !watch {
				return nil
			}
			return im.Watch(ctx, args[0], debounce)
		},
	}

	f := cmd.Flags()
	f.StringVar(&driver, "driver", "", "store driver: sqlite, bolt or memory (default from config)")
	f.StringVar(&dbPath, "db", "", "store file path (default from config)")
	f.BoolVar(&replace, "replace", false, "clear the store before writing")
	f.BoolVar(&watch, "watch", false, "keep running and re-import when the file changes")
	f.IntVar(&workers, "workers", 0, "parser goroutines, 0 for one per CPU")
	f.DurationVar(&debounce, "debounce", 0, "quiet period before a watched re-import")
	return cmd
}
