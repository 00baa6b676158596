package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/peterkuimelis/chainduel/internal/app"
	"github.com/peterkuimelis/chainduel/internal/config"
)

var (
	// Global flags
	verbose     bool
	decksFile   string
	cardScripts []string
	seed        int64
	lifePoints  int
	noShuffle   bool
	noAutoPass  bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "duel",
	Short: "chainduel - card duel engine with chain resolution",
	Long: `chainduel runs card duels: commands are validated, effects are queued as
atomic steps, and activations build a chain that resolves last-in first-out.

Settings come from DUEL_* environment variables; flags override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		applyFlags(cmd, &cfg)

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		if logger, err = config.NewLogger(level); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&decksFile, "decks", "", "path to decks YAML file (DUEL_DECKS_FILE)")
	pf.StringSliceVar(&cardScripts, "cards", nil, "card script YAML files (DUEL_CARD_SCRIPTS)")
	pf.Int64Var(&seed, "seed", 0, "shuffle seed, 0 picks one at random (DUEL_SEED)")
	pf.IntVar(&lifePoints, "lp", 0, "starting life points (DUEL_STARTING_LP)")
	pf.BoolVar(&noShuffle, "no-shuffle", false, "keep decks in listed order (DUEL_SKIP_SHUFFLE)")
	pf.BoolVar(&noAutoPass, "no-autopass", false, "wait for an explicit pass before resolving chains (DUEL_AUTO_PASS)")

	rootCmd.AddCommand(hostCmd, joinCmd, webCmd, mcpCmd)
}

// applyFlags overrides environment settings with flags the user set.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Root().PersistentFlags()
	if flags.Changed("decks") {
		c.DecksFile = decksFile
	}
	if flags.Changed("cards") {
		c.CardScripts = cardScripts
	}
	if flags.Changed("seed") {
		c.Seed = seed
	}
	if flags.Changed("lp") && lifePoints > 0 {
		c.StartingLifePoints = lifePoints
	}
	if flags.Changed("no-shuffle") {
		c.SkipShuffle = noShuffle
	}
	if flags.Changed("no-autopass") {
		c.AutoPass = !noAutoPass
	}
}

func newApp() (*app.App, error) {
	return app.New(cfg, logger)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
