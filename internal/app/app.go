// Package app wires configuration, the card pool and decks into running
// duel sessions. Every front end (TCP, web, MCP) starts duels through it.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/peterkuimelis/chainduel/internal/card"
	"github.com/peterkuimelis/chainduel/internal/cardscript"
	"github.com/peterkuimelis/chainduel/internal/chain"
	"github.com/peterkuimelis/chainduel/internal/command"
	"github.com/peterkuimelis/chainduel/internal/config"
	"github.com/peterkuimelis/chainduel/internal/deck"
	"github.com/peterkuimelis/chainduel/internal/engine"
	"github.com/peterkuimelis/chainduel/internal/library"
	"github.com/peterkuimelis/chainduel/internal/log"
	"github.com/peterkuimelis/chainduel/internal/rule"
	"github.com/peterkuimelis/chainduel/internal/state"
)

// App holds the loaded deck file and the settings sessions are built from.
type App struct {
	cfg    config.Config
	decks  deck.File
	logger *zap.Logger
}

// New loads the deck file named by cfg.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	decks, err := deck.Load(cfg.DecksFile)
	if err != nil {
		return nil, fmt.Errorf("load decks: %w", err)
	}
	// Fail early on decks naming unknown cards.
	_, cat, err := NewEnv(cfg)
	if err != nil {
		return nil, err
	}
	for _, d := range decks.Decks {
		if _, err := d.Build(cat); err != nil {
			return nil, err
		}
	}
	logger.Info("decks loaded", zap.String("file", cfg.DecksFile), zap.Strings("decks", decks.Names()))
	return &App{cfg: cfg, decks: decks, logger: logger}, nil
}

func (a *App) Config() config.Config { return a.cfg }

func (a *App) Decks() deck.File { return a.decks }

// NewEnv builds fresh per-duel registries holding the standard cards and
// every configured card script.
func NewEnv(cfg config.Config) (*command.Env, *card.Catalog, error) {
	cat, actions, rules := card.NewCatalog(), chain.NewRegistry(), rule.NewRegistry()
	if err := library.Install(library.Standard(rules), cat, actions, rules); err != nil {
		return nil, nil, err
	}
	for _, path := range cfg.CardScripts {
		defs, err := cardscript.Load(path, rules)
		if err != nil {
			return nil, nil, fmt.Errorf("card script: %w", err)
		}
		if err := library.Install(defs, cat, actions, rules); err != nil {
			return nil, nil, fmt.Errorf("card script %s: %w", path, err)
		}
	}
	env := &command.Env{
		Cards:           cat,
		Actions:         actions,
		Rules:           rules,
		ForbiddenPieces: library.ForbiddenPieces,
	}
	return env, cat, nil
}

// Start begins a duel with the given deck (1-indexed). journal may be nil.
func (a *App) Start(deckNumber int, journal log.EventLogger) (*engine.Session, error) {
	entry, err := a.decks.ByNumber(deckNumber)
	if err != nil {
		return nil, err
	}
	return a.StartWith(entry, journal)
}

// StartWith begins a duel with an explicit deck entry.
func (a *App) StartWith(entry deck.Entry, journal log.EventLogger) (*engine.Session, error) {
	env, cat, err := NewEnv(a.cfg)
	if err != nil {
		return nil, err
	}
	list, err := entry.Build(cat)
	if err != nil {
		return nil, err
	}
	seed := a.cfg.Seed
	if seed == 0 && !a.cfg.SkipShuffle {
		seed = state.RandomSeed()
	}
	initial, err := state.NewDuel(list, state.Options{
		SkipShuffle:        a.cfg.SkipShuffle,
		Seed:               seed,
		StartingLifePoints: a.cfg.StartingLifePoints,
	})
	if err != nil {
		return nil, fmt.Errorf("deck %q: %w", entry.Name, err)
	}

	opts := []engine.Option{
		engine.WithLogger(a.logger),
		engine.WithAutoPass(a.cfg.AutoPass),
		engine.WithInfoDelay(a.cfg.InfoDelay),
	}
	if journal != nil {
		opts = append(opts, engine.WithJournal(journal))
	}
	sess := engine.New(env, initial, opts...)
	a.logger.Info("duel started",
		zap.String("session", sess.ID()),
		zap.String("deck", entry.Name),
		zap.Int("cards", len(list.Main)),
		zap.Int64("seed", seed),
	)
	return sess, nil
}
