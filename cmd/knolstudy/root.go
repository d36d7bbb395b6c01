package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolstudy/internal/clock"
	"github.com/conorfennell/knolstudy/internal/config"
	"github.com/conorfennell/knolstudy/internal/domain"
	"github.com/conorfennell/knolstudy/internal/logging"
	"github.com/conorfennell/knolstudy/internal/schedule"
	"github.com/conorfennell/knolstudy/internal/storage"
	"github.com/conorfennell/knolstudy/internal/study"
)

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg   config.Config
	clock clock.Clock
	db    *storage.DB
	study *study.Service
}

func newRootCmd() *cobra.Command {
	a := &app{clock: clock.System{}}

	root := &cobra.Command{
		Use:          "knolstudy",
		Short:        "Spaced-repetition flashcards and timed tests",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a YAML config file (overrides "+config.ConfigEnv+")")
	flags.String("db", "knolstudy.db", "Path to the SQLite database file")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.String("repos-dir", "repos", "Directory git deck sources are checked out into")

	root.AddCommand(
		newDecksCmd(a),
		newStudyCmd(a),
		newTestsCmd(a),
		newTestCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newResultsCmd(a),
	)
	return root
}

func (a *app) open(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	logging.New(cfg.Log, cmd.ErrOrStderr())

	due, err := schedule.ParseKind(cfg.Study.DuePolicy)
	if err != nil {
		return err
	}
	priority, err := schedule.ParseKind(cfg.Study.PriorityPolicy)
	if err != nil {
		return err
	}

	db, err := storage.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	slog.Debug("Database opened successfully", "path", cfg.DB)

	svc, err := study.New(db, a.clock, study.Policies{Due: due, Priority: priority})
	if err != nil {
		db.Close()
		return err
	}
	a.db, a.study = db, svc
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// resolveDeck accepts a deck id or a deck name.
func (a *app) resolveDeck(ctx context.Context, ref string) (domain.Deck, error) {
	deck, err := a.db.GetDeck(ctx, ref)
	if err == nil {
		return deck, nil
	}
	byName, nameErr := a.db.FindDeckByName(ctx, ref)
	if nameErr != nil {
		return domain.Deck{}, nameErr
	}
	if byName == nil {
		return domain.Deck{}, fmt.Errorf("no deck with id or name %q: %w", ref, storage.ErrNotFound)
	}
	return *byName, nil
}
