// Package library reconciles deck text files from a local directory or a git
// repository into the store.
package library

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/knolstudy/internal/clock"
	"github.com/conorfennell/knolstudy/internal/domain"
	"github.com/conorfennell/knolstudy/internal/gitsource"
	"github.com/conorfennell/knolstudy/internal/ident"
	"github.com/conorfennell/knolstudy/internal/knol"
	"github.com/conorfennell/knolstudy/internal/textio"
)

// Store is the subset of storage the reconciler needs.
type Store interface {
	FindDeckByName(ctx context.Context, name string) (*domain.Deck, error)
	InsertDeck(ctx context.Context, d domain.Deck) error
	LoadDeckCards(ctx context.Context, deckID string) ([]domain.Card, error)
	InsertCards(ctx context.Context, cards []domain.Card) error
}

// Report summarizes one reconcile run.
type Report struct {
	Files        int
	DecksCreated int
	CardsAdded   int
	Duplicates   int
	Errors       []error
}

func (r *Report) add(o Report) {
	r.Files += o.Files
	r.DecksCreated += o.DecksCreated
	r.CardsAdded += o.CardsAdded
	r.Duplicates += o.Duplicates
	r.Errors = append(r.Errors, o.Errors...)
}

// Reconciler imports deck files into a Store.
type Reconciler struct {
	store    Store
	ids      ident.Generator
	clock    clock.Clock
	reposDir string
	progress io.Writer
}

// New returns a Reconciler. Git sources are checked out under reposDir and
// clone progress is written to progress when it is not nil.
func New(store Store, ids ident.Generator, clk clock.Clock, reposDir string, progress io.Writer) *Reconciler {
	return &Reconciler{store: store, ids: ids, clock: clk, reposDir: reposDir, progress: progress}
}

// Reconcile imports every deck file found in source, which is either a local
// directory or a git URL.
func (r *Reconciler) Reconcile(ctx context.Context, source string) (Report, error) {
	slog.Info("Starting library reconcile", "source", source)

	root := source
	if gitsource.IsGitURL(source) {
		localRepoPath, err := gitsource.LocalPath(r.reposDir, source)
		if err != nil {
			return Report{}, fmt.Errorf("error determining local path for git repo: %w", err)
		}
		if err := gitsource.Sync(ctx, source, localRepoPath, r.progress); err != nil {
			return Report{}, err
		}
		root = localRepoPath
	}

	var report Report
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".txt") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fileReport, err := r.ImportFile(ctx, path)
		if err != nil {
			fileReport.Errors = append(fileReport.Errors, err)
		}
		report.add(fileReport)
		return nil
	})
	if walkErr != nil {
		return report, fmt.Errorf("error walking directory %s: %w", root, walkErr)
	}

	slog.Info("reconciliation complete",
		"path", root,
		"files", report.Files,
		"decks_created", report.DecksCreated,
		"cards_added", report.CardsAdded,
		"duplicates", report.Duplicates,
		"errors", len(report.Errors),
	)
	return report, nil
}

// ImportFile imports a single deck file. A file without a DECK header is
// named after the file.
func (r *Reconciler) ImportFile(ctx context.Context, path string) (Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	report, err := r.Import(ctx, file, name)
	if err != nil {
		return report, fmt.Errorf("parsing %s: %w", path, err)
	}
	return report, nil
}

// Import reads one deck export from src and merges it into the deck of the
// same name. Cards whose content hash already exists in that deck are
// counted as duplicates and skipped.
func (r *Reconciler) Import(ctx context.Context, src io.Reader, fallbackName string) (Report, error) {
	report := Report{Files: 1}

	parsed, err := textio.ImportDeck(src)
	if err != nil {
		return report, err
	}
	if parsed.Deck.Name == "" {
		parsed.Deck.Name = fallbackName
	}

	deck, created, err := r.findOrCreateDeck(ctx, parsed.Deck)
	if err != nil {
		return report, err
	}
	if created {
		report.DecksCreated++
	}

	existing, err := r.store.LoadDeckCards(ctx, deck.ID)
	if err != nil {
		return report, err
	}
	seen := knol.Index(existing)

	now := r.clock.Now()
	var fresh []domain.Card
	for _, card := range parsed.Cards {
		hash := knol.Hash(card)
		if _, dup := seen[hash]; dup {
			report.Duplicates++
			continue
		}

		card.ID = r.ids.NewID()
		card.DeckID = deck.ID
		if card.Subject == "" {
			card.Subject = deck.Subject
		}
		card.CreatedAt, card.UpdatedAt = now, now
		if err := domain.Validate(card); err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("card %q: %w", card.Front, err))
			continue
		}

		seen[hash] = card.ID
		fresh = append(fresh, card)
	}

	if len(fresh) > 0 {
		if err := r.store.InsertCards(ctx, fresh); err != nil {
			return report, err
		}
	}
	report.CardsAdded = len(fresh)

	slog.Debug("Imported deck", "deck_id", deck.ID, "name", deck.Name, "added", len(fresh), "duplicates", report.Duplicates)
	return report, nil
}

func (r *Reconciler) findOrCreateDeck(ctx context.Context, header domain.Deck) (domain.Deck, bool, error) {
	existing, err := r.store.FindDeckByName(ctx, header.Name)
	if err != nil {
		return domain.Deck{}, false, err
	}
	if existing != nil {
		return *existing, false, nil
	}

	now := r.clock.Now()
	deck := header
	deck.ID = r.ids.NewID()
	if deck.CreatedAt.IsZero() {
		deck.CreatedAt = now
	}
	deck.UpdatedAt = now
	if err := domain.Validate(deck); err != nil {
		return domain.Deck{}, false, err
	}
	if err := r.store.InsertDeck(ctx, deck); err != nil {
		return domain.Deck{}, false, err
	}
	slog.Info("New deck found, inserting...", "id", deck.ID, "name", deck.Name)
	return deck, true, nil
}
