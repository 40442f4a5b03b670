// Package tracker opens the TaskHero data file and ties the catalog and the
// user progress to it.
package tracker

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/taskhero/taskhero/internal/catalog"
	"github.com/taskhero/taskhero/internal/progress"
	"github.com/taskhero/taskhero/internal/store"
)

var (
	// ErrNoSelection is returned when no goal or reward was selected.
	ErrNoSelection = errors.New("please select an option")
	// ErrUnknownEntry is returned when a selected goal or reward does not exist.
	ErrUnknownEntry = errors.New("no such entry")
)

// Tracker holds the state loaded from one data file.
type Tracker struct {
	Store    *store.Store
	Catalog  *catalog.Catalog
	Progress *progress.Progress
	// Status reports whether the data file was loaded, created or repaired.
	Status store.Status

	logger *slog.Logger
}

// Open loads the data file at path and builds the catalog and progress from it.
func Open(path string, logger *slog.Logger) (*Tracker, error) {
	if logger == nil {
		logger = slog.Default()
	}

	st := store.New(path, logger)
	doc, status, err := st.Load()
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Open(st, doc)
	if err != nil {
		return nil, err
	}

	return &Tracker{
		Store:    st,
		Catalog:  cat,
		Progress: progress.New(st, doc.Profile),
		Status:   status,
		logger:   logger,
	}, nil
}

// CompleteGoals credits the combined points of the referenced goals and
// persists the progress. Either every reference resolves or nothing is
// credited. It returns the number of points added.
func (t *Tracker) CompleteGoals(refs ...string) (int, error) {
	if len(refs) == 0 {
		return 0, ErrNoSelection
	}

	total := 0
	for _, ref := range refs {
		g, _, ok := t.Catalog.FindGoal(ref)
		if !ok {
			return 0, fmt.Errorf("goal %q: %w", ref, ErrUnknownEntry)
		}
		var err error
		if total, err = progress.Add(total, g.Points); err != nil {
			return 0, fmt.Errorf("goal %q: %w", ref, err)
		}
	}

	gained, err := t.Progress.Credit(total)
	if err != nil {
		return 0, err
	}
	if err := t.Progress.Persist(); err != nil {
		return 0, err
	}

	t.logger.Debug("goals completed", "count", len(refs), "points", total, "levels_gained", gained)
	return total, nil
}

// RedeemRewards debits the combined cost of the referenced rewards as a single
// operation and persists the progress. It returns the number of points
// deducted.
func (t *Tracker) RedeemRewards(refs ...string) (int, error) {
	if len(refs) == 0 {
		return 0, ErrNoSelection
	}

	total := 0
	for _, ref := range refs {
		r, ok := t.Catalog.FindReward(ref)
		if !ok {
			return 0, fmt.Errorf("reward %q: %w", ref, ErrUnknownEntry)
		}
		var err error
		if total, err = progress.Add(total, r.Points); err != nil {
			return 0, fmt.Errorf("reward %q: %w", ref, err)
		}
	}

	if err := t.Progress.Debit(total); err != nil {
		return 0, err
	}
	if err := t.Progress.Persist(); err != nil {
		return 0, err
	}

	t.logger.Debug("rewards redeemed", "count", len(refs), "points", total)
	return total, nil
}
