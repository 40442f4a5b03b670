package tracker

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/taskhero/taskhero/internal/progress"
	"github.com/taskhero/taskhero/internal/store"
)

func openTemp(t *testing.T) (*Tracker, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskhero.json")
	tr, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return tr, path
}

func reopen(t *testing.T, path string) *Tracker {
	t.Helper()
	tr, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	return tr
}

func TestOpenFreshFile(t *testing.T) {
	tr, path := openTemp(t)

	if tr.Status != store.StatusInitialized {
		t.Errorf("status = %v, want initialized", tr.Status)
	}
	if tr.Store.Path() != path {
		t.Errorf("store path = %q, want %q", tr.Store.Path(), path)
	}
	if tr.Progress.Level() != 1 || tr.Progress.Points() != 0 {
		t.Errorf("progress = level %d, points %d", tr.Progress.Level(), tr.Progress.Points())
	}
	if len(tr.Catalog.Rewards()) != 3 {
		t.Errorf("expected 3 default rewards, got %d", len(tr.Catalog.Rewards()))
	}

	if reopen(t, path).Status != store.StatusLoaded {
		t.Error("expected second open to load the existing file")
	}
}

func TestOpenRepairsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskhero.json")
	if err := os.WriteFile(path, []byte(`{"goals": `), 0o644); err != nil {
		t.Fatal(err)
	}

	tr, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if tr.Status != store.StatusRepaired {
		t.Errorf("status = %v, want repaired", tr.Status)
	}
	if len(tr.Catalog.GoalsIn("School")) != 1 {
		t.Errorf("expected default goals after repair")
	}
}

func TestCompleteGoals(t *testing.T) {
	tr, path := openTemp(t)

	added, err := tr.CompleteGoals("Do homework", "Complete project", "Workout")
	if err != nil {
		t.Fatalf("CompleteGoals: %v", err)
	}
	if added != 1800 {
		t.Errorf("added = %d, want 1800", added)
	}

	p := reopen(t, path).Progress
	if p.Points() != 1800 || p.PointsForLevel() != 1800 || p.Level() != 1 {
		t.Errorf("persisted progress = %+v", p.Snapshot())
	}
}

func TestCompleteGoalsLevelsUp(t *testing.T) {
	tr, path := openTemp(t)
	if _, err := tr.Catalog.RenameGoal("Complete project", "Launch", 12000); err != nil {
		t.Fatal(err)
	}

	if _, err := tr.CompleteGoals("Launch"); err != nil {
		t.Fatal(err)
	}

	p := reopen(t, path).Progress
	if p.Level() != 3 || p.PointsForLevel() != 2000 {
		t.Errorf("persisted progress = %+v, want level 3 with 2000 toward next", p.Snapshot())
	}
}

func TestCompleteGoalsSelectionErrors(t *testing.T) {
	tr, _ := openTemp(t)

	if _, err := tr.CompleteGoals(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("expected ErrNoSelection, got %v", err)
	}
	if _, err := tr.CompleteGoals("Workout", "Nap"); !errors.Is(err, ErrUnknownEntry) {
		t.Errorf("expected ErrUnknownEntry, got %v", err)
	}
	if tr.Progress.Points() != 0 {
		t.Errorf("points = %d after failed selection, want 0", tr.Progress.Points())
	}
}

func TestRedeemRewards(t *testing.T) {
	tr, path := openTemp(t)
	if _, err := tr.Progress.Credit(2000); err != nil {
		t.Fatal(err)
	}

	spent, err := tr.RedeemRewards("Fast food", "New book")
	if err != nil {
		t.Fatalf("RedeemRewards: %v", err)
	}
	if spent != 1300 {
		t.Errorf("spent = %d, want 1300", spent)
	}

	p := reopen(t, path).Progress
	if p.Points() != 700 || p.PointsForLevel() != 2000 || p.Level() != 1 {
		t.Errorf("persisted progress = %+v", p.Snapshot())
	}
}

func TestRedeemRewardsInsufficientBalance(t *testing.T) {
	tr, _ := openTemp(t)
	if _, err := tr.CompleteGoals("Workout"); err != nil {
		t.Fatal(err)
	}

	// Fast food alone is affordable, but the combined cost is not.
	_, err := tr.RedeemRewards("Fast food", "New book")
	if !errors.Is(err, progress.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if tr.Progress.Points() != 300 {
		t.Errorf("points = %d, want 300", tr.Progress.Points())
	}
}

func TestRedeemRewardsSelectionErrors(t *testing.T) {
	tr, _ := openTemp(t)

	if _, err := tr.RedeemRewards(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("expected ErrNoSelection, got %v", err)
	}
	if _, err := tr.RedeemRewards("Yacht"); !errors.Is(err, ErrUnknownEntry) {
		t.Errorf("expected ErrUnknownEntry, got %v", err)
	}
}

func TestCatalogSaveKeepsProgress(t *testing.T) {
	tr, path := openTemp(t)
	if _, err := tr.CompleteGoals("Complete project"); err != nil {
		t.Fatal(err)
	}

	if _, err := tr.Catalog.RenameReward("Short trip", "Long trip", 9000); err != nil {
		t.Fatal(err)
	}
	if err := tr.Catalog.Persist(); err != nil {
		t.Fatal(err)
	}

	again := reopen(t, path)
	if again.Progress.Points() != 1000 {
		t.Errorf("points = %d after catalog save, want 1000", again.Progress.Points())
	}
	if r, ok := again.Catalog.FindReward("Long trip"); !ok || r.Points != 9000 {
		t.Errorf("renamed reward = %+v, %v", r, ok)
	}
}

func TestCompleteGoalsRejectsBalanceOverflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskhero.json")
	doc := fmt.Sprintf(`{
  "goals": {"Personal": [{"id": "g-1", "name": "Workout", "points": 300}]},
  "rewards": [],
  "user_profile": {"points": %d, "points_for_level": 0, "level": 9}
}`, math.MaxInt-100)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	tr := reopen(t, path)
	if _, err := tr.CompleteGoals("Workout"); !errors.Is(err, progress.ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
	if got := reopen(t, path).Progress.Points(); got != math.MaxInt-100 {
		t.Errorf("persisted points = %d, want %d", got, math.MaxInt-100)
	}
}

func TestNegativeStoredPointsAreClamped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskhero.json")
	doc := `{
  "goals": {"Work": [{"id": "g-1", "name": "Standup", "points": -500}]},
  "rewards": [{"id": "r-1", "name": "Coffee", "points": -50}],
  "user_profile": {"points": 0, "points_for_level": 0, "level": 1}
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	tr := reopen(t, path)
	if added, err := tr.CompleteGoals("Standup"); err != nil || added != 0 {
		t.Errorf("CompleteGoals = %d, %v, want 0, nil", added, err)
	}
	if spent, err := tr.RedeemRewards("Coffee"); err != nil || spent != 0 {
		t.Errorf("RedeemRewards = %d, %v, want 0, nil", spent, err)
	}

	again := reopen(t, path)
	if g, _, _ := again.Catalog.FindGoal("g-1"); g.Points != 0 {
		t.Errorf("persisted goal points = %d, want 0", g.Points)
	}
	if r, _ := again.Catalog.FindReward("r-1"); r.Points != 0 {
		t.Errorf("persisted reward points = %d, want 0", r.Points)
	}
}
