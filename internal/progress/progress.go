// Package progress tracks the user's spendable point balance and level.
package progress

import (
	"errors"
	"fmt"
	"math"

	"github.com/taskhero/taskhero/internal/store"
)

// PointsPerLevel is the number of credited points that completes one level.
const PointsPerLevel = 5000

var (
	// ErrInsufficientBalance is returned when a debit exceeds the balance.
	ErrInsufficientBalance = errors.New("not enough points")
	// ErrNegativeAmount is returned for credits or debits below zero.
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrAmountTooLarge is returned when an amount would overflow a counter.
	ErrAmountTooLarge = errors.New("amount too large")
)

// Saver persists the progress section of the data file.
type Saver interface {
	SaveProgress(p store.Profile) error
}

// Progress holds the balance, the points accumulated toward the next level,
// and the level itself. The balance and the level counter move independently:
// debits never touch the level.
type Progress struct {
	points         int
	pointsForLevel int
	level          int
	saver          Saver
}

// New builds Progress from a persisted profile, carrying any overflow in
// points_for_level into the level.
func New(saver Saver, p store.Profile) *Progress {
	pr := &Progress{
		points:         max(p.Points, 0),
		pointsForLevel: max(p.PointsForLevel, 0),
		level:          max(p.Level, 1),
		saver:          saver,
	}
	pr.levelUp()
	return pr
}

// Credit adds amount to both the balance and the level counter and returns how
// many levels were gained.
func (p *Progress) Credit(amount int) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("credit %d: %w", amount, ErrNegativeAmount)
	}
	if amount > math.MaxInt-max(p.points, p.pointsForLevel) {
		return 0, fmt.Errorf("credit %d: %w", amount, ErrAmountTooLarge)
	}
	p.points += amount
	p.pointsForLevel += amount
	return p.levelUp(), nil
}

// Debit removes amount from the balance. The whole debit is rejected when the
// balance is too small.
func (p *Progress) Debit(amount int) error {
	if amount < 0 {
		return fmt.Errorf("debit %d: %w", amount, ErrNegativeAmount)
	}
	if amount > p.points {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientBalance, amount, p.points)
	}
	p.points -= amount
	return nil
}

func (p *Progress) levelUp() int {
	gained := p.pointsForLevel / PointsPerLevel
	p.level += gained
	p.pointsForLevel %= PointsPerLevel
	return gained
}

// Add sums amounts, failing with ErrAmountTooLarge instead of wrapping and
// with ErrNegativeAmount on any negative amount.
func Add(amounts ...int) (int, error) {
	total := 0
	for _, n := range amounts {
		if n < 0 {
			return 0, fmt.Errorf("add %d: %w", n, ErrNegativeAmount)
		}
		if n > math.MaxInt-total {
			return 0, ErrAmountTooLarge
		}
		total += n
	}
	return total, nil
}

// Points returns the spendable balance.
func (p *Progress) Points() int { return p.points }

// PointsForLevel returns the progress within the current level.
func (p *Progress) PointsForLevel() int { return p.pointsForLevel }

// Level returns the current level.
func (p *Progress) Level() int { return p.level }

// Fraction returns the completed share of the current level in [0, 1).
func (p *Progress) Fraction() float64 {
	return float64(p.pointsForLevel) / PointsPerLevel
}

// Percent returns the completed share of the current level as a whole
// percentage, rounded down so it stays below 100 until the level is reached.
func (p *Progress) Percent() int {
	return p.pointsForLevel * 100 / PointsPerLevel
}

// Snapshot returns the persisted form of the current state.
func (p *Progress) Snapshot() store.Profile {
	return store.Profile{
		Points:         p.points,
		PointsForLevel: p.pointsForLevel,
		Level:          p.level,
	}
}

// Persist writes the current state through the saver.
func (p *Progress) Persist() error {
	if err := p.saver.SaveProgress(p.Snapshot()); err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}
	return nil
}
