// Package catalog manages the goal and reward definitions of TaskHero.
//
// Goals are grouped by category and rewards form a single ordered list. Every
// entry carries a stable ID assigned at creation; operations that take a
// reference accept either that ID or, for compatibility, an entry name.
package catalog

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskhero/taskhero/internal/store"
)

// MaxPoints is the largest point value a single goal or reward may carry.
const MaxPoints = 1_000_000_000

var validate = validator.New()

// Saver persists the catalog sections of the data file.
type Saver interface {
	SaveCatalog(goals map[string][]store.Entry, rewards []store.Entry) error
}

// Catalog holds goals by category and the reward list.
type Catalog struct {
	goals   map[string][]Goal
	rewards []Reward
	saver   Saver
}

// Open builds a Catalog from a loaded document. Entries without an ID are
// given one, and points outside [0, MaxPoints] are clamped into range. The
// catalog is persisted when either happens so the fix survives restarts.
func Open(saver Saver, doc store.Document) (*Catalog, error) {
	c := &Catalog{
		goals:   make(map[string][]Goal, len(doc.Goals)),
		rewards: make([]Reward, 0, len(doc.Rewards)),
		saver:   saver,
	}

	changed := false
	for category, entries := range doc.Goals {
		goals := make([]Goal, 0, len(entries))
		for _, e := range entries {
			g := goalFromEntry(e)
			if g.ID == "" {
				g.ID = newID()
				changed = true
			}
			if p := clampPoints(g.Points); p != g.Points {
				g.Points = p
				changed = true
			}
			goals = append(goals, g)
		}
		c.goals[category] = goals
	}
	for _, e := range doc.Rewards {
		r := rewardFromEntry(e)
		if r.ID == "" {
			r.ID = newID()
			changed = true
		}
		if p := clampPoints(r.Points); p != r.Points {
			r.Points = p
			changed = true
		}
		c.rewards = append(c.rewards, r)
	}

	if changed {
		if err := c.Persist(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func clampPoints(n int) int {
	return min(max(n, 0), MaxPoints)
}

// newID returns a v7 UUID, falling back to v4.
func newID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// Categories returns the category names: the default categories first, then
// any others in lexical order.
func (c *Catalog) Categories() []string {
	out := make([]string, 0, len(c.goals))
	for _, name := range defaultCategories {
		if _, ok := c.goals[name]; ok {
			out = append(out, name)
		}
	}
	var extra []string
	for name := range c.goals {
		if !slices.Contains(defaultCategories, name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// GoalsIn returns the goals of a category in order. An unknown category
// yields an empty slice.
func (c *Catalog) GoalsIn(category string) []Goal {
	return slices.Clone(c.goals[category])
}

// Rewards returns all rewards in order.
func (c *Catalog) Rewards() []Reward {
	return slices.Clone(c.rewards)
}

// FindGoal resolves a goal reference and returns the goal with its category.
func (c *Catalog) FindGoal(ref string) (Goal, string, bool) {
	category, i, ok := c.goalIndex(ref)
	if !ok {
		return Goal{}, "", false
	}
	return c.goals[category][i], category, true
}

// FindReward resolves a reward reference.
func (c *Catalog) FindReward(ref string) (Reward, bool) {
	i, ok := c.rewardIndex(ref)
	if !ok {
		return Reward{}, false
	}
	return c.rewards[i], true
}

// RenameGoal overwrites the name and points of the referenced goal in place.
// It reports false, with no change, when nothing matches.
func (c *Catalog) RenameGoal(ref, name string, points int) (bool, error) {
	e, err := checkEdit(name, points)
	if err != nil {
		return false, err
	}
	category, i, ok := c.goalIndex(ref)
	if !ok {
		return false, nil
	}
	c.goals[category][i].Name = e.Name
	c.goals[category][i].Points = e.Points
	return true, nil
}

// RenameReward overwrites the name and points of the referenced reward in
// place. It reports false, with no change, when nothing matches.
func (c *Catalog) RenameReward(ref, name string, points int) (bool, error) {
	e, err := checkEdit(name, points)
	if err != nil {
		return false, err
	}
	i, ok := c.rewardIndex(ref)
	if !ok {
		return false, nil
	}
	c.rewards[i].Name = e.Name
	c.rewards[i].Points = e.Points
	return true, nil
}

// AddGoal appends a goal to a category, creating the category if needed.
func (c *Catalog) AddGoal(category, name string, points int) (Goal, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return Goal{}, fmt.Errorf("invalid goal: category is required")
	}
	e, err := checkEdit(name, points)
	if err != nil {
		return Goal{}, err
	}
	g := Goal{ID: newID(), Name: e.Name, Points: e.Points}
	c.goals[category] = append(c.goals[category], g)
	return g, nil
}

// AddReward appends a reward.
func (c *Catalog) AddReward(name string, points int) (Reward, error) {
	e, err := checkEdit(name, points)
	if err != nil {
		return Reward{}, err
	}
	r := Reward{ID: newID(), Name: e.Name, Points: e.Points}
	c.rewards = append(c.rewards, r)
	return r, nil
}

// Persist writes the goals and rewards through the saver.
func (c *Catalog) Persist() error {
	goals := make(map[string][]store.Entry, len(c.goals))
	for category, list := range c.goals {
		entries := make([]store.Entry, 0, len(list))
		for _, g := range list {
			entries = append(entries, g.entry())
		}
		goals[category] = entries
	}
	rewards := make([]store.Entry, 0, len(c.rewards))
	for _, r := range c.rewards {
		rewards = append(rewards, r.entry())
	}

	if err := c.saver.SaveCatalog(goals, rewards); err != nil {
		return fmt.Errorf("saving catalog: %w", err)
	}
	return nil
}

// goalIndex finds a goal by exact ID, or else by the first name match across
// categories in Categories order.
func (c *Catalog) goalIndex(ref string) (string, int, bool) {
	categories := c.Categories()
	for _, category := range categories {
		for i, g := range c.goals[category] {
			if g.ID == ref {
				return category, i, true
			}
		}
	}
	for _, category := range categories {
		for i, g := range c.goals[category] {
			if g.Name == ref {
				return category, i, true
			}
		}
	}
	return "", 0, false
}

func (c *Catalog) rewardIndex(ref string) (int, bool) {
	if i := slices.IndexFunc(c.rewards, func(r Reward) bool { return r.ID == ref }); i >= 0 {
		return i, true
	}
	if i := slices.IndexFunc(c.rewards, func(r Reward) bool { return r.Name == ref }); i >= 0 {
		return i, true
	}
	return 0, false
}

func checkEdit(name string, points int) (edit, error) {
	e := edit{Name: strings.TrimSpace(name), Points: points}
	if err := validate.Struct(e); err != nil {
		return edit{}, fmt.Errorf("invalid entry %q: %w", e.Name, err)
	}
	return e, nil
}
