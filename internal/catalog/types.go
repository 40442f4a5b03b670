package catalog

import "github.com/taskhero/taskhero/internal/store"

// Default categories, listed first and in this order.
var defaultCategories = []string{"School", "Work", "Personal"}

// Goal is a point-valued activity the user can complete.
type Goal struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Reward is a point-valued item the user can redeem.
type Reward struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// edit carries the user-supplied fields of a new or changed entry.
type edit struct {
	Name   string `validate:"required,max=100"`
	Points int    `validate:"gte=0,lte=1000000000"`
}

func goalFromEntry(e store.Entry) Goal {
	return Goal{ID: e.ID, Name: e.Name, Points: e.Points}
}

func rewardFromEntry(e store.Entry) Reward {
	return Reward{ID: e.ID, Name: e.Name, Points: e.Points}
}

func (g Goal) entry() store.Entry {
	return store.Entry{ID: g.ID, Name: g.Name, Points: g.Points}
}

func (r Reward) entry() store.Entry {
	return store.Entry{ID: r.ID, Name: r.Name, Points: r.Points}
}
