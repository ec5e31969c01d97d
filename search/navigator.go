// Package search runs search sessions: it renders result pages, extracts
// them, folds the outcomes and walks pagination until it stops.
package search

import (
	"context"
	"fmt"

	"github.com/fwojciec/serp"
)

// State is the state of a pagination walk after an advance attempt.
type State int

// Pagination states.
const (
	// HasPage means a new result page was rendered.
	HasPage State = iota
	// Exhausted means there are no further pages.
	Exhausted
)

func (s State) String() string {
	switch s {
	case HasPage:
		return "has-page"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Step is the result of one advance attempt. HTML is set only when State
// is HasPage.
type Step struct {
	State State
	HTML  string
}

// Ensure Navigator implements serp.Navigator at compile time.
var _ serp.Navigator = (*Navigator)(nil)

// Navigator activates next-page controls.
type Navigator struct{}

// NewNavigator creates a new Navigator.
func NewNavigator() *Navigator {
	return &Navigator{}
}

// Next tries to move the renderer to the next result page.
//
// A rule without a next control, a control that is not on the page and a
// control that cannot be clicked all end the walk with Exhausted and no
// error. Cancellation and any other renderer failure are returned.
func (n *Navigator) Next(ctx context.Context, r serp.Renderer, rule serp.PaginationRule) (Step, error) {
	if !rule.Paginates() {
		return Step{State: Exhausted}, nil
	}
	if err := ctx.Err(); err != nil {
		return Step{}, err
	}

	html, err := r.Activate(ctx, *rule.Next)
	if err != nil {
		switch serp.ErrorCode(err) {
		case serp.ENOTFOUND, serp.ECONTROL:
			return Step{State: Exhausted}, nil
		}
		return Step{}, err
	}

	return Step{State: HasPage, HTML: html}, nil
}

// Advance implements serp.Navigator.
func (n *Navigator) Advance(ctx context.Context, r serp.Renderer, rule serp.PaginationRule) (string, bool, error) {
	step, err := n.Next(ctx, r, rule)
	if err != nil {
		return "", false, err
	}
	return step.HTML, step.State == HasPage, nil
}
