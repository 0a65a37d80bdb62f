// Package saga records compensating actions for multi-step writes that
// have no enclosing transaction.
package saga

import (
	"context"
	"errors"
	"fmt"
)

// Action undoes one committed step.
type Action struct {
	Name string
	Undo func(ctx context.Context) error
}

// Stack holds the undo actions of the steps committed so far. The zero
// value is ready to use. A Stack is not safe for concurrent use.
type Stack struct {
	actions []Action
}

// Push registers the inverse of a step that has just succeeded.
func (s *Stack) Push(name string, undo func(ctx context.Context) error) {
	s.actions = append(s.actions, Action{Name: name, Undo: undo})
}

func (s *Stack) Len() int { return len(s.actions) }

// Names lists pending actions in the order Rollback would run them.
func (s *Stack) Names() []string {
	out := make([]string, 0, len(s.actions))
	for i := len(s.actions) - 1; i >= 0; i-- {
		out = append(out, s.actions[i].Name)
	}
	return out
}

// Rollback runs every pending action, last pushed first, and empties the
// stack. A failing action does not stop the ones after it; all failures
// are joined into the returned error.
func (s *Stack) Rollback(ctx context.Context) error {
	var errs []error
	for i := len(s.actions) - 1; i >= 0; i-- {
		a := s.actions[i]
		if err := a.Undo(ctx); err != nil {
			errs = append(errs, fmt.Errorf("undo %s: %w", a.Name, err))
		}
	}
	s.actions = nil
	return errors.Join(errs...)
}

// Forget drops pending actions once the whole sequence has succeeded.
func (s *Stack) Forget() {
	s.actions = nil
}
