// Package optimistic applies a view-state change before the backend call
// that makes it real, and restores the previous state when that call fails.
//
// The browser swaps the optimistic state in as soon as the request starts;
// the handler answers with Outcome.State, which is either the confirmed
// state or the rolled-back one with an error to show in a banner.
//
//	out := optimistic.Run(ctx, card, markJoined, func(ctx context.Context) error {
//		return h.Community.JoinStudyGroup(ctx, viewer, card.ID)
//	})
package optimistic

import "context"

// Outcome is what the handler renders after Run.
type Outcome[T any] struct {
	State      T
	Err        error
	RolledBack bool
}

// Run applies change to current, then commits. On commit failure the
// original value is returned with RolledBack set.
func Run[T any](ctx context.Context, current T, change func(T) T, commit func(context.Context) error) Outcome[T] {
	next := change(current)
	if err := ctx.Err(); err != nil {
		return Outcome[T]{State: current, Err: err, RolledBack: true}
	}
	if err := commit(ctx); err != nil {
		return Outcome[T]{State: current, Err: err, RolledBack: true}
	}
	return Outcome[T]{State: next}
}

// List is a slice whose elements can be removed optimistically, for
// example materials deleted from a course page.
type List[T any] struct {
	items []T
}

// NewList copies items.
func NewList[T any](items []T) *List[T] {
	return &List[T]{items: append([]T(nil), items...)}
}

// Items returns the current elements.
func (l *List[T]) Items() []T { return l.items }

// Remove drops the first element matching and commits. On failure the
// element is put back at its original position.
func (l *List[T]) Remove(ctx context.Context, match func(T) bool, commit func(context.Context) error) error {
	idx := -1
	for i, it := range l.items {
		if match(it) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return commit(ctx)
	}
	removed := l.items[idx]
	l.items = append(l.items[:idx:idx], l.items[idx+1:]...)

	if err := commit(ctx); err != nil {
		restored := make([]T, 0, len(l.items)+1)
		restored = append(restored, l.items[:idx]...)
		restored = append(restored, removed)
		restored = append(restored, l.items[idx:]...)
		l.items = restored
		return err
	}
	return nil
}
