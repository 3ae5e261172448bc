// Package notifier delivers progression events (tier crossed, achievement
// granted, display changed) to presentation sinks. Delivery is best-effort:
// no sink may block or fail the write that produced the event.
package notifier

import (
	"context"
	"errors"
	"time"
)

type EventKind string

const (
	EventTierCrossed        EventKind = "tier_crossed"
	EventAchievementGranted EventKind = "achievement_granted"
	// EventDisplayChanged tells open profile views to reload a user's badge.
	EventDisplayChanged EventKind = "display_changed"
)

type Event struct {
	Kind   EventKind `json:"kind"`
	UserID string    `json:"user_id"`
	ID     string    `json:"id,omitempty"`
	Name   string    `json:"name,omitempty"`
	Icon   string    `json:"icon,omitempty"`
	At     time.Time `json:"at"`
}

// Celebration reports whether the event should be rendered as a celebration.
func (e Event) Celebration() bool {
	return e.Kind == EventTierCrossed || e.Kind == EventAchievementGranted
}

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Multi fans an event out to every non-nil notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, ev Event) error

func (f Func) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }
