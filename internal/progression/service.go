// Package progression runs the completion pipeline: record the completion,
// sync medal tiers, evaluate achievements, then notify. Each step reads the
// state the previous one wrote.
package progression

import (
	"context"
	"errors"
	"time"

	"github.com/gdg-garage/devotional-api/internal/achievements"
	"github.com/gdg-garage/devotional-api/internal/medals"
	"github.com/gdg-garage/devotional-api/internal/models"
	"github.com/gdg-garage/devotional-api/internal/notifier"
	"github.com/gdg-garage/devotional-api/internal/progress"
	"go.uber.org/zap"
)

// Outcome describes what one completion changed.
type Outcome struct {
	Count   int  `json:"count"`
	Created bool `json:"created"`
	// NewTiers holds every tier granted by this call, lowest first.
	NewTiers []medals.Tier `json:"new_tiers"`
	// Celebrated is the single tier announced for this call, if any.
	Celebrated   *medals.Tier                   `json:"celebrated,omitempty"`
	Achievements []models.AchievementDefinition `json:"achievements"`
	// Partial is set when the completion was stored but a later step
	// failed. The reconciler finishes the work.
	Partial bool `json:"partial"`
}

// Summary is the user's position on the tier ladder.
type Summary struct {
	Count     int          `json:"count"`
	Current   *medals.Tier `json:"current,omitempty"`
	Next      *medals.Tier `json:"next,omitempty"`
	Remaining int          `json:"remaining"`
}

type Service struct {
	store   *progress.Store
	medals  *medals.Service
	engine  *achievements.Engine
	notify  notifier.Notifier
	logger  *zap.Logger
	nowFunc func() time.Time
}

// NewService wires the pipeline. notify may be nil.
func NewService(store *progress.Store, medalSvc *medals.Service, engine *achievements.Engine, notify notifier.Notifier, logger *zap.Logger) *Service {
	return &Service{store: store, medals: medalSvc, engine: engine, notify: notify, logger: logger, nowFunc: time.Now}
}

// Complete records a completion and derives everything that depends on it.
// Only a failure to record is returned as an error.
func (s *Service) Complete(ctx context.Context, userID, itemID string, itemType models.ItemType) (Outcome, error) {
	res, err := s.store.RecordCompletion(ctx, userID, itemID, itemType)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Count: res.Count, Created: res.Created, NewTiers: []medals.Tier{}, Achievements: []models.AchievementDefinition{}}

	tiers, err := s.medals.SyncTiers(ctx, userID, res.Count)
	if err != nil {
		s.logger.Warn("tier sync failed after completion", zap.String("user_id", userID), zap.Error(err))
		out.Partial = true
	} else if len(tiers) > 0 {
		out.NewTiers = tiers
		if t, ok := celebrate(s.medals.Catalog(), res, tiers); ok {
			out.Celebrated = &t
		}
	}

	granted, err := s.evaluate(ctx, userID)
	out.Achievements = append(out.Achievements, granted...)
	if err != nil {
		out.Partial = true
	}

	s.announce(ctx, userID, out.Celebrated, granted)
	return out, nil
}

// celebrate picks the tier to announce for one completion: the threshold this
// completion crossed, when it was granted now rather than earlier by an admin.
// Anything else in granted is backfill and is announced by height.
func celebrate(cat *medals.Catalog, res progress.Result, granted []medals.Tier) (medals.Tier, bool) {
	if crossed, ok := cat.NewlyCrossed(res.Previous(), res.Count); ok {
		for _, t := range granted {
			if t.ID == crossed.ID {
				return crossed, true
			}
		}
	}
	return cat.Highest(granted)
}

// AfterCommunityEvent re-evaluates achievements after a post or interaction.
func (s *Service) AfterCommunityEvent(ctx context.Context, userID string) {
	granted, _ := s.evaluate(ctx, userID)
	s.announce(ctx, userID, nil, granted)
}

// Reconcile re-derives tiers and achievements from the stored event logs. It
// is idempotent and safe to run at any time.
func (s *Service) Reconcile(ctx context.Context, userID string) error {
	var errs []error

	var top *medals.Tier
	count, err := s.store.Count(ctx, userID)
	if err != nil {
		errs = append(errs, err)
	} else {
		tiers, err := s.medals.SyncTiers(ctx, userID, count)
		if err != nil {
			errs = append(errs, err)
		} else if t, ok := s.medals.Catalog().Highest(tiers); ok {
			top = &t
		}
	}

	granted, err := s.evaluate(ctx, userID)
	if err != nil {
		errs = append(errs, err)
	}

	if top != nil || len(granted) > 0 {
		s.logger.Info("reconcile granted missing progress",
			zap.String("user_id", userID),
			zap.Bool("tier", top != nil),
			zap.Int("achievements", len(granted)))
	}
	s.announce(ctx, userID, top, granted)
	return errors.Join(errs...)
}

// Summary reports the current and next tier for userID.
func (s *Service) Summary(ctx context.Context, userID string) (Summary, error) {
	count, err := s.store.Count(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	cat := s.medals.Catalog()
	sum := Summary{Count: count}
	if t, ok := cat.Highest(cat.TiersEarned(count)); ok {
		sum.Current = &t
	}
	if t, ok := cat.Next(count); ok {
		sum.Next = &t
		sum.Remaining = t.RequiredCompletions - count
	}
	return sum, nil
}

func (s *Service) evaluate(ctx context.Context, userID string) ([]models.AchievementDefinition, error) {
	counters, err := s.store.Counters(ctx, userID)
	if err != nil {
		s.logger.Warn("load counters failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	granted, err := s.engine.Evaluate(ctx, userID, counters)
	if err != nil {
		s.logger.Warn("achievement evaluation incomplete", zap.String("user_id", userID), zap.Error(err))
	}
	return granted, err
}

// announce emits at most one tier celebration plus one per achievement.
// Delivery failures are logged and never reach the caller.
func (s *Service) announce(ctx context.Context, userID string, tier *medals.Tier, granted []models.AchievementDefinition) {
	if s.notify == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	now := s.nowFunc()

	var events []notifier.Event
	if tier != nil {
		events = append(events, notifier.Event{
			Kind: notifier.EventTierCrossed, UserID: userID,
			ID: tier.ID, Name: tier.Name, Icon: tier.Icon, At: now,
		})
	}
	for _, a := range granted {
		events = append(events, notifier.Event{
			Kind: notifier.EventAchievementGranted, UserID: userID,
			ID: a.ID, Name: a.Name, Icon: a.Icon, At: now,
		})
	}

	for _, ev := range events {
		if err := s.notify.Notify(ctx, ev); err != nil {
			s.logger.Warn("celebration not delivered",
				zap.String("user_id", userID),
				zap.String("kind", string(ev.Kind)),
				zap.String("id", ev.ID),
				zap.Error(err))
		}
	}
}
