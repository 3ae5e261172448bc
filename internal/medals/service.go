package medals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdg-garage/devotional-api/internal/apperr"
	"github.com/gdg-garage/devotional-api/internal/models"
	"github.com/gdg-garage/devotional-api/internal/notifier"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Medal is an earned medal as the rest of the app sees it: a standard tier
// (Tier set) or a custom award (Tier nil).
type Medal struct {
	ID        string           `json:"id"`
	Kind      models.MedalKind `json:"kind"`
	Tier      *Tier            `json:"tier,omitempty"`
	Name      string           `json:"name"`
	Icon      string           `json:"icon"`
	AwardedBy *string          `json:"awarded_by,omitempty"`
	EarnedAt  time.Time        `json:"earned_at"`
}

// Badge is what a profile view renders next to a username.
type Badge struct {
	Icon  string           `json:"icon"`
	Label string           `json:"label"`
	Kind  models.MedalKind `json:"kind"`
	Ref   string           `json:"ref"`
}

type Service struct {
	db      *gorm.DB
	catalog *Catalog
	logger  *zap.Logger
	notify  notifier.Notifier
	now     func() time.Time
}

// NewService wires the medal store. notify receives display_changed hints
// and may be nil.
func NewService(db *gorm.DB, catalog *Catalog, logger *zap.Logger, notify notifier.Notifier) *Service {
	return &Service{db: db, catalog: catalog, logger: logger, notify: notify, now: time.Now}
}

func (s *Service) Catalog() *Catalog { return s.catalog }

var onConflictUserTier = clause.OnConflict{
	Columns:   []clause.Column{{Name: "user_id"}, {Name: "tier_id"}},
	DoNothing: true,
}

func (s *Service) standardRow(userID string, tier Tier, awardedBy *string) *models.EarnedMedal {
	tierID := tier.ID
	return &models.EarnedMedal{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      models.MedalStandard,
		TierID:    &tierID,
		AwardedBy: awardedBy,
		EarnedAt:  s.now(),
	}
}

// GrantTier records a standard tier for userID. Granting a tier the user
// already holds is a no-op and reports granted=false.
func (s *Service) GrantTier(ctx context.Context, userID, tierID string, awardedBy *string) (bool, error) {
	tier, ok := s.catalog.Lookup(tierID)
	if !ok {
		return false, apperr.Validation("tier_id", fmt.Sprintf("unknown medal tier %q", tierID))
	}

	res := s.db.WithContext(ctx).Clauses(onConflictUserTier).Create(s.standardRow(userID, tier, awardedBy))
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, apperr.Storage("grant tier", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	s.logger.Info("medal tier granted", zap.String("user_id", userID), zap.String("tier", tier.ID))
	s.hint(ctx, userID)
	return true, nil
}

// SyncTiers persists every tier reachable at count that userID does not hold
// yet, in one transaction. It returns the newly granted tiers, lowest first.
func (s *Service) SyncTiers(ctx context.Context, userID string, count int) ([]Tier, error) {
	earned := s.catalog.TiersEarned(count)
	if len(earned) == 0 {
		return nil, nil
	}

	var granted []Tier
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, tier := range earned {
			res := tx.Clauses(onConflictUserTier).Create(s.standardRow(userID, tier, nil))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				granted = append(granted, tier)
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Storage("sync tiers", err)
	}

	for _, t := range granted {
		s.logger.Info("medal tier granted", zap.String("user_id", userID), zap.String("tier", t.ID), zap.Int("completions", count))
	}
	return granted, nil
}

// AwardCustom records an admin-awarded medal outside the standard ladder.
func (s *Service) AwardCustom(ctx context.Context, userID, name, icon, awardedBy string) (Medal, error) {
	name, icon = strings.TrimSpace(name), strings.TrimSpace(icon)
	if name == "" || icon == "" {
		return Medal{}, apperr.Validation("custom_medal", "name and icon are required")
	}

	row := models.EarnedMedal{
		ID:         uuid.NewString(),
		UserID:     userID,
		Kind:       models.MedalCustom,
		CustomName: &name,
		CustomIcon: &icon,
		AwardedBy:  &awardedBy,
		EarnedAt:   s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Medal{}, apperr.Storage("award custom medal", err)
	}

	s.logger.Info("custom medal awarded",
		zap.String("user_id", userID),
		zap.String("medal_id", row.ID),
		zap.String("awarded_by", awardedBy))
	s.hint(ctx, userID)

	m, _ := s.toMedal(row)
	return m, nil
}

func (s *Service) toMedal(row models.EarnedMedal) (Medal, bool) {
	m := Medal{ID: row.ID, Kind: row.Kind, AwardedBy: row.AwardedBy, EarnedAt: row.EarnedAt}
	switch row.Kind {
	case models.MedalStandard:
		if row.TierID == nil {
			return Medal{}, false
		}
		tier, ok := s.catalog.Lookup(*row.TierID)
		if !ok {
			return Medal{}, false
		}
		m.Tier = &tier
		m.Name, m.Icon = tier.Name, tier.Icon
	case models.MedalCustom:
		if row.CustomName == nil || row.CustomIcon == nil {
			return Medal{}, false
		}
		m.Name, m.Icon = *row.CustomName, *row.CustomIcon
	default:
		return Medal{}, false
	}
	return m, true
}

// List returns the user's medals in the order they were earned. Standard rows
// for tiers no longer in the catalog are skipped.
func (s *Service) List(ctx context.Context, userID string) ([]Medal, error) {
	var rows []models.EarnedMedal
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("earned_at asc").Find(&rows).Error; err != nil {
		return nil, apperr.Storage("list medals", err)
	}

	out := make([]Medal, 0, len(rows))
	for _, row := range rows {
		if m, ok := s.toMedal(row); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// owns resolves ref to the stored display reference if userID holds it. ref
// is a standard tier id, or the id of one of the user's medal rows; a
// standard row maps to its tier id so both spellings store the same ref.
func (s *Service) owns(ctx context.Context, userID, ref string) (string, bool, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if _, isTier := s.catalog.Lookup(ref); isTier {
		q = q.Where("kind = ? AND tier_id = ?", models.MedalStandard, ref)
	} else {
		q = q.Where("id = ?", ref)
	}

	var rows []models.EarnedMedal
	if err := q.Limit(1).Find(&rows).Error; err != nil {
		return "", false, err
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	m, ok := s.toMedal(rows[0])
	if !ok {
		return "", false, nil
	}
	if m.Tier != nil {
		return m.Tier.ID, true, nil
	}
	return m.ID, true, nil
}

// SelectDisplay sets (or clears, with a nil ref) the medal userID shows on
// their profile. A ref the user does not own is rejected with ErrForbidden
// before anything is written.
func (s *Service) SelectDisplay(ctx context.Context, userID string, ref *string) error {
	if ref != nil {
		resolved, owned, err := s.owns(ctx, userID, *ref)
		if err != nil {
			return apperr.Storage("check medal ownership", err)
		}
		if !owned {
			s.logger.Warn("display medal rejected: not owned", zap.String("user_id", userID), zap.String("ref", *ref))
			return fmt.Errorf("select display medal %q: %w", *ref, apperr.ErrForbidden)
		}
		ref = &resolved
	}

	sel := models.DisplaySelection{UserID: userID, MedalRef: ref, UpdatedAt: s.now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"medal_ref", "updated_at"}),
	}).Create(&sel).Error
	if err != nil {
		return apperr.Storage("save display selection", err)
	}

	s.hint(ctx, userID)
	return nil
}

// DisplayRef returns the stored selection, nil when nothing is selected.
func (s *Service) DisplayRef(ctx context.Context, userID string) (*string, error) {
	var sel models.DisplaySelection
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&sel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("load display selection", err)
	}
	return sel.MedalRef, nil
}

// ResolveDisplayBadge returns the badge userID displays, or nil. It is
// best-effort: lookup failures, revoked medals and custom medal ids that
// belong to someone else all resolve to nil.
func (s *Service) ResolveDisplayBadge(ctx context.Context, userID string) *Badge {
	ref, err := s.DisplayRef(ctx, userID)
	if err != nil {
		s.logger.Warn("resolve badge: load selection failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	if ref == nil {
		return nil
	}

	if tier, ok := s.catalog.Lookup(*ref); ok {
		return &Badge{Icon: tier.Icon, Label: tier.Name, Kind: models.MedalStandard, Ref: tier.ID}
	}

	var row models.EarnedMedal
	err = s.db.WithContext(ctx).Where("id = ? AND kind = ?", *ref, models.MedalCustom).Take(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("resolve badge: load custom medal failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil
	}
	if row.UserID != userID {
		s.logger.Warn("resolve badge: custom medal belongs to another user",
			zap.String("user_id", userID), zap.String("medal_id", row.ID))
		return nil
	}

	m, ok := s.toMedal(row)
	if !ok {
		return nil
	}
	return &Badge{Icon: m.Icon, Label: m.Name, Kind: models.MedalCustom, Ref: m.ID}
}

func (s *Service) hint(ctx context.Context, userID string) {
	if s.notify == nil {
		return
	}
	ev := notifier.Event{Kind: notifier.EventDisplayChanged, UserID: userID, At: s.now()}
	if err := s.notify.Notify(ctx, ev); err != nil {
		s.logger.Debug("display hint dropped", zap.String("user_id", userID), zap.Error(err))
	}
}
