package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/devotional-api/internal/achievements"
	"github.com/gdg-garage/devotional-api/internal/auth"
	"github.com/gdg-garage/devotional-api/internal/community"
	"github.com/gdg-garage/devotional-api/internal/medals"
	"github.com/gdg-garage/devotional-api/internal/models"
	"github.com/gdg-garage/devotional-api/internal/notifier"
	"go.uber.org/zap"
)

// AdminHandler serves the back-office endpoints. Every operation requires the
// admin role.
type AdminHandler struct {
	medals      *medals.Service
	engine      *achievements.Engine
	community   *community.Service
	notify      notifier.Notifier
	authHandler *auth.AuthHandler
	logger      *zap.Logger
}

func NewAdminHandler(medalSvc *medals.Service, engine *achievements.Engine, communitySvc *community.Service, notify notifier.Notifier, authHandler *auth.AuthHandler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{medals: medalSvc, engine: engine, community: communitySvc, notify: notify, authHandler: authHandler, logger: logger}
}

func (h *AdminHandler) celebrate(ctx context.Context, ev notifier.Event) {
	if h.notify == nil {
		return
	}
	ev.At = time.Now()
	if err := h.notify.Notify(context.WithoutCancel(ctx), ev); err != nil {
		h.logger.Warn("celebration not delivered", zap.String("user_id", ev.UserID), zap.String("id", ev.ID), zap.Error(err))
	}
}

type AwardMedalRequest struct {
	auth.AuthInput
	UserID string `path:"user_id"`
	Body   struct {
		TierID     string `json:"tier_id,omitempty" doc:"Standard tier to grant regardless of completions"`
		CustomName string `json:"custom_name,omitempty" doc:"Name of a custom medal"`
		CustomIcon string `json:"custom_icon,omitempty" doc:"Icon of a custom medal"`
	}
}

type AwardMedalResponse struct {
	Body struct {
		Granted bool          `json:"granted"`
		Medal   *medals.Medal `json:"medal,omitempty"`
	}
}

func (h *AdminHandler) HandleAwardMedal(ctx context.Context, input *AwardMedalRequest) (*AwardMedalResponse, error) {
	adminID, err := h.authHandler.RequireAdmin(ctx, &input.AuthInput)
	if err != nil {
		return nil, err
	}

	res := &AwardMedalResponse{}
	if tierID := strings.TrimSpace(input.Body.TierID); tierID != "" {
		granted, err := h.medals.GrantTier(ctx, input.UserID, tierID, &adminID)
		if err != nil {
			return nil, httpError(h.logger, "grant tier", err)
		}
		res.Body.Granted = granted
		if granted {
			tier, _ := h.medals.Catalog().Lookup(tierID)
			h.celebrate(ctx, notifier.Event{Kind: notifier.EventTierCrossed, UserID: input.UserID, ID: tier.ID, Name: tier.Name, Icon: tier.Icon})
		}
		return res, nil
	}

	if input.Body.CustomName == "" {
		return nil, huma.Error422UnprocessableEntity("Provide either tier_id or custom_name and custom_icon")
	}
	m, err := h.medals.AwardCustom(ctx, input.UserID, input.Body.CustomName, input.Body.CustomIcon, adminID)
	if err != nil {
		return nil, httpError(h.logger, "award custom medal", err)
	}
	h.celebrate(ctx, notifier.Event{Kind: notifier.EventTierCrossed, UserID: input.UserID, ID: m.ID, Name: m.Name, Icon: m.Icon})

	res.Body.Granted = true
	res.Body.Medal = &m
	return res, nil
}

type CreateAchievementRequest struct {
	auth.AuthInput
	Body struct {
		Name        string `json:"name" doc:"Name of the achievement" required:"true"`
		Description string `json:"description,omitempty"`
		Icon        string `json:"icon,omitempty"`
		Category    string `json:"category,omitempty"`
	}
}

type CreateAchievementResponse struct {
	Status int
	Body   models.AchievementDefinition
}

func (h *AdminHandler) HandleCreateAchievement(ctx context.Context, input *CreateAchievementRequest) (*CreateAchievementResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, &input.AuthInput); err != nil {
		return nil, err
	}

	def, err := h.engine.CreateDefinition(ctx, achievements.NewDefinition{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Icon:        input.Body.Icon,
		Category:    input.Body.Category,
	})
	if err != nil {
		return nil, httpError(h.logger, "create achievement", err)
	}
	return &CreateAchievementResponse{Status: http.StatusCreated, Body: def}, nil
}

type GrantAchievementRequest struct {
	auth.AuthInput
	UserID string `path:"user_id"`
	Body   struct {
		AchievementID string `json:"achievement_id,omitempty" doc:"Existing achievement to grant"`
		Name          string `json:"name,omitempty" doc:"Create an ad-hoc achievement with this name and grant it"`
		Description   string `json:"description,omitempty"`
		Icon          string `json:"icon,omitempty"`
		Category      string `json:"category,omitempty"`
	}
}

type GrantAchievementResponse struct {
	Body struct {
		Granted     bool                         `json:"granted"`
		Achievement models.AchievementDefinition `json:"achievement"`
	}
}

func (h *AdminHandler) HandleGrantAchievement(ctx context.Context, input *GrantAchievementRequest) (*GrantAchievementResponse, error) {
	adminID, err := h.authHandler.RequireAdmin(ctx, &input.AuthInput)
	if err != nil {
		return nil, err
	}

	achievementID := strings.TrimSpace(input.Body.AchievementID)
	if achievementID == "" {
		if strings.TrimSpace(input.Body.Name) == "" {
			return nil, huma.Error422UnprocessableEntity("Provide either achievement_id or name")
		}
		def, err := h.engine.CreateDefinition(ctx, achievements.NewDefinition{
			Name:        input.Body.Name,
			Description: input.Body.Description,
			Icon:        input.Body.Icon,
			Category:    input.Body.Category,
		})
		if err != nil {
			return nil, httpError(h.logger, "create achievement", err)
		}
		achievementID = def.ID
	}

	def, granted, err := h.engine.GrantManually(ctx, input.UserID, achievementID, adminID)
	if err != nil {
		return nil, httpError(h.logger, "grant achievement", err)
	}
	if granted {
		h.celebrate(ctx, notifier.Event{Kind: notifier.EventAchievementGranted, UserID: input.UserID, ID: def.ID, Name: def.Name, Icon: def.Icon})
	}

	res := &GrantAchievementResponse{}
	res.Body.Granted = granted
	res.Body.Achievement = def
	return res, nil
}

type ListReportsRequest struct {
	auth.AuthInput
}

type ListReportsResponse struct {
	Body struct {
		Reports []community.ReportView `json:"reports"`
	}
}

func (h *AdminHandler) HandleListReports(ctx context.Context, input *ListReportsRequest) (*ListReportsResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, &input.AuthInput); err != nil {
		return nil, err
	}

	reports, err := h.community.ListReports(ctx)
	if err != nil {
		return nil, httpError(h.logger, "list reports", err)
	}
	res := &ListReportsResponse{}
	res.Body.Reports = reports
	if res.Body.Reports == nil {
		res.Body.Reports = []community.ReportView{}
	}
	return res, nil
}

type DeletePrayerRequestRequest struct {
	auth.AuthInput
	ID string `path:"id"`
}

func (h *AdminHandler) HandleDeletePrayerRequest(ctx context.Context, input *DeletePrayerRequestRequest) (*struct{}, error) {
	adminID, err := h.authHandler.RequireAdmin(ctx, &input.AuthInput)
	if err != nil {
		return nil, err
	}
	if err := h.community.DeleteRequest(ctx, input.ID, adminID); err != nil {
		return nil, httpError(h.logger, "delete prayer request", err)
	}
	return nil, nil
}

type DismissReportRequest struct {
	auth.AuthInput
	ID string `path:"id"`
}

func (h *AdminHandler) HandleDismissReport(ctx context.Context, input *DismissReportRequest) (*struct{}, error) {
	adminID, err := h.authHandler.RequireAdmin(ctx, &input.AuthInput)
	if err != nil {
		return nil, err
	}
	if err := h.community.DismissReport(ctx, input.ID, adminID); err != nil {
		return nil, httpError(h.logger, "dismiss report", err)
	}
	return nil, nil
}
