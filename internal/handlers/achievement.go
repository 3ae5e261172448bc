package handlers

import (
	"context"

	"github.com/gdg-garage/devotional-api/internal/achievements"
	"github.com/gdg-garage/devotional-api/internal/auth"
	"github.com/gdg-garage/devotional-api/internal/models"
	"go.uber.org/zap"
)

type AchievementHandler struct {
	engine      *achievements.Engine
	authHandler *auth.AuthHandler
	logger      *zap.Logger
}

func NewAchievementHandler(engine *achievements.Engine, authHandler *auth.AuthHandler, logger *zap.Logger) *AchievementHandler {
	return &AchievementHandler{engine: engine, authHandler: authHandler, logger: logger}
}

type ListAchievementsRequest struct {
	auth.AuthInput
}

type ListAchievementsResponse struct {
	Body struct {
		Catalog []models.AchievementDefinition `json:"catalog"`
		Earned  []models.UserAchievement       `json:"earned"`
	}
}

func (h *AchievementHandler) HandleList(ctx context.Context, input *ListAchievementsRequest) (*ListAchievementsResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, &input.AuthInput)
	if err != nil {
		return nil, err
	}

	catalog, err := h.engine.List(ctx)
	if err != nil {
		return nil, httpError(h.logger, "list achievements", err)
	}
	earned, err := h.engine.ListForUser(ctx, userID)
	if err != nil {
		return nil, httpError(h.logger, "list user achievements", err)
	}

	res := &ListAchievementsResponse{}
	res.Body.Catalog = catalog
	res.Body.Earned = earned
	return res, nil
}
