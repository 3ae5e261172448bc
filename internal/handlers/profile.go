package handlers

import (
	"context"

	"github.com/gdg-garage/devotional-api/internal/auth"
	"github.com/gdg-garage/devotional-api/internal/medals"
	"github.com/gdg-garage/devotional-api/internal/models"
	"github.com/gdg-garage/devotional-api/internal/moderation"
	"github.com/gdg-garage/devotional-api/internal/profiles"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	profiles    *profiles.Service
	medals      *medals.Service
	filter      *moderation.Filter
	authHandler *auth.AuthHandler
	logger      *zap.Logger
}

func NewProfileHandler(svc *profiles.Service, medalSvc *medals.Service, filter *moderation.Filter, authHandler *auth.AuthHandler, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: svc, medals: medalSvc, filter: filter, authHandler: authHandler, logger: logger}
}

type UpdateUsernameRequest struct {
	auth.AuthInput
	Body struct {
		Username string `json:"username" doc:"New display name" required:"true"`
	}
}

type ProfileResponse struct {
	Body struct {
		models.Profile
		Badge *medals.Badge `json:"badge"`
	}
}

func (h *ProfileHandler) HandleUpdateUsername(ctx context.Context, input *UpdateUsernameRequest) (*ProfileResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, &input.AuthInput)
	if err != nil {
		return nil, err
	}

	p, err := h.profiles.UpdateUsername(ctx, userID, input.Body.Username)
	if err != nil {
		return nil, httpError(h.logger, "update username", err)
	}

	res := &ProfileResponse{}
	res.Body.Profile = p
	res.Body.Badge = h.medals.ResolveDisplayBadge(ctx, userID)
	return res, nil
}

type ModerationCheckRequest struct {
	auth.AuthInput
	Body struct {
		Text string `json:"text" doc:"Text to screen" required:"true" maxLength:"2000"`
	}
}

type ModerationCheckResponse struct {
	Body struct {
		Allowed bool `json:"allowed"`
	}
}

// HandleModerationCheck lets clients pre-screen text before submitting it.
func (h *ProfileHandler) HandleModerationCheck(ctx context.Context, input *ModerationCheckRequest) (*ModerationCheckResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, &input.AuthInput); err != nil {
		return nil, err
	}
	res := &ModerationCheckResponse{}
	res.Body.Allowed = !h.filter.ContainsProfanity(input.Body.Text)
	return res, nil
}
