package handlers

import (
	"context"

	"github.com/gdg-garage/devotional-api/internal/auth"
	"github.com/gdg-garage/devotional-api/internal/medals"
	"go.uber.org/zap"
)

type MedalHandler struct {
	medals      *medals.Service
	authHandler *auth.AuthHandler
	logger      *zap.Logger
}

func NewMedalHandler(svc *medals.Service, authHandler *auth.AuthHandler, logger *zap.Logger) *MedalHandler {
	return &MedalHandler{medals: svc, authHandler: authHandler, logger: logger}
}

type CatalogResponse struct {
	Body struct {
		Tiers []medals.Tier `json:"tiers"`
	}
}

func (h *MedalHandler) HandleCatalog(ctx context.Context, _ *struct{}) (*CatalogResponse, error) {
	res := &CatalogResponse{}
	res.Body.Tiers = h.medals.Catalog().Tiers()
	return res, nil
}

type ListMedalsRequest struct {
	auth.AuthInput
}

type ListMedalsResponse struct {
	Body struct {
		Medals  []medals.Medal `json:"medals"`
		Display *string        `json:"display"`
	}
}

func (h *MedalHandler) HandleList(ctx context.Context, input *ListMedalsRequest) (*ListMedalsResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, &input.AuthInput)
	if err != nil {
		return nil, err
	}

	list, err := h.medals.List(ctx, userID)
	if err != nil {
		return nil, httpError(h.logger, "list medals", err)
	}
	ref, err := h.medals.DisplayRef(ctx, userID)
	if err != nil {
		return nil, httpError(h.logger, "load display selection", err)
	}

	res := &ListMedalsResponse{}
	res.Body.Medals = list
	res.Body.Display = ref
	return res, nil
}

type SelectDisplayRequest struct {
	auth.AuthInput
	Body struct {
		MedalRef *string `json:"medal_ref,omitempty" nullable:"true" doc:"Tier id or medal id from GET /medals to display; null clears the selection"`
	}
}

type BadgeResponse struct {
	Body struct {
		Badge *medals.Badge `json:"badge"`
	}
}

func (h *MedalHandler) HandleSelectDisplay(ctx context.Context, input *SelectDisplayRequest) (*BadgeResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, &input.AuthInput)
	if err != nil {
		return nil, err
	}

	if err := h.medals.SelectDisplay(ctx, userID, input.Body.MedalRef); err != nil {
		return nil, httpError(h.logger, "select display medal", err)
	}

	res := &BadgeResponse{}
	res.Body.Badge = h.medals.ResolveDisplayBadge(ctx, userID)
	return res, nil
}

type BadgeRequest struct {
	UserID string `path:"user_id" doc:"User whose badge to resolve"`
}

// HandleBadge is public: profile views of other users render it.
func (h *MedalHandler) HandleBadge(ctx context.Context, input *BadgeRequest) (*BadgeResponse, error) {
	res := &BadgeResponse{}
	res.Body.Badge = h.medals.ResolveDisplayBadge(ctx, input.UserID)
	return res, nil
}
