package handlers

import (
	"context"

	"github.com/gdg-garage/devotional-api/internal/auth"
	"github.com/gdg-garage/devotional-api/internal/models"
	"github.com/gdg-garage/devotional-api/internal/progress"
	"github.com/gdg-garage/devotional-api/internal/progression"
	"go.uber.org/zap"
)

type CompletionHandler struct {
	progression *progression.Service
	store       *progress.Store
	authHandler *auth.AuthHandler
	logger      *zap.Logger
}

func NewCompletionHandler(svc *progression.Service, store *progress.Store, authHandler *auth.AuthHandler, logger *zap.Logger) *CompletionHandler {
	return &CompletionHandler{progression: svc, store: store, authHandler: authHandler, logger: logger}
}

type CompleteRequest struct {
	auth.AuthInput
	Body struct {
		ItemID   string          `json:"item_id" doc:"Devotional or challenge id" required:"true" minLength:"1"`
		ItemType models.ItemType `json:"item_type" doc:"Kind of item" required:"true" enum:"devotional,challenge"`
	}
}

type CompleteResponse struct {
	Body progression.Outcome
}

func (h *CompletionHandler) HandleComplete(ctx context.Context, input *CompleteRequest) (*CompleteResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, &input.AuthInput)
	if err != nil {
		return nil, err
	}

	out, err := h.progression.Complete(ctx, userID, input.Body.ItemID, input.Body.ItemType)
	if err != nil {
		return nil, httpError(h.logger, "record completion", err)
	}
	return &CompleteResponse{Body: out}, nil
}

type ListCompletionsRequest struct {
	auth.AuthInput
}

type ListCompletionsResponse struct {
	Body struct {
		progression.Summary
		Completions []models.CompletionRecord `json:"completions"`
	}
}

func (h *CompletionHandler) HandleList(ctx context.Context, input *ListCompletionsRequest) (*ListCompletionsResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, &input.AuthInput)
	if err != nil {
		return nil, err
	}

	sum, err := h.progression.Summary(ctx, userID)
	if err != nil {
		return nil, httpError(h.logger, "load progress summary", err)
	}
	recs, err := h.store.Completed(ctx, userID)
	if err != nil {
		return nil, httpError(h.logger, "list completions", err)
	}

	res := &ListCompletionsResponse{}
	res.Body.Summary = sum
	res.Body.Completions = recs
	return res, nil
}
