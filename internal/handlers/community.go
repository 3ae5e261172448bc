package handlers

import (
	"context"
	"net/http"

	"github.com/gdg-garage/devotional-api/internal/auth"
	"github.com/gdg-garage/devotional-api/internal/community"
	"github.com/gdg-garage/devotional-api/internal/models"
	"go.uber.org/zap"
)

type CommunityHandler struct {
	community   *community.Service
	authHandler *auth.AuthHandler
	logger      *zap.Logger
}

func NewCommunityHandler(svc *community.Service, authHandler *auth.AuthHandler, logger *zap.Logger) *CommunityHandler {
	return &CommunityHandler{community: svc, authHandler: authHandler, logger: logger}
}

type FeedRequest struct {
	auth.AuthInput
	Limit int `query:"limit" doc:"Maximum number of requests" minimum:"0" maximum:"100"`
}

type FeedResponse struct {
	Body struct {
		Items []community.FeedItem `json:"items"`
	}
}

func (h *CommunityHandler) HandleFeed(ctx context.Context, input *FeedRequest) (*FeedResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, &input.AuthInput); err != nil {
		return nil, err
	}

	items, err := h.community.Feed(ctx, input.Limit)
	if err != nil {
		return nil, httpError(h.logger, "load feed", err)
	}
	res := &FeedResponse{}
	res.Body.Items = items
	return res, nil
}

type PostRequest struct {
	auth.AuthInput
	Body struct {
		Content string `json:"content" doc:"Prayer request text" required:"true"`
	}
}

type PostResponse struct {
	Status int
	Body   models.PrayerRequest
}

func (h *CommunityHandler) HandlePost(ctx context.Context, input *PostRequest) (*PostResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, &input.AuthInput)
	if err != nil {
		return nil, err
	}

	req, err := h.community.Post(ctx, userID, input.Body.Content)
	if err != nil {
		return nil, httpError(h.logger, "post prayer request", err)
	}
	return &PostResponse{Status: http.StatusCreated, Body: req}, nil
}

type InteractRequest struct {
	auth.AuthInput
	ID   string `path:"id" doc:"Prayer request id"`
	Body struct {
		Type models.InteractionType `json:"type" required:"true" enum:"pray,support,peace,strength"`
	}
}

type InteractResponse struct {
	Body struct {
		Created bool `json:"created"`
	}
}

func (h *CommunityHandler) HandleInteract(ctx context.Context, input *InteractRequest) (*InteractResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, &input.AuthInput)
	if err != nil {
		return nil, err
	}

	created, err := h.community.Interact(ctx, userID, input.ID, input.Body.Type)
	if err != nil {
		return nil, httpError(h.logger, "record interaction", err)
	}
	res := &InteractResponse{}
	res.Body.Created = created
	return res, nil
}

type ReportRequest struct {
	auth.AuthInput
	ID   string `path:"id" doc:"Prayer request id"`
	Body struct {
		Reason string `json:"reason" required:"true" maxLength:"500"`
	}
}

type ReportResponse struct {
	Status int
	Body   models.Report
}

func (h *CommunityHandler) HandleReport(ctx context.Context, input *ReportRequest) (*ReportResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, &input.AuthInput)
	if err != nil {
		return nil, err
	}

	rep, err := h.community.Report(ctx, userID, input.ID, input.Body.Reason)
	if err != nil {
		return nil, httpError(h.logger, "report prayer request", err)
	}
	return &ReportResponse{Status: http.StatusCreated, Body: rep}, nil
}
