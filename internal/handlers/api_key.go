package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/devotional-api/internal/apperr"
	"github.com/gdg-garage/devotional-api/internal/auth"
	"github.com/gdg-garage/devotional-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type APIKeyHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	logger      *zap.Logger
}

func NewAPIKeyHandler(db *gorm.DB, authHandler *auth.AuthHandler, logger *zap.Logger) *APIKeyHandler {
	return &APIKeyHandler{db: db, authHandler: authHandler, logger: logger}
}

type CreateAPIKeyInput struct {
	auth.AuthInput
	Body struct {
		Name      string     `json:"name" required:"true" minLength:"1" maxLength:"100"`
		ExpiresAt *time.Time `json:"expires_at,omitempty"`
	}
}

type APIKeyResponse struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Key        string     `json:"key"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

func newAPIKeyResponse(k models.APIKey, key string) APIKeyResponse {
	return APIKeyResponse{
		ID:         k.ID,
		Name:       k.Name,
		Key:        key,
		CreatedAt:  k.CreatedAt,
		ExpiresAt:  k.ExpiresAt,
		LastUsedAt: k.LastUsedAt,
	}
}

// maskKey keeps only the last four characters.
func maskKey(key string) string {
	if len(key) <= 4 {
		return key
	}
	return "..." + key[len(key)-4:]
}

type CreateAPIKeyOutput struct {
	Status int
	Body   APIKeyResponse
}

// HandleCreate returns the full key. It is never shown again.
func (h *APIKeyHandler) HandleCreate(ctx context.Context, input *CreateAPIKeyInput) (*CreateAPIKeyOutput, error) {
	userID, err := h.authHandler.Authorize(ctx, &input.AuthInput)
	if err != nil {
		return nil, err
	}
	if input.Body.ExpiresAt != nil && input.Body.ExpiresAt.Before(time.Now()) {
		return nil, huma.Error422UnprocessableEntity("expires_at must be in the future")
	}

	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate key")
	}

	apiKey := models.APIKey{
		UserID:    userID,
		Key:       hex.EncodeToString(keyBytes),
		Name:      input.Body.Name,
		ExpiresAt: input.Body.ExpiresAt,
	}
	if err := h.db.WithContext(ctx).Create(&apiKey).Error; err != nil {
		return nil, httpError(h.logger, "create api key", apperr.Storage("create api key", err))
	}

	h.logger.Info("api key created", zap.String("user_id", userID), zap.Uint("api_key_id", apiKey.ID))
	return &CreateAPIKeyOutput{Status: http.StatusCreated, Body: newAPIKeyResponse(apiKey, apiKey.Key)}, nil
}

type ListAPIKeysInput struct {
	auth.AuthInput
}

type ListAPIKeysOutput struct {
	Body []APIKeyResponse
}

func (h *APIKeyHandler) HandleList(ctx context.Context, input *ListAPIKeysInput) (*ListAPIKeysOutput, error) {
	userID, err := h.authHandler.Authorize(ctx, &input.AuthInput)
	if err != nil {
		return nil, err
	}

	var apiKeys []models.APIKey
	if err := h.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&apiKeys).Error; err != nil {
		return nil, httpError(h.logger, "list api keys", apperr.Storage("list api keys", err))
	}

	response := make([]APIKeyResponse, 0, len(apiKeys))
	for _, k := range apiKeys {
		response = append(response, newAPIKeyResponse(k, maskKey(k.Key)))
	}
	return &ListAPIKeysOutput{Body: response}, nil
}

type DeleteAPIKeyInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *APIKeyHandler) HandleDelete(ctx context.Context, input *DeleteAPIKeyInput) (*struct{}, error) {
	userID, err := h.authHandler.Authorize(ctx, &input.AuthInput)
	if err != nil {
		return nil, err
	}

	res := h.db.WithContext(ctx).Where("id = ? AND user_id = ?", input.ID, userID).Delete(&models.APIKey{})
	if res.Error != nil {
		return nil, httpError(h.logger, "delete api key", apperr.Storage("delete api key", res.Error))
	}
	if res.RowsAffected == 0 {
		return nil, huma.Error404NotFound("API key not found")
	}
	return nil, nil
}
