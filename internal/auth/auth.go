// Package auth verifies identities issued by the external identity provider
// and by API keys, and checks application roles.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/devotional-api/internal/config"
	"github.com/gdg-garage/devotional-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	CookieName   = "auth_token"
	APIKeyHeader = "X-API-KEY"

	TokenDuration = 24 * time.Hour
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrAPIKeyExpired   = errors.New("api key expired")
)

// AuthInput carries every credential an operation may be called with.
type AuthInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token from the identity provider"`
	Cookie        string `header:"Cookie"`
	APIKey        string `header:"X-API-KEY" doc:"API key for administrative tools"`
}

type AuthHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, logger: logger, now: time.Now}
}

// Authorize resolves the caller for a huma operation. Failures are returned
// as 401 responses.
func (h *AuthHandler) Authorize(ctx context.Context, in *AuthInput) (string, error) {
	userID, err := h.Identify(ctx, in.APIKey, bearer(in.Authorization), cookieToken(in.Cookie))
	if err != nil {
		if errors.Is(err, ErrAPIKeyExpired) {
			return "", huma.Error401Unauthorized("API key expired")
		}
		return "", huma.Error401Unauthorized("Unauthorized")
	}
	return userID, nil
}

// Identify tries an API key, then a bearer token, then the cookie token. An
// unknown API key falls through to the tokens.
func (h *AuthHandler) Identify(ctx context.Context, apiKey, bearerToken, cookie string) (string, error) {
	if apiKey != "" {
		userID, err := h.identifyAPIKey(ctx, apiKey)
		if !errors.Is(err, ErrUnauthenticated) {
			return userID, err
		}
	}
	for _, tok := range []string{bearerToken, cookie} {
		if tok != "" {
			return h.ParseToken(tok)
		}
	}
	return "", ErrUnauthenticated
}

func (h *AuthHandler) identifyAPIKey(ctx context.Context, key string) (string, error) {
	var apiKey models.APIKey
	err := h.db.WithContext(ctx).Where("key = ?", key).First(&apiKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrUnauthenticated
	}
	if err != nil {
		return "", fmt.Errorf("lookup api key: %w", err)
	}

	now := h.now()
	if apiKey.ExpiresAt != nil && now.After(*apiKey.ExpiresAt) {
		return "", ErrAPIKeyExpired
	}
	if err := h.db.WithContext(ctx).Model(&apiKey).Update("last_used_at", now).Error; err != nil {
		h.logger.Warn("failed to stamp api key usage", zap.Uint("api_key_id", apiKey.ID), zap.Error(err))
	}
	return apiKey.UserID, nil
}

// ParseToken verifies an HS256 token and returns its subject.
func (h *AuthHandler) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return sub, nil
}

// GenerateToken signs a token the way the identity provider does. It is used
// by local tooling and tests.
func (h *AuthHandler) GenerateToken(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(h.now()),
		ExpiresAt: jwt.NewNumericDate(h.now().Add(TokenDuration)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

func (h *AuthHandler) CheckRole(ctx context.Context, userID, role string) (bool, error) {
	var count int64
	err := h.db.WithContext(ctx).Model(&models.UserRole{}).Where("user_id = ? AND role = ?", userID, role).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check role: %w", err)
	}
	return count > 0, nil
}

// RequireAdmin authorizes the caller and checks the admin role.
func (h *AuthHandler) RequireAdmin(ctx context.Context, in *AuthInput) (string, error) {
	userID, err := h.Authorize(ctx, in)
	if err != nil {
		return "", err
	}
	ok, err := h.CheckRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		h.logger.Error("role check failed", zap.String("user_id", userID), zap.Error(err))
		return "", huma.Error503ServiceUnavailable("Failed to check role")
	}
	if !ok {
		h.logger.Warn("admin access denied", zap.String("user_id", userID))
		return "", huma.Error403Forbidden("Access denied: missing admin role")
	}
	return userID, nil
}

// GrantRole gives userID a role. Granting a held role is a no-op.
func (h *AuthHandler) GrantRole(ctx context.Context, userID, role string) error {
	return h.db.WithContext(ctx).Where(models.UserRole{UserID: userID, Role: role}).FirstOrCreate(&models.UserRole{}).Error
}

func bearer(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func cookieToken(header string) string {
	if header == "" {
		return ""
	}
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return ""
	}
	for _, c := range cookies {
		if c.Name == CookieName {
			return c.Value
		}
	}
	return ""
}
