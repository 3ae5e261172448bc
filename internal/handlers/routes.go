package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gdg-garage/devotional-api/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth         *auth.AuthHandler
	Medals       *MedalHandler
	Completions  *CompletionHandler
	Achievements *AchievementHandler
	Profiles     *ProfileHandler
	Community    *CommunityHandler
	Admin        *AdminHandler
	APIKeys      *APIKeyHandler
	Events       *EventsHandler
}

type RouteOptions struct {
	EnableCORS bool
}

var secured = []map[string][]string{{"bearerAuth": {}}, {"cookieAuth": {}}, {"apiKeyAuth": {}}}

func protected(o *huma.Operation) {
	o.Security = secured
}

func RegisterRoutes(r *chi.Mux, h Handlers, opts RouteOptions) huma.API {
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if opts.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"https://*", "http://*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", auth.APIKeyHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	config := huma.DefaultConfig("Devotional API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
		"apiKeyAuth": {
			Type: "apiKey",
			In:   "header",
			Name: auth.APIKeyHeader,
		},
	}
	api := humachi.New(r, config)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	huma.Get(api, "/medals/catalog", h.Medals.HandleCatalog)
	huma.Get(api, "/users/{user_id}/badge", h.Medals.HandleBadge)

	// Progression
	huma.Post(api, "/completions", h.Completions.HandleComplete, protected)
	huma.Get(api, "/completions", h.Completions.HandleList, protected)
	huma.Get(api, "/medals", h.Medals.HandleList, protected)
	huma.Put(api, "/medals/display", h.Medals.HandleSelectDisplay, protected)
	huma.Get(api, "/achievements", h.Achievements.HandleList, protected)

	// Profile and moderation
	huma.Put(api, "/profile/username", h.Profiles.HandleUpdateUsername, protected)
	huma.Post(api, "/moderation/check", h.Profiles.HandleModerationCheck, protected)

	// Community
	huma.Get(api, "/prayer-requests", h.Community.HandleFeed, protected)
	huma.Post(api, "/prayer-requests", h.Community.HandlePost, protected)
	huma.Post(api, "/prayer-requests/{id}/interactions", h.Community.HandleInteract, protected)
	huma.Post(api, "/prayer-requests/{id}/reports", h.Community.HandleReport, protected)

	// API keys
	huma.Post(api, "/api-keys", h.APIKeys.HandleCreate, protected)
	huma.Get(api, "/api-keys", h.APIKeys.HandleList, protected)
	huma.Delete(api, "/api-keys/{id}", h.APIKeys.HandleDelete, protected)

	// Admin
	huma.Post(api, "/admin/users/{user_id}/medals", h.Admin.HandleAwardMedal, protected)
	huma.Post(api, "/admin/achievements", h.Admin.HandleCreateAchievement, protected)
	huma.Post(api, "/admin/users/{user_id}/achievements", h.Admin.HandleGrantAchievement, protected)
	huma.Get(api, "/admin/reports", h.Admin.HandleListReports, protected)
	huma.Delete(api, "/admin/prayer-requests/{id}", h.Admin.HandleDeletePrayerRequest, protected)
	huma.Delete(api, "/admin/reports/{id}", h.Admin.HandleDismissReport, protected)

	// Server-Sent Events
	r.With(h.Auth.Middleware).Get("/events", h.Events.ServeHTTP)

	return api
}
