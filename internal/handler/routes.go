package handler

import (
	"net/http"

	"supportdesk/internal/middleware"
)

// Deps holds everything the routes need. Wired once in main.
type Deps struct {
	DB          HealthChecker
	Verifier    middleware.TokenVerifier
	Provisioner ProvisionService
	Messages    MessageService
	Directory   DirectoryService
	TextGen     TextGenerator
	ImageGen    ImageGenerator
}

// RegisterRoutes registers all HTTP routes with the provided mux.
func RegisterRoutes(mux *http.ServeMux, deps *Deps) {
	// Health and status endpoints (no auth required)
	mux.HandleFunc("GET /health", HealthCheck)
	mux.HandleFunc("GET /api/v1/status", NewStatusHandler(deps.DB))

	provisionHandler := NewProvisionHandler(deps.Provisioner)
	messagesHandler := NewMessagesHandler(deps.Messages)
	directoryHandler := NewDirectoryHandler(deps.Directory)
	aiHandler := NewAIHandler(deps.TextGen, deps.ImageGen)

	// Self-serve customer signup stands apart from the actor-driven
	// provisioning endpoints: no session required.
	mux.HandleFunc("POST /api/v1/signup", provisionHandler.SignUp)

	requireAuth := middleware.RequireAuth(deps.Verifier)
	authed := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}

	mux.Handle("POST /api/v1/managers", authed(provisionHandler.CreateManager))
	mux.Handle("POST /api/v1/team-members", authed(provisionHandler.CreateTeamMember))

	mux.Handle("POST /api/v1/messages", authed(messagesHandler.Send))
	mux.Handle("GET /api/v1/messages", authed(messagesHandler.Conversation))

	mux.Handle("GET /api/v1/recipients", authed(directoryHandler.Recipients))
	mux.Handle("GET /api/v1/team", authed(directoryHandler.Team))

	mux.Handle("POST /api/v1/ai/description", authed(aiHandler.Description))
	mux.Handle("POST /api/v1/ai/image", authed(aiHandler.Image))
	mux.Handle("POST /api/v1/ai/concept", authed(aiHandler.Concept))
}
