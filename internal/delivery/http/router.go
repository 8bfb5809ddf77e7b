package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"valentine/internal/delivery/http/controllers"
	"valentine/internal/delivery/http/middleware"
	"valentine/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	authController *controllers.AuthController,
	messageController *controllers.MessageController,
	adminController *controllers.AdminController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(verifier, logger)
	requireAdmin := middleware.RequireAdmin(verifier, logger)

	// Auth
	mux.HandleFunc("GET /auth/google", authController.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", authController.GoogleCallback)

	// Messages
	mux.HandleFunc("POST /messages", requireAuth(messageController.Create))
	mux.HandleFunc("GET /messages/{id}", messageController.Get)
	mux.HandleFunc("POST /messages/{id}/click", messageController.Accept)
	mux.HandleFunc("GET /users/me/messages", requireAuth(messageController.ListMine))

	// Admin
	mux.HandleFunc("POST /admin/login", adminController.Login)
	mux.HandleFunc("GET /admin/messages", requireAdmin(adminController.ListMessages))

	// Liveness
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
