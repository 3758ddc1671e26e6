package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/taskraft/taskraft-api/internal/api"
	apiMiddleware "github.com/taskraft/taskraft-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create API handlers using the application's services
	authHandler := api.NewAuthHandler(app.identityService, app.invitationService, app.logger)
	groupHandler := api.NewGroupHandler(app.groupService)
	invitationHandler := api.NewInvitationHandler(app.invitationService)
	taskHandler := api.NewTaskHandler(app.taskService)
	commentHandler := api.NewCommentHandler(app.commentService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.identityService)

	// OAuth endpoints (public, browser-driven)
	r.Get("/auth/google", authHandler.Login)
	r.Get("/auth/google/callback", authHandler.Callback)

	// Invitation landing page lookup (public; invitees may not have an
	// account yet)
	r.Get("/invitations/{token}", invitationHandler.Preview)

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		// Token refresh (public; authenticates via the refresh token itself)
		r.Post("/auth/refresh", authHandler.Refresh)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/me", authHandler.Me)

			// Group endpoints
			r.Post("/groups", groupHandler.CreateGroup)
			r.Get("/groups", groupHandler.ListGroups)
			r.Get("/groups/{groupID}", groupHandler.GetGroup)
			r.Delete("/groups/{groupID}", groupHandler.DeleteGroup)
			r.Get("/groups/{groupID}/members", groupHandler.ListMembers)
			r.Delete("/groups/{groupID}/members/{userID}", groupHandler.RemoveMember)

			// Invitation endpoints
			r.Post("/groups/{groupID}/invitations", invitationHandler.Issue)
			r.Post("/invitations/{token}/redeem", invitationHandler.Redeem)

			// Task endpoints
			r.Post("/groups/{groupID}/tasks", taskHandler.CreateTask)
			r.Get("/groups/{groupID}/tasks", taskHandler.ListTasks)
			r.Post("/groups/{groupID}/tasks/suggestions", taskHandler.SuggestTasks)
			r.Post("/groups/{groupID}/tasks/bulk", taskHandler.SaveDrafts)
			r.Get("/tasks/{taskID}", taskHandler.GetTask)
			r.Patch("/tasks/{taskID}", taskHandler.UpdateTask)
			r.Delete("/tasks/{taskID}", taskHandler.DeleteTask)

			// Comment endpoints
			r.Post("/tasks/{taskID}/comments", commentHandler.PostComment)
			r.Get("/tasks/{taskID}/comments", commentHandler.ListComments)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
