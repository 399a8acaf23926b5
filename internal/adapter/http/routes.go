package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/todolist/internal/middleware"
)

// RouteOptions configures the optional parts of the API surface.
type RouteOptions struct {
	// ClearAllEnabled mounts POST /clear_all_data; otherwise it answers 403.
	ClearAllEnabled bool
}

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers, opts RouteOptions) {
	// Todos. archive_completed never matches the numeric id pattern.
	r.Get("/todos", h.ListTodos)
	r.Post("/todos", h.CreateTodo)
	r.Delete("/todos/archive_completed", h.ArchiveCompleted)
	r.Get("/todos/{id:[0-9]+}", h.GetTodo)
	r.Put("/todos/{id:[0-9]+}", h.UpdateTodo)
	r.Delete("/todos/{id:[0-9]+}", h.DeleteTodo)

	// Tags
	r.Get("/tags", h.ListTags)
	r.Post("/tags", h.CreateTag)
	r.Delete("/tags/{id:[0-9]+}", h.DeleteTag)

	// Admin
	r.With(middleware.ClearAllGate(opts.ClearAllEnabled)).Post("/clear_all_data", h.ClearAllData)
}
