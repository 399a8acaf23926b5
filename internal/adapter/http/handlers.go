package http

import (
	"fmt"
	"net/http"

	"github.com/Strob0t/todolist/internal/logger"
	"github.com/Strob0t/todolist/internal/service"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Todos *service.TodoService
	Tags  *service.TagService
	Admin *service.AdminService
}

// --- Todos ---

// ListTodos handles GET /todos.
func (h *Handlers) ListTodos(w http.ResponseWriter, r *http.Request) {
	handleList(h.Todos.List)(w, r)
}

// GetTodo handles GET /todos/{id}.
func (h *Handlers) GetTodo(w http.ResponseWriter, r *http.Request) {
	handleGet(h.Todos.Get, "todo not found")(w, r)
}

// CreateTodo handles POST /todos.
func (h *Handlers) CreateTodo(w http.ResponseWriter, r *http.Request) {
	handleCreate(h.Todos.Create)(w, r)
}

// UpdateTodo handles PUT /todos/{id}. Only the keys present in the body
// are applied.
func (h *Handlers) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	handleUpdate(h.Todos.Update, "todo not found")(w, r)
}

// DeleteTodo handles DELETE /todos/{id}.
func (h *Handlers) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	handleDelete(h.Todos.Delete, "todo not found", "Todo deleted successfully")(w, r)
}

type archiveResponse struct {
	Message       string `json:"message"`
	ArchivedCount int64  `json:"archived_count"`
}

// ArchiveCompleted handles DELETE /todos/archive_completed.
func (h *Handlers) ArchiveCompleted(w http.ResponseWriter, r *http.Request) {
	res, err := h.Todos.ArchiveCompleted(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, archiveResponse{
		Message:       fmt.Sprintf("Archived %d completed todos", res.Archived),
		ArchivedCount: res.Archived,
	})
}

// --- Tags ---

// ListTags handles GET /tags.
func (h *Handlers) ListTags(w http.ResponseWriter, r *http.Request) {
	handleList(h.Tags.List)(w, r)
}

// CreateTag handles POST /tags.
func (h *Handlers) CreateTag(w http.ResponseWriter, r *http.Request) {
	handleCreate(h.Tags.Create)(w, r)
}

// DeleteTag handles DELETE /tags/{id}.
func (h *Handlers) DeleteTag(w http.ResponseWriter, r *http.Request) {
	handleDelete(h.Tags.Delete, "tag not found", "Tag deleted successfully")(w, r)
}

// --- Admin ---

// ClearAllData handles POST /clear_all_data. A failure rolls back and the
// cause is returned in detail.
func (h *Handlers) ClearAllData(w http.ResponseWriter, r *http.Request) {
	if err := h.Admin.ClearAll(r.Context()); err != nil {
		logger.From(r.Context()).Error("clear all data failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:  "failed to clear data",
			Detail: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "All data cleared successfully"})
}
