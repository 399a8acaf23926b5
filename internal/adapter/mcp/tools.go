package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/todolist/internal/domain/todo"
)

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.listTodosTool(),
		s.getTodoTool(),
		s.createTodoTool(),
		s.updateTodoTool(),
		s.deleteTodoTool(),
		s.listTagsTool(),
	)
}

func (s *Server) listTodosTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("list_todos",
		mcplib.WithDescription("List all todos with their tags"),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleListTodos}
}

func (s *Server) getTodoTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("get_todo",
		mcplib.WithDescription("Get one todo by ID"),
		mcplib.WithNumber("id", mcplib.Required(), mcplib.Description("The todo ID")),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleGetTodo}
}

func (s *Server) createTodoTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("create_todo",
		mcplib.WithDescription("Create a todo. Unknown tag IDs are skipped."),
		mcplib.WithString("title", mcplib.Required(), mcplib.Description("Todo title")),
		mcplib.WithString("status", mcplib.Enum("todo", "doing", "done"), mcplib.Description("Defaults to todo")),
		mcplib.WithString("priority", mcplib.Enum("low", "medium", "high"), mcplib.Description("Defaults to medium")),
		mcplib.WithString("due_date", mcplib.Description("Due date as YYYY-MM-DD")),
		mcplib.WithArray("tag_ids", mcplib.Description("IDs of tags to attach"),
			mcplib.Items(map[string]any{"type": "integer"})),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleCreateTodo}
}

func (s *Server) updateTodoTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("update_todo",
		mcplib.WithDescription("Update the given fields of a todo. tag_ids replaces the whole tag set; an empty due_date clears it."),
		mcplib.WithNumber("id", mcplib.Required(), mcplib.Description("The todo ID")),
		mcplib.WithString("title", mcplib.Description("New title")),
		mcplib.WithBoolean("completed", mcplib.Description("Marks the todo done or reopens it")),
		mcplib.WithString("status", mcplib.Enum("todo", "doing", "done")),
		mcplib.WithString("priority", mcplib.Enum("low", "medium", "high")),
		mcplib.WithString("due_date", mcplib.Description("Due date as YYYY-MM-DD, empty to clear")),
		mcplib.WithArray("tag_ids", mcplib.Items(map[string]any{"type": "integer"})),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleUpdateTodo}
}

func (s *Server) deleteTodoTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("delete_todo",
		mcplib.WithDescription("Delete a todo by ID"),
		mcplib.WithNumber("id", mcplib.Required(), mcplib.Description("The todo ID")),
		mcplib.WithDestructiveHintAnnotation(true),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleDeleteTodo}
}

func (s *Server) listTagsTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("list_tags",
		mcplib.WithDescription("List all tags"),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleListTags}
}

func (s *Server) handleListTodos(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Todos == nil {
		return mcplib.NewToolResultError("todo service not configured"), nil
	}
	todos, err := s.deps.Todos.List(ctx)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list todos", err), nil
	}
	return toolResultJSON(todos)
}

func (s *Server) handleGetTodo(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Todos == nil {
		return mcplib.NewToolResultError("todo service not configured"), nil
	}
	id, err := idArg(req.GetArguments())
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}
	t, err := s.deps.Todos.Get(ctx, id)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(fmt.Sprintf("failed to get todo %d", id), err), nil
	}
	return toolResultJSON(t)
}

func (s *Server) handleCreateTodo(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Todos == nil {
		return mcplib.NewToolResultError("todo service not configured"), nil
	}
	var create todo.CreateRequest
	if err := remarshal(req.GetArguments(), &create); err != nil {
		return mcplib.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	t, err := s.deps.Todos.Create(ctx, &create)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to create todo", err), nil
	}
	return toolResultJSON(t)
}

func (s *Server) handleUpdateTodo(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Todos == nil {
		return mcplib.NewToolResultError("todo service not configured"), nil
	}
	args := req.GetArguments()
	id, err := idArg(args)
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}

	fields := make(map[string]any, len(args))
	for k, v := range args {
		if k != "id" {
			fields[k] = v
		}
	}
	var update todo.UpdateRequest
	if err := remarshal(fields, &update); err != nil {
		return mcplib.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	t, err := s.deps.Todos.Update(ctx, id, &update)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(fmt.Sprintf("failed to update todo %d", id), err), nil
	}
	return toolResultJSON(t)
}

func (s *Server) handleDeleteTodo(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Todos == nil {
		return mcplib.NewToolResultError("todo service not configured"), nil
	}
	id, err := idArg(req.GetArguments())
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}
	if err := s.deps.Todos.Delete(ctx, id); err != nil {
		return mcplib.NewToolResultErrorFromErr(fmt.Sprintf("failed to delete todo %d", id), err), nil
	}
	return mcplib.NewToolResultText(fmt.Sprintf("todo %d deleted", id)), nil
}

func (s *Server) handleListTags(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Tags == nil {
		return mcplib.NewToolResultError("tag service not configured"), nil
	}
	tags, err := s.deps.Tags.List(ctx)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list tags", err), nil
	}
	return toolResultJSON(tags)
}

// toolResultJSON marshals v into a text result.
func toolResultJSON(v any) (*mcplib.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal result", err), nil
	}
	return mcplib.NewToolResultText(string(data)), nil
}

// idArg reads a positive integer "id" argument. JSON numbers arrive as
// float64.
func idArg(args map[string]any) (int64, error) {
	v, ok := args["id"].(float64)
	if !ok {
		return 0, errors.New("id is required")
	}
	if v <= 0 || v != float64(int64(v)) {
		return 0, fmt.Errorf("id must be a positive integer, got %v", v)
	}
	return int64(v), nil
}

// remarshal round-trips tool arguments through JSON into a request type so
// that field presence and null handling match the HTTP API.
func remarshal(args map[string]any, dst any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
