package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

// registerResources registers all MCP resources on the server.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"todolist://todos",
			"Todo List",
			mcplib.WithResourceDescription("All todos with their tags"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleTodosResource,
	)

	s.mcpServer.AddResource(
		mcplib.NewResource(
			"todolist://tags",
			"Tag List",
			mcplib.WithResourceDescription("All tags"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleTagsResource,
	)
}

func (s *Server) handleTodosResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.Todos == nil {
		return jsonResource(req.Params.URI, `{"error":"todo service not configured"}`), nil
	}
	todos, err := s.deps.Todos.List(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(todos)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, string(data)), nil
}

func (s *Server) handleTagsResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.Tags == nil {
		return jsonResource(req.Params.URI, `{"error":"tag service not configured"}`), nil
	}
	tags, err := s.deps.Tags.List(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, string(data)), nil
}

func jsonResource(uri, text string) []mcplib.ResourceContents {
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		},
	}
}
