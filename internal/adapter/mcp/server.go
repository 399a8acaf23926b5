// Package mcp exposes the todo and tag services as Model Context Protocol
// tools over streamable HTTP.
package mcp

import (
	"context"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/todolist/internal/domain/tag"
	"github.com/Strob0t/todolist/internal/domain/todo"
)

// TodoManager is the subset of the todo service the tools call.
type TodoManager interface {
	List(ctx context.Context) ([]todo.Todo, error)
	Get(ctx context.Context, id int64) (*todo.Todo, error)
	Create(ctx context.Context, req *todo.CreateRequest) (*todo.Todo, error)
	Update(ctx context.Context, id int64, req *todo.UpdateRequest) (*todo.Todo, error)
	Delete(ctx context.Context, id int64) error
}

// TagLister lists tags.
type TagLister interface {
	List(ctx context.Context) ([]tag.Tag, error)
}

// ServerConfig holds the MCP server identity and mount path.
type ServerConfig struct {
	Name    string
	Version string
	Path    string
}

// ServerDeps are the services behind the tools. Nil deps make the
// corresponding tools return an error result.
type ServerDeps struct {
	Todos TodoManager
	Tags  TagLister
}

// Server wraps an mcp-go server with the todolist tools and resources.
type Server struct {
	cfg       ServerConfig
	deps      ServerDeps
	mcpServer *mcpserver.MCPServer
}

// NewServer creates the MCP server and registers all tools and resources.
func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	if cfg.Path == "" {
		cfg.Path = "/mcp"
	}
	s := &Server{
		cfg:  cfg,
		deps: deps,
		mcpServer: mcpserver.NewMCPServer(cfg.Name, cfg.Version,
			mcpserver.WithToolCapabilities(false),
			mcpserver.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// Path returns the HTTP path the handler expects to be mounted at.
func (s *Server) Path() string {
	return s.cfg.Path
}

// Handler returns a stateless streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath(s.cfg.Path),
		mcpserver.WithStateLess(true),
	)
}
