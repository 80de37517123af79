package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/minjae-ko/chatmarks/internal/annotations"
	"github.com/minjae-ko/chatmarks/internal/search"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes read-only annotation tools,
// so an assistant can look up what the user bookmarked and highlighted.
type Server struct {
	store *annotations.Store
	index *search.Index
	mcp   *server.MCPServer
}

// NewServer creates a new MCP server. index may be nil, which disables
// the search tool's results with a hint instead of an error.
func NewServer(store *annotations.Store, index *search.Index) *Server {
	s := &Server{
		store: store,
		index: index,
	}

	s.mcp = server.NewMCPServer(
		"chatmarks",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(listChatsTool, s.handleListChats)
	s.mcp.AddTool(listBookmarksTool, s.handleListBookmarks)
	s.mcp.AddTool(findBookmarkTool, s.handleFindBookmark)
	s.mcp.AddTool(searchAnnotationsTool, s.handleSearchAnnotations)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
