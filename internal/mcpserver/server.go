// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the blog pipeline to agent clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mannaz/internal/feed"
	"github.com/starford/mannaz/internal/models"
)

// Server wraps the MCP server with Mannaz tools.
type Server struct {
	mcp *server.MCPServer
	svc *feed.Service
}

// New creates a new MCP server with all Mannaz tools registered.
func New(svc *feed.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Mannaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List the visible blog feed, most recent date first."),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("create_post",
		mcp.WithDescription("Publish a blog post. Runs the same pipeline as the web form: "+
			"the post becomes visible only once the optional avatar has been fetched and stored. "+
			"Image upload is a web-only capability."),
		mcp.WithString("user", mcp.Required(), mcp.Description("Author display name")),
		mcp.WithString("date", mcp.Required(), mcp.Description("Post date in YYYY-MM-DD form")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Post body text")),
		mcp.WithString("avatar", mcp.Description("Optional avatar URL; must serve image/png")),
	), s.createPost)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, err := req.RequireString("user")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	avatarURL := req.GetString("avatar", "")

	id, err := s.svc.Submit(ctx, models.Submission{
		Author:    user,
		AvatarURL: avatarURL,
		Date:      date,
		Text:      text,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("published post %d", id)), nil
}
