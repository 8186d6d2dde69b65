// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes read-only Cookiejar tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/crumblab/cookiejar/internal/apperr"
	"github.com/crumblab/cookiejar/internal/userservice"
)

// Server wraps the MCP server with Cookiejar tools.
type Server struct {
	mcp *server.MCPServer
	svc *userservice.Service
}

// New creates a new MCP server with all Cookiejar tools registered.
func New(svc *userservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Cookiejar",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_user",
		mcp.WithDescription("Fetch a user record (including its cookie count) by external id."),
		mcp.WithNumber("userId", mcp.Required(), mcp.Description("External user id")),
	), s.getUser)

	s.mcp.AddTool(mcp.NewTool("find_user",
		mcp.WithDescription("Find a user whose name or display name equals the given value."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name or display name to match")),
	), s.findUser)

	s.mcp.AddTool(mcp.NewTool("get_cookies",
		mcp.WithDescription("Read a user's current cookie count."),
		mcp.WithNumber("userId", mcp.Required(), mcp.Description("External user id")),
	), s.getCookies)

	s.mcp.AddTool(mcp.NewTool("top_cookies",
		mcp.WithDescription("List the users with the most cookies, descending."),
		mcp.WithNumber("limit", mcp.Description("Maximum entries to return (at most 10, the default)")),
	), s.topCookies)

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

func (s *Server) getUser(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("userId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	user, err := s.svc.GetUser(ctx, int64(id))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("user not found: %d", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(user, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) findUser(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	user, err := s.svc.FindUserByName(ctx, name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("no user named %q", name)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(user, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getCookies(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("userId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	state, err := s.svc.GetCookies(ctx, int64(id))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("no cookies recorded for user %d", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(state, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) topCookies(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 10
	if v, err := req.RequireInt("limit"); err == nil && v > 0 && v < limit {
		limit = v
	}
	entries, err := s.svc.Leaderboard(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
