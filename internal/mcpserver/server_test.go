package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/crumblab/cookiejar/internal/store"
	"github.com/crumblab/cookiejar/internal/testutil"
	"github.com/crumblab/cookiejar/internal/userservice"
)

func testServer(t *testing.T) (*Server, *userservice.Service) {
	t.Helper()
	db := testutil.TestDB(t)
	svc := userservice.NewService(db, store.NewInlineCounters(db), nil)
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "get_user":
		result, err = srv.getUser(ctx, req)
	case "find_user":
		result, err = srv.findUser(ctx, req)
	case "get_cookies":
		result, err = srv.getCookies(ctx, req)
	case "top_cookies":
		result, err = srv.topCookies(ctx, req)
	default:
		t.Fatalf("unknown tool %q", name)
	}
	if err != nil {
		t.Fatalf("tool %s returned error: %v", name, err)
	}
	return result
}

func textContent(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return tc.Text
}

func seedUser(t *testing.T, svc *userservice.Service, userID int64, name string, cookies int64) {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, userservice.CreateUserInput{UserID: userID, Name: name}); err != nil {
		t.Fatal(err)
	}
	if cookies != 0 {
		if _, err := svc.SetCookies(ctx, userID, cookies); err != nil {
			t.Fatal(err)
		}
	}
}

func TestGetUserTool(t *testing.T) {
	srv, svc := testServer(t)
	seedUser(t, svc, 42, "chip", 7)

	res := callTool(t, srv, "get_user", map[string]interface{}{"userId": float64(42)})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", textContent(t, res))
	}
	out := textContent(t, res)
	if !strings.Contains(out, `"userId": 42`) || !strings.Contains(out, `"cookies": 7`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestGetUserToolNotFound(t *testing.T) {
	srv, _ := testServer(t)

	res := callTool(t, srv, "get_user", map[string]interface{}{"userId": float64(999)})
	if !res.IsError {
		t.Error("expected error result for missing user")
	}
}

func TestFindUserTool(t *testing.T) {
	srv, svc := testServer(t)
	seedUser(t, svc, 1, "oreo", 0)

	res := callTool(t, srv, "find_user", map[string]interface{}{"name": "oreo"})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", textContent(t, res))
	}
	if !strings.Contains(textContent(t, res), `"userId": 1`) {
		t.Errorf("unexpected output: %s", textContent(t, res))
	}
}

func TestTopCookiesTool(t *testing.T) {
	srv, svc := testServer(t)
	seedUser(t, svc, 1, "low", 2)
	seedUser(t, svc, 2, "high", 9)

	res := callTool(t, srv, "top_cookies", map[string]interface{}{})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", textContent(t, res))
	}
	out := textContent(t, res)
	if strings.Index(out, `"high"`) > strings.Index(out, `"low"`) {
		t.Errorf("expected high before low in %s", out)
	}
}

func TestToolsRegistered(t *testing.T) {
	srv, _ := testServer(t)
	if srv.MCPServer() == nil {
		t.Fatal("underlying MCP server missing")
	}
}
