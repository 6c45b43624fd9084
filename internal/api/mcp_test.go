package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kalambet/folio/internal/profile"
	"github.com/kalambet/folio/internal/storage"
)

func newTestManager(t *testing.T) (*profile.Manager, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return profile.NewManager(store), store
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestMCPTool_GetProfile(t *testing.T) {
	mgr, store := newTestManager(t)
	if err := store.PutProfile(profile.Profile{Name: "Ada", Title: "Engineer"}); err != nil {
		t.Fatal(err)
	}

	result, err := mcpGetProfile(mgr)(context.Background(), makeCallToolRequest("get_profile", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}

	var p profile.Profile
	if err := json.Unmarshal([]byte(toolText(t, result)), &p); err != nil {
		t.Fatalf("parsing profile: %v", err)
	}
	if p.Name != "Ada" || p.Title != "Engineer" {
		t.Errorf("profile = %+v", p)
	}
}

func TestMCPTool_ListSkills(t *testing.T) {
	mgr, store := newTestManager(t)
	if _, err := store.AddSkill(profile.Skill{Name: "Go", Category: "Lang", Proficiency: 90, YearsOfExperience: 5}); err != nil {
		t.Fatal(err)
	}

	result, err := mcpListSkills(mgr)(context.Background(), makeCallToolRequest("list_skills", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := toolText(t, result); got != "Go - Lang (90%) - 5 yrs\n" {
		t.Errorf("text = %q", got)
	}

	result, err = mcpListSkills(mgr)(context.Background(), makeCallToolRequest("list_skills", map[string]interface{}{"format": "json"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(toolText(t, result), "[") {
		t.Errorf("json = %q", toolText(t, result))
	}
}

func TestMCPTool_ListSkills_BadFormat(t *testing.T) {
	mgr, _ := newTestManager(t)
	result, err := mcpListSkills(mgr)(context.Background(), makeCallToolRequest("list_skills", map[string]interface{}{"format": "xml"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for unknown format")
	}
}

func TestMCPResource_Profile(t *testing.T) {
	mgr, store := newTestManager(t)
	if err := store.PutProfile(profile.Profile{Name: "Ada"}); err != nil {
		t.Fatal(err)
	}

	req := mcp.ReadResourceRequest{Params: mcp.ReadResourceParams{URI: "folio://profile"}}
	contents, err := mcpResourceProfile(mgr)(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}
	if tc.URI != "folio://profile" || !strings.Contains(tc.Text, `"name":"Ada"`) {
		t.Errorf("contents = %+v", tc)
	}
}

func TestNewMCPServer(t *testing.T) {
	mgr, _ := newTestManager(t)
	if s := NewMCPServer(mgr, "test"); s == nil {
		t.Fatal("nil server")
	}
}
