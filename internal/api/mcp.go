package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/folio/internal/profile"
)

// NewMCPServer creates a read-only MCP server exposing the portfolio.
func NewMCPServer(mgr *profile.Manager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"folio",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("folio: read-only access to a personal portfolio profile and skills."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("get_profile",
			mcp.WithDescription("Return the portfolio profile as JSON."),
		),
		mcpGetProfile(mgr),
	)

	s.AddTool(
		mcp.NewTool("list_skills",
			mcp.WithDescription("List skills, one label per line, or as JSON."),
			mcp.WithString("format", mcp.Description(`"text" (default) or "json"`)),
		),
		mcpListSkills(mgr),
	)

	s.AddResource(
		mcp.NewResource(
			"folio://profile",
			"Portfolio Profile",
			mcp.WithResourceDescription("Current portfolio profile as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfile(mgr),
	)

	return s
}

func mcpGetProfile(mgr *profile.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, err := mgr.GetProfile()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to get profile: %v", err)), nil
		}
		b, err := json.Marshal(p)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal profile: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpListSkills(mgr *profile.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		skills, err := mgr.Skills()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list skills: %v", err)), nil
		}

		switch format := req.GetString("format", "text"); format {
		case "json":
			b, err := json.Marshal(skills)
			if err != nil {
				return mcpError(fmt.Sprintf("failed to marshal skills: %v", err)), nil
			}
			return mcpText(string(b)), nil
		case "text":
			var out string
			for _, sk := range skills {
				out += sk.Label() + "\n"
			}
			return mcpText(out), nil
		default:
			return mcpError(fmt.Sprintf("unknown format %q", format)), nil
		}
	}
}

func mcpResourceProfile(mgr *profile.Manager) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		p, err := mgr.GetProfile()
		if err != nil {
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}

		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
