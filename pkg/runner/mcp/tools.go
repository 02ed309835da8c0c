package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/marklet/pkg/command"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListBookmarkletsTool(srv, svc)
	registerGetBookmarkletTool(srv, svc)
	registerCreateBookmarkletTool(srv, svc)
	registerDeleteBookmarkletTool(srv, svc)
	registerRunBookmarkletTool(srv, svc)
	registerRunCommandTool(srv, svc)
	registerGetSettingsTool(srv, svc)
	registerBindSlotTool(srv, svc)
}

func registerListBookmarkletsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_bookmarklets",
		mcp.WithDescription("List bookmarklets in launcher order: favorites, then most recently used."),
		mcp.WithString("query",
			mcp.Description("Optional case-insensitive text matched against names and tags."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of bookmarklets to return (default 50)."),
			mcp.Min(1),
			mcp.Max(500),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := request.GetString("query", "")
		limit := request.GetInt("limit", 50)

		items, err := svc.ListBookmarklets(ctx, query, limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"query":        query,
			"bookmarklets": items,
			"count":        len(items),
		})
	})
}

func registerGetBookmarkletTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_bookmarklet",
		mcp.WithDescription("Fetch a single bookmarklet, including its code."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Bookmarklet identifier."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.BookmarkletByID(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerCreateBookmarkletTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"create_bookmarklet",
		mcp.WithDescription("Save a new bookmarklet. A javascript: prefix and URL escaping are removed from the code."),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("JavaScript source, with or without the javascript: prefix."),
		),
		mcp.WithString("name",
			mcp.Description("Display name; defaults to Untitled."),
		),
		mcp.WithString("tags",
			mcp.Description("Comma separated tags."),
		),
		mcp.WithBoolean("favorite",
			mcp.Description("Pin the bookmarklet to the top of the launcher."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Code     string `json:"code"`
			Name     string `json:"name"`
			Tags     string `json:"tags"`
			Favorite bool   `json:"favorite"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.Create(ctx, CreateOptions{
			Name:     args.Name,
			Tags:     args.Tags,
			Code:     args.Code,
			Favorite: args.Favorite,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerDeleteBookmarkletTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_bookmarklet",
		mcp.WithDescription("Delete a bookmarklet and clear any slot bound to it."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Bookmarklet identifier to delete."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		deleted, err := svc.Delete(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"id": id, "deleted": deleted})
	})
}

func registerRunBookmarkletTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"run_bookmarklet",
		mcp.WithDescription("Run a bookmarklet in the active browser tab and return its result."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Bookmarklet identifier to run."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		outcome, err := svc.Run(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !outcome.OK {
			return mcp.NewToolResultError(outcome.Message), nil
		}
		return toJSONResult(outcome)
	})
}

func registerRunCommandTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"run_command",
		mcp.WithDescription("Trigger a shortcut command as if its hotkey was pressed."),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("Shortcut command id."),
			mcp.Enum(command.Names()...),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("command")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res, err := svc.RunCommand(ctx, strings.TrimSpace(name))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(res)
	})
}

func registerGetSettingsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_settings",
		mcp.WithDescription("Return the shortcut mode, slot bindings and launcher preferences."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		current, err := svc.Settings(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(current)
	})
}

func registerBindSlotTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"bind_slot",
		mcp.WithDescription("Assign a bookmarklet to a shortcut slot, or clear the slot."),
		mcp.WithString("slot",
			mcp.Required(),
			mcp.Description("Slot number."),
			mcp.Enum("1", "2", "3", "4"),
		),
		mcp.WithString("id",
			mcp.Description("Bookmarklet identifier; omit to clear the slot."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		slot, err := request.RequireString("slot")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		current, err := svc.BindSlot(ctx, slot, request.GetString("id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(current)
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
