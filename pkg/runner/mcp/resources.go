package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerBookmarkletsResource(srv, svc)
	registerBookmarkletTemplate(srv, svc)
	registerSettingsResource(srv, svc)
}

func registerBookmarkletsResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"marklet://bookmarklets",
		"Bookmarklets",
		mcp.WithResourceDescription("All bookmarklets in launcher order, without code."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		items, err := svc.ListBookmarklets(ctx, "", 0)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"bookmarklets": items,
			"count":        len(items),
		})
	})
}

func registerBookmarkletTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"marklet://bookmarklets/{id}",
		"Bookmarklet",
		mcp.WithTemplateDescription("A single bookmarklet including its code."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id, _ := request.Params.Arguments["id"].(string)
		if id == "" {
			return nil, fmt.Errorf("bookmarklet id is required")
		}
		dto, err := svc.BookmarkletByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{"bookmarklet": dto})
	})
}

func registerSettingsResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"marklet://settings",
		"Settings",
		mcp.WithResourceDescription("Shortcut mode, slot bindings and launcher preferences."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		current, err := svc.Settings(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, current)
	})
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
