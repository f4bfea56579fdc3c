// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes pagesmith tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/pagesmith/internal/pageservice"
	"github.com/starford/pagesmith/internal/storage"
)

const guideURI = "pagesmith://authoring-guide"

// Server wraps the MCP server with pagesmith tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *pageservice.Service
	source storage.Provider
}

// New creates a new MCP server with all pagesmith tools registered.
// Uploaded images are written to source.
func New(svc *pageservice.Service, source storage.Provider) *Server {
	s := &Server{svc: svc, source: source}

	s.mcp = server.NewMCPServer(
		"Pagesmith",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("extract_page",
		mcp.WithDescription("Run Markdown through the page pipeline and return the template data "+
			"it produces, without writing anything. Use it to check how a draft will be read. "+
			"Read the authoring guide first via get_authoring_guide or the "+guideURI+" resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown source, front matter included")),
		mcp.WithString("path", mcp.Description("Relative source path the draft would live at (default draft.md)")),
	), s.extractPage)

	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List Markdown sources, or only those below a folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listPages)

	s.mcp.AddTool(mcp.NewTool("read_source",
		mcp.WithDescription("Read the raw Markdown of a source file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the source (e.g. blog/post.md)")),
	), s.readSource)

	s.mcp.AddTool(mcp.NewTool("search_pages",
		mcp.WithDescription("Search built pages by title and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPages)

	s.mcp.AddTool(mcp.NewTool("get_authoring_guide",
		mcp.WithDescription("Returns the Markdown conventions for listing, catalog and gallery pages. "+
			"Call this before drafting sources."),
	), s.getAuthoringGuide)

	s.mcp.AddTool(mcp.NewTool("upload_image",
		mcp.WithDescription("Save an image into the source tree for use in a gallery. "+
			"Accepts an http(s) URL or a base64 data URI. Returns the gallery front-matter entry."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Image URL or data:image/...;base64,... URI")),
		mcp.WithString("folder", mcp.Description("Source folder the image belongs to (default: root)")),
		mcp.WithString("filename", mcp.Description("Optional file name; derived from the URL when empty")),
	), s.uploadImage)

	// Resource: authoring guide.
	s.mcp.AddResource(
		mcp.NewResource(guideURI, "Authoring Guide",
			mcp.WithResourceDescription("Markdown conventions recognised by the page processors."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readGuideResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) extractPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path := "draft.md"
	if p, pErr := req.RequireString("path"); pErr == nil && p != "" {
		path = p
	}

	page, err := s.svc.Extract(ctx, path, []byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(page, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	files, err := s.svc.ListSources(ctx, folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) readSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.svc.ReadSource(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) searchPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getAuthoringGuide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(AuthoringGuide), nil
}

func (s *Server) readGuideResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      guideURI,
			MIMEType: "text/markdown",
			Text:     AuthoringGuide,
		},
	}, nil
}
