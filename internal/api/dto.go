package api

import (
	"github.com/starford/pagesmith/internal/manifest"
	"github.com/starford/pagesmith/internal/models"
	"github.com/starford/pagesmith/internal/pageservice"
)

// ExtractRequest is the request body for an on-demand extraction.
type ExtractRequest struct {
	Path    string `json:"path" example:"blog/hello.md" validate:"required"`
	Content string `json:"content" example:"# Hello\nWorld" validate:"required"`
}

// PageDetail is the full page response type (aliased from the domain layer).
type PageDetail = pageservice.PageDetail

// PageListItem is a manifest row in a list response.
type PageListItem = manifest.PageRow

// PageListResponse wraps paginated page listings.
type PageListResponse struct {
	Pages []PageListItem `json:"pages" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult = manifest.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// ExtractResponse is the page produced by an extraction.
type ExtractResponse = models.Page
