package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timmy/socialkit/internal/domain"
)

// TemplateSource loads starter images from the template gallery.
type TemplateSource interface {
	Load(ctx context.Context, seed string) (*domain.ImagePayload, error)
	ImageURL(seed string) string
}

// CatalogHandler serves the static platform and template catalogs.
type CatalogHandler struct {
	templates TemplateSource
}

func NewCatalogHandler(templates TemplateSource) *CatalogHandler {
	return &CatalogHandler{templates: templates}
}

// TemplateResponse is a gallery entry with its preview URL.
type TemplateResponse struct {
	domain.TemplateCategory
	ImageURL string `json:"image_url,omitempty"`
}

// ListPlatforms handles GET /api/v1/platforms.
func (h *CatalogHandler) ListPlatforms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"platforms": domain.ListPlatforms(),
		"themes":    domain.Themes(),
	})
}

// ListTemplates handles GET /api/v1/templates.
func (h *CatalogHandler) ListTemplates(c *gin.Context) {
	categories := domain.Templates()
	out := make([]TemplateResponse, 0, len(categories))
	for _, t := range categories {
		resp := TemplateResponse{TemplateCategory: t}
		if h.templates != nil {
			resp.ImageURL = h.templates.ImageURL(t.Seed)
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, gin.H{"templates": out})
}
