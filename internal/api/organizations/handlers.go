// Package organizations serves the organisation picker list.
package organizations

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/publink/publink-logs/internal/db/models"
)

// Lister returns the organisation directory
type Lister interface {
	ListOrganizations(ctx context.Context) ([]models.OrganizationItem, error)
}

// Handler serves /api/v1/organisations
type Handler struct {
	directory Lister
}

// NewHandler creates a new organisations handler
func NewHandler(directory Lister) *Handler {
	return &Handler{directory: directory}
}

// @Summary      List organisations
// @Description  Returns every organisation that owns documents, ordered by name then id.
// @Tags         Organisations
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "items: [{id, name}]"
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/organisations [get]
func (h *Handler) ListOrganizations(c *gin.Context) {
	items, err := h.directory.ListOrganizations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve organisations"})
		return
	}
	if items == nil {
		items = []models.OrganizationItem{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
