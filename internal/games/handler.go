package games

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/meeplemeet/backend/pkg/response"
)

// Handler handles game catalog HTTP endpoints.
type Handler struct {
	repo    *Repository
	catalog *Catalog
}

// NewHandler creates a games handler.
func NewHandler(repo *Repository, catalog *Catalog) *Handler {
	return &Handler{repo: repo, catalog: catalog}
}

// List handles GET /games. Returns the catalog for game pickers.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list games")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /games/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid game id")
		return
	}
	g, err := h.catalog.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "game not found")
		return
	}
	response.OK(c, g)
}
