package notifications

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/meeplemeet/backend/internal/middleware"
	"github.com/meeplemeet/backend/pkg/response"
)

// Handler handles notification inbox HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a notifications handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /notifications. Returns the current user's inbox.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.ListByRecipient(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load notifications")
		return
	}
	response.OK(c, list)
}

// MarkRead handles POST /notifications/:id/read.
func (h *Handler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid notification id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if err := h.repo.MarkRead(c.Request.Context(), id, userID); err != nil {
		response.Internal(c, "failed to mark notification read")
		return
	}
	response.NoContent(c)
}
