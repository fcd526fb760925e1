package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meeplemeet/backend/internal/models"
	"github.com/meeplemeet/backend/pkg/response"
	"github.com/meeplemeet/backend/pkg/utils"
)

// LocationRequest is the optional/updatable home location payload.
type LocationRequest struct {
	Lat     float64 `json:"lat" binding:"min=-90,max=90"`
	Lng     float64 `json:"lng" binding:"min=-180,max=180"`
	Address string  `json:"address"`
	City    string  `json:"city"`
	Country string  `json:"country"`
}

func (l *LocationRequest) toModel() models.Location {
	return models.Location{
		Coordinates: models.Coordinates{Lat: l.Lat, Lng: l.Lng},
		Address:     l.Address,
		City:        l.City,
		Country:     l.Country,
	}
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email    string           `json:"email" binding:"required,email"`
	Password string           `json:"password" binding:"required,min=6"`
	FullName string           `json:"full_name" binding:"required"`
	Location *LocationRequest `json:"location"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	_, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err == nil {
		response.BadRequest(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	var loc *models.Location
	if req.Location != nil {
		l := req.Location.toModel()
		loc = &l
	}
	user, err := h.repo.Create(c.Request.Context(), req.Email, hash, req.FullName, loc)
	if err != nil {
		response.Internal(c, "failed to create user")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	c.JSON(http.StatusOK, response.Body{Success: true, Data: TokenResponse{Token: token, User: user.ToPublic()}})
}

// Me handles GET /me. Returns the current user's profile.
func (h *Handler) Me(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)
	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, user.ToPublic())
}

// UpdateLocation handles PUT /me/location. Stores the user's home location,
// which becomes the observer for proximity queries.
func (h *Handler) UpdateLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet("user_id").(uuid.UUID)
	if err := h.repo.UpdateLocation(c.Request.Context(), userID, req.toModel()); err != nil {
		h.logger.Error("update location failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to update location")
		return
	}
	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	response.OK(c, user.ToPublic())
}
