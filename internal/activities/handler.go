package activities

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/meeplemeet/backend/config"
	"github.com/meeplemeet/backend/internal/games"
	"github.com/meeplemeet/backend/internal/middleware"
	"github.com/meeplemeet/backend/internal/models"
	"github.com/meeplemeet/backend/internal/notify"
	"github.com/meeplemeet/backend/pkg/response"
)

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// LocationBody is the location payload shared by create and edit-address.
type LocationBody struct {
	Lat     float64 `json:"lat" binding:"min=-90,max=90"`
	Lng     float64 `json:"lng" binding:"min=-180,max=180"`
	Address string  `json:"address" binding:"required"`
	City    string  `json:"city" binding:"required"`
	Country string  `json:"country" binding:"required"`
}

func (l *LocationBody) toModel() models.Location {
	return models.Location{
		Coordinates: models.Coordinates{Lat: l.Lat, Lng: l.Lng},
		Address:     l.Address,
		City:        l.City,
		Country:     l.Country,
	}
}

// CreateRequest is the body for POST /activities.
type CreateRequest struct {
	Name             string       `json:"name" binding:"required"`
	GameID           *string      `json:"game_id"`
	MinPlayers       int          `json:"min_players" binding:"required,min=1"`
	MaxPlayers       int          `json:"max_players" binding:"required,min=1"`
	PrereservedSeats int          `json:"prereserved_seats" binding:"min=0"`
	Date             string       `json:"date" binding:"required"`
	DeadlineType     string       `json:"deadline_type" binding:"required"`
	Location         LocationBody `json:"location" binding:"required"`
	Info             string       `json:"info"`
	PictureURL       string       `json:"picture_url"`
}

// Handler handles activity HTTP endpoints.
type Handler struct {
	repo            *Repository
	policy          *Policy
	users           UserResolver
	catalog         *games.Catalog
	notifier        *notify.Notifier
	defaultObserver models.Coordinates
	window          time.Duration
	logger          *zap.Logger
}

// UserResolver supplies stored user records, used to resolve the
// observer location for distance queries.
type UserResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// NewHandler creates an activities handler.
func NewHandler(repo *Repository, policy *Policy, users UserResolver, catalog *games.Catalog, notifier *notify.Notifier, cfg *config.Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		repo:            repo,
		policy:          policy,
		users:           users,
		catalog:         catalog,
		notifier:        notifier,
		defaultObserver: models.Coordinates{Lat: cfg.Geo.DefaultLat, Lng: cfg.Geo.DefaultLng},
		window:          time.Duration(cfg.Registration.WindowDays) * 24 * time.Hour,
		logger:          logger,
	}
}

func currentUserID(c *gin.Context) uuid.UUID {
	raw, _ := c.Get(middleware.ContextUserID)
	id, _ := raw.(uuid.UUID)
	return id
}

// observerFor resolves the coordinates distance is measured from. Users
// without a stored home location fall back to the configured default.
func (h *Handler) observerFor(c *gin.Context, userID uuid.UUID) models.Coordinates {
	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil || user.Location == nil {
		return h.defaultObserver
	}
	return user.Location.Coordinates
}

var callerErrors = []error{
	models.ErrActivityCancelled,
	models.ErrActivityPast,
	models.ErrHostCannotJoin,
	models.ErrInvalidSeats,
	models.ErrInvalidPlayerCount,
	models.ErrDeadlinePassed,
	models.ErrRegistrationNotOpen,
	models.ErrNoRegistration,
}

func isCallerError(err error) bool {
	for _, target := range callerErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// reject translates domain and storage failures to HTTP responses.
func (h *Handler) reject(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.NotFound(c, "activity not found")
	case errors.Is(err, models.ErrNotHost), errors.Is(err, models.ErrNotRegistrant):
		response.Forbidden(c, err.Error())
	case errors.Is(err, ErrVersionConflict):
		response.Conflict(c, "activity was modified concurrently, retry the request")
	case isCallerError(err):
		response.BadRequest(c, err.Error())
	default:
		h.logger.Error("activity operation failed", zap.Error(err))
		response.Internal(c, "operation failed")
	}
}

func (h *Handler) loadActivity(c *gin.Context) (*models.Activity, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid activity id")
		return nil, false
	}
	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.reject(c, err)
		return nil, false
	}
	return a, true
}

// distinctApprovedPlayers returns the distinct players holding an approved,
// non-cancelled registration, in first-appearance order. A player with
// several approved registrations appears once.
func distinctApprovedPlayers(a *models.Activity) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var out []uuid.UUID
	for _, reg := range a.ApprovedRegistrations() {
		if _, ok := seen[reg.PlayerID]; ok {
			continue
		}
		seen[reg.PlayerID] = struct{}{}
		out = append(out, reg.PlayerID)
	}
	return out
}

// notifyApproved fans one notification out to every distinct player holding
// an approved registration.
func (h *Handler) notifyApproved(c *gin.Context, a *models.Activity, kind models.NotificationKind) {
	for _, playerID := range distinctApprovedPlayers(a) {
		h.notifier.Notify(c.Request.Context(), playerID, kind, a)
	}
}

func parseListParams(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return offset, limit
}

func (h *Handler) filterFromQuery(c *gin.Context, userID uuid.UUID) Filter {
	var f Filter
	f.AvailableOnly = c.Query("available") == "true"
	if c.Query("exclude_own") == "true" {
		id := userID
		f.NotHostedBy = &id
	}
	return f
}

// Discover lists upcoming open activities ranked by the requested sort.
// GET /discover
func (h *Handler) Discover(c *gin.Context) {
	userID := currentUserID(c)
	sort, err := ParseSort(c.Query("sort"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	offset, limit := parseListParams(c)
	observer := h.observerFor(c, userID)

	list, err := h.repo.Find(c.Request.Context(), h.filterFromQuery(c, userID), observer, sort, offset, limit)
	if err != nil {
		h.reject(c, err)
		return
	}
	response.OK(c, NewActivityViews(list))
}

// DiscoverNear lists activities nearest to the user's stored home location.
// Users who never stored one get a 400 rather than a silent default.
// GET /discover/near
func (h *Handler) DiscoverNear(c *gin.Context) {
	userID := currentUserID(c)
	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.reject(c, err)
		return
	}
	if user.Location == nil {
		response.BadRequest(c, "no stored location, set one via PUT /me/location")
		return
	}
	offset, limit := parseListParams(c)

	list, err := h.repo.Find(c.Request.Context(), h.filterFromQuery(c, userID), user.Location.Coordinates, SortNearest, offset, limit)
	if err != nil {
		h.reject(c, err)
		return
	}
	response.OK(c, NewActivityViews(list))
}

// Hosted lists the caller's own activities, including recently finished ones.
// GET /me/activities
func (h *Handler) Hosted(c *gin.Context) {
	list, err := h.repo.ListHostedBy(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.reject(c, err)
		return
	}
	response.OK(c, NewActivityViews(list))
}

// Joined lists activities where the caller holds an approved registration.
// GET /me/joined
func (h *Handler) Joined(c *gin.Context) {
	list, err := h.repo.ListJoinedBy(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.reject(c, err)
		return
	}
	response.OK(c, NewActivityViews(list))
}

// Get returns a single activity with its full registration ledger.
// GET /activities/:id
func (h *Handler) Get(c *gin.Context) {
	a, ok := h.loadActivity(c)
	if !ok {
		return
	}
	response.OK(c, NewActivityView(a))
}

// Create opens a new activity hosted by the caller.
// POST /activities
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.MinPlayers > req.MaxPlayers {
		response.BadRequest(c, models.ErrInvalidPlayerCount.Error())
		return
	}
	if req.PrereservedSeats > req.MaxPlayers {
		response.BadRequest(c, "prereserved seats exceed max players")
		return
	}
	date, err := parseTime(req.Date)
	if err != nil {
		response.BadRequest(c, "date must be RFC 3339")
		return
	}
	if !date.After(time.Now()) {
		response.BadRequest(c, "date must be in the future")
		return
	}
	dt, err := models.ParseDeadlineType(req.DeadlineType)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	a := &models.Activity{
		HostID:           currentUserID(c),
		Name:             req.Name,
		MinPlayers:       req.MinPlayers,
		MaxPlayers:       req.MaxPlayers,
		PrereservedSeats: req.PrereservedSeats,
		Date:             date.UTC(),
		Deadline:         dt.DeadlineFor(date.UTC()),
		Location:         req.Location.toModel(),
		Info:             req.Info,
		PictureURL:       req.PictureURL,
	}
	if req.GameID != nil {
		gameID, err := uuid.Parse(*req.GameID)
		if err != nil {
			response.BadRequest(c, "invalid game id")
			return
		}
		game, err := h.catalog.GetByID(c.Request.Context(), gameID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				response.BadRequest(c, "unknown game")
				return
			}
			h.reject(c, err)
			return
		}
		a.GameID = &gameID
		if a.PictureURL == "" {
			a.PictureURL = game.ThumbnailURL
		}
	}

	if err := h.repo.CreateDocument(c.Request.Context(), a); err != nil {
		h.reject(c, err)
		return
	}
	response.Created(c, NewActivityView(a))
}

type playerCountRequest struct {
	MinPlayers       int `json:"min_players" binding:"required,min=1"`
	MaxPlayers       int `json:"max_players" binding:"required,min=1"`
	PrereservedSeats int `json:"prereserved_seats" binding:"min=0"`
}

// EditPlayerCount changes the seat configuration. Shrinking below the
// approved seat total is allowed and surfaces as an overbooked ledger.
// PATCH /activities/:id/player-count
func (h *Handler) EditPlayerCount(c *gin.Context) {
	var req playerCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	a, ok := h.loadActivity(c)
	if !ok {
		return
	}
	if err := a.EditPlayerCount(currentUserID(c), time.Now(), req.MinPlayers, req.MaxPlayers, req.PrereservedSeats); err != nil {
		h.reject(c, err)
		return
	}
	if err := h.repo.UpdateDocument(c.Request.Context(), a); err != nil {
		h.reject(c, err)
		return
	}
	response.OK(c, NewActivityView(a))
}

type scheduleRequest struct {
	Date string `json:"date" binding:"required"`
}

// EditSchedule moves the activity date, shifting the deadline with it.
// PATCH /activities/:id/schedule
func (h *Handler) EditSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	date, err := parseTime(req.Date)
	if err != nil {
		response.BadRequest(c, "date must be RFC 3339")
		return
	}
	a, ok := h.loadActivity(c)
	if !ok {
		return
	}
	if err := a.EditSchedule(currentUserID(c), time.Now(), date.UTC()); err != nil {
		h.reject(c, err)
		return
	}
	if err := h.repo.UpdateDocument(c.Request.Context(), a); err != nil {
		h.reject(c, err)
		return
	}
	h.notifyApproved(c, a, models.KindHostChangedDate)
	response.OK(c, NewActivityView(a))
}

type deadlineRequest struct {
	DeadlineType string `json:"deadline_type" binding:"required"`
}

// EditDeadline recomputes the registration deadline from a new deadline type.
// PATCH /activities/:id/deadline
func (h *Handler) EditDeadline(c *gin.Context) {
	var req deadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	dt, err := models.ParseDeadlineType(req.DeadlineType)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	a, ok := h.loadActivity(c)
	if !ok {
		return
	}
	if err := a.EditDeadlineType(currentUserID(c), time.Now(), dt); err != nil {
		h.reject(c, err)
		return
	}
	if err := h.repo.UpdateDocument(c.Request.Context(), a); err != nil {
		h.reject(c, err)
		return
	}
	response.OK(c, NewActivityView(a))
}

// EditAddress changes the venue and tells approved players about the move.
// PATCH /activities/:id/address
func (h *Handler) EditAddress(c *gin.Context) {
	var req LocationBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	a, ok := h.loadActivity(c)
	if !ok {
		return
	}
	if err := a.EditAddress(currentUserID(c), time.Now(), req.toModel()); err != nil {
		h.reject(c, err)
		return
	}
	if err := h.repo.UpdateDocument(c.Request.Context(), a); err != nil {
		h.reject(c, err)
		return
	}
	h.notifyApproved(c, a, models.KindHostChangedAddress)
	response.OK(c, NewActivityView(a))
}

type infoRequest struct {
	Info string `json:"info"`
}

// EditInfo updates the free-form description.
// PATCH /activities/:id/info
func (h *Handler) EditInfo(c *gin.Context) {
	var req infoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	a, ok := h.loadActivity(c)
	if !ok {
		return
	}
	if err := a.EditInfo(currentUserID(c), time.Now(), req.Info); err != nil {
		h.reject(c, err)
		return
	}
	if err := h.repo.UpdateDocument(c.Request.Context(), a); err != nil {
		h.reject(c, err)
		return
	}
	response.OK(c, NewActivityView(a))
}

// Cancel calls the whole activity off and notifies approved players.
// POST /activities/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	a, ok := h.loadActivity(c)
	if !ok {
		return
	}
	if err := a.Cancel(currentUserID(c), time.Now()); err != nil {
		h.reject(c, err)
		return
	}
	if err := h.repo.UpdateDocument(c.Request.Context(), a); err != nil {
		h.reject(c, err)
		return
	}
	h.notifyApproved(c, a, models.KindHostCancelledActivity)
	response.OK(c, NewActivityView(a))
}

type submitRegistrationRequest struct {
	Seats int `json:"seats" binding:"required,min=1"`
}

// SubmitRegistration registers the caller for an activity. The booking
// policy decides up front whether the registration is auto approved; the
// decision is based on the ledger as loaded and is not revisited later.
// POST /activities/:id/registrations
func (h *Handler) SubmitRegistration(c *gin.Context) {
	var req submitRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	a, ok := h.loadActivity(c)
	if !ok {
		return
	}
	playerID := currentUserID(c)

	approved, err := h.policy.ShouldAutoApprove(c.Request.Context(), playerID, a, req.Seats)
	if err != nil {
		h.reject(c, err)
		return
	}
	if _, err := a.SubmitRegistration(playerID, time.Now(), req.Seats, approved, h.window); err != nil {
		h.reject(c, err)
		return
	}
	if err := h.repo.UpdateDocument(c.Request.Context(), a); err != nil {
		h.reject(c, err)
		return
	}
	if approved {
		h.notifier.Notify(c.Request.Context(), playerID, models.KindAutoApproved, a)
		h.notifier.Notify(c.Request.Context(), a.HostID, models.KindPlayerJoined, a)
	} else {
		h.notifier.Notify(c.Request.Context(), a.HostID, models.KindPlayerSentRegistration, a)
	}
	response.Created(c, NewActivityView(a))
}

type registrationTargetRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
}

// ApproveRegistration approves a player's pending registration. Approval
// never re-checks capacity; the host may knowingly overbook.
// POST /activities/:id/registrations/approve
func (h *Handler) ApproveRegistration(c *gin.Context) {
	var req registrationTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	playerID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		response.BadRequest(c, "invalid player id")
		return
	}
	a, ok := h.loadActivity(c)
	if !ok {
		return
	}
	if err := a.ApproveRegistration(currentUserID(c), playerID, time.Now()); err != nil {
		h.reject(c, err)
		return
	}
	if err := h.repo.UpdateDocument(c.Request.Context(), a); err != nil {
		h.reject(c, err)
		return
	}
	h.notifier.Notify(c.Request.Context(), playerID, models.KindHostApprovedRegistration, a)
	response.OK(c, NewActivityView(a))
}

type cancelRegistrationRequest struct {
	PlayerID string `json:"player_id"`
}

// CancelRegistration withdraws a registration. Players cancel their own;
// the host may cancel anyone's by naming a player_id.
// POST /activities/:id/registrations/cancel
func (h *Handler) CancelRegistration(c *gin.Context) {
	var req cancelRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	actor := currentUserID(c)
	playerID := actor
	if req.PlayerID != "" {
		parsed, err := uuid.Parse(req.PlayerID)
		if err != nil {
			response.BadRequest(c, "invalid player id")
			return
		}
		playerID = parsed
	}
	a, ok := h.loadActivity(c)
	if !ok {
		return
	}
	if err := a.CancelRegistration(actor, playerID, time.Now()); err != nil {
		h.reject(c, err)
		return
	}
	if err := h.repo.UpdateDocument(c.Request.Context(), a); err != nil {
		h.reject(c, err)
		return
	}
	if actor == a.HostID && playerID != actor {
		h.notifier.Notify(c.Request.Context(), playerID, models.KindHostCancelledRegistration, a)
	} else {
		h.notifier.Notify(c.Request.Context(), a.HostID, models.KindPlayerCancelled, a)
	}
	response.OK(c, NewActivityView(a))
}
