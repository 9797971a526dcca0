package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"knowledgehub-backend/internal/domains/account"
	"knowledgehub-backend/internal/infrastructure/database"
	"knowledgehub-backend/internal/shared/middleware"
	"knowledgehub-backend/internal/shared/response"
)

// Handler exposes account, session and bookmark endpoints.
type Handler struct {
	service account.Service
}

func NewHandler(service account.Service) *Handler {
	return &Handler{service: service}
}

// Register - POST /v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req account.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	dto, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Account created", dto)
}

// Login - POST /v1/auth/login
// Issues a fresh session token; any previously issued token for the
// account stops working.
func (h *Handler) Login(c *gin.Context) {
	var req account.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Logged in", resp)
}

// Logout - POST /v1/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	if err := h.service.Logout(c.Request.Context(), accountID); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Logged out", nil)
}

// GetProfile - GET /v1/accounts/me
func (h *Handler) GetProfile(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	dto, err := h.service.GetProfile(c.Request.Context(), accountID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Profile", dto)
}

// UpdateProfile - PUT /v1/accounts/me
func (h *Handler) UpdateProfile(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req account.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	dto, err := h.service.UpdateProfile(c.Request.Context(), accountID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Profile updated", dto)
}

// Bookmark - POST /v1/questions/:id/bookmark
func (h *Handler) Bookmark(c *gin.Context) {
	h.toggleBookmark(c, h.service.Bookmark)
}

// Unbookmark - DELETE /v1/questions/:id/bookmark
func (h *Handler) Unbookmark(c *gin.Context) {
	h.toggleBookmark(c, h.service.Unbookmark)
}

func (h *Handler) toggleBookmark(c *gin.Context, op func(ctx context.Context, accountID, questionID uuid.UUID) (*account.BookmarkResponse, error)) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}

	resp, err := op(c.Request.Context(), accountID, questionID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Bookmark updated", resp)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var validationErrs validation.Errors
	switch {
	case errors.As(err, &validationErrs):
		response.ValidationFailed(c, validationErrs)
	case errors.Is(err, account.ErrEmailAlreadyExists):
		response.Conflict(c, "email already registered")
	case errors.Is(err, account.ErrInvalidCredentials):
		response.Unauthorized(c, "invalid email or password")
	case errors.Is(err, account.ErrStaleSession):
		response.StaleSession(c)
	case errors.Is(err, account.ErrUnauthenticated):
		response.Unauthorized(c, "authentication required")
	case errors.Is(err, account.ErrAccountNotFound):
		response.NotFound(c, "account not found")
	case errors.Is(err, account.ErrQuestionNotFound):
		response.NotFound(c, "question not found")
	case errors.Is(err, database.ErrStoreUnavailable):
		response.StoreUnavailable(c)
	default:
		response.InternalServerError(c, "something went wrong")
	}
}
