package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"knowledgehub-backend/internal/domains/question"
	"knowledgehub-backend/internal/infrastructure/database"
	"knowledgehub-backend/internal/shared/authz"
	"knowledgehub-backend/internal/shared/middleware"
	"knowledgehub-backend/internal/shared/response"
)

// Handler exposes question and answer endpoints.
type Handler struct {
	service question.Service
}

func NewHandler(service question.Service) *Handler {
	return &Handler{service: service}
}

// List - GET /v1/questions
// Query params: page, search
func (h *Handler) List(c *gin.Context) {
	req := question.ListQuestionsRequest{
		Search: c.Query("search"),
		Page:   1,
	}

	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			req.Page = p
		}
	}

	resp, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, resp.Questions, &response.Meta{
		Page:       resp.Page,
		PageSize:   question.PageSize,
		Total:      resp.Total,
		TotalPages: resp.TotalPages,
	})
}

// Get - GET /v1/questions/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}

	populated, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Question", populated)
}

// Create - POST /v1/questions
func (h *Handler) Create(c *gin.Context) {
	actorID, ok := middleware.AccountID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req question.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	id, err := h.service.Create(c.Request.Context(), actorID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Question created", gin.H{"id": id})
}

// Update - PUT /v1/questions/:id
func (h *Handler) Update(c *gin.Context) {
	actorID, ok := middleware.AccountID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}

	var req question.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), actorID, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Question updated", resp)
}

// Delete - DELETE /v1/questions/:id
func (h *Handler) Delete(c *gin.Context) {
	actorID, ok := middleware.AccountID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), actorID, id); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Question deleted", nil)
}

// SubmitAnswer - POST /v1/questions/:id/answers
func (h *Handler) SubmitAnswer(c *gin.Context) {
	actorID, ok := middleware.AccountID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}

	var req question.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	answer, err := h.service.SubmitAnswer(c.Request.Context(), actorID, questionID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Answer submitted", answer)
}

// DeleteAnswer - DELETE /v1/questions/:id/answers/:answerID
func (h *Handler) DeleteAnswer(c *gin.Context) {
	actorID, ok := middleware.AccountID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}

	answerID := c.Param("answerID")
	if answerID == "" {
		response.BadRequest(c, "invalid answer id")
		return
	}

	if err := h.service.DeleteAnswer(c.Request.Context(), actorID, questionID, answerID); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Answer deleted", nil)
}

// Vote - POST /v1/questions/:id/vote
// Voting mutates the aggregate (counters and updated_at), so it requires
// a session like every other mutation.
func (h *Handler) Vote(c *gin.Context) {
	if _, ok := middleware.AccountID(c); !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}

	var req question.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	if err := h.service.Vote(c.Request.Context(), id, req.Direction == "up"); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Vote recorded", nil)
}

// ListBookmarked - GET /v1/accounts/me/bookmarks
func (h *Handler) ListBookmarked(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	items, err := h.service.ListBookmarked(c.Request.Context(), accountID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Bookmarked questions", items)
}

// SuggestTags - POST /v1/tags/suggest
func (h *Handler) SuggestTags(c *gin.Context) {
	var req question.SuggestTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	tags, err := h.service.SuggestTags(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Suggested tags", gin.H{"tags": tags})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var validationErrs validation.Errors
	switch {
	case errors.As(err, &validationErrs):
		response.ValidationFailed(c, validationErrs)
	case errors.Is(err, authz.ErrNotOwner):
		response.Forbidden(c, "you do not own this resource")
	case errors.Is(err, question.ErrQuestionNotFound):
		response.NotFound(c, "question not found")
	case errors.Is(err, question.ErrAnswerNotFound):
		response.NotFound(c, "answer not found")
	case errors.Is(err, question.ErrAuthorNotFound):
		response.NotFound(c, "account not found")
	case errors.Is(err, question.ErrSelfAnswerForbidden):
		response.Forbidden(c, "cannot answer your own question")
	case errors.Is(err, database.ErrStoreUnavailable):
		response.StoreUnavailable(c)
	default:
		response.InternalServerError(c, "something went wrong")
	}
}
