package question

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"knowledgehub-backend/internal/domains/account"
)

// ========================================
// QUESTION DTOs
// ========================================

type CreateQuestionRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Tags        []string `json:"tags" binding:"required"`
}

func (r CreateQuestionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 300),
		),
		validation.Field(&r.Description,
			validation.Required.Error("description is required"),
		),
		validation.Field(&r.Tags,
			validation.Required.Error("at least one tag is required"),
			validation.Length(1, 5),
			validation.Each(validation.Required, validation.Length(1, 50)),
		),
	)
}

// UpdateQuestionRequest requires the full field set: partial edits are
// not supported, empty values are rejected at the boundary.
type UpdateQuestionRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Tags        []string `json:"tags" binding:"required"`
}

func (r UpdateQuestionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&r.Description, validation.Required),
		validation.Field(&r.Tags,
			validation.Required,
			validation.Length(1, 5),
			validation.Each(validation.Required, validation.Length(1, 50)),
		),
	)
}

// UpdateQuestionResponse distinguishes a no-op edit from a real one.
// Both are successes; only forbidden/not-found are failures.
type UpdateQuestionResponse struct {
	ID      uuid.UUID `json:"id"`
	Changed bool      `json:"changed"`
}

type SubmitAnswerRequest struct {
	Content string `json:"content" binding:"required"`
}

func (r SubmitAnswerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content,
			validation.Required.Error("content is required"),
			validation.Length(1, 10000),
		),
	)
}

type VoteRequest struct {
	Direction string `json:"direction" binding:"required"` // "up" or "down"
}

func (r VoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Direction,
			validation.Required,
			validation.In("up", "down").Error("direction must be up or down"),
		),
	)
}

type SuggestTagsRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (r SuggestTagsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
	)
}

// ========================================
// LIST DTOs
// ========================================

type ListQuestionsRequest struct {
	Page   int    `form:"page"`
	Search string `form:"search"`
}

// SetDefaults clamps the page to a positive value.
func (r *ListQuestionsRequest) SetDefaults() {
	if r.Page < 1 {
		r.Page = 1
	}
}

type ListQuestionsResponse struct {
	Questions  []PopulatedQuestion `json:"questions"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"total_pages"`
	Total      int                 `json:"total"`
}

// ========================================
// POPULATED (DISPLAY-READY) AGGREGATES
// ========================================

// PopulatedAnswer carries normalized timestamps and a display author.
// Answer authors are not individually resolved; they receive the
// placeholder author.
type PopulatedAnswer struct {
	ID        string                `json:"id"`
	Content   string                `json:"content"`
	Author    account.DisplayRecord `json:"author"`
	Upvotes   int                   `json:"upvotes"`
	Downvotes int                   `json:"downvotes"`
	CreatedAt time.Time             `json:"created_at"`
}

// PopulatedQuestion is the display-ready aggregate: owner resolved to a
// display record (or the placeholder), timestamps normalized so callers
// never see an invalid date.
type PopulatedQuestion struct {
	ID          uuid.UUID             `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Tags        []string              `json:"tags"`
	Author      account.DisplayRecord `json:"author"`
	Upvotes     int                   `json:"upvotes"`
	Downvotes   int                   `json:"downvotes"`
	Views       int                   `json:"views"`
	Answers     []PopulatedAnswer     `json:"answers"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}
