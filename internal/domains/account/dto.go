package account

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// ========================================
// AUTH DTOs
// ========================================

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(2, 100),
		),
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
			validation.Length(5, 255),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(6, 128).Error("password must be at least 6 characters"),
		),
	)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginResponse carries the freshly issued session token. Issuing it
// overwrites the account's previous active token.
type LoginResponse struct {
	AccountID    uuid.UUID `json:"account_id"`
	DisplayName  string    `json:"display_name"`
	SessionToken string    `json:"session_token"`
}

// ========================================
// PROFILE DTOs
// ========================================

// AccountDTO is the public account representation. It never carries the
// password hash or the active session token.
type AccountDTO struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Avatar      *string     `json:"avatar,omitempty"`
	Bio         *string     `json:"bio,omitempty"`
	Bookmarks   []uuid.UUID `json:"bookmarks"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ToDTO converts an Account entity to its public representation.
func (a *Account) ToDTO() AccountDTO {
	bookmarks := a.Bookmarks
	if bookmarks == nil {
		bookmarks = []uuid.UUID{}
	}
	return AccountDTO{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Avatar:      a.Avatar,
		Bio:         a.Bio,
		Bookmarks:   bookmarks,
		CreatedAt:   a.CreatedAt,
	}
}

type UpdateProfileRequest struct {
	DisplayName string  `json:"display_name,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
	Bio         *string `json:"bio,omitempty"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DisplayName,
			validation.When(r.DisplayName != "", validation.Length(2, 100)),
		),
		validation.Field(&r.Bio,
			validation.When(r.Bio != nil, validation.Length(0, 1000)),
		),
	)
}

// ========================================
// BOOKMARK DTOs
// ========================================

// BookmarkResponse reports the bookmark state after a toggle.
type BookmarkResponse struct {
	QuestionID uuid.UUID `json:"question_id"`
	Bookmarked bool      `json:"bookmarked"`
}
