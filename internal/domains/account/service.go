package account

import (
	"context"

	"github.com/google/uuid"
)

// QuestionChecker is the slice of the question domain the account service
// needs: bookmark creation verifies the target still exists.
type QuestionChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service is the business logic contract for accounts and sessions.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AccountDTO, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accountID uuid.UUID) error

	// ValidateSession enforces the single-active-session policy: the
	// presented token must equal the account's active session token
	// exactly. Mismatch yields ErrStaleSession, an absent account
	// ErrUnauthenticated.
	ValidateSession(ctx context.Context, accountID uuid.UUID, token string) (*AccountDTO, error)

	GetProfile(ctx context.Context, accountID uuid.UUID) (*AccountDTO, error)
	UpdateProfile(ctx context.Context, accountID uuid.UUID, req UpdateProfileRequest) (*AccountDTO, error)

	Bookmark(ctx context.Context, accountID, questionID uuid.UUID) (*BookmarkResponse, error)
	Unbookmark(ctx context.Context, accountID, questionID uuid.UUID) (*BookmarkResponse, error)
}
