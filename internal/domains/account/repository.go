package account

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the data access contract for accounts.
type Repository interface {
	Create(ctx context.Context, a *Account) (uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)

	// FindDisplayByIDs resolves the given account ids in a single batch
	// lookup. Unknown ids are simply absent from the result.
	FindDisplayByIDs(ctx context.Context, ids []uuid.UUID) ([]Account, error)

	UpdateProfile(ctx context.Context, id uuid.UUID, displayName string, avatar, bio *string) error

	// SetActiveSession overwrites the active session token; the previous
	// token is invalidated by the write (last writer wins).
	SetActiveSession(ctx context.Context, id uuid.UUID, token string) error
	ClearActiveSession(ctx context.Context, id uuid.UUID) error

	// AddBookmark / RemoveBookmark are idempotent set operations on the
	// bookmark array.
	AddBookmark(ctx context.Context, accountID, questionID uuid.UUID) error
	RemoveBookmark(ctx context.Context, accountID, questionID uuid.UUID) error
}
