package account

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DisplayCacheKey is the cache key for an account's display record.
// Shared between the author populator (reads) and the profile service
// (invalidation on edit).
func DisplayCacheKey(id string) string {
	return fmt.Sprintf("author:%s", id)
}

// Account is a registered member. Accounts are never deleted.
//
// ActiveSessionToken holds the single accepted session credential: every
// login overwrites it, which silently invalidates every previously issued
// token for this account.
type Account struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	Avatar       *string   `json:"avatar,omitempty" db:"avatar"`
	Bio          *string   `json:"bio,omitempty" db:"bio"`

	// Bookmarked question ids. Entries may dangle after a question is
	// deleted; they are filtered at read time, never pruned here.
	Bookmarks []uuid.UUID `json:"bookmarks" db:"bookmarks"`

	ActiveSessionToken *string `json:"-" db:"active_session_token"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasBookmarked reports whether questionID is in the bookmark set.
func (a *Account) HasBookmarked(questionID uuid.UUID) bool {
	for _, id := range a.Bookmarks {
		if id == questionID {
			return true
		}
	}
	return false
}

// DisplayRecord is the lightweight author representation substituted into
// populated questions. When an owner id cannot be resolved, the populator
// falls back to a placeholder record instead of failing the read.
type DisplayRecord struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}
