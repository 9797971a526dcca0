package authz

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrNotOwner means the acting account is authenticated but does not own
// the resource it is trying to mutate.
var ErrNotOwner = errors.New("forbidden: not the resource owner")

// Owner checks that the acting account is the recorded owner of a
// resource. Owner identifiers reach us in more than one form (uuid values
// for questions, serialized strings inside embedded answers), so the
// comparison is by normalized value, never by representation.
func Owner(actingID uuid.UUID, ownerID string) error {
	parsed, err := uuid.Parse(strings.TrimSpace(ownerID))
	if err != nil {
		// An unparseable owner can never match a valid acting account.
		return ErrNotOwner
	}

	if actingID != parsed {
		return ErrNotOwner
	}

	return nil
}

// OwnerID is the uuid-typed variant used where the owner column is
// already a uuid.
func OwnerID(actingID, ownerID uuid.UUID) error {
	if actingID != ownerID {
		return ErrNotOwner
	}
	return nil
}
