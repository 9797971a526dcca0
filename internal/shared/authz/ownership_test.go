package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwner_MatchesSerializedForm(t *testing.T) {
	id := uuid.New()

	// Owner ids inside embedded answers arrive as strings; the check must
	// match on value, not representation.
	require.NoError(t, Owner(id, id.String()))
	require.NoError(t, Owner(id, "  "+id.String()+"  "))
}

func TestOwner_RejectsDifferentAccount(t *testing.T) {
	assert.ErrorIs(t, Owner(uuid.New(), uuid.New().String()), ErrNotOwner)
}

func TestOwner_RejectsUnparseableOwner(t *testing.T) {
	assert.ErrorIs(t, Owner(uuid.New(), "not-a-uuid"), ErrNotOwner)
	assert.ErrorIs(t, Owner(uuid.New(), ""), ErrNotOwner)
}

func TestOwnerID(t *testing.T) {
	id := uuid.New()

	assert.NoError(t, OwnerID(id, id))
	assert.ErrorIs(t, OwnerID(id, uuid.New()), ErrNotOwner)
}
