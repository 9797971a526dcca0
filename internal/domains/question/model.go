package question

import (
	"time"

	"github.com/google/uuid"
)

// PageSize is the fixed page size for question listings.
const PageSize = 10

// Answer is embedded in its parent Question and never stored on its own.
// Deleting the question discards its answers with it.
//
// Answer ids live in a different identifier space than accounts and
// questions: they are xid strings generated at append time, not UUIDs.
// Stored data depends on that distinction, so the types stay separate.
type Answer struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	OwnerID   string `json:"owner_id"`
	CreatedAt string `json:"created_at"` // RFC3339; normalized at population time
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
}

// Question is the aggregate root. Answers ride along in a JSONB array so
// every mutation of the collection is a single atomic statement against
// the parent row.
//
// Invariant: UpdatedAt >= CreatedAt; UpdatedAt is bumped atomically with
// any mutation of the question or its answer collection.
type Question struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Tags        []string  `json:"tags" db:"tags"`
	OwnerID     uuid.UUID `json:"owner_id" db:"owner_id"`

	Upvotes   int `json:"upvotes" db:"upvotes"`
	Downvotes int `json:"downvotes" db:"downvotes"`
	Views     int `json:"views" db:"views"`

	Answers []Answer `json:"answers" db:"answers"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FindAnswer returns the embedded answer with the given id, or nil.
func (q *Question) FindAnswer(answerID string) *Answer {
	for i := range q.Answers {
		if q.Answers[i].ID == answerID {
			return &q.Answers[i]
		}
	}
	return nil
}
