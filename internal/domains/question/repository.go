package question

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the data access contract for question aggregates.
//
// Every mutation of a single aggregate (field edit, answer append or
// removal, vote) must be one atomic statement so concurrent mutations
// never interleave partially.
type Repository interface {
	Create(ctx context.Context, q *Question) (uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Question, error)

	// FindByIDs returns the questions that still exist among ids;
	// dangling ids simply produce no row.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Question, error)

	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// List returns one page of matches plus the total match count.
	// search is a case-insensitive substring matched against title,
	// description and tags (OR); blank matches everything. Order is
	// always most recently active first.
	List(ctx context.Context, search string, limit, offset int) ([]Question, int, error)

	Update(ctx context.Context, id uuid.UUID, title, description string, tags []string) error
	Delete(ctx context.Context, id uuid.UUID) error

	// AppendAnswer attaches the answer and bumps updated_at in a single
	// statement against the parent row.
	AppendAnswer(ctx context.Context, questionID uuid.UUID, a Answer) error

	// RemoveAnswer removes by answer id and bumps updated_at atomically.
	RemoveAnswer(ctx context.Context, questionID uuid.UUID, answerID string) error

	IncrementViews(ctx context.Context, id uuid.UUID) error
	Vote(ctx context.Context, id uuid.UUID, up bool) error
}
