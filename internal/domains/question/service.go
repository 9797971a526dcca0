package question

import (
	"context"

	"github.com/google/uuid"
)

// Service is the business logic contract for question aggregates.
// Edit/delete operations run the ownership gate; reads never do.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, req CreateQuestionRequest) (uuid.UUID, error)

	// Get returns the populated aggregate and counts the view.
	Get(ctx context.Context, id uuid.UUID) (*PopulatedQuestion, error)

	List(ctx context.Context, req ListQuestionsRequest) (*ListQuestionsResponse, error)

	Update(ctx context.Context, actorID, id uuid.UUID, req UpdateQuestionRequest) (*UpdateQuestionResponse, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error

	SubmitAnswer(ctx context.Context, actorID, questionID uuid.UUID, req SubmitAnswerRequest) (*Answer, error)
	DeleteAnswer(ctx context.Context, actorID, questionID uuid.UUID, answerID string) error

	Vote(ctx context.Context, questionID uuid.UUID, up bool) error

	// ListBookmarked returns the caller's bookmarked questions, with
	// dangling bookmark entries filtered out at read time.
	ListBookmarked(ctx context.Context, accountID uuid.UUID) ([]PopulatedQuestion, error)

	SuggestTags(ctx context.Context, req SuggestTagsRequest) ([]string, error)
}
