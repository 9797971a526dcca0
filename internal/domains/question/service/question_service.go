package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"

	"knowledgehub-backend/internal/domains/account"
	"knowledgehub-backend/internal/domains/question"
	"knowledgehub-backend/internal/domains/tag"
	"knowledgehub-backend/internal/shared/authz"
	"knowledgehub-backend/pkg/cache"
	"knowledgehub-backend/pkg/logger"
)

type questionService struct {
	repo      question.Repository
	accounts  account.Repository
	suggester tag.Suggester
	populator *populator
}

// NewQuestionService creates the question business logic service.
func NewQuestionService(
	repo question.Repository,
	accounts account.Repository,
	suggester tag.Suggester,
	c cache.Cache,
) question.Service {
	return &questionService{
		repo:      repo,
		accounts:  accounts,
		suggester: suggester,
		populator: newPopulator(accounts, c),
	}
}

// ========================================
// CREATE
// ========================================

func (s *questionService) Create(ctx context.Context, ownerID uuid.UUID, req question.CreateQuestionRequest) (uuid.UUID, error) {
	// Step 1: Validate input
	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}

	// Step 2: Verify the author account exists
	exists, err := s.accounts.ExistsByID(ctx, ownerID)
	if err != nil {
		return uuid.Nil, err
	}
	if !exists {
		return uuid.Nil, question.ErrAuthorNotFound
	}

	// Step 3: Persist the aggregate
	q := &question.Question{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		OwnerID:     ownerID,
		Answers:     []question.Answer{},
	}

	id, err := s.repo.Create(ctx, q)
	if err != nil {
		return uuid.Nil, err
	}

	logger.Info("question created", map[string]interface{}{
		"question_id": id.String(),
		"owner_id":    ownerID.String(),
	})

	return id, nil
}

// ========================================
// READ
// ========================================

func (s *questionService) Get(ctx context.Context, id uuid.UUID) (*question.PopulatedQuestion, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Views count reads; a failed bump never fails the read itself.
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		logger.Warn("view increment failed", map[string]interface{}{
			"question_id": id.String(),
			"error":       err.Error(),
		})
	} else {
		q.Views++
	}

	return s.populator.PopulateOne(ctx, q)
}

func (s *questionService) List(ctx context.Context, req question.ListQuestionsRequest) (*question.ListQuestionsResponse, error) {
	req.SetDefaults()

	offset := (req.Page - 1) * question.PageSize

	items, total, err := s.repo.List(ctx, req.Search, question.PageSize, offset)
	if err != nil {
		return nil, err
	}

	populated, err := s.populator.Populate(ctx, items)
	if err != nil {
		return nil, err
	}

	totalPages := (total + question.PageSize - 1) / question.PageSize

	return &question.ListQuestionsResponse{
		Questions:  populated,
		Page:       req.Page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

// ========================================
// EDIT / DELETE (ownership gated)
// ========================================

func (s *questionService) Update(ctx context.Context, actorID, id uuid.UUID, req question.UpdateQuestionRequest) (*question.UpdateQuestionResponse, error) {
	// Step 1: Validate input
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Load and gate on ownership
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.OwnerID(actorID, existing.OwnerID); err != nil {
		return nil, err
	}

	// Step 3: A submission identical to the stored state is a no-op
	// success, not a write.
	if existing.Title == req.Title &&
		existing.Description == req.Description &&
		equalTags(existing.Tags, req.Tags) {
		return &question.UpdateQuestionResponse{ID: id, Changed: false}, nil
	}

	// Step 4: Persist the edit
	if err := s.repo.Update(ctx, id, req.Title, req.Description, req.Tags); err != nil {
		return nil, err
	}

	return &question.UpdateQuestionResponse{ID: id, Changed: true}, nil
}

func (s *questionService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.OwnerID(actorID, existing.OwnerID); err != nil {
		return err
	}

	// Embedded answers vanish with the row; they have no life of their own.
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("question deleted", map[string]interface{}{
		"question_id": id.String(),
		"owner_id":    actorID.String(),
	})

	return nil
}

// ========================================
// ANSWERS
// ========================================

func (s *questionService) SubmitAnswer(ctx context.Context, actorID, questionID uuid.UUID, req question.SubmitAnswerRequest) (*question.Answer, error) {
	// Step 1: Validate input
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Load the parent and apply the self-answer rule
	parent, err := s.repo.FindByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if parent.OwnerID == actorID {
		return nil, question.ErrSelfAnswerForbidden
	}

	// Step 3: Append atomically
	answer := question.Answer{
		ID:        xid.New().String(),
		Content:   req.Content,
		OwnerID:   actorID.String(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.repo.AppendAnswer(ctx, questionID, answer); err != nil {
		return nil, err
	}

	return &answer, nil
}

func (s *questionService) DeleteAnswer(ctx context.Context, actorID, questionID uuid.UUID, answerID string) error {
	// Step 1: Load the parent and locate the answer
	parent, err := s.repo.FindByID(ctx, questionID)
	if err != nil {
		return err
	}

	answer := parent.FindAnswer(answerID)
	if answer == nil {
		return question.ErrAnswerNotFound
	}

	// Step 2: Gate on the answer's owner, not the question's
	if err := authz.Owner(actorID, answer.OwnerID); err != nil {
		return err
	}

	// Step 3: Remove atomically; the statement re-checks presence so a
	// concurrent removal surfaces as ErrAnswerNotFound, never a double
	// delete.
	return s.repo.RemoveAnswer(ctx, questionID, answerID)
}

// ========================================
// VOTES / BOOKMARKS / TAGS
// ========================================

func (s *questionService) Vote(ctx context.Context, questionID uuid.UUID, up bool) error {
	return s.repo.Vote(ctx, questionID, up)
}

func (s *questionService) ListBookmarked(ctx context.Context, accountID uuid.UUID) ([]question.PopulatedQuestion, error) {
	acct, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	// Dangling bookmark entries simply match no row; the stored set is
	// never pruned here.
	items, err := s.repo.FindByIDs(ctx, acct.Bookmarks)
	if err != nil {
		return nil, err
	}

	return s.populator.Populate(ctx, items)
}

func (s *questionService) SuggestTags(ctx context.Context, req question.SuggestTagsRequest) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tags, err := s.suggester.Suggest(ctx, req.Title, req.Description)
	if err != nil {
		// Suggestions are best effort; a dead collaborator degrades to
		// an empty list.
		logger.Warn("tag suggestion failed", map[string]interface{}{
			"error": err.Error(),
		})
		return []string{}, nil
	}

	return tags, nil
}

func equalTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
