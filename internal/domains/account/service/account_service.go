package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"knowledgehub-backend/internal/domains/account"
	"knowledgehub-backend/pkg/cache"
	"knowledgehub-backend/pkg/jwt"
	"knowledgehub-backend/pkg/logger"
)

// accountService implements account.Service.
type accountService struct {
	repo      account.Repository
	questions account.QuestionChecker
	tokens    *jwt.Manager
	cache     cache.Cache
}

func NewAccountService(
	repo account.Repository,
	questions account.QuestionChecker,
	tokens *jwt.Manager,
	c cache.Cache,
) account.Service {
	return &accountService{
		repo:      repo,
		questions: questions,
		tokens:    tokens,
		cache:     c,
	}
}

// ========================================
// AUTHENTICATION
// ========================================

func (s *accountService) Register(ctx context.Context, req account.RegisterRequest) (*account.AccountDTO, error) {
	// Handler validates too; double-checking keeps the service safe when
	// called from elsewhere.
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, account.ErrEmailAlreadyExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	newAccount := &account.Account{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		DisplayName:  req.Name,
		Bookmarks:    []uuid.UUID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.repo.Create(ctx, newAccount); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	dto := newAccount.ToDTO()
	return &dto, nil
}

// Login verifies credentials and installs a fresh session token,
// overwriting the previous one. Any session issued earlier goes stale at
// its next validation check.
func (s *accountService) Login(ctx context.Context, req account.LoginRequest) (*account.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		// Do not reveal whether the email exists.
		return nil, account.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return nil, account.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateSessionToken(a.ID.String(), a.Email)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	if err := s.repo.SetActiveSession(ctx, a.ID, token); err != nil {
		return nil, fmt.Errorf("set active session: %w", err)
	}

	return &account.LoginResponse{
		AccountID:    a.ID,
		DisplayName:  a.DisplayName,
		SessionToken: token,
	}, nil
}

// Logout clears the active session token. It always succeeds, even for a
// session that is already stale.
func (s *accountService) Logout(ctx context.Context, accountID uuid.UUID) error {
	if err := s.repo.ClearActiveSession(ctx, accountID); err != nil {
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}

// ValidateSession is the single-session consistency check: the presented
// token must equal the stored active token exactly. The returned DTO
// never carries secret fields.
func (s *accountService) ValidateSession(ctx context.Context, accountID uuid.UUID, token string) (*account.AccountDTO, error) {
	a, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, account.ErrUnauthenticated
	}

	if a.ActiveSessionToken == nil || *a.ActiveSessionToken != token {
		return nil, account.ErrStaleSession
	}

	dto := a.ToDTO()
	return &dto, nil
}

// ========================================
// PROFILE
// ========================================

func (s *accountService) GetProfile(ctx context.Context, accountID uuid.UUID) (*account.AccountDTO, error) {
	a, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	dto := a.ToDTO()
	return &dto, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, accountID uuid.UUID, req account.UpdateProfileRequest) (*account.AccountDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProfile(ctx, accountID, req.DisplayName, req.Avatar, req.Bio); err != nil {
		return nil, err
	}

	// Drop the cached display record so populated questions pick up the
	// new name/avatar. A cache failure is not fatal.
	if err := s.cache.Delete(ctx, account.DisplayCacheKey(accountID.String())); err != nil {
		logger.Warn("failed to invalidate display cache", map[string]interface{}{
			"account_id": accountID.String(),
			"error":      err.Error(),
		})
	}

	return s.GetProfile(ctx, accountID)
}

// ========================================
// BOOKMARKS
// ========================================

// Bookmark adds a question to the account's bookmark set. Creation checks
// the question still exists; the set-add itself is idempotent.
func (s *accountService) Bookmark(ctx context.Context, accountID, questionID uuid.UUID) (*account.BookmarkResponse, error) {
	exists, err := s.questions.Exists(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("check question exists: %w", err)
	}
	if !exists {
		return nil, account.ErrQuestionNotFound
	}

	if err := s.repo.AddBookmark(ctx, accountID, questionID); err != nil {
		return nil, err
	}

	return &account.BookmarkResponse{QuestionID: questionID, Bookmarked: true}, nil
}

// Unbookmark removes the entry. A bookmark is a relation to an
// identifier, so removal succeeds even when the question is long gone.
func (s *accountService) Unbookmark(ctx context.Context, accountID, questionID uuid.UUID) (*account.BookmarkResponse, error) {
	if err := s.repo.RemoveBookmark(ctx, accountID, questionID); err != nil {
		return nil, err
	}

	return &account.BookmarkResponse{QuestionID: questionID, Bookmarked: false}, nil
}
