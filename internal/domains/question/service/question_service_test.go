package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledgehub-backend/internal/domains/account"
	"knowledgehub-backend/internal/domains/question"
	"knowledgehub-backend/internal/shared/authz"
)

// ========================================
// FAKES
// ========================================

type fakeQuestionRepo struct {
	questions   map[uuid.UUID]*question.Question
	updateCalls int
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: make(map[uuid.UUID]*question.Question)}
}

func (f *fakeQuestionRepo) Create(ctx context.Context, q *question.Question) (uuid.UUID, error) {
	copied := *q
	now := time.Now()
	copied.CreatedAt = now
	copied.UpdatedAt = now
	f.questions[q.ID] = &copied
	return q.ID, nil
}

func (f *fakeQuestionRepo) FindByID(ctx context.Context, id uuid.UUID) (*question.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, question.ErrQuestionNotFound
	}
	copied := *q
	copied.Answers = append([]question.Answer{}, q.Answers...)
	return &copied, nil
}

func (f *fakeQuestionRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]question.Question, error) {
	result := []question.Question{}
	for _, id := range ids {
		if q, ok := f.questions[id]; ok {
			result = append(result, *q)
		}
	}
	return result, nil
}

func (f *fakeQuestionRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.questions[id]
	return ok, nil
}

func (f *fakeQuestionRepo) List(ctx context.Context, search string, limit, offset int) ([]question.Question, int, error) {
	matched := []question.Question{}
	for _, q := range f.questions {
		if search == "" || matches(q, search) {
			matched = append(matched, *q)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	total := len(matched)
	if offset >= total {
		return []question.Question{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func matches(q *question.Question, search string) bool {
	s := strings.ToLower(search)
	if strings.Contains(strings.ToLower(q.Title), s) || strings.Contains(strings.ToLower(q.Description), s) {
		return true
	}
	for _, tag := range q.Tags {
		if strings.Contains(strings.ToLower(tag), s) {
			return true
		}
	}
	return false
}

func (f *fakeQuestionRepo) Update(ctx context.Context, id uuid.UUID, title, description string, tags []string) error {
	f.updateCalls++
	q, ok := f.questions[id]
	if !ok {
		return question.ErrQuestionNotFound
	}
	q.Title = title
	q.Description = description
	q.Tags = tags
	q.UpdatedAt = time.Now()
	return nil
}

func (f *fakeQuestionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.questions[id]; !ok {
		return question.ErrQuestionNotFound
	}
	delete(f.questions, id)
	return nil
}

func (f *fakeQuestionRepo) AppendAnswer(ctx context.Context, questionID uuid.UUID, a question.Answer) error {
	q, ok := f.questions[questionID]
	if !ok {
		return question.ErrQuestionNotFound
	}
	q.Answers = append(q.Answers, a)
	q.UpdatedAt = time.Now()
	return nil
}

func (f *fakeQuestionRepo) RemoveAnswer(ctx context.Context, questionID uuid.UUID, answerID string) error {
	q, ok := f.questions[questionID]
	if !ok {
		return question.ErrQuestionNotFound
	}
	for i := range q.Answers {
		if q.Answers[i].ID == answerID {
			q.Answers = append(q.Answers[:i], q.Answers[i+1:]...)
			q.UpdatedAt = time.Now()
			return nil
		}
	}
	return question.ErrAnswerNotFound
}

func (f *fakeQuestionRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	q, ok := f.questions[id]
	if !ok {
		return question.ErrQuestionNotFound
	}
	q.Views++
	return nil
}

func (f *fakeQuestionRepo) Vote(ctx context.Context, id uuid.UUID, up bool) error {
	q, ok := f.questions[id]
	if !ok {
		return question.ErrQuestionNotFound
	}
	if up {
		q.Upvotes++
	} else {
		q.Downvotes++
	}
	q.UpdatedAt = time.Now()
	return nil
}

// fakeAccounts implements the slice of account.Repository the question
// service touches; the rest panics so an unexpected call fails loudly.
type fakeAccounts struct {
	accounts map[uuid.UUID]*account.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: make(map[uuid.UUID]*account.Account)}
}

func (f *fakeAccounts) add(name string) uuid.UUID {
	id := uuid.New()
	f.accounts[id] = &account.Account{ID: id, DisplayName: name, Email: name + "@example.com"}
	return id
}

func (f *fakeAccounts) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeAccounts) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.accounts[id]
	return ok, nil
}

func (f *fakeAccounts) FindDisplayByIDs(ctx context.Context, ids []uuid.UUID) ([]account.Account, error) {
	result := []account.Account{}
	for _, id := range ids {
		if a, ok := f.accounts[id]; ok {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (f *fakeAccounts) Create(ctx context.Context, a *account.Account) (uuid.UUID, error) {
	panic("not used")
}
func (f *fakeAccounts) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	panic("not used")
}
func (f *fakeAccounts) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	panic("not used")
}
func (f *fakeAccounts) UpdateProfile(ctx context.Context, id uuid.UUID, displayName string, avatar, bio *string) error {
	panic("not used")
}
func (f *fakeAccounts) SetActiveSession(ctx context.Context, id uuid.UUID, token string) error {
	panic("not used")
}
func (f *fakeAccounts) ClearActiveSession(ctx context.Context, id uuid.UUID) error {
	panic("not used")
}
func (f *fakeAccounts) AddBookmark(ctx context.Context, accountID, questionID uuid.UUID) error {
	panic("not used")
}
func (f *fakeAccounts) RemoveBookmark(ctx context.Context, accountID, questionID uuid.UUID) error {
	panic("not used")
}

type fakeSuggester struct {
	tags []string
	err  error
}

func (f *fakeSuggester) Suggest(ctx context.Context, title, description string) ([]string, error) {
	return f.tags, f.err
}

type nopCache struct{}

func (nopCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}
func (nopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (nopCache) Delete(ctx context.Context, keys ...string) error { return nil }
func (nopCache) Ping(ctx context.Context) error                   { return nil }

// ========================================
// HELPERS
// ========================================

type testEnv struct {
	repo      *fakeQuestionRepo
	accounts  *fakeAccounts
	suggester *fakeSuggester
	svc       question.Service
}

func newTestEnv() *testEnv {
	repo := newFakeQuestionRepo()
	accounts := newFakeAccounts()
	suggester := &fakeSuggester{}
	return &testEnv{
		repo:      repo,
		accounts:  accounts,
		suggester: suggester,
		svc:       NewQuestionService(repo, accounts, suggester, nopCache{}),
	}
}

func (e *testEnv) createQuestion(t *testing.T, ownerID uuid.UUID) uuid.UUID {
	t.Helper()

	id, err := e.svc.Create(context.Background(), ownerID, question.CreateQuestionRequest{
		Title:       "How do goroutines work?",
		Description: "Looking for an explanation of the scheduler.",
		Tags:        []string{"go", "concurrency"},
	})
	require.NoError(t, err)
	return id
}

// ========================================
// CREATE / READ
// ========================================

func TestCreateAndGet(t *testing.T) {
	env := newTestEnv()
	ownerID := env.accounts.add("Alice")

	id := env.createQuestion(t, ownerID)

	populated, err := env.svc.Get(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "How do goroutines work?", populated.Title)
	assert.Equal(t, []string{"go", "concurrency"}, populated.Tags)
	assert.Equal(t, "Alice", populated.Author.DisplayName)
	// No avatar on record: the populator derives one from the name.
	assert.Equal(t, "A", populated.Author.Avatar)
	assert.Empty(t, populated.Answers)
	assert.False(t, populated.UpdatedAt.Before(populated.CreatedAt))
}

func TestCreate_UnknownAuthor(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.Create(context.Background(), uuid.New(), question.CreateQuestionRequest{
		Title:       "t",
		Description: "d",
		Tags:        []string{"go"},
	})
	assert.ErrorIs(t, err, question.ErrAuthorNotFound)
}

func TestGet_CountsView(t *testing.T) {
	env := newTestEnv()
	ownerID := env.accounts.add("Alice")
	id := env.createQuestion(t, ownerID)

	ctx := context.Background()
	first, err := env.svc.Get(ctx, id)
	require.NoError(t, err)
	second, err := env.svc.Get(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Views)
	assert.Equal(t, 2, second.Views)
}

func TestGet_NotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, question.ErrQuestionNotFound)
}

// ========================================
// AUTHOR POPULATION
// ========================================

func TestGet_PlaceholderAuthorForMissingOwner(t *testing.T) {
	env := newTestEnv()
	ownerID := env.accounts.add("Alice")
	id := env.createQuestion(t, ownerID)

	// The owner account vanishes; the read must still succeed with the
	// placeholder instead of failing.
	delete(env.accounts.accounts, ownerID)

	populated, err := env.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Unknown User", populated.Author.DisplayName)
	assert.NotEmpty(t, populated.Author.Avatar)
}

func TestGet_AnswerAuthorsGetPlaceholder(t *testing.T) {
	env := newTestEnv()
	asker := env.accounts.add("Alice")
	answerer := env.accounts.add("Bob")
	id := env.createQuestion(t, asker)

	ctx := context.Background()
	_, err := env.svc.SubmitAnswer(ctx, answerer, id, question.SubmitAnswerRequest{Content: "Use channels."})
	require.NoError(t, err)

	populated, err := env.svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, populated.Answers, 1)

	// Answer authors are never individually resolved.
	assert.Equal(t, "Unknown User", populated.Answers[0].Author.DisplayName)
}

func TestGet_NormalizesBrokenAnswerTimestamp(t *testing.T) {
	env := newTestEnv()
	ownerID := env.accounts.add("Alice")
	id := env.createQuestion(t, ownerID)

	// Simulate a stored answer with a corrupt timestamp.
	env.repo.questions[id].Answers = append(env.repo.questions[id].Answers, question.Answer{
		ID:        "broken-answer",
		Content:   "old content",
		OwnerID:   uuid.New().String(),
		CreatedAt: "not-a-date",
	})

	populated, err := env.svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, populated.Answers, 1)

	assert.Equal(t, time.Unix(0, 0).UTC(), populated.Answers[0].CreatedAt)
}

// ========================================
// EDIT / DELETE
// ========================================

func TestUpdate(t *testing.T) {
	env := newTestEnv()
	ownerID := env.accounts.add("Alice")
	id := env.createQuestion(t, ownerID)

	resp, err := env.svc.Update(context.Background(), ownerID, id, question.UpdateQuestionRequest{
		Title:       "How does the goroutine scheduler work?",
		Description: "Looking for an explanation of the scheduler.",
		Tags:        []string{"go", "concurrency"},
	})
	require.NoError(t, err)
	assert.True(t, resp.Changed)
	assert.Equal(t, 1, env.repo.updateCalls)
}

func TestUpdate_NoOpSkipsWrite(t *testing.T) {
	env := newTestEnv()
	ownerID := env.accounts.add("Alice")
	id := env.createQuestion(t, ownerID)

	// Resubmitting the stored state is a success that writes nothing.
	resp, err := env.svc.Update(context.Background(), ownerID, id, question.UpdateQuestionRequest{
		Title:       "How do goroutines work?",
		Description: "Looking for an explanation of the scheduler.",
		Tags:        []string{"go", "concurrency"},
	})
	require.NoError(t, err)
	assert.False(t, resp.Changed)
	assert.Zero(t, env.repo.updateCalls)
}

func TestUpdate_NotOwner(t *testing.T) {
	env := newTestEnv()
	ownerID := env.accounts.add("Alice")
	intruder := env.accounts.add("Mallory")
	id := env.createQuestion(t, ownerID)

	_, err := env.svc.Update(context.Background(), intruder, id, question.UpdateQuestionRequest{
		Title:       "hijacked",
		Description: "hijacked",
		Tags:        []string{"x"},
	})
	assert.ErrorIs(t, err, authz.ErrNotOwner)
}

func TestDelete(t *testing.T) {
	env := newTestEnv()
	ownerID := env.accounts.add("Alice")
	answerer := env.accounts.add("Bob")
	id := env.createQuestion(t, ownerID)

	ctx := context.Background()
	_, err := env.svc.SubmitAnswer(ctx, answerer, id, question.SubmitAnswerRequest{Content: "An answer."})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, ownerID, id))

	// Embedded answers are gone with the aggregate.
	_, err = env.svc.Get(ctx, id)
	assert.ErrorIs(t, err, question.ErrQuestionNotFound)
}

func TestDelete_NotOwner(t *testing.T) {
	env := newTestEnv()
	ownerID := env.accounts.add("Alice")
	intruder := env.accounts.add("Mallory")
	id := env.createQuestion(t, ownerID)

	err := env.svc.Delete(context.Background(), intruder, id)
	assert.ErrorIs(t, err, authz.ErrNotOwner)

	_, err = env.svc.Get(context.Background(), id)
	assert.NoError(t, err)
}

// ========================================
// ANSWERS
// ========================================

func TestSubmitAnswer_PreservesOrder(t *testing.T) {
	env := newTestEnv()
	asker := env.accounts.add("Alice")
	answerer := env.accounts.add("Bob")
	id := env.createQuestion(t, asker)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := env.svc.SubmitAnswer(ctx, answerer, id, question.SubmitAnswerRequest{
			Content: fmt.Sprintf("answer %d", i),
		})
		require.NoError(t, err)
	}

	populated, err := env.svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, populated.Answers, 3)

	seen := map[string]bool{}
	for i, a := range populated.Answers {
		assert.Equal(t, fmt.Sprintf("answer %d", i), a.Content)
		assert.False(t, seen[a.ID], "answer ids must be unique")
		seen[a.ID] = true
	}
}

func TestSubmitAnswer_SelfAnswerForbidden(t *testing.T) {
	env := newTestEnv()
	asker := env.accounts.add("Alice")
	id := env.createQuestion(t, asker)

	_, err := env.svc.SubmitAnswer(context.Background(), asker, id, question.SubmitAnswerRequest{
		Content: "Answering myself.",
	})
	assert.ErrorIs(t, err, question.ErrSelfAnswerForbidden)
}

func TestDeleteAnswer(t *testing.T) {
	env := newTestEnv()
	asker := env.accounts.add("Alice")
	answerer := env.accounts.add("Bob")
	id := env.createQuestion(t, asker)

	ctx := context.Background()
	answer, err := env.svc.SubmitAnswer(ctx, answerer, id, question.SubmitAnswerRequest{Content: "An answer."})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteAnswer(ctx, answerer, id, answer.ID))

	populated, err := env.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, populated.Answers)
}

func TestAnswerMutationsBumpUpdatedAt(t *testing.T) {
	env := newTestEnv()
	asker := env.accounts.add("Alice")
	answerer := env.accounts.add("Bob")
	id := env.createQuestion(t, asker)

	ctx := context.Background()
	before, err := env.svc.Get(ctx, id)
	require.NoError(t, err)

	answer, err := env.svc.SubmitAnswer(ctx, answerer, id, question.SubmitAnswerRequest{Content: "An answer."})
	require.NoError(t, err)

	// Appending an answer mutates the aggregate, so updatedAt must move
	// strictly forward.
	afterAppend, err := env.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, afterAppend.UpdatedAt.After(before.UpdatedAt))

	require.NoError(t, env.svc.DeleteAnswer(ctx, answerer, id, answer.ID))

	// Removal is a mutation too; the bump rides the same statement as
	// the answer change.
	afterRemove, err := env.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, afterRemove.UpdatedAt.After(afterAppend.UpdatedAt))
}

func TestDeleteAnswer_NotOwner(t *testing.T) {
	env := newTestEnv()
	asker := env.accounts.add("Alice")
	answerer := env.accounts.add("Bob")
	id := env.createQuestion(t, asker)

	ctx := context.Background()
	answer, err := env.svc.SubmitAnswer(ctx, answerer, id, question.SubmitAnswerRequest{Content: "An answer."})
	require.NoError(t, err)

	// Even the question's owner may not delete someone else's answer.
	err = env.svc.DeleteAnswer(ctx, asker, id, answer.ID)
	assert.ErrorIs(t, err, authz.ErrNotOwner)
}

func TestDeleteAnswer_Missing(t *testing.T) {
	env := newTestEnv()
	asker := env.accounts.add("Alice")
	id := env.createQuestion(t, asker)

	err := env.svc.DeleteAnswer(context.Background(), asker, id, "no-such-answer")
	assert.ErrorIs(t, err, question.ErrAnswerNotFound)
}

// ========================================
// LISTING / PAGINATION
// ========================================

func TestList_Pagination(t *testing.T) {
	env := newTestEnv()
	ownerID := env.accounts.add("Alice")

	ctx := context.Background()
	for i := 0; i < 25; i++ {
		_, err := env.svc.Create(ctx, ownerID, question.CreateQuestionRequest{
			Title:       fmt.Sprintf("question %d", i),
			Description: "d",
			Tags:        []string{"go"},
		})
		require.NoError(t, err)
	}

	page1, err := env.svc.List(ctx, question.ListQuestionsRequest{Page: 1})
	require.NoError(t, err)
	assert.Len(t, page1.Questions, question.PageSize)
	assert.Equal(t, 25, page1.Total)
	assert.Equal(t, 3, page1.TotalPages)

	page3, err := env.svc.List(ctx, question.ListQuestionsRequest{Page: 3})
	require.NoError(t, err)
	assert.Len(t, page3.Questions, 5)

	// Past the last page is still a success, just empty.
	page4, err := env.svc.List(ctx, question.ListQuestionsRequest{Page: 4})
	require.NoError(t, err)
	assert.Empty(t, page4.Questions)
	assert.Equal(t, 25, page4.Total)
}

func TestList_ZeroPageDefaultsToFirst(t *testing.T) {
	env := newTestEnv()
	ownerID := env.accounts.add("Alice")
	env.createQuestion(t, ownerID)

	resp, err := env.svc.List(context.Background(), question.ListQuestionsRequest{Page: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Len(t, resp.Questions, 1)
}

func TestList_Search(t *testing.T) {
	env := newTestEnv()
	ownerID := env.accounts.add("Alice")

	ctx := context.Background()
	_, err := env.svc.Create(ctx, ownerID, question.CreateQuestionRequest{
		Title:       "Understanding channels",
		Description: "buffered vs unbuffered",
		Tags:        []string{"go"},
	})
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, ownerID, question.CreateQuestionRequest{
		Title:       "SQL joins",
		Description: "inner vs outer",
		Tags:        []string{"sql"},
	})
	require.NoError(t, err)

	resp, err := env.svc.List(ctx, question.ListQuestionsRequest{Page: 1, Search: "channels"})
	require.NoError(t, err)
	require.Len(t, resp.Questions, 1)
	assert.Equal(t, "Understanding channels", resp.Questions[0].Title)
}

// ========================================
// VOTES / BOOKMARKS / TAGS
// ========================================

func TestVote(t *testing.T) {
	env := newTestEnv()
	ownerID := env.accounts.add("Alice")
	id := env.createQuestion(t, ownerID)

	ctx := context.Background()
	require.NoError(t, env.svc.Vote(ctx, id, true))
	require.NoError(t, env.svc.Vote(ctx, id, true))
	require.NoError(t, env.svc.Vote(ctx, id, false))

	populated, err := env.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, populated.Upvotes)
	assert.Equal(t, 1, populated.Downvotes)
}

func TestListBookmarked_FiltersDanglingEntries(t *testing.T) {
	env := newTestEnv()
	ownerID := env.accounts.add("Alice")
	readerID := env.accounts.add("Bob")

	ctx := context.Background()
	kept := env.createQuestion(t, ownerID)
	deleted := env.createQuestion(t, ownerID)

	reader := env.accounts.accounts[readerID]
	reader.Bookmarks = []uuid.UUID{kept, deleted}

	require.NoError(t, env.svc.Delete(ctx, ownerID, deleted))

	items, err := env.svc.ListBookmarked(ctx, readerID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, kept, items[0].ID)

	// The stored bookmark set keeps the dangling entry.
	assert.Len(t, reader.Bookmarks, 2)
}

func TestSuggestTags(t *testing.T) {
	env := newTestEnv()
	env.suggester.tags = []string{"go", "testing"}

	tags, err := env.svc.SuggestTags(context.Background(), question.SuggestTagsRequest{Title: "How to test in Go"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "testing"}, tags)
}

func TestSuggestTags_DegradesWhenCollaboratorFails(t *testing.T) {
	env := newTestEnv()
	env.suggester.err = errors.New("connection refused")

	tags, err := env.svc.SuggestTags(context.Background(), question.SuggestTagsRequest{Title: "How to test in Go"})
	require.NoError(t, err)
	assert.Empty(t, tags)
}
