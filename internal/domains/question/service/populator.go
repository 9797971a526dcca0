package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"knowledgehub-backend/internal/domains/account"
	"knowledgehub-backend/internal/domains/question"
	"knowledgehub-backend/pkg/cache"
	"knowledgehub-backend/pkg/logger"
)

const (
	displayCacheTTL = 15 * time.Minute

	unknownAuthorName = "Unknown User"
)

// populator turns stored aggregates into display-ready ones: it batch
// resolves question owners into display records and normalizes every
// timestamp so callers never see a raw invalid date.
//
// Answer authors are deliberately not resolved; they always receive the
// placeholder record.
type populator struct {
	accounts account.Repository
	cache    cache.Cache
}

func newPopulator(accounts account.Repository, c cache.Cache) *populator {
	return &populator{accounts: accounts, cache: c}
}

// Populate resolves authors for a batch of questions with a single store
// lookup for all cache misses.
func (p *populator) Populate(ctx context.Context, questions []question.Question) ([]question.PopulatedQuestion, error) {
	// Step 1: Collect the deduplicated owner set (question owners only)
	ownerSet := map[uuid.UUID]struct{}{}
	for i := range questions {
		ownerSet[questions[i].OwnerID] = struct{}{}
	}

	// Step 2: Resolve owners (cache-aside, then one batch query)
	authors, err := p.resolveAuthors(ctx, ownerSet)
	if err != nil {
		return nil, err
	}

	// Step 3: Substitute records; unresolved owners get the placeholder
	populated := make([]question.PopulatedQuestion, 0, len(questions))
	for i := range questions {
		populated = append(populated, p.build(&questions[i], authors))
	}

	return populated, nil
}

// PopulateOne is the single-aggregate variant used by detail reads.
func (p *populator) PopulateOne(ctx context.Context, q *question.Question) (*question.PopulatedQuestion, error) {
	populated, err := p.Populate(ctx, []question.Question{*q})
	if err != nil {
		return nil, err
	}
	return &populated[0], nil
}

func (p *populator) resolveAuthors(ctx context.Context, ownerSet map[uuid.UUID]struct{}) (map[string]account.DisplayRecord, error) {
	authors := map[string]account.DisplayRecord{}
	misses := []uuid.UUID{}

	for id := range ownerSet {
		var record account.DisplayRecord
		found, err := p.cache.Get(ctx, account.DisplayCacheKey(id.String()), &record)
		if err != nil {
			logger.Warn("author cache read failed", map[string]interface{}{
				"account_id": id.String(),
				"error":      err.Error(),
			})
		}
		if found && err == nil {
			authors[record.ID] = record
			continue
		}
		misses = append(misses, id)
	}

	if len(misses) == 0 {
		return authors, nil
	}

	resolved, err := p.accounts.FindDisplayByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}

	for i := range resolved {
		record := displayRecord(&resolved[i])
		authors[record.ID] = record

		if err := p.cache.Set(ctx, account.DisplayCacheKey(record.ID), record, displayCacheTTL); err != nil {
			logger.Warn("author cache write failed", map[string]interface{}{
				"account_id": record.ID,
				"error":      err.Error(),
			})
		}
	}

	return authors, nil
}

func (p *populator) build(q *question.Question, authors map[string]account.DisplayRecord) question.PopulatedQuestion {
	author, ok := authors[q.OwnerID.String()]
	if !ok {
		author = placeholderAuthor()
	}

	createdAt := normalizeTime(q.CreatedAt)
	updatedAt := normalizeTime(q.UpdatedAt)
	if q.UpdatedAt.IsZero() {
		updatedAt = createdAt
	}

	answers := make([]question.PopulatedAnswer, 0, len(q.Answers))
	for i := range q.Answers {
		a := &q.Answers[i]
		answers = append(answers, question.PopulatedAnswer{
			ID:        a.ID,
			Content:   a.Content,
			Author:    placeholderAuthor(),
			Upvotes:   a.Upvotes,
			Downvotes: a.Downvotes,
			CreatedAt: parseTimestamp(a.CreatedAt),
		})
	}

	return question.PopulatedQuestion{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Tags:        q.Tags,
		Author:      author,
		Upvotes:     q.Upvotes,
		Downvotes:   q.Downvotes,
		Views:       q.Views,
		Answers:     answers,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// displayRecord builds the lightweight author view; accounts without an
// avatar get a deterministic one from the first letter of their name.
func displayRecord(a *account.Account) account.DisplayRecord {
	avatar := ""
	if a.Avatar != nil {
		avatar = *a.Avatar
	}
	if avatar == "" {
		avatar = initialAvatar(a.DisplayName)
	}
	return account.DisplayRecord{
		ID:          a.ID.String(),
		DisplayName: a.DisplayName,
		Avatar:      avatar,
	}
}

func placeholderAuthor() account.DisplayRecord {
	return account.DisplayRecord{
		ID:          "",
		DisplayName: unknownAuthorName,
		Avatar:      initialAvatar(unknownAuthorName),
	}
}

func initialAvatar(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "?"
	}
	return strings.ToUpper(string([]rune(trimmed)[0]))
}

// normalizeTime coerces absent timestamps to the epoch start.
func normalizeTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return t
}

// parseTimestamp coerces stored answer timestamps; anything that fails
// to parse becomes the epoch start rather than leaking to the caller.
func parseTimestamp(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return t
}
