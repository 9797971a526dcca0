package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"knowledgehub-backend/internal/domains/question"
	"knowledgehub-backend/internal/infrastructure/database"
)

type postgresRepository struct {
	db *database.Postgres
}

// NewPostgresRepository creates a question repository backed by PostgreSQL.
// Answers are stored as a JSONB array on the question row, so every
// answer mutation is one statement against the parent.
func NewPostgresRepository(db *database.Postgres) question.Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, q *question.Question) (uuid.UUID, error) {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	query := `
		INSERT INTO questions (id, title, description, tags, owner_id, upvotes, downvotes, views, answers, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, 0, '[]'::jsonb, NOW(), NOW())
		RETURNING id`

	var id uuid.UUID
	err = pool.QueryRow(ctx, query,
		q.ID, q.Title, q.Description, pq.Array(q.Tags), q.OwnerID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create question: %w", err)
	}

	return id, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*question.Question, error) {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, title, description, tags, owner_id, upvotes, downvotes, views, answers, created_at, updated_at
		FROM questions
		WHERE id = $1`

	return scanQuestion(pool.QueryRow(ctx, query, id))
}

func (r *postgresRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]question.Question, error) {
	if len(ids) == 0 {
		return []question.Question{}, nil
	}

	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	query := `
		SELECT id, title, description, tags, owner_id, upvotes, downvotes, views, answers, created_at, updated_at
		FROM questions
		WHERE id = ANY($1::uuid[])
		ORDER BY updated_at DESC`

	rows, err := pool.Query(ctx, query, pq.Array(idStrings))
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	return collectQuestions(rows)
}

func (r *postgresRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return false, err
	}

	var exists bool
	err = pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM questions WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check question existence: %w", err)
	}

	return exists, nil
}

func (r *postgresRepository) List(ctx context.Context, search string, limit, offset int) ([]question.Question, int, error) {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, 0, err
	}

	// Build WHERE dynamically; blank search matches everything.
	whereClause := ""
	args := []interface{}{}
	argIndex := 1

	if search != "" {
		pattern := "%" + search + "%"
		whereClause = fmt.Sprintf(`
			WHERE title ILIKE $%d
			   OR description ILIKE $%d
			   OR EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE t ILIKE $%d)`,
			argIndex, argIndex, argIndex)
		args = append(args, pattern)
		argIndex++
	}

	countQuery := `SELECT COUNT(*) FROM questions` + whereClause

	var total int
	if err := pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT id, title, description, tags, owner_id, upvotes, downvotes, views, answers, created_at, updated_at
		FROM questions
		%s
		ORDER BY updated_at DESC
		LIMIT $%d OFFSET $%d`, whereClause, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	questions, err := collectQuestions(rows)
	if err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, title, description string, tags []string) error {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE questions
		SET title = $2, description = $3, tags = $4, updated_at = NOW()
		WHERE id = $1`

	result, err := pool.Exec(ctx, query, id, title, description, pq.Array(tags))
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	if result.RowsAffected() == 0 {
		return question.ErrQuestionNotFound
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return err
	}

	result, err := pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	if result.RowsAffected() == 0 {
		return question.ErrQuestionNotFound
	}

	return nil
}

func (r *postgresRepository) AppendAnswer(ctx context.Context, questionID uuid.UUID, a question.Answer) error {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode answer: %w", err)
	}

	// Single statement: the answer lands and updated_at bumps together.
	query := `
		UPDATE questions
		SET answers = answers || $2::jsonb, updated_at = NOW()
		WHERE id = $1`

	result, err := pool.Exec(ctx, query, questionID, string(payload))
	if err != nil {
		return fmt.Errorf("failed to append answer: %w", err)
	}

	if result.RowsAffected() == 0 {
		return question.ErrQuestionNotFound
	}

	return nil
}

func (r *postgresRepository) RemoveAnswer(ctx context.Context, questionID uuid.UUID, answerID string) error {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return err
	}

	// The containment guard makes the statement a no-op when the answer
	// is absent, so RowsAffected distinguishes the cases below.
	query := `
		UPDATE questions
		SET answers = COALESCE(
			(SELECT jsonb_agg(a) FROM jsonb_array_elements(answers) AS a WHERE a->>'id' <> $2),
			'[]'::jsonb
		), updated_at = NOW()
		WHERE id = $1
		  AND answers @> jsonb_build_array(jsonb_build_object('id', $2::text))`

	result, err := pool.Exec(ctx, query, questionID, answerID)
	if err != nil {
		return fmt.Errorf("failed to remove answer: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Zero rows: either the question is gone or the answer is.
		exists, err := r.Exists(ctx, questionID)
		if err != nil {
			return err
		}
		if !exists {
			return question.ErrQuestionNotFound
		}
		return question.ErrAnswerNotFound
	}

	return nil
}

func (r *postgresRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return err
	}

	// Views count reads, not edits, so updated_at stays put.
	result, err := pool.Exec(ctx, `UPDATE questions SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}

	if result.RowsAffected() == 0 {
		return question.ErrQuestionNotFound
	}

	return nil
}

func (r *postgresRepository) Vote(ctx context.Context, id uuid.UUID, up bool) error {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return err
	}

	column := "downvotes"
	if up {
		column = "upvotes"
	}

	query := fmt.Sprintf(`UPDATE questions SET %s = %s + 1, updated_at = NOW() WHERE id = $1`, column, column)

	result, err := pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}

	if result.RowsAffected() == 0 {
		return question.ErrQuestionNotFound
	}

	return nil
}

// ========================================
// SCAN HELPERS
// ========================================

func scanQuestion(row pgx.Row) (*question.Question, error) {
	var q question.Question
	var tags []string
	var answers []byte

	err := row.Scan(
		&q.ID, &q.Title, &q.Description, pq.Array(&tags), &q.OwnerID,
		&q.Upvotes, &q.Downvotes, &q.Views, &answers,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, question.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to scan question: %w", err)
	}

	q.Tags = tags
	if err := json.Unmarshal(answers, &q.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}
	if q.Answers == nil {
		q.Answers = []question.Answer{}
	}

	return &q, nil
}

func collectQuestions(rows pgx.Rows) ([]question.Question, error) {
	questions := []question.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}
	return questions, nil
}
