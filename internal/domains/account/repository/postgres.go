package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"knowledgehub-backend/internal/domains/account"
	"knowledgehub-backend/internal/infrastructure/database"
)

// postgresRepository implements account.Repository.
//
// It holds the store handle rather than a raw pool: every operation goes
// through Acquire, which probes liveness and reconnects transparently.
type postgresRepository struct {
	db *database.Postgres
}

func NewPostgresRepository(db *database.Postgres) account.Repository {
	return &postgresRepository{db: db}
}

// ========================================
// BASIC CRUD
// ========================================

func (r *postgresRepository) Create(ctx context.Context, a *account.Account) (uuid.UUID, error) {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	query := `
		INSERT INTO accounts (
			id, email, password_hash, display_name, avatar, bio,
			bookmarks, active_session_token, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	var accountID uuid.UUID
	err = pool.QueryRow(ctx, query,
		a.ID,
		a.Email,
		a.PasswordHash,
		a.DisplayName,
		a.Avatar,
		a.Bio,
		pq.Array(bookmarkStrings(a.Bookmarks)),
		a.ActiveSessionToken,
		a.CreatedAt,
		a.UpdatedAt,
	).Scan(&accountID)

	if err != nil {
		// 23505 = unique_violation (duplicate email)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, account.ErrEmailAlreadyExists
		}
		return uuid.Nil, fmt.Errorf("create account: %w", err)
	}

	return accountID, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT
			id, email, password_hash, display_name, avatar, bio,
			bookmarks, active_session_token, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	return r.scanAccount(pool.QueryRow(ctx, query, id))
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT
			id, email, password_hash, display_name, avatar, bio,
			bookmarks, active_session_token, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`

	return r.scanAccount(pool.QueryRow(ctx, query, email))
}

func (r *postgresRepository) scanAccount(row pgx.Row) (*account.Account, error) {
	var a account.Account
	var bookmarks []string

	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.DisplayName,
		&a.Avatar,
		&a.Bio,
		pq.Array(&bookmarks),
		&a.ActiveSessionToken,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	a.Bookmarks = parseBookmarks(bookmarks)
	return &a, nil
}

func (r *postgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return false, err
	}

	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`

	var exists bool
	if err := pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists by email: %w", err)
	}

	return exists, nil
}

func (r *postgresRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return false, err
	}

	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`

	var exists bool
	if err := pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists by id: %w", err)
	}

	return exists, nil
}

// FindDisplayByIDs resolves display fields for a batch of account ids in
// one round trip. Unknown ids produce no row.
func (r *postgresRepository) FindDisplayByIDs(ctx context.Context, ids []uuid.UUID) ([]account.Account, error) {
	if len(ids) == 0 {
		return []account.Account{}, nil
	}

	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, display_name, avatar
		FROM accounts
		WHERE id = ANY($1::uuid[])
	`

	rows, err := pool.Query(ctx, query, pq.Array(bookmarkStrings(ids)))
	if err != nil {
		return nil, fmt.Errorf("find display by ids: %w", err)
	}
	defer rows.Close()

	accounts := make([]account.Account, 0, len(ids))
	for rows.Next() {
		var a account.Account
		if err := rows.Scan(&a.ID, &a.DisplayName, &a.Avatar); err != nil {
			return nil, fmt.Errorf("scan display record: %w", err)
		}
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return accounts, nil
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, id uuid.UUID, displayName string, avatar, bio *string) error {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE accounts
		SET
			display_name = COALESCE(NULLIF($2, ''), display_name),
			avatar = COALESCE($3, avatar),
			bio = COALESCE($4, bio),
			updated_at = $5
		WHERE id = $1
	`

	result, err := pool.Exec(ctx, query, id, displayName, avatar, bio, time.Now())
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}

// ========================================
// SESSION TOKEN
// ========================================

// SetActiveSession overwrites the active session token. Concurrent logins
// race by design: the last write wins and all earlier tokens go stale.
func (r *postgresRepository) SetActiveSession(ctx context.Context, id uuid.UUID, token string) error {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE accounts
		SET active_session_token = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := pool.Exec(ctx, query, id, token)
	if err != nil {
		return fmt.Errorf("set active session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}

func (r *postgresRepository) ClearActiveSession(ctx context.Context, id uuid.UUID) error {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE accounts
		SET active_session_token = NULL, updated_at = NOW()
		WHERE id = $1
	`

	// Logout always succeeds; clearing an already-clear or missing
	// session is not an error.
	if _, err := pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("clear active session: %w", err)
	}

	return nil
}

// ========================================
// BOOKMARKS
// ========================================

// AddBookmark appends the question id unless it is already present. The
// guard in the WHERE clause keeps the operation idempotent under
// concurrent toggles.
func (r *postgresRepository) AddBookmark(ctx context.Context, accountID, questionID uuid.UUID) error {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE accounts
		SET bookmarks = array_append(bookmarks, $2::text)
		WHERE id = $1 AND NOT ($2::text = ANY(bookmarks))
	`

	result, err := pool.Exec(ctx, query, accountID, questionID.String())
	if err != nil {
		return fmt.Errorf("add bookmark: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either the account is gone or the bookmark already exists.
		// Re-read before concluding which.
		exists, err := r.ExistsByID(ctx, accountID)
		if err != nil {
			return err
		}
		if !exists {
			return account.ErrAccountNotFound
		}
		// Already bookmarked: idempotent success.
	}

	return nil
}

func (r *postgresRepository) RemoveBookmark(ctx context.Context, accountID, questionID uuid.UUID) error {
	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE accounts
		SET bookmarks = array_remove(bookmarks, $2::text)
		WHERE id = $1
	`

	result, err := pool.Exec(ctx, query, accountID, questionID.String())
	if err != nil {
		return fmt.Errorf("remove bookmark: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}

// ========================================
// HELPERS
// ========================================

func bookmarkStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func parseBookmarks(raw []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			continue // tolerate malformed legacy entries
		}
		out = append(out, id)
	}
	return out
}
