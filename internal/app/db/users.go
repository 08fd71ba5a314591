package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chatty/internal/app/user"
	"chatty/internal/pkg/randx"
)

const userColumns = "id, full_name, email, password_hash, profile_pic, created_at"

// UserStore is the pgx-backed implementation of user.Store.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore constructs a UserStore over the given pool.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.ProfilePic, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new account. A duplicate email yields user.ErrEmailTaken.
func (s *UserStore) Create(ctx context.Context, fullName, email, passwordHash string) (*user.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO users (id, full_name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`, userColumns)

	row := s.pool.QueryRow(ctx, query, randx.NewID(), fullName, email, passwordHash)

	u, err := scanUser(row)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, user.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetByEmail returns the account registered under email, or user.ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)

	u, err := scanUser(s.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// GetByID returns the account with the given ID, or user.ErrNotFound.
func (s *UserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)

	u, err := scanUser(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// UpdateProfile applies the non-nil fields and returns the updated record.
func (s *UserStore) UpdateProfile(ctx context.Context, id string, fullName, profilePic *string) (*user.User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET full_name   = COALESCE($2, full_name),
		    profile_pic = COALESCE($3, profile_pic),
		    updated_at  = now()
		WHERE id = $1
		RETURNING %s`, userColumns)

	u, err := scanUser(s.pool.QueryRow(ctx, query, id, fullName, profilePic))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("update user profile: %w", err)
	}
	return u, nil
}

// UpdatePasswordByEmail replaces the stored password hash for the account
// registered under email.
func (s *UserStore) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE email = $1`,
		email, passwordHash)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// ListOthers returns every account except the one with excludeID.
func (s *UserStore) ListOthers(ctx context.Context, excludeID string) ([]user.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id <> $1 ORDER BY full_name", userColumns)

	rows, err := s.pool.Query(ctx, query, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// ListByIDs returns the accounts whose IDs appear in ids.
func (s *UserStore) ListByIDs(ctx context.Context, ids []string) ([]user.User, error) {
	if len(ids) == 0 {
		return []user.User{}, nil
	}

	query := fmt.Sprintf("SELECT %s FROM users WHERE id = ANY($1) ORDER BY full_name", userColumns)

	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list users by ids: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// Delete removes the account; messages and chat requests follow via FK cascade.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func collectUsers(rows pgx.Rows) ([]user.User, error) {
	users := []user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}
