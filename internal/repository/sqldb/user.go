package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, password_hash, first_name, last_name, created_at`

// CreateUser inserts a new user, filling in ID and CreatedAt.
// An email that is already registered yields apperror.ErrConflict; the
// unique index on users.email is what enforces it.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = now()

	_, err := db.exec(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.CreatedAt,
	)
	if err != nil {
		if db.dialect.isUniqueViolation(err) {
			return apperror.Conflict("user", "email")
		}
		return fmt.Errorf("sqldb: inserting user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(db.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqldb: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by exact email.
// Returns apperror.ErrNotFound if nobody registered with it.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(db.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundMessage("user not found")
		}
		return nil, fmt.Errorf("sqldb: getting user by email: %w", err)
	}
	return u, nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
