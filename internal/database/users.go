package database

import (
	"context"
	"errors"
	"time"
	"wymiana-plikow/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrEmailTaken = errors.New("user with this email already exists")
var ErrUsernameTaken = errors.New("user with this username already exists")

type CreateUserParams struct {
	Username          string
	Email             string
	PasswordHash      string
	VerificationToken string
	IsAdmin           bool
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, verification_token, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, username, email, password_hash, verified, verification_token,
		          reset_password_token, reset_password_expires, is_admin, created_at
	`
	row := q.db.QueryRow(ctx, query,
		arg.Username,
		arg.Email,
		arg.PasswordHash,
		arg.VerificationToken,
		arg.IsAdmin,
	)

	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Verified,
		&user.VerificationToken,
		&user.ResetPasswordToken,
		&user.ResetPasswordExpires,
		&user.IsAdmin,
		&user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "users_username_key" {
				return nil, ErrUsernameTaken
			}
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return &user, nil
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT
			id,
			username,
			email,
			password_hash,
			verified,
			verification_token,
			reset_password_token,
			reset_password_expires,
			is_admin,
			created_at
		FROM users
		WHERE email = $1
	`
	var user models.User

	err := q.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Verified,
		&user.VerificationToken,
		&user.ResetPasswordToken,
		&user.ResetPasswordExpires,
		&user.IsAdmin,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (q *Queries) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT
			id, username, email, password_hash, verified, verification_token,
			reset_password_token, reset_password_expires, is_admin, created_at
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := q.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Verified,
		&user.VerificationToken, &user.ResetPasswordToken, &user.ResetPasswordExpires,
		&user.IsAdmin, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ConsumeVerificationToken flips verified and clears the token in one
// statement, so a token can never be redeemed twice even under concurrent
// requests. Returns false when the token is unknown or already used.
func (q *Queries) ConsumeVerificationToken(ctx context.Context, token string) (bool, error) {
	query := `
		UPDATE users
		SET verified = TRUE, verification_token = NULL
		WHERE verification_token = $1
	`
	res, err := q.db.Exec(ctx, query, token)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (q *Queries) SetResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET reset_password_token = $1, reset_password_expires = $2
		WHERE id = $3
	`
	_, err := q.db.Exec(ctx, query, token, expiresAt, userID)
	return err
}

// GetUserByResetToken returns nil when the token is absent or already past
// its expiry; expiry is checked lazily here, expired tokens are not purged.
func (q *Queries) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	query := `
		SELECT
			id, username, email, password_hash, verified, verification_token,
			reset_password_token, reset_password_expires, is_admin, created_at
		FROM users
		WHERE reset_password_token = $1 AND reset_password_expires > NOW()
	`
	var user models.User
	err := q.db.QueryRow(ctx, query, token).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Verified,
		&user.VerificationToken, &user.ResetPasswordToken, &user.ResetPasswordExpires,
		&user.IsAdmin, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ConsumeResetToken updates the password hash and clears both reset fields,
// guarded by the expiry in the same statement. Returns false when the token
// is unknown, already consumed or expired.
func (q *Queries) ConsumeResetToken(ctx context.Context, token string, newPasswordHash string) (bool, error) {
	query := `
		UPDATE users
		SET password_hash = $1, reset_password_token = NULL, reset_password_expires = NULL
		WHERE reset_password_token = $2 AND reset_password_expires > NOW()
	`
	res, err := q.db.Exec(ctx, query, newPasswordHash, token)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}
