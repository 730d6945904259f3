package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

const keystoneMigration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS users (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    username text NOT NULL,
    password_hash text,
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_username_unique
ON users (username);

CREATE TABLE IF NOT EXISTS social_memberships (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    provider text NOT NULL,
    provider_user_id text NOT NULL,
    access_token text NOT NULL DEFAULT '',
    refresh_token text NOT NULL DEFAULT '',
    token text NOT NULL DEFAULT '',
    token_secret text NOT NULL DEFAULT '',
    user_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    CONSTRAINT memberships_provider_unique
        UNIQUE (provider, provider_user_id)
);

CREATE INDEX IF NOT EXISTS social_memberships_user_id_idx
ON social_memberships (user_id);
`

// RunKeystoneMigration applies the baseline schema. Idempotent.
func RunKeystoneMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, keystoneMigration)
	return err
}

// Postgres is the production Store backed by lib/pq.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	u := User{Username: username, PasswordHash: passwordHash}

	var hash sql.NullString
	if passwordHash != "" {
		hash = sql.NullString{String: passwordHash, Valid: true}
	}

	err := p.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, username, hash).Scan(&u.ID, &u.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "users_username_unique") {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("store: create user: %w", err)
	}

	return &u, nil
}

func (p *Postgres) UserByID(ctx context.Context, id string) (*User, error) {
	return p.scanUser(p.db.QueryRowContext(ctx, `
		SELECT id, username, COALESCE(password_hash, ''), created_at
		FROM users
		WHERE id = $1
	`, id))
}

func (p *Postgres) UserByUsername(ctx context.Context, username string) (*User, error) {
	return p.scanUser(p.db.QueryRowContext(ctx, `
		SELECT id, username, COALESCE(password_hash, ''), created_at
		FROM users
		WHERE username = $1
	`, username))
}

func (p *Postgres) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan user: %w", err)
	}
	return &u, nil
}

func (p *Postgres) DeleteUser(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: delete user: %w", err)
	}
	return nil
}

func (p *Postgres) CreateMembership(ctx context.Context, m SocialMembership) (*SocialMembership, error) {
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO social_memberships
			(provider, provider_user_id, access_token, refresh_token, token, token_secret, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`,
		m.Provider,
		m.ProviderUserID,
		m.Credential.AccessToken,
		m.Credential.RefreshToken,
		m.Credential.Token,
		m.Credential.TokenSecret,
		m.UserID,
	).Scan(&m.ID, &m.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "memberships_provider_unique") {
			return nil, ErrMembershipExists
		}
		return nil, fmt.Errorf("store: create membership: %w", err)
	}

	return &m, nil
}

const membershipColumns = `
	id, provider, provider_user_id,
	access_token, refresh_token, token, token_secret,
	user_id, created_at`

func (p *Postgres) MembershipByProviderID(ctx context.Context, provider, providerUserID string) (*SocialMembership, error) {
	return p.scanMembership(p.db.QueryRowContext(ctx, `
		SELECT `+membershipColumns+`
		FROM social_memberships
		WHERE provider = $1 AND provider_user_id = $2
	`, provider, providerUserID))
}

func (p *Postgres) MembershipByUserAndProvider(ctx context.Context, userID, provider string) (*SocialMembership, error) {
	return p.scanMembership(p.db.QueryRowContext(ctx, `
		SELECT `+membershipColumns+`
		FROM social_memberships
		WHERE user_id = $1 AND provider = $2
	`, userID, provider))
}

func (p *Postgres) scanMembership(row *sql.Row) (*SocialMembership, error) {
	var m SocialMembership
	err := row.Scan(
		&m.ID, &m.Provider, &m.ProviderUserID,
		&m.Credential.AccessToken, &m.Credential.RefreshToken,
		&m.Credential.Token, &m.Credential.TokenSecret,
		&m.UserID, &m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan membership: %w", err)
	}
	return &m, nil
}

func (p *Postgres) MembershipsByUser(ctx context.Context, userID string) ([]SocialMembership, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+membershipColumns+`
		FROM social_memberships
		WHERE user_id = $1
		ORDER BY provider
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []SocialMembership
	for rows.Next() {
		var m SocialMembership
		if err := rows.Scan(
			&m.ID, &m.Provider, &m.ProviderUserID,
			&m.Credential.AccessToken, &m.Credential.RefreshToken,
			&m.Credential.Token, &m.Credential.TokenSecret,
			&m.UserID, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("store: scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}

	return memberships, rows.Err()
}

func (p *Postgres) UpdateCredential(ctx context.Context, id string, cred Credential) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE social_memberships
		SET access_token = $2, refresh_token = $3, token = $4, token_secret = $5
		WHERE id = $1
	`, id, cred.AccessToken, cred.RefreshToken, cred.Token, cred.TokenSecret)
	if err != nil {
		return fmt.Errorf("store: update credential: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: update credential: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation (class 23505) on the named constraint or index.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return pqErr.Constraint == constraint ||
		strings.Contains(pqErr.Message, constraint)
}
