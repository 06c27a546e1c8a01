package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no account matches the given id.
var ErrNotFound = errors.New("account not found")

// AdAccount is a linked ad-platform account. The access token never
// serializes into API responses.
type AdAccount struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Platform    string    `json:"platform"`
	ExternalID  string    `json:"external_id"`
	AccessToken string    `json:"-"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AccountRepo implements ad-account persistence against PostgreSQL.
type AccountRepo struct{ db *sql.DB }

// NewAccountRepo creates a Postgres-backed account repository.
func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

func (r *AccountRepo) Get(ctx context.Context, id string) (*AdAccount, error) {
	a := &AdAccount{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, platform, external_id, COALESCE(access_token,''),
		       COALESCE(currency,'USD'), created_at, updated_at
		FROM ad_accounts
		WHERE id = $1
	`, id).Scan(
		&a.ID, &a.Name, &a.Platform, &a.ExternalID, &a.AccessToken,
		&a.Currency, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// List returns one page of accounts (newest first) and the total count.
// A limit of zero or less returns everything.
func (r *AccountRepo) List(ctx context.Context, limit, offset int) ([]AdAccount, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ad_accounts`,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	if limit <= 0 {
		limit = total
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, platform, external_id, COALESCE(currency,'USD'),
		       created_at, updated_at
		FROM ad_accounts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []AdAccount
	for rows.Next() {
		var a AdAccount
		if err := rows.Scan(
			&a.ID, &a.Name, &a.Platform, &a.ExternalID, &a.Currency,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *AccountRepo) Create(ctx context.Context, a *AdAccount) (string, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Platform == "" {
		a.Platform = "meta"
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ad_accounts
			(id, name, platform, external_id, access_token, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`, a.ID, a.Name, a.Platform, a.ExternalID, a.AccessToken, a.Currency)
	if err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}
	return a.ID, nil
}

// UpdateToken replaces the stored access token for an account.
func (r *AccountRepo) UpdateToken(ctx context.Context, id, token string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE ad_accounts SET access_token = $1, updated_at = NOW()
		WHERE id = $2
	`, token, id)
	if err != nil {
		return fmt.Errorf("update token: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AccountRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM ad_accounts WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
