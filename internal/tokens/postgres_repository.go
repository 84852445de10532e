package tokens

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores dashboard tokens in the relational database.
type PostgresRepository struct {
	db pgxDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("tokens: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db pgxDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a token row.
func (r *PostgresRepository) Create(ctx context.Context, token *Token) error {
	query := `
		INSERT INTO dashboard_tokens (token, clinic_id, created_at, expires_at, active)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.Exec(ctx, query,
		token.Token,
		token.ClinicID,
		token.CreatedAt,
		token.ExpiresAt,
		token.Active,
	); err != nil {
		return fmt.Errorf("tokens: insert failed: %w", err)
	}
	return nil
}

// GetWithClinicName fetches a token joined with its clinic's display name.
func (r *PostgresRepository) GetWithClinicName(ctx context.Context, token string) (*Token, string, error) {
	query := `
		SELECT t.token, t.clinic_id, t.created_at, t.expires_at, t.active, c.name
		FROM dashboard_tokens t
		JOIN clinics c ON c.clinic_id = t.clinic_id
		WHERE t.token = $1
	`
	var (
		stored     Token
		clinicName string
	)
	if err := r.db.QueryRow(ctx, query, token).Scan(
		&stored.Token,
		&stored.ClinicID,
		&stored.CreatedAt,
		&stored.ExpiresAt,
		&stored.Active,
		&clinicName,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrTokenNotFound
		}
		return nil, "", fmt.Errorf("tokens: select failed: %w", err)
	}
	return &stored, clinicName, nil
}

// Delete removes a token row; revocation takes effect immediately for all
// subsequent validations.
func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM dashboard_tokens WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("tokens: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// List returns tokens newest first, optionally scoped to one clinic.
func (r *PostgresRepository) List(ctx context.Context, clinicID string) ([]*TokenInfo, error) {
	query := `
		SELECT t.token, t.clinic_id, t.created_at, t.expires_at, t.active, c.name
		FROM dashboard_tokens t
		JOIN clinics c ON c.clinic_id = t.clinic_id
	`
	var args []any
	if clinicID != "" {
		query += ` WHERE t.clinic_id = $1`
		args = append(args, clinicID)
	}
	query += ` ORDER BY t.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("tokens: list failed: %w", err)
	}
	defer rows.Close()

	var out []*TokenInfo
	for rows.Next() {
		var info TokenInfo
		if err := rows.Scan(
			&info.Token.Token,
			&info.ClinicID,
			&info.CreatedAt,
			&info.ExpiresAt,
			&info.Active,
			&info.ClinicName,
		); err != nil {
			return nil, fmt.Errorf("tokens: scan failed: %w", err)
		}
		out = append(out, &info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tokens: rows failed: %w", err)
	}
	return out, nil
}
