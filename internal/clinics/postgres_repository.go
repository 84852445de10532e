package clinics

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxDB is the slice of pgxpool.Pool the repository needs, so tests can
// substitute a pgxmock pool.
type pgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores clinics in the relational database.
type PostgresRepository struct {
	db pgxDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("clinics: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db pgxDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const clinicColumns = `clinic_id, name, city, whatsapp, phone, email, COALESCE(website, ''), address, hours, COALESCE(notes, ''), created_at, updated_at`

// Create inserts a new clinic row.
func (r *PostgresRepository) Create(ctx context.Context, clinic *Clinic) (*Clinic, error) {
	query := `
		INSERT INTO clinics (clinic_id, name, city, whatsapp, phone, email, website, notes, address, hours)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10)
		RETURNING created_at, updated_at
	`
	stored := *clinic
	if err := r.db.QueryRow(ctx, query,
		clinic.ClinicID,
		clinic.Name,
		clinic.City,
		clinic.WhatsApp,
		clinic.Phone,
		clinic.Email,
		clinic.Website,
		clinic.Notes,
		clinic.Address,
		clinic.Hours,
	).Scan(&stored.CreatedAt, &stored.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrClinicExists
		}
		return nil, fmt.Errorf("clinics: insert failed: %w", err)
	}
	return &stored, nil
}

// Upsert creates the clinic or overwrites its mutable fields, reporting
// whether a new row was inserted.
func (r *PostgresRepository) Upsert(ctx context.Context, clinic *Clinic) (bool, error) {
	query := `
		INSERT INTO clinics (clinic_id, name, city, whatsapp, phone, email, website, notes, address, hours)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10)
		ON CONFLICT (clinic_id) DO UPDATE SET
			name = EXCLUDED.name,
			city = EXCLUDED.city,
			whatsapp = EXCLUDED.whatsapp,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			website = EXCLUDED.website,
			notes = EXCLUDED.notes,
			address = EXCLUDED.address,
			hours = EXCLUDED.hours,
			updated_at = now()
		RETURNING (xmax = 0) AS inserted
	`
	var inserted bool
	if err := r.db.QueryRow(ctx, query,
		clinic.ClinicID,
		clinic.Name,
		clinic.City,
		clinic.WhatsApp,
		clinic.Phone,
		clinic.Email,
		clinic.Website,
		clinic.Notes,
		clinic.Address,
		clinic.Hours,
	).Scan(&inserted); err != nil {
		return false, fmt.Errorf("clinics: upsert failed: %w", err)
	}
	return inserted, nil
}

// GetByID fetches a single clinic.
func (r *PostgresRepository) GetByID(ctx context.Context, clinicID string) (*Clinic, error) {
	query := `SELECT ` + clinicColumns + ` FROM clinics WHERE clinic_id = $1`
	var clinic Clinic
	if err := r.db.QueryRow(ctx, query, clinicID).Scan(
		&clinic.ClinicID,
		&clinic.Name,
		&clinic.City,
		&clinic.WhatsApp,
		&clinic.Phone,
		&clinic.Email,
		&clinic.Website,
		&clinic.Address,
		&clinic.Hours,
		&clinic.Notes,
		&clinic.CreatedAt,
		&clinic.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClinicNotFound
		}
		return nil, fmt.Errorf("clinics: select failed: %w", err)
	}
	return &clinic, nil
}

// List returns all clinics ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]*Clinic, error) {
	query := `SELECT ` + clinicColumns + ` FROM clinics ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("clinics: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Clinic
	for rows.Next() {
		var clinic Clinic
		if err := rows.Scan(
			&clinic.ClinicID,
			&clinic.Name,
			&clinic.City,
			&clinic.WhatsApp,
			&clinic.Phone,
			&clinic.Email,
			&clinic.Website,
			&clinic.Address,
			&clinic.Hours,
			&clinic.Notes,
			&clinic.CreatedAt,
			&clinic.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("clinics: scan failed: %w", err)
		}
		out = append(out, &clinic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("clinics: rows failed: %w", err)
	}
	return out, nil
}
