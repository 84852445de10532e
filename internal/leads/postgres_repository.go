package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db pgxDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db pgxDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new lead row. A duplicate session id maps to
// ErrDuplicateSession so the handler can answer with a conflict.
func (r *PostgresRepository) Create(ctx context.Context, req *IngestLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO leads (session_id, clinic_id, lang, name, phone, treatment_id, message, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		RETURNING created_at, updated_at
	`
	lead := &Lead{
		SessionID:   req.SessionID,
		ClinicID:    req.ClinicID,
		Lang:        req.Lang,
		Name:        req.Name,
		Phone:       req.Phone,
		TreatmentID: req.TreatmentID,
		Message:     req.Message,
		Notes:       req.Notes,
	}
	if err := r.db.QueryRow(ctx, query,
		req.SessionID,
		req.ClinicID,
		req.Lang,
		req.Name,
		req.Phone,
		req.TreatmentID,
		req.Message,
		req.Notes,
	).Scan(&lead.CreatedAt, &lead.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateSession
		}
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}
	return lead, nil
}

const leadColumns = `session_id, clinic_id, lang, name, phone, treatment_id, message, COALESCE(notes, ''), created_at, updated_at`

// List returns leads for a clinic newest-first along with the unpaginated
// total for the same filter.
func (r *PostgresRepository) List(ctx context.Context, clinicID string, filter ListFilter) ([]*Lead, int64, error) {
	where := ` WHERE clinic_id = $1`
	args := []any{clinicID}

	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	if len(filter.Treatments) > 0 {
		args = append(args, filter.Treatments)
		where += fmt.Sprintf(" AND treatment_id = ANY($%d)", len(args))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM leads` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("leads: count failed: %w", err)
	}

	query := `SELECT ` + leadColumns + ` FROM leads` + where +
		` ORDER BY created_at DESC, session_id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Lead
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(
			&lead.SessionID,
			&lead.ClinicID,
			&lead.Lang,
			&lead.Name,
			&lead.Phone,
			&lead.TreatmentID,
			&lead.Message,
			&lead.Notes,
			&lead.CreatedAt,
			&lead.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, &lead)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("leads: rows failed: %w", err)
	}
	return out, total, nil
}

// UpdateNotes replaces the operator notes for a lead scoped to the clinic.
func (r *PostgresRepository) UpdateNotes(ctx context.Context, clinicID, sessionID, notes string) (*Lead, error) {
	query := `
		UPDATE leads
		SET notes = NULLIF($3, ''), updated_at = now()
		WHERE session_id = $1 AND clinic_id = $2
		RETURNING ` + leadColumns
	var lead Lead
	if err := r.db.QueryRow(ctx, query, sessionID, clinicID, notes).Scan(
		&lead.SessionID,
		&lead.ClinicID,
		&lead.Lang,
		&lead.Name,
		&lead.Phone,
		&lead.TreatmentID,
		&lead.Message,
		&lead.Notes,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: update notes failed: %w", err)
	}
	return &lead, nil
}

// Stats counts leads all-time, since local midnight, and since seven days
// before local midnight, relative to now.
func (r *PostgresRepository) Stats(ctx context.Context, clinicID string, now time.Time) (*Stats, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := today.AddDate(0, 0, -7)

	stats := &Stats{}

	totalQuery := `SELECT COUNT(*) FROM leads WHERE clinic_id = $1`
	if err := r.db.QueryRow(ctx, totalQuery, clinicID).Scan(&stats.TotalLeads); err != nil {
		return nil, fmt.Errorf("leads: count total: %w", err)
	}

	sinceQuery := `SELECT COUNT(*) FROM leads WHERE clinic_id = $1 AND created_at >= $2`
	if err := r.db.QueryRow(ctx, sinceQuery, clinicID, today).Scan(&stats.TodayLeads); err != nil {
		return nil, fmt.Errorf("leads: count today: %w", err)
	}
	if err := r.db.QueryRow(ctx, sinceQuery, clinicID, weekAgo).Scan(&stats.WeeklyLeads); err != nil {
		return nil, fmt.Errorf("leads: count weekly: %w", err)
	}

	return stats, nil
}
