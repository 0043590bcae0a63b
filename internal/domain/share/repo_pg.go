package share

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/genreport/genreport/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG creates the Postgres-backed share token repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const tokenCols = `id, token, report_id, patient_id, password_hash, expires_at,
	max_views, view_count, created_by, is_active, created_at, last_accessed_at`

func scanToken(row pgx.Row) (*Token, error) {
	var t Token
	var passwordHash, createdBy sql.NullString
	err := row.Scan(&t.ID, &t.Token, &t.ReportID, &t.PatientID, &passwordHash,
		&t.ExpiresAt, &t.MaxViews, &t.ViewCount, &createdBy, &t.IsActive,
		&t.CreatedAt, &t.LastAccessedAt)
	if err != nil {
		return nil, err
	}
	t.PasswordHash = passwordHash.String
	t.CreatedBy = createdBy.String
	return &t, nil
}

func (r *repoPG) Create(ctx context.Context, t *Token) error {
	var passwordHash, createdBy *string
	if t.PasswordHash != "" {
		passwordHash = &t.PasswordHash
	}
	if t.CreatedBy != "" {
		createdBy = &t.CreatedBy
	}
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO share_tokens (id, token, report_id, patient_id, password_hash,
			expires_at, max_views, created_by, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
		RETURNING created_at`,
		t.ID, t.Token, t.ReportID, t.PatientID, passwordHash,
		t.ExpiresAt, t.MaxViews, createdBy)
	if err := row.Scan(&t.CreatedAt); err != nil {
		return fmt.Errorf("insert share token: %w", err)
	}
	t.IsActive = true
	return nil
}

func (r *repoPG) GetByToken(ctx context.Context, token string) (*Token, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+tokenCols+` FROM share_tokens WHERE token = $1`, token)
	t, err := scanToken(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("get share token: %w", err)
	}
	return t, nil
}

func (r *repoPG) List(ctx context.Context, reportID, patientID string) ([]*Token, map[string]string, error) {
	q := `SELECT st.id, st.token, st.report_id, st.patient_id, st.password_hash,
		st.expires_at, st.max_views, st.view_count, st.created_by, st.is_active,
		st.created_at, st.last_accessed_at, COALESCE(r.name, '')
	FROM share_tokens st
	JOIN reports r ON r.id = st.report_id
	WHERE st.is_active = true`
	args := []any{}
	if reportID != "" {
		args = append(args, reportID)
		q += fmt.Sprintf(" AND st.report_id = $%d", len(args))
	}
	if patientID != "" {
		args = append(args, patientID)
		q += fmt.Sprintf(" AND st.patient_id = $%d", len(args))
	}
	q += " ORDER BY st.created_at DESC"

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("list share tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*Token
	reportNames := map[string]string{}
	for rows.Next() {
		var t Token
		var passwordHash, createdBy sql.NullString
		var reportName string
		err := rows.Scan(&t.ID, &t.Token, &t.ReportID, &t.PatientID, &passwordHash,
			&t.ExpiresAt, &t.MaxViews, &t.ViewCount, &createdBy, &t.IsActive,
			&t.CreatedAt, &t.LastAccessedAt, &reportName)
		if err != nil {
			return nil, nil, fmt.Errorf("scan share token: %w", err)
		}
		t.PasswordHash = passwordHash.String
		t.CreatedBy = createdBy.String
		tokens = append(tokens, &t)
		reportNames[t.ReportID] = reportName
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("list share tokens: %w", err)
	}
	return tokens, reportNames, nil
}

func (r *repoPG) Revoke(ctx context.Context, tokenID string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE share_tokens SET is_active = false WHERE id = $1`, tokenID)
	if err != nil {
		return fmt.Errorf("revoke share token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) RecordAccess(ctx context.Context, tokenID string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE share_tokens
		SET view_count = view_count + 1, last_accessed_at = $2
		WHERE id = $1`, tokenID, time.Now())
	if err != nil {
		return fmt.Errorf("record share access: %w", err)
	}
	return nil
}
