package share

import "context"

// Repository persists share tokens.
type Repository interface {
	Create(ctx context.Context, t *Token) error
	GetByToken(ctx context.Context, token string) (*Token, error)
	// List returns active tokens filtered by report and/or patient id,
	// newest first, alongside the name of the report each token points at.
	List(ctx context.Context, reportID, patientID string) ([]*Token, map[string]string, error)
	Revoke(ctx context.Context, tokenID string) error
	RecordAccess(ctx context.Context, tokenID string) error
}
