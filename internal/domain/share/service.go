package share

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/genreport/genreport/internal/domain/patient"
)

// Access failures carry their own sentinel so the handler can map each one
// to the right status code.
var (
	ErrNotFound         = errors.New("share link not found")
	ErrRevoked          = errors.New("share link has been revoked")
	ErrExpired          = errors.New("share link has expired")
	ErrPasswordRequired = errors.New("password required")
	ErrInvalidPassword  = errors.New("invalid password")
)

// ReportSource is the slice of the patient domain the share service reads
// from: ownership checks when issuing links, the full report tree when a
// link is accessed.
type ReportSource interface {
	ReportOwner(ctx context.Context, reportID string) (string, error)
	GetReportTree(ctx context.Context, reportID string) (*patient.Report, *patient.PatientInfo, error)
}

// SharedReport is the read-only view a link resolves to: the report tree
// with the patient header folded in.
type SharedReport struct {
	*patient.Report
	PatientInfo *patient.PatientInfo `json:"patientInfo"`
}

// Service issues, lists, revokes and resolves share links.
type Service struct {
	repo    Repository
	reports ReportSource
	signer  *Signer
	baseURL string
}

func NewService(repo Repository, reports ReportSource, signer *Signer, baseURL string) *Service {
	return &Service{repo: repo, reports: reports, signer: signer, baseURL: strings.TrimRight(baseURL, "/")}
}

// Create issues a new share link for a report. The report must exist and
// belong to the named patient.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*CreatedLink, error) {
	if req.ReportID == "" || req.PatientID == "" {
		return nil, fmt.Errorf("reportId and patientId are required")
	}

	owner, err := s.reports.ReportOwner(ctx, req.ReportID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("look up report owner: %w", err)
	}
	if owner != req.PatientID {
		return nil, ErrNotFound
	}

	tokenStr, err := s.signer.Sign(req.ReportID, req.PatientID)
	if err != nil {
		return nil, err
	}

	t := &Token{
		ID:        uuid.NewString(),
		Token:     tokenStr,
		ReportID:  req.ReportID,
		PatientID: req.PatientID,
		MaxViews:  req.MaxViews,
		CreatedBy: req.CreatedBy,
	}
	if req.ExpiresInDays > 0 {
		exp := time.Now().AddDate(0, 0, req.ExpiresInDays)
		t.ExpiresAt = &exp
	}
	if strings.TrimSpace(req.Password) != "" {
		hash, err := HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		t.PasswordHash = hash
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	msg := "Public link - anyone with the URL can access"
	if t.HasPassword() {
		msg = "Anyone with the password can access this report unlimited times"
	}
	return &CreatedLink{
		ID:          t.ID,
		URL:         s.shareURL(t.Token),
		Token:       t.Token,
		ExpiresAt:   t.ExpiresAt,
		MaxViews:    t.MaxViews,
		HasPassword: t.HasPassword(),
		CreatedAt:   t.CreatedAt,
		Message:     msg,
	}, nil
}

// List returns the active links for a report and/or patient, newest first.
func (s *Service) List(ctx context.Context, reportID, patientID string) ([]Link, error) {
	if reportID == "" && patientID == "" {
		return nil, fmt.Errorf("reportId or patientId is required")
	}
	tokens, reportNames, err := s.repo.List(ctx, reportID, patientID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	links := make([]Link, 0, len(tokens))
	for _, t := range tokens {
		name := reportNames[t.ReportID]
		if name == "" {
			name = "Untitled Report"
		}
		links = append(links, Link{
			ID:                t.ID,
			Token:             t.Token,
			URL:               s.shareURL(t.Token),
			ExpiresAt:         t.ExpiresAt,
			MaxViews:          t.MaxViews,
			ViewCount:         t.ViewCount,
			HasPassword:       t.HasPassword(),
			CreatedAt:         t.CreatedAt,
			LastAccessedAt:    t.LastAccessedAt,
			IsActive:          t.IsActive,
			ReportName:        name,
			IsExpired:         t.IsExpired(now),
			IsMaxViewsReached: t.IsMaxViewsReached(),
		})
	}
	return links, nil
}

// Revoke deactivates a link in place, keeping its access history.
func (s *Service) Revoke(ctx context.Context, tokenID string) error {
	if tokenID == "" {
		return fmt.Errorf("tokenId is required")
	}
	if err := s.repo.Revoke(ctx, tokenID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Access resolves a token to the report it shares. A password-protected link
// needs the matching password; revoked and expired links are refused. Every
// successful access bumps the view counter, even past MaxViews.
func (s *Service) Access(ctx context.Context, tokenStr, password string) (*SharedReport, *Info, error) {
	t, err := s.repo.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if !t.IsActive {
		return nil, nil, ErrRevoked
	}
	if t.IsExpired(time.Now()) {
		return nil, nil, ErrExpired
	}
	if t.HasPassword() {
		if password == "" {
			return nil, nil, ErrPasswordRequired
		}
		if !VerifyPassword(password, t.PasswordHash) {
			return nil, nil, ErrInvalidPassword
		}
	}

	if err := s.repo.RecordAccess(ctx, t.ID); err != nil {
		return nil, nil, err
	}

	report, info, err := s.reports.GetReportTree(ctx, t.ReportID)
	if err != nil {
		return nil, nil, fmt.Errorf("load shared report: %w", err)
	}
	return &SharedReport{Report: report, PatientInfo: info}, &Info{
		ViewCount:  t.ViewCount + 1,
		MaxViews:   t.MaxViews,
		ExpiresAt:  t.ExpiresAt,
		IsReadOnly: true,
	}, nil
}

func (s *Service) shareURL(token string) string {
	return s.baseURL + "/shared/" + token
}
