// Package share issues and validates report share links. A link is a signed
// token pointing at one report; it can carry an optional password, an
// expiration date and a view budget. Revoking a link deactivates it in place
// so the access history survives.
package share

import "time"

// Token is one share link as stored.
type Token struct {
	ID             string     `json:"id"`
	Token          string     `json:"token"`
	ReportID       string     `json:"reportId"`
	PatientID      string     `json:"patientId"`
	PasswordHash   string     `json:"-"`
	ExpiresAt      *time.Time `json:"expiresAt"`
	MaxViews       *int       `json:"maxViews"`
	ViewCount      int        `json:"viewCount"`
	CreatedBy      string     `json:"createdBy,omitempty"`
	IsActive       bool       `json:"isActive"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastAccessedAt *time.Time `json:"lastAccessedAt"`
}

// HasPassword reports whether the link is password protected.
func (t *Token) HasPassword() bool { return t.PasswordHash != "" }

// IsExpired reports whether the link's expiration has passed.
func (t *Token) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// IsMaxViewsReached reports whether the view budget is used up. The budget is
// informational only; access is not blocked when it is reached.
func (t *Token) IsMaxViewsReached() bool {
	return t.MaxViews != nil && t.ViewCount >= *t.MaxViews
}

// CreateRequest is the payload for issuing a new share link.
type CreateRequest struct {
	ReportID      string `json:"reportId"`
	PatientID     string `json:"patientId"`
	Password      string `json:"password"`
	ExpiresInDays int    `json:"expiresInDays"`
	MaxViews      *int   `json:"maxViews"`
	CreatedBy     string `json:"createdBy"`
}

// CreatedLink is the response for a freshly issued link.
type CreatedLink struct {
	ID          string     `json:"id"`
	URL         string     `json:"url"`
	Token       string     `json:"token"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	MaxViews    *int       `json:"maxViews"`
	HasPassword bool       `json:"hasPassword"`
	CreatedAt   time.Time  `json:"createdAt"`
	Message     string     `json:"message"`
}

// Link is the list view of a token, with the derived status flags the
// dashboard renders.
type Link struct {
	ID                string     `json:"id"`
	Token             string     `json:"token"`
	URL               string     `json:"url"`
	ExpiresAt         *time.Time `json:"expiresAt"`
	MaxViews          *int       `json:"maxViews"`
	ViewCount         int        `json:"viewCount"`
	HasPassword       bool       `json:"hasPassword"`
	CreatedAt         time.Time  `json:"createdAt"`
	LastAccessedAt    *time.Time `json:"lastAccessedAt"`
	IsActive          bool       `json:"isActive"`
	ReportName        string     `json:"reportName"`
	IsExpired         bool       `json:"isExpired"`
	IsMaxViewsReached bool       `json:"isMaxViewsReached"`
}

// Info accompanies a shared report payload and tells the viewer what limits
// apply to the link they used.
type Info struct {
	ViewCount  int        `json:"viewCount"`
	MaxViews   *int       `json:"maxViews"`
	ExpiresAt  *time.Time `json:"expiresAt"`
	IsReadOnly bool       `json:"isReadOnly"`
}
