package share

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// shareClaims binds a signed token to one report of one patient. The token
// itself is the share URL component, so it has no expiry claim; expiration is
// enforced per link from the stored record.
type shareClaims struct {
	ReportID  string `json:"reportId"`
	PatientID string `json:"patientId"`
	jwt.RegisteredClaims
}

// Signer mints and parses the opaque token strings embedded in share URLs.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign produces a token for the report/patient pair. The jti claim makes
// every call yield a distinct token string, which the store relies on for
// its uniqueness constraint.
func (s *Signer) Sign(reportID, patientID string) (string, error) {
	claims := shareClaims{
		ReportID:  reportID,
		PatientID: patientID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign share token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token's signature and returns the report and patient ids
// it was minted for.
func (s *Signer) Parse(token string) (reportID, patientID string, err error) {
	claims := &shareClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("parse share token: %w", err)
	}
	if !parsed.Valid {
		return "", "", fmt.Errorf("share token is not valid")
	}
	return claims.ReportID, claims.PatientID, nil
}
