package share

import "testing"

func TestSignerRoundTrip(t *testing.T) {
	s := NewSigner("test-secret-test-secret-test-secret")
	tok, err := s.Sign("report-1", "patient-1")
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	reportID, patientID, err := s.Parse(tok)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if reportID != "report-1" || patientID != "patient-1" {
		t.Errorf("parsed (%s, %s)", reportID, patientID)
	}
}

func TestSignerTokensAreUnique(t *testing.T) {
	s := NewSigner("test-secret-test-secret-test-secret")
	a, err := s.Sign("r", "p")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Sign("r", "p")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two tokens for the same report should differ")
	}
}

func TestSignerRejectsForeignSecret(t *testing.T) {
	tok, err := NewSigner("secret-a-secret-a-secret-a-secret-a").Sign("r", "p")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewSigner("secret-b-secret-b-secret-b-secret-b").Parse(tok); err == nil {
		t.Error("token signed with another secret should not parse")
	}
}

func TestSignerRejectsGarbage(t *testing.T) {
	s := NewSigner("test-secret-test-secret-test-secret")
	if _, _, err := s.Parse("not-a-token"); err == nil {
		t.Error("garbage token should not parse")
	}
}
