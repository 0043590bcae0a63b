package share

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.Contains(hash, ":") {
		t.Fatalf("hash %q missing salt separator", hash)
	}
	if !VerifyPassword("s3cret", hash) {
		t.Error("correct password rejected")
	}
	if VerifyPassword("wrong", hash) {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	a, err := HashPassword("same")
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashPassword("same")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two hashes of the same password should differ")
	}
	if !VerifyPassword("same", a) || !VerifyPassword("same", b) {
		t.Error("both hashes should verify")
	}
}

func TestVerifyPasswordMalformedStored(t *testing.T) {
	for _, stored := range []string{"", "nocolon", ":", "salt:", ":hash", "salt:not-hex"} {
		if VerifyPassword("pw", stored) {
			t.Errorf("VerifyPassword accepted malformed hash %q", stored)
		}
	}
}
