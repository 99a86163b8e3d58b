package auth

import (
	"testing"
	"time"
)

func TestGeneratePairRoundTrip(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", "sagepaypi", time.Minute, time.Hour)

	access, refresh, exp, err := tm.GeneratePair("ops@example.com", "operator")
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) <= 0 {
		t.Errorf("access expiry %v is not in the future", exp)
	}

	claims, isRefresh, err := tm.ParseAny(access)
	if err != nil || isRefresh {
		t.Fatalf("ParseAny(access) = %v, %v", isRefresh, err)
	}
	if claims.Operator != "ops@example.com" || claims.Role != "operator" {
		t.Errorf("unexpected claims %+v", claims)
	}

	if _, isRefresh, err = tm.ParseAny(refresh); err != nil || !isRefresh {
		t.Fatalf("ParseAny(refresh) = %v, %v", isRefresh, err)
	}
}

func TestParseAnyRejects(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", "sagepaypi", time.Minute, time.Hour)
	access, _, _, err := tm.GeneratePair("ops@example.com", "operator")
	if err != nil {
		t.Fatal(err)
	}

	other := NewTokenManager("access-secret", "refresh-secret", "someone-else", time.Minute, time.Hour)
	if _, _, err := other.ParseAny(access); err == nil {
		t.Error("token from another issuer accepted")
	}

	expired := NewTokenManager("access-secret", "refresh-secret", "sagepaypi", time.Minute, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, _, err := expired.ParseAny(access); err == nil {
		t.Error("expired token accepted")
	}

	if _, _, err := tm.ParseAny("not-a-jwt"); err == nil {
		t.Error("garbage accepted")
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if err := VerifyPassword("s3cret", hash); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := VerifyPassword("wrong", hash); err == nil {
		t.Error("wrong password accepted")
	}
}
