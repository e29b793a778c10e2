package unit

import (
	"testing"
	"time"

	"github.com/creditedge/backend/internal/auth"
)

func TestJWTMintAndParse(t *testing.T) {
	m := auth.NewJWTManager("issuer", "aud", "secret")
	tok, err := m.Mint("u1", "t1", auth.RoleLoanOfficer, "s1", "access", 5*time.Minute)
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}

	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.UserID != "u1" || claims.SessionID != "s1" || claims.Type != "access" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.TenantID != "t1" || claims.Role != auth.RoleLoanOfficer {
		t.Fatalf("unexpected tenant claims: %+v", claims)
	}
}

func TestJWTParseRejectsWrongAudience(t *testing.T) {
	m := auth.NewJWTManager("issuer", "aud", "secret")
	other := auth.NewJWTManager("issuer", "other-aud", "secret")

	tok, err := other.Mint("u1", "t1", auth.RoleTenantAdmin, "s1", "access", 5*time.Minute)
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}
	if _, err := m.Parse(tok); err == nil {
		t.Fatalf("expected audience validation failure")
	}
}
