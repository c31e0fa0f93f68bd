package auth

import (
	"testing"
	"time"
)

func newTestTokenService() *TokenService {
	return NewTokenService([]byte("test-secret-key-32bytes-long!!"), 15*time.Minute)
}

func newTestPrincipal() Principal {
	return Principal{UserID: "user-123", Username: "alice", Role: RoleAdmin}
}

func TestIssueAndValidateAccessToken(t *testing.T) {
	ts := newTestTokenService()
	p := newTestPrincipal()

	token, err := ts.IssueAccessToken(p)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ts.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}

	if claims.UserID != p.UserID {
		t.Errorf("UserID = %q, want %q", claims.UserID, p.UserID)
	}
	if claims.Username != p.Username {
		t.Errorf("Username = %q, want %q", claims.Username, p.Username)
	}
	if claims.Role != string(p.Role) {
		t.Errorf("Role = %q, want %q", claims.Role, string(p.Role))
	}
	if claims.Issuer != Issuer {
		t.Errorf("Issuer = %q, want %q", claims.Issuer, Issuer)
	}
}

func TestIssueAccessToken_UnknownRole(t *testing.T) {
	ts := newTestTokenService()
	if _, err := ts.IssueAccessToken(Principal{UserID: "u", Username: "u", Role: "root"}); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	ts1 := NewTokenService([]byte("secret-one-is-32-bytes-long!!!!"), 15*time.Minute)
	ts2 := NewTokenService([]byte("secret-two-is-32-bytes-long!!!!"), 15*time.Minute)

	token, err := ts1.IssueAccessToken(newTestPrincipal())
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	if _, err := ts2.ValidateAccessToken(token); err == nil {
		t.Error("expected error validating token with wrong secret")
	}
}

func TestValidateAccessToken_Expired(t *testing.T) {
	ts := NewTokenService([]byte("test-secret-key-32bytes-long!!"), -1*time.Second)
	token, err := ts.IssueAccessToken(newTestPrincipal())
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	if _, err := ts.ValidateAccessToken(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	ts := newTestTokenService()
	if _, err := ts.ValidateAccessToken("not.a.jwt"); err == nil {
		t.Error("expected error for garbage token")
	}
}

func TestRoleAllows(t *testing.T) {
	tests := []struct {
		role Role
		min  Role
		want bool
	}{
		{RoleAdmin, RoleEditor, true},
		{RoleEditor, RoleEditor, true},
		{RoleViewer, RoleEditor, false},
		{RoleViewer, RoleViewer, true},
		{"", RoleViewer, false},
		{"root", RoleViewer, false},
	}
	for _, tt := range tests {
		if got := tt.role.Allows(tt.min); got != tt.want {
			t.Errorf("%q.Allows(%q) = %v, want %v", tt.role, tt.min, got, tt.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole("editor"); err != nil || r != RoleEditor {
		t.Errorf("ParseRole(editor) = %q, %v", r, err)
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Error("expected error for unknown role")
	}
}
