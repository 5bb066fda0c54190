package identity

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
)

func TestJWTResolverRoundTrip(t *testing.T) {
	resolver := NewJWTResolver([]byte("test-secret"), nil)

	token, err := resolver.IssueToken("user-42", "user-42@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	state := resolver.Resolve(token)
	if state.User == nil {
		t.Fatalf("expected resolved user, got error %v", state.LastError)
	}
	if state.User.UserID != "user-42" || state.User.Email != "user-42@example.com" {
		t.Fatalf("unexpected identity: %+v", state.User)
	}

	if _, err := domain.RequireIdentity(state); err != nil {
		t.Fatalf("RequireIdentity: %v", err)
	}
}

func TestJWTResolverRejectsBadToken(t *testing.T) {
	resolver := NewJWTResolver([]byte("test-secret"), nil)

	state := resolver.Resolve("not-a-token")
	if state.User != nil {
		t.Fatalf("expected nil user for garbage token")
	}
	if state.LastError == nil {
		t.Fatalf("expected LastError to be set")
	}
}

func TestJWTResolverRejectsWrongKey(t *testing.T) {
	issuer := NewJWTResolver([]byte("key-a"), nil)
	verifier := NewJWTResolver([]byte("key-b"), nil)

	token, err := issuer.IssueToken("user-1", "user-1@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if state := verifier.Resolve(token); state.User != nil {
		t.Fatalf("token signed with another key must not resolve")
	}
}

func TestJWTResolverRejectsExpired(t *testing.T) {
	resolver := NewJWTResolver([]byte("test-secret"), nil)

	token, err := resolver.IssueToken("user-1", "user-1@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if state := resolver.Resolve(token); state.User != nil {
		t.Fatalf("expired token must not resolve")
	}
}

func TestJWTResolverEmptyCredential(t *testing.T) {
	resolver := NewJWTResolver([]byte("test-secret"), nil)

	state := resolver.Resolve("")
	if state.User != nil || state.LastError != nil {
		t.Fatalf("empty credential must resolve to the anonymous state, got %+v", state)
	}
	if _, err := domain.RequireIdentity(state); err != domain.ErrAuthenticationRequired {
		t.Fatalf("expected ErrAuthenticationRequired, got %v", err)
	}
}
