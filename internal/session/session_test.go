package session

import (
	"testing"

	"github.com/jiralite/jl/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	s := New("tok-1")
	if s.Token() != "tok-1" {
		t.Errorf("Token() = %q, want tok-1", s.Token())
	}
	if !s.Active() {
		t.Error("session with token should be active")
	}

	s.SetToken("tok-2")
	if s.Token() != "tok-2" {
		t.Errorf("Token() after SetToken = %q, want tok-2", s.Token())
	}
}

func TestEmptySessionInactive(t *testing.T) {
	s := New("")
	if s.Active() {
		t.Error("empty session should be inactive")
	}
}

func TestUserRoundTrip(t *testing.T) {
	s := New("tok")
	if _, ok := s.User(); ok {
		t.Error("fresh session should have no user")
	}

	s.SetUser(models.User{ID: 7, Name: "ada", Email: "ada@example.com"})
	u, ok := s.User()
	if !ok {
		t.Fatal("User() not found after SetUser")
	}
	if u.ID != 7 || u.Email != "ada@example.com" {
		t.Errorf("User() = %+v", u)
	}
}

func TestInvalidateClearsEverything(t *testing.T) {
	s := New("tok")
	s.SetUser(models.User{ID: 1})

	s.Invalidate()

	if s.Token() != "" {
		t.Error("token survived Invalidate")
	}
	if s.Active() {
		t.Error("session active after Invalidate")
	}
	if _, ok := s.User(); ok {
		t.Error("user survived Invalidate")
	}
}

func TestInvalidateHooksRunOnce(t *testing.T) {
	s := New("tok")
	fired := 0
	s.OnInvalidate(func() { fired++ })
	s.OnInvalidate(func() { fired += 10 })

	s.Invalidate()
	s.Invalidate()
	s.Invalidate()

	if fired != 11 {
		t.Errorf("hooks fired total %d, want 11 (each hook exactly once)", fired)
	}
}

func TestSetTokenRevivesInvalidatedSession(t *testing.T) {
	s := New("old")
	s.Invalidate()

	s.SetToken("fresh")
	if !s.Active() {
		t.Error("session should be active after a fresh login token")
	}
	if s.Token() != "fresh" {
		t.Errorf("Token() = %q, want fresh", s.Token())
	}
}
