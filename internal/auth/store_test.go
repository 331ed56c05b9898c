package auth

import (
	"errors"
	"testing"
)

func TestStore_RegisterAndAuthenticate(t *testing.T) {
	s := NewStore()

	identity, err := s.Register("alice", "hunter2")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if identity != "alice" {
		t.Fatalf("identity = %q, want alice", identity)
	}

	if _, err := s.Authenticate("alice", "hunter2"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if _, err := s.Authenticate("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := s.Authenticate("nobody", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestStore_RegisterDuplicate(t *testing.T) {
	s := NewStore()
	if _, err := s.Register("alice", "hunter2"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := s.Register("alice", "other"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("duplicate register: err = %v, want ErrUserExists", err)
	}
}

func TestStore_RegisterValidation(t *testing.T) {
	s := NewStore()
	if _, err := s.Register("", "pw"); err == nil {
		t.Fatal("empty username accepted")
	}
	if _, err := s.Register("alice", ""); err == nil {
		t.Fatal("empty password accepted")
	}
}
