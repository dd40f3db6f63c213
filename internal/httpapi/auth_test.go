package httpapi

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"mimipro/backend/internal/domain"
)

type userStoreStub struct {
	mu      sync.Mutex
	users   map[string]domain.UserAccount
	updates int
}

func (s *userStoreStub) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == nil {
		s.users = make(map[string]domain.UserAccount)
	}
	s.users[user.Username] = user
	return nil
}

func (s *userStoreStub) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.UserAccount, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

func (s *userStoreStub) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[username]
	user.Password = password
	s.users[username] = user
	s.updates++
	return nil
}

func adminStub() *userStoreStub {
	return &userStoreStub{
		users: map[string]domain.UserAccount{
			"admin": {
				Username:  "admin",
				Password:  "admin123",
				Role:      "admin",
				Active:    true,
				CreatedAt: time.Now().UTC(),
			},
		},
	}
}

func TestAuthManagerUpgradesLegacyPlainPassword(t *testing.T) {
	store := adminStub()

	manager := NewAuthManager("test-secret", time.Hour, store)
	_, err := manager.Login(domain.LoginRequest{
		Username: "admin",
		Password: "admin123",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if users[0].Password == "admin123" {
		t.Fatalf("expected password to be upgraded from plain-text")
	}
	if !strings.HasPrefix(users[0].Password, "$2") {
		t.Fatalf("expected bcrypt password hash, got %s", users[0].Password)
	}
}

func TestCreateStaffUserStoresPasswordHash(t *testing.T) {
	store := adminStub()

	manager := NewAuthManager("test-secret", time.Hour, store)
	staff, err := manager.CreateStaffUser(StaffCreateRequest{
		Username: "delivery1",
		Password: "pass1234",
	})
	if err != nil {
		t.Fatalf("create staff failed: %v", err)
	}
	if staff.Username != "delivery1" || staff.Role != "staff" {
		t.Fatalf("unexpected staff user %+v", staff)
	}

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	var found *domain.UserAccount
	for i := range users {
		if users[i].Username == "delivery1" {
			found = &users[i]
			break
		}
	}
	if found == nil {
		t.Fatalf("expected staff user to be saved")
	}
	if found.Password == "pass1234" {
		t.Fatalf("expected staff password to be hashed")
	}
	if !strings.HasPrefix(found.Password, "$2") {
		t.Fatalf("expected bcrypt hash prefix, got %s", found.Password)
	}

	_, err = manager.Login(domain.LoginRequest{
		Username: "delivery1",
		Password: "pass1234",
	})
	if err != nil {
		t.Fatalf("login with hashed staff password failed: %v", err)
	}
}

func TestCreateStaffUserValidation(t *testing.T) {
	manager := NewAuthManager("test-secret", time.Hour, adminStub())

	cases := []StaffCreateRequest{
		{Username: "ab", Password: "pass1234"},
		{Username: "has space", Password: "pass1234"},
		{Username: "delivery1", Password: "short"},
		{Username: "admin", Password: "pass1234"},
	}
	for _, req := range cases {
		if _, err := manager.CreateStaffUser(req); err == nil {
			t.Fatalf("expected error for %+v", req)
		}
	}
}

func TestChangePassword(t *testing.T) {
	store := adminStub()
	manager := NewAuthManager("test-secret", time.Hour, store)

	err := manager.ChangePassword("admin", domain.PasswordChangeRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newpass123",
	})
	if err == nil {
		t.Fatalf("expected rejection with wrong current password")
	}

	err = manager.ChangePassword("admin", domain.PasswordChangeRequest{
		CurrentPassword: "admin123",
		NewPassword:     "newpass123",
	})
	if err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, err := manager.Login(domain.LoginRequest{Username: "admin", Password: "admin123"}); err == nil {
		t.Fatalf("old password must stop working")
	}
	if _, err := manager.Login(domain.LoginRequest{Username: "admin", Password: "newpass123"}); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestParseTokenRoundTrip(t *testing.T) {
	manager := NewAuthManager("test-secret", time.Hour, adminStub())

	resp, err := manager.Login(domain.LoginRequest{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	actor, err := manager.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if actor.Username != "admin" || actor.Role != "admin" {
		t.Fatalf("unexpected actor %+v", actor)
	}

	other := NewAuthManager("different-secret", time.Hour, nil)
	if _, err := other.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
	if _, err := manager.ParseToken("not-a-token"); err == nil {
		t.Fatalf("garbage token must be rejected")
	}
}
