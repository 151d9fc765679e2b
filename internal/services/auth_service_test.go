package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gym_backend/internal/models"
	"gym_backend/internal/validation"
	"gym_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) (*memStore, *authService, *memberService, *utils.TokenManager) {
	t.Helper()
	store, members := newMemberFixture()
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	svc := NewAuthService(store, store, store, tokens, "ID").(*authService)
	svc.bcryptCost = bcrypt.MinCost

	if _, err := members.CreateMember(context.Background(), memberReq("Citra Lestari", "citra@example.com", "081255556666", "2026-01-01", "2026-12-31")); err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return store, svc, members, tokens
}

func signupReq(username string) SignupRequest {
	return SignupRequest{
		Email:           "CITRA@example.com",
		PhoneNumber:     "+62 812 5555 6666",
		Username:        username,
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
}

func TestSignupSucceedsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	_, svc, _, _ := newAuthFixture(t)

	m, err := svc.Signup(ctx, signupReq("citra"))
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if !m.HasAccount() || *m.Username != "citra" {
		t.Fatalf("credentials not attached: %+v", m)
	}

	for _, username := range []string{"citra", "citra2"} {
		if _, err := svc.Signup(ctx, signupReq(username)); !errors.Is(err, ErrAccountAlreadyCreated) {
			t.Fatalf("second signup as %q: expected ErrAccountAlreadyCreated, got %v", username, err)
		}
	}
}

func TestConcurrentSignupOnlyOneWins(t *testing.T) {
	_, svc, _, _ := newAuthFixture(t)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Signup(context.Background(), signupReq("citra"))
			switch {
			case err == nil:
				mu.Lock()
				wins++
				mu.Unlock()
			case errors.Is(err, ErrAccountAlreadyCreated), errors.Is(err, ErrUsernameTaken):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("wins = %d, want 1", wins)
	}
}

func TestSignupLostRaceReportsAccountCreated(t *testing.T) {
	store, svc, _, _ := newAuthFixture(t)
	store.attachConflicts = true

	if _, err := svc.Signup(context.Background(), signupReq("citra")); !errors.Is(err, ErrAccountAlreadyCreated) {
		t.Fatalf("expected ErrAccountAlreadyCreated, got %v", err)
	}
}

func TestSignupFailures(t *testing.T) {
	ctx := context.Background()
	_, svc, members, _ := newAuthFixture(t)
	other, err := members.CreateMember(ctx, memberReq("Dewi", "dewi@example.com", "081277778888", "2026-01-01", "2026-12-31"))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	otherReq := SignupRequest{Email: other.Email, PhoneNumber: other.PhoneNumber, Username: "taken", Password: "secret123", ConfirmPassword: "secret123"}
	if _, err := svc.Signup(ctx, otherReq); err != nil {
		t.Fatalf("Signup other: %v", err)
	}

	unknown := signupReq("citra")
	unknown.PhoneNumber = "081200000000"
	mismatch := signupReq("citra")
	mismatch.ConfirmPassword = "different"

	tests := []struct {
		name string
		req  SignupRequest
		want error
	}{
		{"email and phone not registered together", unknown, ErrMemberNotRegistered},
		{"username taken", signupReq("taken"), ErrUsernameTaken},
		{"passwords differ", mismatch, validation.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Signup(ctx, tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMemberLoginIssuesMemberSession(t *testing.T) {
	ctx := context.Background()
	_, svc, _, tokens := newAuthFixture(t)
	if _, err := svc.Signup(ctx, signupReq("citra")); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	if _, err := svc.MemberLogin(ctx, models.Credentials{Username: "citra", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.MemberLogin(ctx, models.Credentials{Username: "nobody", Password: "secret123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	resp, err := svc.MemberLogin(ctx, models.Credentials{Username: "citra", Password: "secret123"})
	if err != nil {
		t.Fatalf("MemberLogin: %v", err)
	}
	claims, err := tokens.Validate(resp.Token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Role != utils.RoleMember || claims.DisplayName != "Citra Lestari" || claims.UserID != resp.Session.UserID {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestEnsureAdminAndLogin(t *testing.T) {
	ctx := context.Background()
	_, svc, _, _ := newAuthFixture(t)

	if _, err := svc.EnsureAdmin(ctx, "admin", "short"); err == nil {
		t.Fatal("expected error for a weak bootstrap password")
	}
	created, err := svc.EnsureAdmin(ctx, "admin", "correct-horse")
	if err != nil || !created {
		t.Fatalf("EnsureAdmin: created=%v err=%v", created, err)
	}
	created, err = svc.EnsureAdmin(ctx, "admin", "correct-horse")
	if err != nil || created {
		t.Fatalf("second EnsureAdmin: created=%v err=%v", created, err)
	}

	resp, err := svc.AdminLogin(ctx, models.Credentials{Username: "admin", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("AdminLogin: %v", err)
	}
	if resp.Session.Role != utils.RoleAdmin {
		t.Fatalf("role = %q", resp.Session.Role)
	}
	if err := svc.VerifySession(ctx, &resp.Session); err != nil {
		t.Fatalf("VerifySession: %v", err)
	}
}

func TestVerifySessionRejectsDeletedMember(t *testing.T) {
	ctx := context.Background()
	_, svc, members, _ := newAuthFixture(t)
	m, err := svc.Signup(ctx, signupReq("citra"))
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	session := &models.Session{UserID: m.ID, Username: "citra", Role: utils.RoleMember}
	if err := svc.VerifySession(ctx, session); err != nil {
		t.Fatalf("VerifySession: %v", err)
	}

	if err := members.DeleteMember(ctx, m.ID); err != nil {
		t.Fatalf("DeleteMember: %v", err)
	}
	if err := svc.VerifySession(ctx, session); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}
	if err := svc.VerifySession(ctx, &models.Session{UserID: 1, Role: "owner"}); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("unknown role: expected ErrSessionRevoked, got %v", err)
	}
}
