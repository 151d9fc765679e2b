package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gym_backend/internal/membership"
	"gym_backend/internal/validation"
)

var jakarta = time.FixedZone("WIB", 7*3600)

// fixedNow is 18 Oct 2026, 10:00 WIB.
func fixedNow() time.Time {
	return time.Date(2026, 10, 18, 10, 0, 0, 0, jakarta)
}

func newMemberFixture() (*memStore, *memberService) {
	store := newMemStore()
	svc := NewMemberService(store, store, jakarta, "ID", nil).(*memberService)
	svc.now = fixedNow
	return store, svc
}

func memberReq(name, email, phone, reg, exp string) CreateMemberRequest {
	return CreateMemberRequest{FullName: name, Email: email, PhoneNumber: phone, RegisteredAt: reg, ExpiresAt: exp}
}

func TestCreateMemberNormalisesAndEvaluates(t *testing.T) {
	_, svc := newMemberFixture()

	m, err := svc.CreateMember(context.Background(), memberReq(" Budi Santoso ", "Budi@Example.com", "0812-3456-7890", "01/10/2026", "2026-10-25"))
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	if m.FullName != "Budi Santoso" || m.Email != "budi@example.com" || m.PhoneNumber != "+6281234567890" {
		t.Fatalf("unexpected member %+v", m)
	}
	want := membership.Status{State: membership.StateExpiringSoon, DaysLeft: 7}
	if m.Membership == nil || *m.Membership != want {
		t.Fatalf("membership = %v, want %v", m.Membership, want)
	}
}

func TestCreateMemberUniqueness(t *testing.T) {
	ctx := context.Background()
	_, svc := newMemberFixture()
	if _, err := svc.CreateMember(ctx, memberReq("Ana", "ana@example.com", "081211112222", "2026-01-01", "2027-01-01")); err != nil {
		t.Fatalf("CreateMember: %v", err)
	}

	_, err := svc.CreateMember(ctx, memberReq("Ana 2", "ANA@example.com", "081299998888", "2026-01-01", "2027-01-01"))
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	_, err = svc.CreateMember(ctx, memberReq("Ana 3", "other@example.com", "+62 812-1111-2222", "2026-01-01", "2027-01-01"))
	if !errors.Is(err, ErrPhoneNumberExists) {
		t.Fatalf("expected ErrPhoneNumberExists, got %v", err)
	}
}

func TestCreateMemberValidation(t *testing.T) {
	_, svc := newMemberFixture()
	tests := []struct {
		name string
		req  CreateMemberRequest
		want error
	}{
		{"expiry before registration", memberReq("A", "a@example.com", "081211112222", "2026-05-01", "2026-04-30"), ErrInvalidMembershipWindow},
		{"malformed date", memberReq("A", "a@example.com", "081211112222", "2026-13-01", "2026-12-01"), validation.ErrValidation},
		{"bad email", memberReq("A", "not-an-email", "081211112222", "2026-01-01", "2026-12-01"), validation.ErrValidation},
		{"missing name", memberReq("", "a@example.com", "081211112222", "2026-01-01", "2026-12-01"), validation.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateMember(context.Background(), tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGetMembersStatusFilter(t *testing.T) {
	ctx := context.Background()
	_, svc := newMemberFixture()
	seed := []CreateMemberRequest{
		memberReq("Active", "active@example.com", "081200000001", "2026-01-01", "2026-12-31"),
		memberReq("Soon", "soon@example.com", "081200000002", "2026-01-02", "2026-10-20"),
		memberReq("Today", "today@example.com", "081200000003", "2026-01-03", "2026-10-18"),
		memberReq("Gone", "gone@example.com", "081200000004", "2026-01-04", "2026-09-01"),
	}
	for _, r := range seed {
		if _, err := svc.CreateMember(ctx, r); err != nil {
			t.Fatalf("seed %s: %v", r.FullName, err)
		}
	}

	count := func(status string) int {
		t.Helper()
		members, total, err := svc.GetMembers(ctx, MemberListQuery{Status: status, Page: 1, PageSize: 10})
		if err != nil {
			t.Fatalf("GetMembers(%q): %v", status, err)
		}
		for _, m := range members {
			if !m.Membership.Matches(status) {
				t.Fatalf("%s returned for filter %q with status %v", m.FullName, status, m.Membership)
			}
		}
		return total
	}
	// "Today" expired at midnight and it is now 10:00. Active includes expiring soon.
	if got := count("active"); got != 2 {
		t.Fatalf("active = %d, want 2", got)
	}
	if got := count("expiring"); got != 1 {
		t.Fatalf("expiring = %d, want 1", got)
	}
	if got := count("expired"); got != 2 {
		t.Fatalf("expired = %d, want 2", got)
	}
	if got := count(""); got != 4 {
		t.Fatalf("all = %d, want 4", got)
	}
	if _, _, err := svc.GetMembers(ctx, MemberListQuery{Status: "frozen"}); !errors.Is(err, ErrMemberValidation) {
		t.Fatalf("expected ErrMemberValidation, got %v", err)
	}
}

func TestUpdateMemberPartial(t *testing.T) {
	ctx := context.Background()
	_, svc := newMemberFixture()
	a, _ := svc.CreateMember(ctx, memberReq("Ana", "ana@example.com", "081211112222", "2026-01-01", "2026-12-01"))
	b, _ := svc.CreateMember(ctx, memberReq("Budi", "budi@example.com", "081233334444", "2026-01-01", "2026-12-01"))

	newExpiry := "2027-06-30"
	updated, err := svc.UpdateMember(ctx, a.ID, UpdateMemberRequest{ExpiresAt: &newExpiry})
	if err != nil {
		t.Fatalf("UpdateMember: %v", err)
	}
	if updated.ExpiresAt.Format("2006-01-02") != newExpiry || updated.Email != "ana@example.com" {
		t.Fatalf("unexpected member %+v", updated)
	}

	takenEmail := "budi@example.com"
	if _, err := svc.UpdateMember(ctx, a.ID, UpdateMemberRequest{Email: &takenEmail}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	ownEmail := "BUDI@example.com"
	if _, err := svc.UpdateMember(ctx, b.ID, UpdateMemberRequest{Email: &ownEmail}); err != nil {
		t.Fatalf("keeping own email must succeed: %v", err)
	}
	early := "2025-01-01"
	if _, err := svc.UpdateMember(ctx, a.ID, UpdateMemberRequest{ExpiresAt: &early}); !errors.Is(err, ErrInvalidMembershipWindow) {
		t.Fatalf("expected ErrInvalidMembershipWindow, got %v", err)
	}
}

func TestDeleteMember(t *testing.T) {
	ctx := context.Background()
	_, svc := newMemberFixture()
	m, _ := svc.CreateMember(ctx, memberReq("Ana", "ana@example.com", "081211112222", "2026-01-01", "2026-12-01"))

	if err := svc.DeleteMember(ctx, m.ID); err != nil {
		t.Fatalf("DeleteMember: %v", err)
	}
	if _, err := svc.GetMemberByID(ctx, m.ID); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
	if err := svc.DeleteMember(ctx, m.ID); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}
