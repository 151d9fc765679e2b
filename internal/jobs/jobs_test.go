package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"gym_backend/internal/models"
	"gym_backend/internal/services"
)

type fakeReconciler struct {
	mismatches []models.LedgerTotal
	err        error
	calls      int
}

func (f *fakeReconciler) ReconcileLedger(context.Context) ([]models.LedgerTotal, error) {
	f.calls++
	return f.mismatches, f.err
}

func TestLedgerReconcileJob(t *testing.T) {
	rec := &fakeReconciler{mismatches: []models.LedgerTotal{{ItemID: 3, ItemName: "Whey", Quantity: 9, LedgerSum: 10}}}
	job := NewLedgerReconcileJob(rec)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.calls != 1 {
		t.Fatalf("expected one reconcile call, got %d", rec.calls)
	}

	rec.err = errors.New("db down")
	if err := job.Run(context.Background()); !errors.Is(err, rec.err) {
		t.Fatalf("expected the reconcile error, got %v", err)
	}
}

type fakeMembers struct {
	expiring    []models.MemberWindow
	expired     int
	lastQuery   services.MemberListQuery
	expiringErr error
}

func (f *fakeMembers) GetExpiringMembers(context.Context) ([]models.MemberWindow, error) {
	return f.expiring, f.expiringErr
}

func (f *fakeMembers) GetMembers(_ context.Context, q services.MemberListQuery) ([]models.Member, int, error) {
	f.lastQuery = q
	return nil, f.expired, nil
}

func TestExpirySweepJob(t *testing.T) {
	members := &fakeMembers{
		expiring: []models.MemberWindow{{ID: 1, FullName: "Ana", ExpiresAt: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)}},
		expired:  4,
	}
	job := NewExpirySweepJob(members)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if members.lastQuery.Status != "expired" {
		t.Fatalf("expected expired count query, got %+v", members.lastQuery)
	}

	members.expiringErr = errors.New("boom")
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type countingJob struct {
	runs atomic.Int32
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return nil
}

func TestSchedulerAdd(t *testing.T) {
	s := NewScheduler(time.UTC, time.Second)
	job := &countingJob{}

	if err := s.Add("not a schedule", job); err == nil {
		t.Fatal("expected invalid schedule error")
	}
	if err := s.Add("", job); err != nil {
		t.Fatalf("empty schedule should disable the job, got %v", err)
	}
	if err := s.Add("@every 1h", job); err != nil {
		t.Fatalf("Add: %v", err)
	}

	s.run(job)
	if job.runs.Load() != 1 {
		t.Fatalf("expected one run, got %d", job.runs.Load())
	}

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
