package services

import (
	"context"
	"time"

	"gym_backend/internal/repositories"
)

// ProbeService answers the connectivity checks.
type ProbeService interface {
	Count(ctx context.Context) (int, error)
	Touch(ctx context.Context) (time.Time, error)
}

type probeService struct {
	probeRepo  repositories.ProbeRepository
	memberRepo repositories.MemberRepository
}

func NewProbeService(probeRepo repositories.ProbeRepository, memberRepo repositories.MemberRepository) ProbeService {
	return &probeService{probeRepo: probeRepo, memberRepo: memberRepo}
}

func (s *probeService) Count(ctx context.Context) (int, error) {
	return s.memberRepo.CountMembers(ctx)
}

func (s *probeService) Touch(ctx context.Context) (time.Time, error) {
	return s.probeRepo.Touch(ctx)
}
