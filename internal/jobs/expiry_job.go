package jobs

import (
	"context"

	"gym_backend/internal/models"
	"gym_backend/internal/services"

	"github.com/rs/zerolog/log"
)

type MemberLister interface {
	GetExpiringMembers(ctx context.Context) ([]models.MemberWindow, error)
	GetMembers(ctx context.Context, query services.MemberListQuery) ([]models.Member, int, error)
}

// ExpirySweepJob reports memberships about to lapse and how many already have.
type ExpirySweepJob struct {
	members MemberLister
}

func NewExpirySweepJob(members MemberLister) *ExpirySweepJob {
	return &ExpirySweepJob{members: members}
}

func (j *ExpirySweepJob) Name() string { return "membership_expiry_sweep" }

func (j *ExpirySweepJob) Run(ctx context.Context) error {
	expiring, err := j.members.GetExpiringMembers(ctx)
	if err != nil {
		return err
	}
	for _, m := range expiring {
		log.Info().
			Int64("member_id", m.ID).
			Str("full_name", m.FullName).
			Str("expires_at", m.ExpiresAt.Format("2006-01-02")).
			Msg("Membership expiring soon")
	}

	_, expired, err := j.members.GetMembers(ctx, services.MemberListQuery{Status: "expired", Page: 1, PageSize: 1})
	if err != nil {
		return err
	}
	log.Info().Int("expiring_soon", len(expiring)).Int("expired", expired).Msg("Membership expiry sweep done")
	return nil
}
