package service

import (
	"context"
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverview_ScopedByRole(t *testing.T) {
	f := newEngineFixture(t)
	otherOrg := uuid.New()

	seedProposal(t, f, f.orgID, func(p *model.ActivityProposal) {})
	seedProposal(t, f, f.orgID, func(p *model.ActivityProposal) {
		p.OsaStatus = model.StatusRejected
		p.Status = model.StatusRejected
	})
	seedProposal(t, f, otherOrg, func(p *model.ActivityProposal) {
		p.HeadStatus = model.StatusApproved
		p.OsaStatus = model.StatusApproved
		p.VpaStatus = model.StatusApproved
		p.VpaaStatus = model.StatusApproved
		p.Status = model.StatusApproved
	})

	svc := NewStatisticsService(f.repo)

	// Submitter roles only see their own organization.
	overview, err := svc.Overview(context.Background(), f.submitter())
	require.NoError(t, err)
	assert.Equal(t, StatisticsOverview{Pending: 1, Approved: 0, Rejected: 1, Total: 2}, overview)

	// Approval roles see everything.
	overview, err = svc.Overview(context.Background(), f.approver(model.RoleOsa))
	require.NoError(t, err)
	assert.Equal(t, StatisticsOverview{Pending: 1, Approved: 1, Rejected: 1, Total: 3}, overview)
}
