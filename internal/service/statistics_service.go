package service

import (
	"context"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
)

// StatisticsOverview holds proposal counts per aggregate status for the
// caller's visible scope.
type StatisticsOverview struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Total    int64 `json:"total"`
}

type StatisticsService interface {
	Overview(ctx context.Context, caller Identity) (StatisticsOverview, error)
}

type statisticsService struct {
	proposals repository.ProposalRepository
}

// NewStatisticsService returns a new instance of StatisticsService
func NewStatisticsService(proposals repository.ProposalRepository) StatisticsService {
	return &statisticsService{proposals: proposals}
}

// Overview counts proposals per status. Submitter roles see their own
// organization; approval roles see all organizations.
func (s *statisticsService) Overview(ctx context.Context, caller Identity) (StatisticsOverview, error) {
	counts, err := s.countsFor(ctx, caller)
	if err != nil {
		return StatisticsOverview{}, err
	}

	overview := StatisticsOverview{
		Pending:  counts[model.StatusPending],
		Approved: counts[model.StatusApproved],
		Rejected: counts[model.StatusRejected],
	}
	overview.Total = overview.Pending + overview.Approved + overview.Rejected
	return overview, nil
}

func (s *statisticsService) countsFor(ctx context.Context, caller Identity) (map[model.ApprovalStatus]int64, error) {
	switch caller.Role {
	case model.RoleStudent, model.RoleHead:
		orgID := caller.OrganizationID
		counts, err := s.proposals.CountByStatus(ctx, &orgID)
		if err != nil {
			return nil, fmt.Errorf("failed to count proposals: %w", err)
		}
		return counts, nil
	default:
		counts, err := s.proposals.CountByStatus(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to count proposals: %w", err)
		}
		return counts, nil
	}
}
