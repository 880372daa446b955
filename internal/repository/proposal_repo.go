package repository

import (
	"context"

	"backend/internal/model"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProposalFilter narrows list queries. OrganizationID restricts to one
// organization when set; the Require* gates add per-approver preconditions
// (used by the VPA/VPAA pending views).
type ProposalFilter struct {
	Status              model.ApprovalStatus
	OrganizationID      *uuid.UUID
	RequireHeadApproved bool
	RequireOsaApproved  bool
	RequireVpaApproved  bool
}

// ProposalRepository defines the interface for data access of ActivityProposal entities
type ProposalRepository interface {
	Create(ctx context.Context, proposal *model.ActivityProposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ActivityProposal, error)
	// GetForUpdate loads the proposal with a row-level lock. Must be called
	// inside a TransactionManager transaction; the lock is what keeps two
	// concurrent decisions from both passing the terminal guard.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.ActivityProposal, error)
	Save(ctx context.Context, proposal *model.ActivityProposal) error
	ListSummaries(ctx context.Context, filter ProposalFilter, params pagination.Params) ([]model.ActivityProposal, int64, error)
	ListApprovedForCalendar(ctx context.Context) ([]model.ActivityProposal, error)
	CountByStatus(ctx context.Context, organizationID *uuid.UUID) (map[model.ApprovalStatus]int64, error)
}

type proposalRepository struct {
	db *gorm.DB
}

// NewProposalRepository returns a new instance of ProposalRepository
func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) Create(ctx context.Context, proposal *model.ActivityProposal) error {
	return GetDB(ctx, r.db).Create(proposal).Error
}

func (r *proposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ActivityProposal, error) {
	var proposal model.ActivityProposal
	if err := GetDB(ctx, r.db).
		Preload("User").
		Preload("Organization").
		Preload("Venue").
		First(&proposal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.ActivityProposal, error) {
	var proposal model.ActivityProposal
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&proposal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) Save(ctx context.Context, proposal *model.ActivityProposal) error {
	return GetDB(ctx, r.db).Save(proposal).Error
}

func applyFilter(query *gorm.DB, filter ProposalFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrganizationID != nil {
		query = query.Where("organization_id = ?", *filter.OrganizationID)
	}
	if filter.RequireHeadApproved {
		query = query.Where("head_status = ?", model.StatusApproved)
	}
	if filter.RequireOsaApproved {
		query = query.Where("osa_status = ?", model.StatusApproved)
	}
	if filter.RequireVpaApproved {
		query = query.Where("vpa_status = ?", model.StatusApproved)
	}
	return query
}

// ListSummaries fetches only the summary columns (id, title, updated_at)
// for the rows matching the filter, newest first.
func (r *proposalRepository) ListSummaries(ctx context.Context, filter ProposalFilter, params pagination.Params) ([]model.ActivityProposal, int64, error) {
	var total int64
	countQuery := applyFilter(GetDB(ctx, r.db).Model(&model.ActivityProposal{}), filter)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var proposals []model.ActivityProposal
	fetchQuery := applyFilter(GetDB(ctx, r.db).Model(&model.ActivityProposal{}), filter)
	if err := fetchQuery.
		Select("id, title, updated_at").
		Order("updated_at DESC").
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&proposals).Error; err != nil {
		return nil, 0, err
	}

	return proposals, total, nil
}

// ListApprovedForCalendar returns all APPROVED proposals with venue and
// organization resolved, for the merged calendar view.
func (r *proposalRepository) ListApprovedForCalendar(ctx context.Context) ([]model.ActivityProposal, error) {
	var proposals []model.ActivityProposal
	if err := GetDB(ctx, r.db).
		Preload("Venue").
		Preload("Organization").
		Where("status = ?", model.StatusApproved).
		Order("date ASC").
		Find(&proposals).Error; err != nil {
		return nil, err
	}
	return proposals, nil
}

func (r *proposalRepository) CountByStatus(ctx context.Context, organizationID *uuid.UUID) (map[model.ApprovalStatus]int64, error) {
	type row struct {
		Status model.ApprovalStatus
		Count  int64
	}

	query := GetDB(ctx, r.db).
		Model(&model.ActivityProposal{}).
		Select("status, count(*) as count").
		Group("status")
	if organizationID != nil {
		query = query.Where("organization_id = ?", *organizationID)
	}

	var rows []row
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := map[model.ApprovalStatus]int64{
		model.StatusPending:  0,
		model.StatusApproved: 0,
		model.StatusRejected: 0,
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
