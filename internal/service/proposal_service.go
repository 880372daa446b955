package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/storage"
	"backend/pkg/apperror"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const downloadURLExpiry = time.Hour

// --- DTOs ---

type CreateProposalRequest struct {
	Title        string `json:"title" binding:"required"`
	Purpose      string `json:"purpose" binding:"required"`
	Participants string `json:"participants" binding:"required"`
	Attendees    int    `json:"attendees" binding:"required"`
	Requirements string `json:"requirements" binding:"required"`
	Date         string `json:"date" binding:"required"`       // "2006-01-02"
	StartTime    string `json:"start_time" binding:"required"` // "15:04"
	EndTime      string `json:"end_time" binding:"required"`
	VenueID      string `json:"venue_id" binding:"required"`

	// Attachment keys previously uploaded through the presign endpoint.
	CashForm         string `json:"cash_form"`
	FoodForm         string `json:"food_form"`
	SupplyForm       string `json:"supply_form"`
	ReproductionForm string `json:"reproduction_form"`
	OtherForm        string `json:"other_form"`
}

// ProposalSummary is the projection returned by the list queries.
type ProposalSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt string `json:"updated_at"`
}

// AttachmentLink pairs a stored form key with a presigned download URL.
type AttachmentLink struct {
	Form string `json:"form"` // cash, food, supply, reproduction, other
	Key  string `json:"key"`
	URL  string `json:"url"`
}

// ProposalDetail is the read-only projection of a full proposal, built from
// the entity rather than serialized from it.
type ProposalDetail struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Purpose      string `json:"purpose"`
	Participants string `json:"participants"`
	Attendees    int    `json:"attendees"`
	Requirements string `json:"requirements"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`

	HeadStatus model.ApprovalStatus `json:"head_status"`
	OsaStatus  model.ApprovalStatus `json:"osa_status"`
	VpaStatus  model.ApprovalStatus `json:"vpa_status"`
	VpaaStatus model.ApprovalStatus `json:"vpaa_status"`
	Status     model.ApprovalStatus `json:"status"`

	SubmittedBy      string           `json:"submitted_by"`
	OrganizationID   string           `json:"organization_id"`
	OrganizationName string           `json:"organization_name"`
	VenueID          string           `json:"venue_id"`
	VenueName        string           `json:"venue_name"`
	Attachments      []AttachmentLink `json:"attachments"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// --- Interface ---

// ProposalService is the approval engine: it owns submission, the
// per-approver decision state machine, and the role-scoped queries.
type ProposalService interface {
	Submit(ctx context.Context, caller Identity, req CreateProposalRequest) (ProposalDetail, error)
	Approve(ctx context.Context, caller Identity, id string) (ProposalDetail, error)
	Reject(ctx context.Context, caller Identity, id string) (ProposalDetail, error)
	ListPending(ctx context.Context, caller Identity, params pagination.Params) ([]ProposalSummary, int64, error)
	ListApproved(ctx context.Context, caller Identity, params pagination.Params) ([]ProposalSummary, int64, error)
	ListRejected(ctx context.Context, caller Identity, params pagination.Params) ([]ProposalSummary, int64, error)
	GetByID(ctx context.Context, caller Identity, id string) (ProposalDetail, error)
}

type proposalService struct {
	proposals repository.ProposalRepository
	venues    repository.VenueRepository
	txManager repository.TransactionManager
	store     storage.BlobStore
}

// NewProposalService returns a new instance of ProposalService
func NewProposalService(
	proposals repository.ProposalRepository,
	venues repository.VenueRepository,
	txManager repository.TransactionManager,
	store storage.BlobStore,
) ProposalService {
	return &proposalService{proposals: proposals, venues: venues, txManager: txManager, store: store}
}

// --- Submission ---

func (s *proposalService) Submit(ctx context.Context, caller Identity, req CreateProposalRequest) (ProposalDetail, error) {
	required := []struct {
		name  string
		value string
	}{
		{"title", req.Title},
		{"purpose", req.Purpose},
		{"participants", req.Participants},
		{"requirements", req.Requirements},
	}
	for _, f := range required {
		if f.value == "" {
			return ProposalDetail{}, apperror.Validationf("%s is required", f.name)
		}
	}

	if req.Attendees <= 0 {
		return ProposalDetail{}, apperror.Validationf("attendees must be a positive number")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return ProposalDetail{}, apperror.Validationf("invalid date %q, expected YYYY-MM-DD", req.Date)
	}

	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return ProposalDetail{}, apperror.Validationf("invalid start time %q, expected HH:MM", req.StartTime)
	}
	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return ProposalDetail{}, apperror.Validationf("invalid end time %q, expected HH:MM", req.EndTime)
	}
	if !start.Before(end) {
		return ProposalDetail{}, apperror.Validationf("start time %s must be before end time %s", req.StartTime, req.EndTime)
	}

	venueID, err := uuid.Parse(req.VenueID)
	if err != nil {
		return ProposalDetail{}, apperror.Validationf("invalid venue id: %v", err)
	}
	if _, err := s.venues.GetByID(ctx, venueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProposalDetail{}, apperror.NotFoundf("venue %s not found", req.VenueID)
		}
		return ProposalDetail{}, fmt.Errorf("failed to look up venue: %w", err)
	}

	proposal := model.ActivityProposal{
		Title:            req.Title,
		Purpose:          req.Purpose,
		Participants:     req.Participants,
		Attendees:        req.Attendees,
		Requirements:     req.Requirements,
		Date:             date,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		CashForm:         req.CashForm,
		FoodForm:         req.FoodForm,
		SupplyForm:       req.SupplyForm,
		ReproductionForm: req.ReproductionForm,
		OtherForm:        req.OtherForm,
		HeadStatus:       model.StatusPending,
		OsaStatus:        model.StatusPending,
		VpaStatus:        model.StatusPending,
		VpaaStatus:       model.StatusPending,
		Status:           model.StatusPending,
		UserID:           caller.UserID,
		OrganizationID:   caller.OrganizationID,
		VenueID:          venueID,
	}

	if err := s.proposals.Create(ctx, &proposal); err != nil {
		return ProposalDetail{}, fmt.Errorf("failed to create proposal: %w", err)
	}

	return s.reload(ctx, proposal.ID)
}

// --- Decisions ---

func (s *proposalService) Approve(ctx context.Context, caller Identity, id string) (ProposalDetail, error) {
	return s.decide(ctx, caller, id, model.StatusApproved)
}

func (s *proposalService) Reject(ctx context.Context, caller Identity, id string) (ProposalDetail, error) {
	return s.decide(ctx, caller, id, model.StatusRejected)
}

// decide applies one approver's decision under a row lock: load-for-update,
// terminal guard, write the role's field, recompute the aggregate. A single
// rejection short-circuits to REJECTED; approval of the aggregate requires
// all four fields.
func (s *proposalService) decide(ctx context.Context, caller Identity, id string, decision model.ApprovalStatus) (ProposalDetail, error) {
	proposalID, err := uuid.Parse(id)
	if err != nil {
		return ProposalDetail{}, apperror.Validationf("invalid proposal id: %v", err)
	}

	field, ok := caller.Role.StatusField()
	if !ok {
		return ProposalDetail{}, apperror.Authorizationf("role %s cannot decide on proposals", caller.Role)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		proposal, err := s.proposals.GetForUpdate(txCtx, proposalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFoundf("proposal %s not found", id)
			}
			return fmt.Errorf("failed to load proposal: %w", err)
		}

		if proposal.IsTerminal() {
			return apperror.Conflictf("cannot decide on a terminal proposal: already %s", proposal.Status)
		}

		*field(proposal) = decision
		if decision == model.StatusRejected {
			proposal.Status = model.StatusRejected
		} else {
			proposal.Status = proposal.DeriveStatus()
		}

		if err := s.proposals.Save(txCtx, proposal); err != nil {
			return fmt.Errorf("failed to update proposal: %w", err)
		}
		return nil
	})
	if err != nil {
		return ProposalDetail{}, err
	}

	return s.reload(ctx, proposalID)
}

// --- Role-scoped queries ---

// filterFor builds the visibility filter for one status view. Pending is
// special: VPA and VPAA only see proposals that already cleared the earlier
// stages, even though decisions themselves are not sequenced.
func filterFor(caller Identity, status model.ApprovalStatus) (repository.ProposalFilter, error) {
	filter := repository.ProposalFilter{Status: status}

	switch caller.Role {
	case model.RoleStudent, model.RoleHead:
		orgID := caller.OrganizationID
		filter.OrganizationID = &orgID
	case model.RoleOsa:
		// global
	case model.RoleVpa:
		if status == model.StatusPending {
			filter.RequireHeadApproved = true
			filter.RequireOsaApproved = true
		}
	case model.RoleVpaa:
		if status == model.StatusPending {
			filter.RequireHeadApproved = true
			filter.RequireOsaApproved = true
			filter.RequireVpaApproved = true
		}
	default:
		return repository.ProposalFilter{}, apperror.Authorizationf("unknown role %s", caller.Role)
	}

	return filter, nil
}

func (s *proposalService) list(ctx context.Context, caller Identity, status model.ApprovalStatus, params pagination.Params) ([]ProposalSummary, int64, error) {
	filter, err := filterFor(caller, status)
	if err != nil {
		return nil, 0, err
	}

	proposals, total, err := s.proposals.ListSummaries(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch proposals: %w", err)
	}

	summaries := make([]ProposalSummary, 0, len(proposals))
	for _, p := range proposals {
		summaries = append(summaries, ProposalSummary{
			ID:        p.ID.String(),
			Title:     p.Title,
			UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
		})
	}
	return summaries, total, nil
}

func (s *proposalService) ListPending(ctx context.Context, caller Identity, params pagination.Params) ([]ProposalSummary, int64, error) {
	return s.list(ctx, caller, model.StatusPending, params)
}

func (s *proposalService) ListApproved(ctx context.Context, caller Identity, params pagination.Params) ([]ProposalSummary, int64, error) {
	return s.list(ctx, caller, model.StatusApproved, params)
}

func (s *proposalService) ListRejected(ctx context.Context, caller Identity, params pagination.Params) ([]ProposalSummary, int64, error) {
	return s.list(ctx, caller, model.StatusRejected, params)
}

func (s *proposalService) GetByID(ctx context.Context, caller Identity, id string) (ProposalDetail, error) {
	proposalID, err := uuid.Parse(id)
	if err != nil {
		return ProposalDetail{}, apperror.Validationf("invalid proposal id: %v", err)
	}
	return s.reload(ctx, proposalID)
}

// --- Helpers ---

func (s *proposalService) reload(ctx context.Context, id uuid.UUID) (ProposalDetail, error) {
	proposal, err := s.proposals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProposalDetail{}, apperror.NotFoundf("proposal %s not found", id)
		}
		return ProposalDetail{}, fmt.Errorf("failed to reload proposal: %w", err)
	}
	return s.toDetail(ctx, proposal)
}

func (s *proposalService) toDetail(ctx context.Context, p *model.ActivityProposal) (ProposalDetail, error) {
	detail := ProposalDetail{
		ID:             p.ID.String(),
		Title:          p.Title,
		Purpose:        p.Purpose,
		Participants:   p.Participants,
		Attendees:      p.Attendees,
		Requirements:   p.Requirements,
		Date:           p.Date.Format("2006-01-02"),
		StartTime:      p.StartTime,
		EndTime:        p.EndTime,
		HeadStatus:     p.HeadStatus,
		OsaStatus:      p.OsaStatus,
		VpaStatus:      p.VpaStatus,
		VpaaStatus:     p.VpaaStatus,
		Status:         p.Status,
		OrganizationID: p.OrganizationID.String(),
		VenueID:        p.VenueID.String(),
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      p.UpdatedAt.Format(time.RFC3339),
	}

	if p.User != nil {
		detail.SubmittedBy = p.User.FirstName + " " + p.User.LastName
	}
	if p.Organization != nil {
		detail.OrganizationName = p.Organization.Name
	}
	if p.Venue != nil {
		detail.VenueName = p.Venue.Name
	}

	forms := []struct {
		name string
		key  string
	}{
		{"cash", p.CashForm},
		{"food", p.FoodForm},
		{"supply", p.SupplyForm},
		{"reproduction", p.ReproductionForm},
		{"other", p.OtherForm},
	}
	for _, f := range forms {
		if f.key == "" {
			continue
		}
		url, err := s.store.PresignDownload(ctx, f.key, downloadURLExpiry)
		if err != nil {
			return ProposalDetail{}, fmt.Errorf("failed to presign %s form: %w", f.name, err)
		}
		detail.Attachments = append(detail.Attachments, AttachmentLink{Form: f.name, Key: f.key, URL: url})
	}

	return detail, nil
}
