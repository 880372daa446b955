package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- In-memory fakes ---

type fakeProposalRepo struct {
	mu        sync.Mutex
	proposals map[uuid.UUID]model.ActivityProposal
}

func newFakeProposalRepo() *fakeProposalRepo {
	return &fakeProposalRepo{proposals: make(map[uuid.UUID]model.ActivityProposal)}
}

func (r *fakeProposalRepo) Create(ctx context.Context, p *model.ActivityProposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.New()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.proposals[p.ID] = *p
	return nil
}

func (r *fakeProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.ActivityProposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.proposals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := p
	return &copied, nil
}

func (r *fakeProposalRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.ActivityProposal, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeProposalRepo) Save(ctx context.Context, p *model.ActivityProposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.UpdatedAt = time.Now()
	r.proposals[p.ID] = *p
	return nil
}

func matchesFilter(p model.ActivityProposal, filter repository.ProposalFilter) bool {
	if filter.Status != "" && p.Status != filter.Status {
		return false
	}
	if filter.OrganizationID != nil && p.OrganizationID != *filter.OrganizationID {
		return false
	}
	if filter.RequireHeadApproved && p.HeadStatus != model.StatusApproved {
		return false
	}
	if filter.RequireOsaApproved && p.OsaStatus != model.StatusApproved {
		return false
	}
	if filter.RequireVpaApproved && p.VpaStatus != model.StatusApproved {
		return false
	}
	return true
}

func (r *fakeProposalRepo) ListSummaries(ctx context.Context, filter repository.ProposalFilter, params pagination.Params) ([]model.ActivityProposal, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []model.ActivityProposal
	for _, p := range r.proposals {
		if matchesFilter(p, filter) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].UpdatedAt.After(matched[j].UpdatedAt) })
	return matched, int64(len(matched)), nil
}

func (r *fakeProposalRepo) ListApprovedForCalendar(ctx context.Context) ([]model.ActivityProposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []model.ActivityProposal
	for _, p := range r.proposals {
		if p.Status == model.StatusApproved {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (r *fakeProposalRepo) CountByStatus(ctx context.Context, organizationID *uuid.UUID) (map[model.ApprovalStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[model.ApprovalStatus]int64{
		model.StatusPending:  0,
		model.StatusApproved: 0,
		model.StatusRejected: 0,
	}
	for _, p := range r.proposals {
		if organizationID != nil && p.OrganizationID != *organizationID {
			continue
		}
		counts[p.Status]++
	}
	return counts, nil
}

type fakeVenueRepo struct {
	venues map[uuid.UUID]model.Venue
}

func (r *fakeVenueRepo) List(ctx context.Context) ([]model.Venue, error) {
	var out []model.Venue
	for _, v := range r.venues {
		out = append(out, v)
	}
	return out, nil
}

func (r *fakeVenueRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Venue, error) {
	v, ok := r.venues[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeBlobStore struct{}

func (fakeBlobStore) PresignUpload(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error) {
	return "https://store.example/put/" + key, nil
}

func (fakeBlobStore) PresignDownload(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	return "https://store.example/get/" + key, nil
}

func (fakeBlobStore) Exists(ctx context.Context, key string) (bool, error) { return true, nil }
func (fakeBlobStore) Save(key string, reader io.Reader) error              { return nil }
func (fakeBlobStore) Open(key string) (io.ReadCloser, error)               { return nil, nil }

// --- Fixture ---

type engineFixture struct {
	service ProposalService
	repo    *fakeProposalRepo
	venueID uuid.UUID
	orgID   uuid.UUID
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	venueID := uuid.New()
	venues := &fakeVenueRepo{venues: map[uuid.UUID]model.Venue{
		venueID: {ID: venueID, Name: "Social Hall", Capacity: 100},
	}}
	repo := newFakeProposalRepo()
	return &engineFixture{
		service: NewProposalService(repo, venues, fakeTxManager{}, fakeBlobStore{}),
		repo:    repo,
		venueID: venueID,
		orgID:   uuid.New(),
	}
}

func (f *engineFixture) submitter() Identity {
	return Identity{UserID: uuid.New(), Role: model.RoleStudent, OrganizationID: f.orgID}
}

func (f *engineFixture) approver(role model.Role) Identity {
	return Identity{UserID: uuid.New(), Role: role, OrganizationID: uuid.New()}
}

func (f *engineFixture) validRequest() CreateProposalRequest {
	return CreateProposalRequest{
		Title:        "General Assembly",
		Purpose:      "Orientation of new members",
		Participants: "All bona fide members",
		Attendees:    50,
		Requirements: "Sound system, chairs",
		Date:         "2026-09-15",
		StartTime:    "09:00",
		EndTime:      "11:00",
		VenueID:      f.venueID.String(),
	}
}

func (f *engineFixture) submit(t *testing.T) ProposalDetail {
	t.Helper()
	detail, err := f.service.Submit(context.Background(), f.submitter(), f.validRequest())
	require.NoError(t, err)
	return detail
}

// --- Submission ---

func TestSubmit_StartsAllPending(t *testing.T) {
	f := newEngineFixture(t)

	detail := f.submit(t)

	assert.Equal(t, model.StatusPending, detail.Status)
	assert.Equal(t, model.StatusPending, detail.HeadStatus)
	assert.Equal(t, model.StatusPending, detail.OsaStatus)
	assert.Equal(t, model.StatusPending, detail.VpaStatus)
	assert.Equal(t, model.StatusPending, detail.VpaaStatus)
	assert.Equal(t, f.orgID.String(), detail.OrganizationID)
}

func TestSubmit_RejectsMissingRequiredFields(t *testing.T) {
	f := newEngineFixture(t)

	blank := []func(*CreateProposalRequest){
		func(r *CreateProposalRequest) { r.Title = "" },
		func(r *CreateProposalRequest) { r.Purpose = "" },
		func(r *CreateProposalRequest) { r.Participants = "" },
		func(r *CreateProposalRequest) { r.Requirements = "" },
	}
	for _, clear := range blank {
		req := f.validRequest()
		clear(&req)

		_, err := f.service.Submit(context.Background(), f.submitter(), req)
		require.Error(t, err)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	}
	assert.Empty(t, f.repo.proposals, "no row may be persisted on validation failure")
}

func TestSubmit_RejectsInvertedTimes(t *testing.T) {
	f := newEngineFixture(t)

	req := f.validRequest()
	req.StartTime = "11:00"
	req.EndTime = "09:00"

	_, err := f.service.Submit(context.Background(), f.submitter(), req)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Empty(t, f.repo.proposals, "no row may be persisted on validation failure")
}

func TestSubmit_RejectsEqualTimes(t *testing.T) {
	f := newEngineFixture(t)

	req := f.validRequest()
	req.StartTime = "09:00"
	req.EndTime = "09:00"

	_, err := f.service.Submit(context.Background(), f.submitter(), req)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestSubmit_RejectsNonPositiveAttendees(t *testing.T) {
	f := newEngineFixture(t)

	for _, attendees := range []int{0, -5} {
		req := f.validRequest()
		req.Attendees = attendees

		_, err := f.service.Submit(context.Background(), f.submitter(), req)
		require.Error(t, err)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	}
	assert.Empty(t, f.repo.proposals)
}

func TestSubmit_UnknownVenue(t *testing.T) {
	f := newEngineFixture(t)

	req := f.validRequest()
	req.VenueID = uuid.New().String()

	_, err := f.service.Submit(context.Background(), f.submitter(), req)
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

// --- Decisions ---

func TestApprove_AllFourStagesApproves(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	id := f.submit(t).ID

	detail, err := f.service.Approve(ctx, f.approver(model.RoleHead), id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, detail.HeadStatus)
	assert.Equal(t, model.StatusPending, detail.Status)

	detail, err = f.service.Approve(ctx, f.approver(model.RoleOsa), id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, detail.OsaStatus)
	assert.Equal(t, model.StatusPending, detail.Status)

	detail, err = f.service.Approve(ctx, f.approver(model.RoleVpa), id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, detail.VpaStatus)
	assert.Equal(t, model.StatusPending, detail.Status)

	detail, err = f.service.Approve(ctx, f.approver(model.RoleVpaa), id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, detail.VpaaStatus)
	assert.Equal(t, model.StatusApproved, detail.Status)
}

func TestReject_AnySingleRoleIsFinal(t *testing.T) {
	for _, role := range model.ApproverRoles() {
		t.Run(string(role), func(t *testing.T) {
			f := newEngineFixture(t)
			id := f.submit(t).ID

			detail, err := f.service.Reject(context.Background(), f.approver(role), id)
			require.NoError(t, err)

			field, ok := role.StatusField()
			require.True(t, ok)
			stored, err := f.repo.GetByID(context.Background(), uuid.MustParse(id))
			require.NoError(t, err)
			assert.Equal(t, model.StatusRejected, *field(stored))
			assert.Equal(t, model.StatusRejected, detail.Status)
		})
	}
}

func TestDecide_TerminalProposalConflicts(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	id := f.submit(t).ID

	_, err := f.service.Reject(ctx, f.approver(model.RoleOsa), id)
	require.NoError(t, err)

	before, err := f.repo.GetByID(ctx, uuid.MustParse(id))
	require.NoError(t, err)

	_, err = f.service.Approve(ctx, f.approver(model.RoleHead), id)
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	_, err = f.service.Reject(ctx, f.approver(model.RoleVpaa), id)
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	after, err := f.repo.GetByID(ctx, uuid.MustParse(id))
	require.NoError(t, err)
	assert.Equal(t, before.HeadStatus, after.HeadStatus)
	assert.Equal(t, before.OsaStatus, after.OsaStatus)
	assert.Equal(t, before.VpaStatus, after.VpaStatus)
	assert.Equal(t, before.VpaaStatus, after.VpaaStatus)
	assert.Equal(t, before.Status, after.Status)
}

func TestDecide_FullyApprovedIsAlsoTerminal(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	id := f.submit(t).ID

	for _, role := range model.ApproverRoles() {
		_, err := f.service.Approve(ctx, f.approver(role), id)
		require.NoError(t, err)
	}

	_, err := f.service.Reject(ctx, f.approver(model.RoleOsa), id)
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestDecide_NonApproverRoleForbidden(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	id := f.submit(t).ID

	_, err := f.service.Approve(ctx, f.submitter(), id)
	require.Error(t, err)
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))

	stored, err := f.repo.GetByID(ctx, uuid.MustParse(id))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
	assert.Equal(t, model.StatusPending, stored.HeadStatus)
}

func TestDecide_UnknownProposal(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.service.Approve(context.Background(), f.approver(model.RoleHead), uuid.New().String())
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestApprove_RepeatBySameRoleIsIdempotent(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	id := f.submit(t).ID

	_, err := f.service.Approve(ctx, f.approver(model.RoleHead), id)
	require.NoError(t, err)

	detail, err := f.service.Approve(ctx, f.approver(model.RoleHead), id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, detail.HeadStatus)
	assert.Equal(t, model.StatusPending, detail.Status)
}

func TestDecide_OutOfOrderIsAllowed(t *testing.T) {
	// Decisions are not sequenced: VPAA may decide before HEAD/OSA.
	f := newEngineFixture(t)
	id := f.submit(t).ID

	detail, err := f.service.Approve(context.Background(), f.approver(model.RoleVpaa), id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, detail.VpaaStatus)
	assert.Equal(t, model.StatusPending, detail.HeadStatus)
	assert.Equal(t, model.StatusPending, detail.Status)
}

// --- Role-scoped queries ---

func seedProposal(t *testing.T, f *engineFixture, orgID uuid.UUID, mutate func(*model.ActivityProposal)) uuid.UUID {
	t.Helper()
	p := model.ActivityProposal{
		Title:          "Seeded",
		Purpose:        "p",
		Participants:   "x",
		Attendees:      10,
		Requirements:   "r",
		Date:           time.Now(),
		StartTime:      "09:00",
		EndTime:        "10:00",
		HeadStatus:     model.StatusPending,
		OsaStatus:      model.StatusPending,
		VpaStatus:      model.StatusPending,
		VpaaStatus:     model.StatusPending,
		Status:         model.StatusPending,
		UserID:         uuid.New(),
		OrganizationID: orgID,
		VenueID:        f.venueID,
	}
	mutate(&p)
	require.NoError(t, f.repo.Create(context.Background(), &p))
	return p.ID
}

func TestListPending_SubmitterSeesOwnOrgOnly(t *testing.T) {
	f := newEngineFixture(t)
	otherOrg := uuid.New()

	mine := seedProposal(t, f, f.orgID, func(p *model.ActivityProposal) {})
	seedProposal(t, f, otherOrg, func(p *model.ActivityProposal) {})

	summaries, total, err := f.service.ListPending(context.Background(), f.submitter(), pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, summaries, 1)
	assert.Equal(t, mine.String(), summaries[0].ID)
}

func TestListPending_OsaSeesAllOrganizations(t *testing.T) {
	f := newEngineFixture(t)

	seedProposal(t, f, f.orgID, func(p *model.ActivityProposal) {})
	seedProposal(t, f, uuid.New(), func(p *model.ActivityProposal) {})

	_, total, err := f.service.ListPending(context.Background(), f.approver(model.RoleOsa), pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestListPending_VpaRequiresEarlierStages(t *testing.T) {
	f := newEngineFixture(t)

	// Cleared head+osa: visible to VPA
	cleared := seedProposal(t, f, f.orgID, func(p *model.ActivityProposal) {
		p.HeadStatus = model.StatusApproved
		p.OsaStatus = model.StatusApproved
	})
	// Aggregate PENDING but head still pending: hidden from VPA
	seedProposal(t, f, f.orgID, func(p *model.ActivityProposal) {
		p.OsaStatus = model.StatusApproved
	})

	summaries, total, err := f.service.ListPending(context.Background(), f.approver(model.RoleVpa), pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, summaries, 1)
	assert.Equal(t, cleared.String(), summaries[0].ID)
}

func TestListPending_VpaaRequiresThreeStages(t *testing.T) {
	f := newEngineFixture(t)

	visible := seedProposal(t, f, f.orgID, func(p *model.ActivityProposal) {
		p.HeadStatus = model.StatusApproved
		p.OsaStatus = model.StatusApproved
		p.VpaStatus = model.StatusApproved
	})
	seedProposal(t, f, f.orgID, func(p *model.ActivityProposal) {
		p.HeadStatus = model.StatusApproved
		p.OsaStatus = model.StatusApproved
	})

	summaries, total, err := f.service.ListPending(context.Background(), f.approver(model.RoleVpaa), pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, summaries, 1)
	assert.Equal(t, visible.String(), summaries[0].ID)
}

func TestListApproved_GlobalForApproverRoles(t *testing.T) {
	f := newEngineFixture(t)

	approve := func(p *model.ActivityProposal) {
		p.HeadStatus = model.StatusApproved
		p.OsaStatus = model.StatusApproved
		p.VpaStatus = model.StatusApproved
		p.VpaaStatus = model.StatusApproved
		p.Status = model.StatusApproved
	}
	seedProposal(t, f, f.orgID, approve)
	seedProposal(t, f, uuid.New(), approve)

	_, total, err := f.service.ListApproved(context.Background(), f.approver(model.RoleVpa), pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "VPA sees approved proposals from every organization")

	_, total, err = f.service.ListApproved(context.Background(), f.submitter(), pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total, "students only see their own organization")
}

func TestListRejected_OrgScopedForHead(t *testing.T) {
	f := newEngineFixture(t)

	reject := func(p *model.ActivityProposal) {
		p.OsaStatus = model.StatusRejected
		p.Status = model.StatusRejected
	}
	seedProposal(t, f, f.orgID, reject)
	seedProposal(t, f, uuid.New(), reject)

	head := Identity{UserID: uuid.New(), Role: model.RoleHead, OrganizationID: f.orgID}
	_, total, err := f.service.ListRejected(context.Background(), head, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestList_SummariesExposeOnlyProjectionFields(t *testing.T) {
	f := newEngineFixture(t)
	seedProposal(t, f, f.orgID, func(p *model.ActivityProposal) {})

	summaries, _, err := f.service.ListPending(context.Background(), f.submitter(), pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.NotEmpty(t, summaries[0].ID)
	assert.NotEmpty(t, summaries[0].Title)
	assert.NotEmpty(t, summaries[0].UpdatedAt)
}

// --- Detail ---

func TestGetByID_ResolvesAttachmentURLs(t *testing.T) {
	f := newEngineFixture(t)

	req := f.validRequest()
	req.CashForm = "forms/1_cash.pdf"
	req.OtherForm = "forms/2_other.xlsx"

	detail, err := f.service.Submit(context.Background(), f.submitter(), req)
	require.NoError(t, err)

	require.Len(t, detail.Attachments, 2)
	assert.Equal(t, "cash", detail.Attachments[0].Form)
	assert.Equal(t, "https://store.example/get/forms/1_cash.pdf", detail.Attachments[0].URL)
	assert.Equal(t, "other", detail.Attachments[1].Form)
}
