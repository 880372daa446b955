package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrganizationRepository is the read-only directory of student organizations.
type OrganizationRepository interface {
	List(ctx context.Context) ([]model.Organization, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Organization, error)
}

// VenueRepository is the read-only directory of bookable venues.
type VenueRepository interface {
	List(ctx context.Context) ([]model.Venue, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Venue, error)
}

type organizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) List(ctx context.Context) ([]model.Organization, error) {
	var orgs []model.Organization
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *organizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

type venueRepository struct {
	db *gorm.DB
}

func NewVenueRepository(db *gorm.DB) VenueRepository {
	return &venueRepository{db: db}
}

func (r *venueRepository) List(ctx context.Context) ([]model.Venue, error) {
	var venues []model.Venue
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&venues).Error; err != nil {
		return nil, err
	}
	return venues, nil
}

func (r *venueRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Venue, error) {
	var venue model.Venue
	if err := r.db.WithContext(ctx).First(&venue, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &venue, nil
}
