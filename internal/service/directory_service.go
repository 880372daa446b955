package service

import (
	"context"
	"fmt"

	"backend/internal/repository"
)

// OrganizationResponse is the directory row for a student organization.
type OrganizationResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Logo      string `json:"logo,omitempty"`
	AdminName string `json:"admin_name,omitempty"`
}

// VenueResponse is the directory row for a bookable venue.
type VenueResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// DirectoryService serves the read-only organization and venue lookups.
type DirectoryService interface {
	ListOrganizations(ctx context.Context) ([]OrganizationResponse, error)
	ListVenues(ctx context.Context) ([]VenueResponse, error)
}

type directoryService struct {
	orgs   repository.OrganizationRepository
	venues repository.VenueRepository
}

// NewDirectoryService returns a new instance of DirectoryService
func NewDirectoryService(orgs repository.OrganizationRepository, venues repository.VenueRepository) DirectoryService {
	return &directoryService{orgs: orgs, venues: venues}
}

func (s *directoryService) ListOrganizations(ctx context.Context) ([]OrganizationResponse, error) {
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch organizations: %w", err)
	}

	result := make([]OrganizationResponse, 0, len(orgs))
	for _, o := range orgs {
		result = append(result, OrganizationResponse{
			ID:        o.ID.String(),
			Name:      o.Name,
			Logo:      o.Logo,
			AdminName: o.AdminName,
		})
	}
	return result, nil
}

func (s *directoryService) ListVenues(ctx context.Context) ([]VenueResponse, error) {
	venues, err := s.venues.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch venues: %w", err)
	}

	result := make([]VenueResponse, 0, len(venues))
	for _, v := range venues {
		result = append(result, VenueResponse{
			ID:       v.ID.String(),
			Name:     v.Name,
			Capacity: v.Capacity,
		})
	}
	return result, nil
}
