package usecase

import (
	"context"

	"crm-app/src/domain"
)

// OrganizationUsecase defines the interface for organization business logic
type OrganizationUsecase interface {
	AddOrganization(ctx context.Context, name string) (*domain.Organization, error)
	ListOrganizations(ctx context.Context) ([]domain.Organization, error)
	TopOrganizations(ctx context.Context, limit int) ([]domain.OrganizationWithCount, error)
}

type organizationUsecase struct {
	organizationRepo domain.OrganizationRepository
}

// NewOrganizationUsecase creates a new organization usecase
func NewOrganizationUsecase(organizationRepo domain.OrganizationRepository) OrganizationUsecase {
	return &organizationUsecase{
		organizationRepo: organizationRepo,
	}
}

// AddOrganization creates a new organization, rejecting duplicate names
func (u *organizationUsecase) AddOrganization(ctx context.Context, name string) (*domain.Organization, error) {
	existing, err := u.organizationRepo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.DuplicateEntityError{
			Kind:       "Organization",
			Label:      existing.Name,
			ExistingID: existing.ID,
		}
	}

	return u.organizationRepo.Create(ctx, name)
}

// ListOrganizations retrieves all organizations ordered by name
func (u *organizationUsecase) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	return u.organizationRepo.List(ctx)
}

// TopOrganizations retrieves the most-noted organizations
func (u *organizationUsecase) TopOrganizations(ctx context.Context, limit int) ([]domain.OrganizationWithCount, error) {
	if limit <= 0 {
		limit = 10
	}
	return u.organizationRepo.TopByNoteCount(ctx, limit)
}
