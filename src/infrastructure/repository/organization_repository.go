package repository

import (
	"context"
	"database/sql"
	"fmt"

	"crm-app/src/database"
	"crm-app/src/domain"

	"github.com/sirupsen/logrus"
)

// OrganizationRepository represents the organization repository
type OrganizationRepository struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *database.DB, logger *logrus.Logger) *OrganizationRepository {
	return &OrganizationRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new organization
func (r *OrganizationRepository) Create(ctx context.Context, name string) (*domain.Organization, error) {
	organization := &domain.Organization{
		Name: name,
	}

	query := `
		INSERT INTO organizations (name)
		VALUES (?)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, name).Scan(&organization.ID)
	if err != nil {
		r.logger.WithError(err).Error("組織の作成に失敗")
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	r.logger.WithField("organization_id", organization.ID).Info("組織を作成しました")
	return organization, nil
}

// FindByName retrieves an organization by exact name, nil when absent
func (r *OrganizationRepository) FindByName(ctx context.Context, name string) (*domain.Organization, error) {
	query := `SELECT id, name FROM organizations WHERE name = ?`

	organization := &domain.Organization{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(&organization.ID, &organization.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithError(err).Error("組織の検索に失敗")
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	return organization, nil
}

// List retrieves all organizations ordered by name
func (r *OrganizationRepository) List(ctx context.Context) ([]domain.Organization, error) {
	query := `SELECT id, name FROM organizations ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.WithError(err).Error("組織一覧の取得に失敗")
		return nil, fmt.Errorf("failed to get organizations: %w", err)
	}
	defer rows.Close()

	organizations := []domain.Organization{}
	for rows.Next() {
		var o domain.Organization
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		organizations = append(organizations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return organizations, nil
}

// TopByNoteCount retrieves the top N organizations by associated note count
func (r *OrganizationRepository) TopByNoteCount(ctx context.Context, limit int) ([]domain.OrganizationWithCount, error) {
	query := `
		SELECT o.id, o.name, COUNT(a.note_id) AS note_count
		FROM organizations o
		LEFT JOIN note_organization_association a ON a.organization_id = o.id
		GROUP BY o.id, o.name
		ORDER BY note_count DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.WithError(err).Error("上位組織の取得に失敗")
		return nil, fmt.Errorf("failed to get top organizations: %w", err)
	}
	defer rows.Close()

	results := []domain.OrganizationWithCount{}
	for rows.Next() {
		var o domain.OrganizationWithCount
		if err := rows.Scan(&o.ID, &o.Name, &o.NoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		results = append(results, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return results, nil
}
