// organization_repository.go implements OrganizationRepository, deriving the organisation
// directory from document headers since no dedicated organisation table is available.
package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/publink/publink-logs/internal/db/models"
)

// OrganizationRepository handles organisation directory queries
type OrganizationRepository struct {
	db *sqlx.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *sqlx.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// ListOrganizations returns every organisation id found on document headers with a best-effort
// display name: the first non-blank contractor name on that organisation's documents, or an
// empty string when none exists. Results are ordered by name, then id.
func (r *OrganizationRepository) ListOrganizations(ctx context.Context) ([]models.OrganizationItem, error) {
	query := `
		SELECT organization_id AS id,
		       COALESCE(
		           (array_agg(contractor_name ORDER BY created_date, id)
		               FILTER (WHERE contractor_name IS NOT NULL AND TRIM(contractor_name) <> ''))[1],
		           ''
		       ) AS name
		FROM document_header
		WHERE organization_id <> '00000000-0000-0000-0000-000000000000'
		GROUP BY organization_id
		ORDER BY name, id
	`

	orgs := make([]models.OrganizationItem, 0)
	if err := r.db.SelectContext(ctx, &orgs, query); err != nil {
		return nil, err
	}
	return orgs, nil
}
