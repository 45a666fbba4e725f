// Package models - organization.go defines the document header subset used for joins and the
// organisation directory derived from it. There is no organisation table; the contractor name on
// an organisation's documents is the best available display label.
package models

import (
	"database/sql"

	"github.com/google/uuid"
)

// DocumentHeader represents the columns of document_header this service reads
type DocumentHeader struct {
	ID             uuid.UUID      `db:"id"`
	Number         sql.NullString `db:"number"`
	OrganizationID uuid.UUID      `db:"organization_id"`
	ContractorName sql.NullString `db:"contractor_name"`
}

// OrganizationItem is one entry of the organisation directory
type OrganizationItem struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
}
