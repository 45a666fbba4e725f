// Package models - audit_log.go defines the AuditLog model for one immutable audit entry
// written by the contract-management system, together with its change and entity kinds.
package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ChangeType is the kind of change an audit entry records
type ChangeType int

const (
	ChangeTypeAdded    ChangeType = 1
	ChangeTypeDeleted  ChangeType = 2
	ChangeTypeModified ChangeType = 3
)

// String returns the display name of the change type
func (t ChangeType) String() string {
	switch t {
	case ChangeTypeAdded:
		return "Added"
	case ChangeTypeDeleted:
		return "Deleted"
	case ChangeTypeModified:
		return "Modified"
	default:
		return "Unknown"
	}
}

// EntityType tags the domain entity an audit entry refers to
type EntityType int

const (
	EntityTypeUnknown         EntityType = 0
	EntityTypeContractHeader  EntityType = 1
	EntityTypeAnnexHeader     EntityType = 2
	EntityTypeAnnexChange     EntityType = 3
	EntityTypeFile            EntityType = 4
	EntityTypeInvoice         EntityType = 5
	EntityTypePaymentSchedule EntityType = 6
	EntityTypeContractFunding EntityType = 7
)

var entityTypeNames = map[EntityType]string{
	EntityTypeUnknown:         "Unknown",
	EntityTypeContractHeader:  "ContractHeader",
	EntityTypeAnnexHeader:     "AnnexHeader",
	EntityTypeAnnexChange:     "AnnexChange",
	EntityTypeFile:            "File",
	EntityTypeInvoice:         "Invoice",
	EntityTypePaymentSchedule: "PaymentSchedule",
	EntityTypeContractFunding: "ContractFunding",
}

// String returns the display name of the entity type
func (t EntityType) String() string {
	if name, ok := entityTypeNames[t]; ok {
		return name
	}
	return entityTypeNames[EntityTypeUnknown]
}

// AuditLog represents a row of the audit_log table.
// ContractNumber is not a column: it is filled from the joined document_header.
type AuditLog struct {
	ID              int64          `db:"id"`
	OrganizationID  uuid.NullUUID  `db:"organization_id"`
	UserID          uuid.NullUUID  `db:"user_id"`
	UserEmail       sql.NullString `db:"user_email"`
	Type            ChangeType     `db:"type"`
	EntityType      EntityType     `db:"entity_type"`
	CreatedDate     time.Time      `db:"created_date"`
	OldValues       sql.NullString `db:"old_values"`
	NewValues       sql.NullString `db:"new_values"`
	AffectedColumns sql.NullString `db:"affected_columns"`
	PrimaryKey      sql.NullString `db:"primary_key"`
	EntityID        uuid.NullUUID  `db:"entity_id"`
	ParentID        uuid.NullUUID  `db:"parent_id"`
	CorrelationID   uuid.NullUUID  `db:"correlation_id"`
	SubUnitID       uuid.NullUUID  `db:"sub_unit_id"`
	ContractNumber  sql.NullString `db:"contract_number"`
}
