package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/publink/publink-logs/internal/db/models"
)

// Fixed ids so repeated runs replace the same rows
var (
	acmeOrgID   = uuid.MustParse("0b9e3f6e-6a1d-4c5e-9a57-1f0d1c7a1001")
	globexOrgID = uuid.MustParse("0b9e3f6e-6a1d-4c5e-9a57-1f0d1c7a1002")
	seedUserID  = uuid.MustParse("0b9e3f6e-6a1d-4c5e-9a57-1f0d1c7a2001")
)

type documentRow struct {
	ID             uuid.UUID      `db:"id"`
	Number         string         `db:"number"`
	OrganizationID uuid.UUID      `db:"organization_id"`
	ContractorName sql.NullString `db:"contractor_name"`
	CreatedDate    time.Time      `db:"created_date"`
}

type auditRow struct {
	OrganizationID uuid.UUID      `db:"organization_id"`
	UserID         uuid.UUID      `db:"user_id"`
	UserEmail      string         `db:"user_email"`
	Type           int            `db:"type"`
	EntityType     int            `db:"entity_type"`
	CreatedDate    time.Time      `db:"created_date"`
	EntityID       uuid.NullUUID  `db:"entity_id"`
	ParentID       uuid.NullUUID  `db:"parent_id"`
	CorrelationID  uuid.NullUUID  `db:"correlation_id"`
	AffectedCols   sql.NullString `db:"affected_columns"`
}

type dataset struct {
	Documents []documentRow
	AuditLogs []auditRow
}

// deterministicID derives a stable UUID for the n-th object of a kind within an organisation
func deterministicID(org uuid.UUID, kind string, n int) uuid.UUID {
	return uuid.NewSHA1(org, []byte(fmt.Sprintf("%s-%d", kind, n)))
}

// buildDataset returns, per organisation, three contracts each created in one
// correlated batch (header, two annexes, a file) followed by standalone edits.
// Globex's contracts carry no contractor name so its directory entry is unnamed.
func buildDataset(base time.Time) dataset {
	var ds dataset

	orgs := []struct {
		id         uuid.UUID
		contractor string
		email      string
	}{
		{acmeOrgID, "Acme Construction Ltd", "anna@acme.example"},
		{globexOrgID, "", "greg@globex.example"},
	}

	for o, org := range orgs {
		for c := 0; c < 3; c++ {
			docID := deterministicID(org.id, "contract", c)
			created := base.Add(time.Duration(o*24+c) * time.Hour)

			ds.Documents = append(ds.Documents, documentRow{
				ID:             docID,
				Number:         fmt.Sprintf("C/%d/%03d", base.Year(), o*10+c+1),
				OrganizationID: org.id,
				ContractorName: sql.NullString{String: org.contractor, Valid: org.contractor != ""},
				CreatedDate:    created,
			})

			batch := uuid.NullUUID{UUID: deterministicID(org.id, "batch", c), Valid: true}
			doc := uuid.NullUUID{UUID: docID, Valid: true}

			ds.AuditLogs = append(ds.AuditLogs, auditRow{
				OrganizationID: org.id, UserID: seedUserID, UserEmail: org.email,
				Type: int(models.ChangeTypeAdded), EntityType: int(models.EntityTypeContractHeader),
				CreatedDate: created, EntityID: doc, CorrelationID: batch,
			})
			for a := 0; a < 2; a++ {
				ds.AuditLogs = append(ds.AuditLogs, auditRow{
					OrganizationID: org.id, UserID: seedUserID, UserEmail: org.email,
					Type: int(models.ChangeTypeAdded), EntityType: int(models.EntityTypeAnnexHeader),
					CreatedDate: created.Add(time.Duration(a+1) * 20 * time.Second),
					EntityID:    uuid.NullUUID{UUID: deterministicID(org.id, fmt.Sprintf("annex-%d", c), a), Valid: true},
					ParentID:    doc, CorrelationID: batch,
				})
			}
			ds.AuditLogs = append(ds.AuditLogs, auditRow{
				OrganizationID: org.id, UserID: seedUserID, UserEmail: org.email,
				Type: int(models.ChangeTypeAdded), EntityType: int(models.EntityTypeFile),
				CreatedDate: created.Add(75 * time.Second),
				EntityID:    uuid.NullUUID{UUID: deterministicID(org.id, fmt.Sprintf("file-%d", c), 0), Valid: true},
				ParentID:    doc, CorrelationID: batch,
			})

			ds.AuditLogs = append(ds.AuditLogs, auditRow{
				OrganizationID: org.id, UserID: seedUserID, UserEmail: org.email,
				Type: int(models.ChangeTypeModified), EntityType: int(models.EntityTypeContractHeader),
				CreatedDate:  created.Add(2 * time.Hour),
				EntityID:     doc,
				AffectedCols: sql.NullString{String: "subject", Valid: true},
			})
		}
	}

	return ds
}
