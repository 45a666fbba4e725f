package auditlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/publink/publink-logs/internal/db/models"
)

// Row is an audit record merged with its correlation group's aggregate
type Row struct {
	ID                  int64
	ChangedBy           string
	ContractNumber      string
	Type                models.ChangeType
	EntityType          models.EntityType
	CreatedDate         time.Time
	ProcessTookTime     time.Duration
	EntitiesAffectCount int
}

type rowJSON struct {
	ID                  int64     `json:"id"`
	ChangedBy           string    `json:"changedBy"`
	ContractNumber      string    `json:"contractNumber"`
	Type                int       `json:"type"`
	EntityType          int       `json:"entityType"`
	CreatedDate         time.Time `json:"createdDate"`
	ProcessTookTimeMs   int64     `json:"processTookTimeMs"`
	ProcessTookTime     string    `json:"processTookTime"`
	EntitiesAffectCount int       `json:"entitiesAffectCount"`
}

// MarshalJSON emits the duration both as milliseconds and as a FormatDuration string
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(rowJSON{
		ID:                  r.ID,
		ChangedBy:           r.ChangedBy,
		ContractNumber:      r.ContractNumber,
		Type:                int(r.Type),
		EntityType:          int(r.EntityType),
		CreatedDate:         r.CreatedDate,
		ProcessTookTimeMs:   r.ProcessTookTime.Milliseconds(),
		ProcessTookTime:     FormatDuration(r.ProcessTookTime),
		EntitiesAffectCount: r.EntitiesAffectCount,
	})
}

// FormatDuration renders d as "mm:ss", or as "h:mm:ss" once it reaches 100 minutes
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	if total < 100*60 {
		return fmt.Sprintf("%02d:%02d", total/60, total%60)
	}
	return fmt.Sprintf("%d:%02d:%02d", total/3600, total/60%60, total%60)
}

// newRow projects log onto a Row. Records without a correlation id, or whose id
// has no aggregate, count as a single change with zero duration.
func newRow(log *models.AuditLog, aggregates map[uuid.UUID]models.ChangeAggregate) Row {
	row := Row{
		ID:                  log.ID,
		ChangedBy:           log.UserEmail.String,
		ContractNumber:      log.ContractNumber.String,
		Type:                log.Type,
		EntityType:          log.EntityType,
		CreatedDate:         log.CreatedDate,
		EntitiesAffectCount: 1,
	}
	if log.CorrelationID.Valid {
		if agg, ok := aggregates[log.CorrelationID.UUID]; ok {
			row.EntitiesAffectCount = agg.Count
			row.ProcessTookTime = agg.Duration()
		}
	}
	return row
}

// RawRow is the full record projection returned by the unscoped listing
type RawRow struct {
	ID              int64      `json:"id"`
	OrganizationID  *uuid.UUID `json:"organizationId"`
	UserID          *uuid.UUID `json:"userId"`
	UserEmail       *string    `json:"userEmail"`
	Type            int        `json:"type"`
	EntityType      int        `json:"entityType"`
	CreatedDate     time.Time  `json:"createdDate"`
	OldValues       *string    `json:"oldValues"`
	NewValues       *string    `json:"newValues"`
	AffectedColumns *string    `json:"affectedColumns"`
	PrimaryKey      *string    `json:"primaryKey"`
	EntityID        *uuid.UUID `json:"entityId"`
	ParentID        *uuid.UUID `json:"parentId"`
	CorrelationID   *uuid.UUID `json:"correlationId"`
	SubUnitID       *uuid.UUID `json:"subUnitId"`
	ContractNumber  *string    `json:"contractNumber"`
}

func newRawRow(log *models.AuditLog) RawRow {
	return RawRow{
		ID:              log.ID,
		OrganizationID:  uuidPtr(log.OrganizationID),
		UserID:          uuidPtr(log.UserID),
		UserEmail:       stringPtr(log.UserEmail),
		Type:            int(log.Type),
		EntityType:      int(log.EntityType),
		CreatedDate:     log.CreatedDate,
		OldValues:       stringPtr(log.OldValues),
		NewValues:       stringPtr(log.NewValues),
		AffectedColumns: stringPtr(log.AffectedColumns),
		PrimaryKey:      stringPtr(log.PrimaryKey),
		EntityID:        uuidPtr(log.EntityID),
		ParentID:        uuidPtr(log.ParentID),
		CorrelationID:   uuidPtr(log.CorrelationID),
		SubUnitID:       uuidPtr(log.SubUnitID),
		ContractNumber:  stringPtr(log.ContractNumber),
	}
}

func uuidPtr(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	v := id.UUID
	return &v
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
