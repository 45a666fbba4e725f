// audit_log_repository.go implements AuditLogRepository, providing read-only queries over the
// audit_log table: filtered and ordered page retrieval joined with the document header number,
// filtered counts, and per-correlation-id aggregates computed in a single grouped query.
package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/publink/publink-logs/internal/db/models"
)

// AuditLogSortColumn names a column audit logs may be ordered by
type AuditLogSortColumn string

const (
	// AuditLogSortCreatedDate orders by audit_log.created_date
	AuditLogSortCreatedDate AuditLogSortColumn = "created_date"
)

// sortColumnSQL maps each sortable column to the expression used in ORDER BY.
// Only values from this map are ever interpolated into SQL.
var sortColumnSQL = map[AuditLogSortColumn]string{
	AuditLogSortCreatedDate: "a.created_date",
}

// AuditLogFilter contains the named filters applied to audit log queries.
// A zero value matches every row.
type AuditLogFilter struct {
	OrganizationID uuid.NullUUID
}

// AuditLogQuery describes one ordered, windowed read of audit logs
type AuditLogQuery struct {
	Filter     AuditLogFilter
	SortColumn AuditLogSortColumn
	Descending bool
	Limit      int
	Offset     int
}

// AuditLogRepository handles audit log database operations
type AuditLogRepository struct {
	db *sqlx.DB
}

// NewAuditLogRepository creates a new AuditLogRepository
func NewAuditLogRepository(db *sqlx.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

const auditLogColumns = `
	a.id, a.organization_id, a.user_id, a.user_email, a.type, a.entity_type, a.created_date,
	a.old_values, a.new_values, a.affected_columns, a.primary_key,
	a.entity_id, a.parent_id, a.correlation_id, a.sub_unit_id,
	d.number AS contract_number`

// whereClause renders the filter as a SQL fragment starting at parameter $startIndex
func (f AuditLogFilter) whereClause(startIndex int) (string, []interface{}) {
	clause := ` WHERE 1=1`
	args := make([]interface{}, 0, 1)
	paramIndex := startIndex

	if f.OrganizationID.Valid {
		clause += fmt.Sprintf(` AND a.organization_id = $%d`, paramIndex)
		args = append(args, f.OrganizationID.UUID)
		paramIndex++
	}

	return clause, args
}

// ListAuditLogs retrieves one window of audit logs ordered by the requested column.
// Rows with equal sort keys are ordered by id ascending so consecutive pages never
// overlap or skip entries.
func (r *AuditLogRepository) ListAuditLogs(ctx context.Context, q AuditLogQuery) ([]*models.AuditLog, error) {
	column, ok := sortColumnSQL[q.SortColumn]
	if !ok {
		return nil, fmt.Errorf("unsupported sort column: %q", q.SortColumn)
	}
	direction := "ASC"
	if q.Descending {
		direction = "DESC"
	}

	where, args := q.Filter.whereClause(1)
	paramIndex := len(args) + 1

	query := `SELECT` + auditLogColumns + `
		FROM audit_log a
		LEFT JOIN document_header d ON d.id = COALESCE(a.parent_id, a.entity_id)` +
		where +
		fmt.Sprintf(` ORDER BY %s %s, a.id ASC LIMIT $%d OFFSET $%d`, column, direction, paramIndex, paramIndex+1)
	args = append(args, q.Limit, q.Offset)

	logs := make([]*models.AuditLog, 0, q.Limit)
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, err
	}
	return logs, nil
}

// CountAuditLogs returns the number of audit logs matching the filter
func (r *AuditLogRepository) CountAuditLogs(ctx context.Context, filter AuditLogFilter) (int, error) {
	where, args := filter.whereClause(1)
	query := `SELECT COUNT(*) FROM audit_log a` + where

	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, err
	}
	return total, nil
}

// GetAggregatesByCorrelationIDs returns, for each requested correlation id that has at least
// one audit row, the group's row count and earliest/latest creation dates. Aggregation covers
// the whole table for those ids, not only rows on the caller's page.
func (r *AuditLogRepository) GetAggregatesByCorrelationIDs(ctx context.Context, correlationIDs []uuid.UUID) (map[uuid.UUID]models.ChangeAggregate, error) {
	result := make(map[uuid.UUID]models.ChangeAggregate, len(correlationIDs))
	if len(correlationIDs) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(correlationIDs))
	for _, id := range correlationIDs {
		ids = append(ids, id.String())
	}

	query := `
		SELECT correlation_id,
		       COUNT(*)          AS row_count,
		       MIN(created_date) AS started_at,
		       MAX(created_date) AS ended_at
		FROM audit_log
		WHERE correlation_id = ANY($1::uuid[])
		GROUP BY correlation_id
	`

	var aggregates []models.ChangeAggregate
	if err := r.db.SelectContext(ctx, &aggregates, query, pq.Array(ids)); err != nil {
		return nil, err
	}

	for _, agg := range aggregates {
		result[agg.CorrelationID] = agg
	}
	return result, nil
}
