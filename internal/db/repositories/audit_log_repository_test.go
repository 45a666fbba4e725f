package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/publink/publink-logs/internal/db/models"
)

// ---------------------------------------------------------------------------
// Column definitions
// ---------------------------------------------------------------------------

var auditLogCols = []string{
	"id", "organization_id", "user_id", "user_email", "type", "entity_type", "created_date",
	"old_values", "new_values", "affected_columns", "primary_key",
	"entity_id", "parent_id", "correlation_id", "sub_unit_id", "contract_number",
}

var aggregateCols = []string{"correlation_id", "row_count", "started_at", "ended_at"}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var errDB = errors.New("db error")

var (
	sampleOrgID         = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	sampleCorrelationID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func newAuditLogRepo(t *testing.T) (*AuditLogRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewAuditLogRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func sampleAuditLogRows(created time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(auditLogCols).
		AddRow(int64(7), sampleOrgID.String(), nil, "ann@example.com", int64(3), int64(1), created,
			`{"subject":"old"}`, `{"subject":"new"}`, "subject", "pk-1",
			nil, nil, sampleCorrelationID.String(), nil, "C-2025/001").
		AddRow(int64(8), sampleOrgID.String(), nil, nil, int64(1), int64(4), created,
			nil, nil, nil, nil,
			nil, nil, nil, nil, nil)
}

func orgFilter() AuditLogFilter {
	return AuditLogFilter{OrganizationID: uuid.NullUUID{UUID: sampleOrgID, Valid: true}}
}

// ---------------------------------------------------------------------------
// ListAuditLogs
// ---------------------------------------------------------------------------

func TestListAuditLogs_ScansJoinedRows(t *testing.T) {
	repo, mock := newAuditLogRepo(t)
	created := time.Date(2025, 5, 4, 12, 30, 0, 123456000, time.UTC)

	mock.ExpectQuery("SELECT.*FROM audit_log a.*LEFT JOIN document_header d.*WHERE 1=1 AND a.organization_id = .*ORDER BY a.created_date DESC, a.id ASC LIMIT").
		WithArgs(sampleOrgID, 20, 40).
		WillReturnRows(sampleAuditLogRows(created))

	logs, err := repo.ListAuditLogs(context.Background(), AuditLogQuery{
		Filter:     orgFilter(),
		SortColumn: AuditLogSortCreatedDate,
		Descending: true,
		Limit:      20,
		Offset:     40,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("len(logs) = %d, want 2", len(logs))
	}

	first := logs[0]
	if first.ID != 7 {
		t.Errorf("ID = %d, want 7", first.ID)
	}
	if first.Type != models.ChangeTypeModified {
		t.Errorf("Type = %v, want Modified", first.Type)
	}
	if first.EntityType != models.EntityTypeContractHeader {
		t.Errorf("EntityType = %v, want ContractHeader", first.EntityType)
	}
	if !first.CorrelationID.Valid || first.CorrelationID.UUID != sampleCorrelationID {
		t.Errorf("CorrelationID = %v, want %v", first.CorrelationID, sampleCorrelationID)
	}
	if first.ContractNumber.String != "C-2025/001" {
		t.Errorf("ContractNumber = %q, want C-2025/001", first.ContractNumber.String)
	}
	if !first.CreatedDate.Equal(created) {
		t.Errorf("CreatedDate = %v, want %v", first.CreatedDate, created)
	}

	second := logs[1]
	if second.CorrelationID.Valid {
		t.Error("expected second row to have no correlation id")
	}
	if second.ContractNumber.Valid {
		t.Error("expected second row to have no contract number")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListAuditLogs_AscendingWithoutFilter(t *testing.T) {
	repo, mock := newAuditLogRepo(t)
	mock.ExpectQuery("WHERE 1=1 ORDER BY a.created_date ASC, a.id ASC LIMIT").
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(auditLogCols))

	logs, err := repo.ListAuditLogs(context.Background(), AuditLogQuery{
		SortColumn: AuditLogSortCreatedDate,
		Limit:      10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("len(logs) = %d, want 0", len(logs))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListAuditLogs_UnsupportedSortColumn(t *testing.T) {
	repo, mock := newAuditLogRepo(t)

	_, err := repo.ListAuditLogs(context.Background(), AuditLogQuery{
		SortColumn: AuditLogSortColumn("user_email; DROP TABLE audit_log"),
		Limit:      10,
	})
	if err == nil {
		t.Fatal("expected error for unsupported sort column, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no query should have been issued: %v", err)
	}
}

func TestListAuditLogs_QueryError(t *testing.T) {
	repo, mock := newAuditLogRepo(t)
	mock.ExpectQuery("SELECT.*FROM audit_log a").WillReturnError(errDB)

	_, err := repo.ListAuditLogs(context.Background(), AuditLogQuery{
		SortColumn: AuditLogSortCreatedDate,
		Limit:      10,
	})
	if !errors.Is(err, errDB) {
		t.Errorf("err = %v, want %v", err, errDB)
	}
}

// ---------------------------------------------------------------------------
// CountAuditLogs
// ---------------------------------------------------------------------------

func TestCountAuditLogs_WithOrganization(t *testing.T) {
	repo, mock := newAuditLogRepo(t)
	mock.ExpectQuery("SELECT COUNT.*FROM audit_log a WHERE 1=1 AND a.organization_id").
		WithArgs(sampleOrgID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	total, err := repo.CountAuditLogs(context.Background(), orgFilter())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
}

func TestCountAuditLogs_NoFilter(t *testing.T) {
	repo, mock := newAuditLogRepo(t)
	mock.ExpectQuery("SELECT COUNT.*FROM audit_log a WHERE 1=1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	total, err := repo.CountAuditLogs(context.Background(), AuditLogFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 12 {
		t.Errorf("total = %d, want 12", total)
	}
}

func TestCountAuditLogs_Error(t *testing.T) {
	repo, mock := newAuditLogRepo(t)
	mock.ExpectQuery("SELECT COUNT").WillReturnError(errDB)

	if _, err := repo.CountAuditLogs(context.Background(), orgFilter()); err == nil {
		t.Error("expected error, got nil")
	}
}

// ---------------------------------------------------------------------------
// GetAggregatesByCorrelationIDs
// ---------------------------------------------------------------------------

func TestGetAggregates_EmptyInputSkipsQuery(t *testing.T) {
	repo, mock := newAuditLogRepo(t)

	got, err := repo.GetAggregatesByCorrelationIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len(got) = %d, want 0", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no query should have been issued: %v", err)
	}
}

func TestGetAggregates_SingleGroupedQuery(t *testing.T) {
	repo, mock := newAuditLogRepo(t)
	other := uuid.MustParse("33333333-3333-3333-3333-333333333333")
	start := time.Date(2025, 5, 4, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT correlation_id.*COUNT.*MIN\\(created_date\\).*MAX\\(created_date\\).*FROM audit_log.*ANY.*GROUP BY correlation_id").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(aggregateCols).
			AddRow(sampleCorrelationID.String(), int64(2), start, start.Add(90*time.Second)).
			AddRow(other.String(), int64(5), start, start.Add(time.Hour)))

	got, err := repo.GetAggregatesByCorrelationIDs(context.Background(), []uuid.UUID{sampleCorrelationID, other})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	agg := got[sampleCorrelationID]
	if agg.Count != 2 {
		t.Errorf("Count = %d, want 2", agg.Count)
	}
	if agg.Duration() != 90*time.Second {
		t.Errorf("Duration = %v, want 90s", agg.Duration())
	}
	if got[other].Count != 5 {
		t.Errorf("other Count = %d, want 5", got[other].Count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetAggregates_Error(t *testing.T) {
	repo, mock := newAuditLogRepo(t)
	mock.ExpectQuery("SELECT correlation_id").WillReturnError(errDB)

	if _, err := repo.GetAggregatesByCorrelationIDs(context.Background(), []uuid.UUID{sampleCorrelationID}); err == nil {
		t.Error("expected error, got nil")
	}
}
