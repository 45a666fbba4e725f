// Package auditlog implements the audit log query engine: sort parsing, page
// resolution, correlation aggregate lookup and the merge into display rows.
package auditlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/publink/publink-logs/internal/db/models"
	"github.com/publink/publink-logs/internal/db/repositories"
	"github.com/publink/publink-logs/internal/telemetry"
)

// ErrInvalidOrganization is returned when a scoped query carries no organisation id
var ErrInvalidOrganization = errors.New("organization id is required")

// RecordStore is the read surface the engine needs from the audit log table
type RecordStore interface {
	AggregateStore
	ListAuditLogs(ctx context.Context, q repositories.AuditLogQuery) ([]*models.AuditLog, error)
	CountAuditLogs(ctx context.Context, filter repositories.AuditLogFilter) (int, error)
}

// Page is one window of enriched rows plus the total number of matching records
type Page struct {
	Rows       []Row
	TotalCount int
}

// RawPage is one window of the unscoped listing
type RawPage struct {
	Rows       []RawRow
	TotalCount int
}

// Engine answers audit log page requests. It holds no per-call state and is safe
// for concurrent use.
type Engine struct {
	store      RecordStore
	aggregates *AggregateResolver
}

// NewEngine creates an Engine reading from store
func NewEngine(store RecordStore) *Engine {
	return &Engine{
		store:      store,
		aggregates: NewAggregateResolver(store),
	}
}

// GetPage returns one sorted window of an organisation's audit records, each
// annotated with the size and duration of its correlation group. The total
// count is fetched concurrently with the page and ignores the window.
func (e *Engine) GetPage(ctx context.Context, organizationID uuid.UUID, req PageRequest, sortRaw string) (*Page, error) {
	if organizationID == uuid.Nil {
		return nil, ErrInvalidOrganization
	}

	start := time.Now()
	sort := ParseSort(sortRaw)
	window := ResolvePage(req.PageNumber, req.PageSize)
	filter := repositories.AuditLogFilter{
		OrganizationID: uuid.NullUUID{UUID: organizationID, Valid: true},
	}

	var (
		logs       []*models.AuditLog
		aggregates map[uuid.UUID]models.ChangeAggregate
		total      int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		logs, err = e.store.ListAuditLogs(gctx, newQuery(filter, sort, window))
		if err != nil {
			return fmt.Errorf("list audit logs: %w", err)
		}
		aggregates, err = e.aggregates.Resolve(gctx, correlationIDs(logs))
		if err != nil {
			return fmt.Errorf("resolve change aggregates: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = e.store.CountAuditLogs(gctx, filter)
		if err != nil {
			return fmt.Errorf("count audit logs: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "audit log page query failed",
			"organization_id", organizationID,
			"sort", sort.String(),
			"skip", window.Skip,
			"take", window.Take,
			"error", err)
		observeQuery("organization", start, err)
		return nil, err
	}

	rows := make([]Row, 0, len(logs))
	for _, log := range logs {
		rows = append(rows, newRow(log, aggregates))
	}

	observeQuery("organization", start, nil)
	return &Page{Rows: rows, TotalCount: total}, nil
}

// ListAll returns one sorted window over every organisation's records without
// aggregates. It backs the legacy unscoped listing.
func (e *Engine) ListAll(ctx context.Context, req PageRequest, sortRaw string) (*RawPage, error) {
	start := time.Now()
	sort := ParseSort(sortRaw)
	window := ResolvePage(req.PageNumber, req.PageSize)
	filter := repositories.AuditLogFilter{}

	var (
		logs  []*models.AuditLog
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if logs, err = e.store.ListAuditLogs(gctx, newQuery(filter, sort, window)); err != nil {
			return fmt.Errorf("list audit logs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if total, err = e.store.CountAuditLogs(gctx, filter); err != nil {
			return fmt.Errorf("count audit logs: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "unscoped audit log query failed",
			"sort", sort.String(),
			"skip", window.Skip,
			"take", window.Take,
			"error", err)
		observeQuery("all", start, err)
		return nil, err
	}

	rows := make([]RawRow, 0, len(logs))
	for _, log := range logs {
		rows = append(rows, newRawRow(log))
	}

	observeQuery("all", start, nil)
	return &RawPage{Rows: rows, TotalCount: total}, nil
}

func newQuery(filter repositories.AuditLogFilter, sort SortSpec, window Window) repositories.AuditLogQuery {
	return repositories.AuditLogQuery{
		Filter:     filter,
		SortColumn: sort.column(),
		Descending: sort.Direction == Descending,
		Limit:      window.Take,
		Offset:     window.Skip,
	}
}

// correlationIDs collects the correlation ids present on a page
func correlationIDs(logs []*models.AuditLog) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(logs))
	for _, log := range logs {
		if log.CorrelationID.Valid {
			ids = append(ids, log.CorrelationID.UUID)
		}
	}
	return ids
}

func observeQuery(scope string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	telemetry.AuditLogQueriesTotal.WithLabelValues(scope, status).Inc()
	telemetry.AuditLogQueryDuration.WithLabelValues(scope).Observe(time.Since(start).Seconds())
}
