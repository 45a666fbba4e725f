// Package logs implements the audit log listing endpoints.
package logs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/publink/publink-logs/internal/auditlog"
	"github.com/publink/publink-logs/internal/config"
)

// Querier is the part of auditlog.Engine the handlers call
type Querier interface {
	GetPage(ctx context.Context, organizationID uuid.UUID, req auditlog.PageRequest, sortRaw string) (*auditlog.Page, error)
	ListAll(ctx context.Context, req auditlog.PageRequest, sortRaw string) (*auditlog.RawPage, error)
}

// Handler serves /api/v1/logs
type Handler struct {
	engine Querier
	cfg    config.APIConfig
}

// NewHandler creates a new logs handler
func NewHandler(engine Querier, cfg config.APIConfig) *Handler {
	return &Handler{engine: engine, cfg: cfg}
}

// LogsResponse is the body of GET /api/v1/logs
type LogsResponse struct {
	Items      []auditlog.Row `json:"items"`
	TotalCount int            `json:"totalCount"`
	Error      string         `json:"error,omitempty"`
}

// RawLogsResponse is the body of GET /api/v1/logs/all
type RawLogsResponse struct {
	Items      []auditlog.RawRow `json:"items"`
	TotalCount int               `json:"totalCount"`
}

// @Summary      List organisation audit logs
// @Description  Returns one page of an organisation's audit records, each with the size and duration of its change group.
// @Tags         Logs
// @Produce      json
// @Param        organizationId  query  string  true   "Organisation UUID"
// @Param        pageNumber      query  int     false  "1-based page number"
// @Param        pageSize        query  int     false  "Rows per page (default 20)"
// @Param        sort            query  string  false  "field:direction, e.g. CreatedDate:asc"
// @Success      200  {object}  LogsResponse
// @Failure      400  {object}  LogsResponse
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/logs [get]
func (h *Handler) ListLogs(c *gin.Context) {
	rawOrg := c.Query("organizationId")
	if rawOrg == "" {
		badOrganization(c, "organizationId is required")
		return
	}
	organizationID, err := uuid.Parse(rawOrg)
	if err != nil {
		badOrganization(c, "organizationId must be a valid UUID")
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	page, err := h.engine.GetPage(ctx, organizationID, h.pageRequest(c), c.Query("sort"))
	if err != nil {
		if errors.Is(err, auditlog.ErrInvalidOrganization) {
			badOrganization(c, err.Error())
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audit logs"})
		return
	}

	c.JSON(http.StatusOK, LogsResponse{Items: page.Rows, TotalCount: page.TotalCount})
}

// @Summary      List all audit logs
// @Description  Returns one page of raw audit records across every organisation.
// @Tags         Logs
// @Produce      json
// @Param        pageNumber  query  int     false  "1-based page number"
// @Param        pageSize    query  int     false  "Rows per page (default 20)"
// @Param        sort        query  string  false  "field:direction"
// @Success      200  {object}  RawLogsResponse
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/logs/all [get]
func (h *Handler) ListAllLogs(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()

	page, err := h.engine.ListAll(ctx, h.pageRequest(c), c.Query("sort"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audit logs"})
		return
	}

	c.JSON(http.StatusOK, RawLogsResponse{Items: page.Rows, TotalCount: page.TotalCount})
}

// pageRequest reads pageNumber and pageSize. Unparseable values count as absent
// and are defaulted by the engine; pageSize is capped at the configured maximum.
func (h *Handler) pageRequest(c *gin.Context) auditlog.PageRequest {
	pageNumber, _ := strconv.Atoi(c.Query("pageNumber"))
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))

	if pageSize <= 0 && h.cfg.DefaultPageSize > 0 {
		pageSize = h.cfg.DefaultPageSize
	}
	if h.cfg.MaxPageSize > 0 && pageSize > h.cfg.MaxPageSize {
		pageSize = h.cfg.MaxPageSize
	}
	return auditlog.PageRequest{PageNumber: pageNumber, PageSize: pageSize}
}

func (h *Handler) queryContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.cfg.QueryTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.cfg.QueryTimeout)
}

func badOrganization(c *gin.Context, msg string) {
	slog.WarnContext(c.Request.Context(), "rejected audit log request",
		"organization_id", c.Query("organizationId"),
		"reason", msg)
	c.JSON(http.StatusBadRequest, LogsResponse{Items: []auditlog.Row{}, TotalCount: 0, Error: msg})
}
