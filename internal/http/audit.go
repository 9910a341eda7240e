package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/literattus/literattus/internal/database/audit"
	"github.com/literattus/literattus/internal/entities"
)

// AuditController exposes the append-only audit log. Admin-only.
type AuditController struct {
	audit *audit.Repository
}

func NewAuditController(auditRepo *audit.Repository) *AuditController {
	return &AuditController{audit: auditRepo}
}

// ListEntries handles GET /api/audit
// Filters: table, record_id (numeric), external_id, action, since, until
// (RFC 3339), order=asc. Newest first by default.
func (ac *AuditController) ListEntries(c *gin.Context) {
	limit, offset := parsePagination(c)
	filter := audit.Filter{
		TableName: c.Query("table"),
		Action:    entities.AuditAction(c.Query("action")),
		Ascending: c.Query("order") == "asc",
		Limit:     limit,
		Offset:    offset,
	}

	recordID, ok := parseRecordID(c)
	if !ok {
		return
	}
	filter.RecordID = recordID

	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			respondBadRequest(c, "since must be RFC 3339")
			return
		}
		filter.Since = t
	}
	if until := c.Query("until"); until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			respondBadRequest(c, "until must be RFC 3339")
			return
		}
		filter.Until = t
	}

	logEntries, total, err := ac.audit.List(filter)
	if err != nil {
		respondInternalError(c, err, "list audit entries")
		return
	}
	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    logEntries,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+limit) < total,
	})
}

// GetHistory handles GET /api/audit/history
// Returns one record's full mutation history in commit order.
func (ac *AuditController) GetHistory(c *gin.Context) {
	tableName := c.Query("table")
	if tableName == "" {
		respondBadRequest(c, "table is required")
		return
	}
	recordID, ok := parseRecordID(c)
	if !ok {
		return
	}
	if recordID == nil {
		respondBadRequest(c, "record_id or external_id is required")
		return
	}

	history, err := ac.audit.History(tableName, *recordID)
	if err != nil {
		respondInternalError(c, err, "audit history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// GetEntry handles GET /api/audit/:id
func (ac *AuditController) GetEntry(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	entry, err := ac.audit.GetByID(id)
	if err != nil {
		respondStorageError(c, err, "audit entry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// parseRecordID reads record_id (numeric) or external_id (string) query
// parameters. Returns (nil, true) when neither is present; responds with
// a 400 on a malformed record_id.
func parseRecordID(c *gin.Context) (*entities.RecordID, bool) {
	if numeric := c.Query("record_id"); numeric != "" {
		id, err := strconv.ParseUint(numeric, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid record_id")
			return nil, false
		}
		recordID := entities.NumericID(uint(id))
		return &recordID, true
	}
	if external := c.Query("external_id"); external != "" {
		recordID := entities.ExternalID(external)
		return &recordID, true
	}
	return nil, true
}
