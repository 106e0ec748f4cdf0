package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/foliopulse/internal/service"
	"github.com/gin-gonic/gin"
)

// ListErrors handles GET /api/automation/errors. Admin only.
func (a *API) ListErrors(c *gin.Context) {
	filter := service.ErrorLogFilter{
		Level:    c.Query("level"),
		Category: c.Query("category"),
		Source:   c.Query("source"),
		Search:   c.Query("search"),
	}

	if raw := c.Query("timeWindow"); raw != "" {
		window, err := time.ParseDuration(raw)
		if err != nil || window <= 0 {
			respondError(c, http.StatusBadRequest, "invalid time window")
			return
		}
		filter.TimeWindow = window
	}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			respondError(c, http.StatusBadRequest, "invalid page")
			return
		}
		filter.Page = page
	}
	if raw := c.Query("perPage"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil || perPage < 1 {
			respondError(c, http.StatusBadRequest, "invalid page size")
			return
		}
		filter.PerPage = perPage
	}

	page, err := a.errorLogs.List(filter)
	if err != nil {
		a.serverError(c, "list-errors", err)
		return
	}

	if c.Query("format") == "csv" {
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="error-log.csv"`)
		c.Status(http.StatusOK)
		if err := a.errorLogs.WriteCSV(c.Writer, page.Entries); err != nil {
			a.log.Error().Err(err).Msg("csv export failed")
		}
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"entries":    page.Entries,
		"total":      page.Total,
		"page":       page.Page,
		"perPage":    page.PerPage,
		"totalPages": page.TotalPages,
	})
}

type errorLogRequest struct {
	Level    string `json:"level" binding:"required,oneof=debug info warn error fatal"`
	Category string `json:"category" binding:"omitempty,max=64"`
	Source   string `json:"source" binding:"omitempty,max=128"`
	Message  string `json:"message" binding:"required,max=1024"`
	Detail   string `json:"detail" binding:"omitempty,max=10000"`
}

// CreateError handles POST /api/automation/errors. Admin only.
func (a *API) CreateError(c *gin.Context) {
	var req errorLogRequest
	if !a.bindJSON(c, &req) {
		return
	}

	entry, err := a.errorLogs.Append(req.Level, req.Category, req.Source, req.Message, req.Detail)
	if err != nil {
		if errors.Is(err, service.ErrInvalidErrorLevel) {
			respondError(c, http.StatusBadRequest, "invalid error level")
			return
		}
		a.serverError(c, "create-error", err)
		return
	}

	respondData(c, http.StatusCreated, gin.H{"id": entry.ID, "createdAt": entry.CreatedAt})
}

// ClearErrors handles DELETE /api/automation/errors. Admin only, and the
// explicit confirm flag is required so a stray DELETE cannot wipe the log.
func (a *API) ClearErrors(c *gin.Context) {
	if c.Query("confirm") != "true" {
		respondError(c, http.StatusBadRequest, "confirm=true required")
		return
	}

	removed, err := a.errorLogs.Clear()
	if err != nil {
		a.serverError(c, "clear-errors", err)
		return
	}

	respondMessage(c, http.StatusOK, gin.H{"removed": removed}, "error log cleared")
}
