package service

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/foliopulse/internal/db"
	"gorm.io/gorm"
)

// Allowed error-log levels, lowest to highest severity.
var errorLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
	"fatal": true,
}

var ErrInvalidErrorLevel = errors.New("invalid error level")

// ErrorLogFilter narrows error-log queries.
type ErrorLogFilter struct {
	Level      string
	Category   string
	Source     string
	TimeWindow time.Duration // only entries newer than now-window
	Search     string
	Page       int
	PerPage    int
}

// ErrorLogPage is one page of matching entries.
type ErrorLogPage struct {
	Entries    []db.ErrorLog
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// ErrorLogService 负责自动化错误日志的追加、查询与清理。
type ErrorLogService struct {
	db *gorm.DB
}

// NewErrorLogService creates an ErrorLogService instance.
func NewErrorLogService(gdb *gorm.DB) *ErrorLogService {
	return &ErrorLogService{db: gdb}
}

// Append records one entry. Unknown levels are rejected so the filterable
// vocabulary stays closed.
func (s *ErrorLogService) Append(level, category, source, message, detail string) (*db.ErrorLog, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if !errorLogLevels[level] {
		return nil, ErrInvalidErrorLevel
	}

	entry := db.ErrorLog{
		Level:     level,
		Category:  strings.TrimSpace(category),
		Source:    strings.TrimSpace(source),
		Message:   strings.TrimSpace(message),
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns one page of entries, newest first.
func (s *ErrorLogService) List(filter ErrorLogFilter) (*ErrorLogPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 200 {
		filter.PerPage = 50
	}

	query := s.db.Model(&db.ErrorLog{})
	if filter.Level != "" {
		query = query.Where("level = ?", strings.ToLower(filter.Level))
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.TimeWindow > 0 {
		query = query.Where("created_at >= ?", time.Now().UTC().Add(-filter.TimeWindow))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("message LIKE ? OR detail LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var entries []db.ErrorLog
	if err := query.Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(filter.PerPage) - 1) / int64(filter.PerPage))

	return &ErrorLogPage{
		Entries:    entries,
		Total:      total,
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		TotalPages: totalPages,
	}, nil
}

// Clear deletes every entry and reports how many were removed.
func (s *ErrorLogService) Clear() (int64, error) {
	result := s.db.Where("1 = 1").Delete(&db.ErrorLog{})
	return result.RowsAffected, result.Error
}

// WriteCSV streams entries as CSV with a header row.
func (s *ErrorLogService) WriteCSV(w io.Writer, entries []db.ErrorLog) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"id", "level", "category", "source", "message", "detail", "created_at"}); err != nil {
		return err
	}
	for _, entry := range entries {
		record := []string{
			strconv.FormatUint(uint64(entry.ID), 10),
			entry.Level,
			entry.Category,
			entry.Source,
			entry.Message,
			entry.Detail,
			entry.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
