package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/foliopulse/internal/content"
	"github.com/foliopulse/internal/db"
	"github.com/foliopulse/internal/visitor"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Content kinds accepted by the view tracker.
const (
	ViewTypeBlog    = "blog"
	ViewTypeProject = "project"
)

var ErrInvalidViewType = errors.New("invalid view type")

// ViewInput is one page-view report.
type ViewInput struct {
	Type        string
	Slug        string
	ReadingTime int
	ScrollDepth int
	Referrer    string
}

// ViewResult describes a recorded view and the post's new total.
type ViewResult struct {
	ID         uint
	Type       string
	Slug       string
	ViewedAt   time.Time
	TotalViews uint64
}

// ViewSummary is one row of the views listing.
type ViewSummary struct {
	Slug       string `json:"slug"`
	Type       string `json:"type"`
	TotalViews uint64 `json:"totalViews"`
}

// ViewService 负责页面浏览的记录与汇总。
type ViewService struct {
	db *gorm.DB
}

// NewViewService creates a ViewService instance.
func NewViewService(gdb *gorm.DB) *ViewService {
	return &ViewService{db: gdb}
}

// Track records one view. Blog slugs must exist; project slugs map to
// synthetic project-<slug> rows that are created on first view. The
// upsert keeps concurrent first views of the same project race-safe.
func (s *ViewService) Track(input ViewInput, reqCtx RequestContext) (*ViewResult, error) {
	var (
		post *db.Post
		err  error
	)

	switch input.Type {
	case ViewTypeBlog:
		post, err = s.findBySlug(input.Slug)
	case ViewTypeProject:
		post, err = s.ensureProject(input.Slug)
	default:
		return nil, ErrInvalidViewType
	}
	if err != nil {
		return nil, err
	}

	readingTime := input.ReadingTime
	if readingTime == 0 && post.Content != "" {
		readingTime = content.ReadingTime(post.Content)
	}

	now := time.Now().UTC()
	event := db.ViewEvent{
		PostID:      post.ID,
		VisitorID:   visitor.ID(reqCtx.IP, reqCtx.UserAgent),
		SessionID:   visitor.SessionID(reqCtx.SessionID),
		IPAddress:   reqCtx.IP,
		UserAgent:   reqCtx.UserAgent,
		Referer:     input.Referrer,
		ReadingTime: readingTime,
		ScrollDepth: input.ScrollDepth,
		ViewedAt:    now,
	}
	if err := s.db.Create(&event).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&db.Post{}).
		Where("id = ?", post.ID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error; err != nil {
		return nil, err
	}

	var updated db.Post
	if err := s.db.First(&updated, post.ID).Error; err != nil {
		return nil, err
	}

	return &ViewResult{
		ID:         event.ID,
		Type:       input.Type,
		Slug:       input.Slug,
		ViewedAt:   now,
		TotalViews: updated.ViewCount,
	}, nil
}

// Views lists per-post totals, optionally filtered by kind and slug,
// sorted by view count descending.
func (s *ViewService) Views(viewType, slug string) ([]ViewSummary, error) {
	query := s.db.Model(&db.Post{})

	switch viewType {
	case ViewTypeBlog:
		query = query.Where("slug NOT LIKE ?", db.ProjectSlugPrefix+"%")
		if slug != "" {
			query = query.Where("slug = ?", slug)
		}
	case ViewTypeProject:
		if slug != "" {
			query = query.Where("slug = ?", db.ProjectSlugPrefix+slug)
		} else {
			query = query.Where("slug LIKE ?", db.ProjectSlugPrefix+"%")
		}
	case "":
		if slug != "" {
			query = query.Where("slug = ? OR slug = ?", slug, db.ProjectSlugPrefix+slug)
		}
	default:
		return nil, ErrInvalidViewType
	}

	var posts []db.Post
	if err := query.Order("view_count DESC").Find(&posts).Error; err != nil {
		return nil, err
	}

	summaries := make([]ViewSummary, 0, len(posts))
	for _, post := range posts {
		summary := ViewSummary{Slug: post.Slug, Type: ViewTypeBlog, TotalViews: post.ViewCount}
		if strings.HasPrefix(post.Slug, db.ProjectSlugPrefix) {
			summary.Type = ViewTypeProject
			summary.Slug = strings.TrimPrefix(post.Slug, db.ProjectSlugPrefix)
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func (s *ViewService) findBySlug(slug string) (*db.Post, error) {
	var post db.Post
	if err := s.db.Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// ensureProject lazily provisions the synthetic post row backing a
// project on its first tracked view.
func (s *ViewService) ensureProject(slug string) (*db.Post, error) {
	fullSlug := db.ProjectSlugPrefix + slug

	placeholder := db.Post{
		Slug:    fullSlug,
		Title:   fmt.Sprintf("Project: %s", slug),
		Content: fmt.Sprintf("Auto-generated entry for project %s", slug),
		Status:  db.StatusPublished,
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(&placeholder).Error; err != nil {
		return nil, err
	}

	return s.findBySlug(fullSlug)
}
