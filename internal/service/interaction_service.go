package service

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/foliopulse/internal/db"
	"github.com/foliopulse/internal/visitor"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound       = errors.New("post not found")
	ErrInvalidInteraction = errors.New("invalid interaction type")
)

// talliedTypes are the interaction types without a denormalized counter;
// their totals come from a live group-count over the event log.
var talliedTypes = []db.InteractionType{
	db.InteractionBookmark,
	db.InteractionSubscribe,
	db.InteractionDownload,
}

// InteractionCounts is the aggregate snapshot returned alongside writes.
type InteractionCounts struct {
	Likes      uint64 `json:"likes"`
	Shares     uint64 `json:"shares"`
	Comments   uint64 `json:"comments"`
	Bookmarks  uint64 `json:"bookmarks"`
	Subscribes uint64 `json:"subscribes"`
	Downloads  uint64 `json:"downloads"`
}

// InteractionResult describes a recorded interaction plus fresh counts.
type InteractionResult struct {
	ID        uint
	Type      db.InteractionType
	CreatedAt time.Time
	Counts    InteractionCounts
}

// InteractionService 负责互动事件的写入与计数聚合。
type InteractionService struct {
	db *gorm.DB
}

// NewInteractionService creates an InteractionService instance.
func NewInteractionService(gdb *gorm.DB) *InteractionService {
	return &InteractionService{db: gdb}
}

// Record appends one interaction event for the post identified by slug and
// bumps the matching denormalized counter where one exists. The event
// insert and the counter increment are sequential, not one transaction;
// the increment itself is a single atomic SQL expression, so concurrent
// writers cannot lose updates, they can only interleave.
func (s *InteractionService) Record(slug string, typ db.InteractionType, value string, metadata map[string]string, reqCtx RequestContext) (*InteractionResult, error) {
	if !typ.Valid() {
		return nil, ErrInvalidInteraction
	}

	post, err := s.findPost(slug)
	if err != nil {
		return nil, err
	}

	metadataJSON := ""
	if len(metadata) > 0 {
		raw, marshalErr := json.Marshal(metadata)
		if marshalErr != nil {
			return nil, marshalErr
		}
		metadataJSON = string(raw)
	}

	event := db.InteractionEvent{
		PostID:    post.ID,
		Type:      typ,
		Value:     value,
		Metadata:  metadataJSON,
		VisitorID: visitor.ID(reqCtx.IP, reqCtx.UserAgent),
		SessionID: visitor.SessionID(reqCtx.SessionID),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&event).Error; err != nil {
		return nil, err
	}

	if column, ok := typ.CounterColumn(); ok {
		if err := s.db.Model(&db.Post{}).
			Where("id = ?", post.ID).
			UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error; err != nil {
			return nil, err
		}
	}

	counts, err := s.countsFor(post.ID)
	if err != nil {
		return nil, err
	}

	return &InteractionResult{
		ID:        event.ID,
		Type:      event.Type,
		CreatedAt: event.CreatedAt,
		Counts:    counts,
	}, nil
}

// Counts returns the aggregate snapshot for a post without writing.
func (s *InteractionService) Counts(slug string) (InteractionCounts, error) {
	post, err := s.findPost(slug)
	if err != nil {
		return InteractionCounts{}, err
	}
	return s.countsFor(post.ID)
}

func (s *InteractionService) findPost(slug string) (*db.Post, error) {
	var post db.Post
	if err := s.db.Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// countsFor merges the denormalized post columns with a live group-count
// for the tallied-on-read types.
func (s *InteractionService) countsFor(postID uint) (InteractionCounts, error) {
	var post db.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		return InteractionCounts{}, err
	}

	counts := InteractionCounts{
		Likes:    post.LikeCount,
		Shares:   post.ShareCount,
		Comments: post.CommentCount,
	}

	var rows []struct {
		Type  db.InteractionType
		Total uint64
	}
	if err := s.db.Model(&db.InteractionEvent{}).
		Select("type, COUNT(*) AS total").
		Where("post_id = ? AND type IN ?", postID, talliedTypes).
		Group("type").
		Scan(&rows).Error; err != nil {
		return InteractionCounts{}, err
	}

	for _, row := range rows {
		switch row.Type {
		case db.InteractionBookmark:
			counts.Bookmarks = row.Total
		case db.InteractionSubscribe:
			counts.Subscribes = row.Total
		case db.InteractionDownload:
			counts.Downloads = row.Total
		}
	}

	return counts, nil
}
