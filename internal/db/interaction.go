package db

import "time"

// InteractionType 枚举允许的互动类型。
type InteractionType string

const (
	InteractionLike      InteractionType = "LIKE"
	InteractionShare     InteractionType = "SHARE"
	InteractionComment   InteractionType = "COMMENT"
	InteractionBookmark  InteractionType = "BOOKMARK"
	InteractionSubscribe InteractionType = "SUBSCRIBE"
	InteractionDownload  InteractionType = "DOWNLOAD"
)

// CounterColumn returns the denormalized posts column backing this type.
// Types without one (BOOKMARK, SUBSCRIBE, DOWNLOAD) are tallied on read.
func (t InteractionType) CounterColumn() (string, bool) {
	switch t {
	case InteractionLike:
		return "like_count", true
	case InteractionShare:
		return "share_count", true
	case InteractionComment:
		return "comment_count", true
	}
	return "", false
}

// Valid reports whether t is one of the allowed interaction types.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionLike, InteractionShare, InteractionComment,
		InteractionBookmark, InteractionSubscribe, InteractionDownload:
		return true
	}
	return false
}

// InteractionEvent 记录一次互动，行为只追加不修改。
type InteractionEvent struct {
	ID        uint            `gorm:"primaryKey"`
	PostID    uint            `gorm:"index"`
	Type      InteractionType `gorm:"size:16;index"`
	Value     string          `gorm:"size:255"`
	Metadata  string          // JSON 序列化的键值对，可为空
	VisitorID string          `gorm:"size:64;index"`
	SessionID string          `gorm:"size:64"`
	CreatedAt time.Time
}

// TableName 指定自定义表名。
func (InteractionEvent) TableName() string {
	return "interaction_events"
}
