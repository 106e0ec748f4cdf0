package db

import "time"

// ViewEvent 记录访客层面的浏览历史，行为只追加不修改。
type ViewEvent struct {
	ID          uint   `gorm:"primaryKey"`
	PostID      uint   `gorm:"index"`
	VisitorID   string `gorm:"size:64;index"`
	SessionID   string `gorm:"size:64"`
	IPAddress   string `gorm:"size:64"`
	UserAgent   string `gorm:"size:512"`
	Referer     string `gorm:"size:512"`
	ReadingTime int    // 秒，0 表示未上报
	ScrollDepth int    // 0-100，0 表示未上报
	ViewedAt    time.Time
}

// TableName 指定自定义表名。
func (ViewEvent) TableName() string {
	return "view_events"
}
