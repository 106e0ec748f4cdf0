package db

import "time"

// ContactMessage 保存联系表单提交的内容。
type ContactMessage struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:128"`
	Email     string `gorm:"size:255;index"`
	Subject   string `gorm:"size:255"`
	Message   string
	VisitorID string `gorm:"size:64"`
	CreatedAt time.Time
}

// TableName 指定自定义表名。
func (ContactMessage) TableName() string {
	return "contact_messages"
}
