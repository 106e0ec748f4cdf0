package db

import "time"

// ErrorLog 是自动化链路的错误日志，只追加，由管理接口查询或清空。
type ErrorLog struct {
	ID        uint   `gorm:"primaryKey"`
	Level     string `gorm:"size:16;index"`
	Category  string `gorm:"size:64;index"`
	Source    string `gorm:"size:128;index"`
	Message   string `gorm:"size:1024"`
	Detail    string
	CreatedAt time.Time `gorm:"index"`
}

// TableName 指定自定义表名。
func (ErrorLog) TableName() string {
	return "error_logs"
}
