package db

import "time"

// Post 统一承载博客文章与项目（项目以 project-<slug> 形式的合成记录存在），
// 并保存冗余的互动计数。
type Post struct {
	ID           uint   `gorm:"primaryKey"`
	Slug         string `gorm:"size:255;uniqueIndex"`
	Title        string
	Content      string
	Status       string `gorm:"size:32;default:published"`
	ViewCount    uint64 `gorm:"default:0"`
	LikeCount    uint64 `gorm:"default:0"`
	ShareCount   uint64 `gorm:"default:0"`
	CommentCount uint64 `gorm:"default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProjectSlugPrefix distinguishes synthetic project rows from blog posts.
const ProjectSlugPrefix = "project-"

// StatusPublished is the only status this service writes.
const StatusPublished = "published"
