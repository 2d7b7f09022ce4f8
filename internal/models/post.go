package models

import (
	"time"
)

type Post struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title  string `gorm:"not null" json:"title"`
	Text   string `gorm:"type:text" json:"text"`
	// Points 是投票表的缓存合计，真实数据以 votes 表为准
	Points    int       `gorm:"not null" json:"points"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
