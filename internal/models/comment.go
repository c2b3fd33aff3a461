package models

import "time"

// Comment represents a comment on a post
type Comment struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	Created  time.Time `json:"created" gorm:"autoCreateTime;index"`
	PostID   uint      `json:"post_id" gorm:"not null;index"`
	AuthorID uint      `json:"author_id" gorm:"not null;index"`
	Author   User      `json:"author" gorm:"constraint:OnDelete:CASCADE"`
}

// CommentRequest defines the comment form
type CommentRequest struct {
	Text string `form:"text" validate:"required"`
}
