package models

import "time"

// Post is a blog entry written by a user, optionally inside a group
type Post struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	Created  time.Time `json:"created" gorm:"autoCreateTime;index"`
	Image    string    `json:"image,omitempty"` // storage key, e.g. posts/<uuid>.gif
	AuthorID uint      `json:"author_id" gorm:"not null;index"`
	Author   User      `json:"author" gorm:"constraint:OnDelete:CASCADE"`
	GroupID  *uint     `json:"group_id,omitempty" gorm:"index"`
	Group    *Group    `json:"group,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	Comments []Comment `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// String returns the first 15 characters of the text
func (p Post) String() string {
	r := []rune(p.Text)
	if len(r) > 15 {
		return string(r[:15])
	}
	return p.Text
}

// PostRequest defines the create/edit post form. The image is read from the
// multipart body separately.
type PostRequest struct {
	Text  string `form:"text" validate:"required"`
	Group string `form:"group" validate:"omitempty,numeric"`
}
