package models

// Group is a thematic community posts can be published into
type Group struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"size:200;not null"`
	Slug        string `json:"slug" gorm:"size:50;not null;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`
}

func (g Group) String() string {
	return g.Title
}

// CreateGroupRequest defines the input for creating a group
type CreateGroupRequest struct {
	Title       string `validate:"required,max=200"`
	Slug        string `validate:"required,max=50,slug"`
	Description string
}
