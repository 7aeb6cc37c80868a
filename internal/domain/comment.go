package domain

import "time"

const MaxCommentLength = 2000

type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  string    `gorm:"size:36;index;not null" json:"authorId"`
	Author    *Author   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	PostID    string    `gorm:"size:36;index;not null" json:"post"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
