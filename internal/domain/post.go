package domain

import "time"

// Post представляет запись блога, соответствует таблице posts в бд.
// Author заполняется через Preload при чтении
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:100;not null" json:"title"`
	DatePosted time.Time `gorm:"not null;index" json:"date_posted"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Author     User      `gorm:"foreignKey:UserID" json:"author"`
}

func (Post) TableName() string {
	return "posts"
}

// IsOwnedBy сообщает, является ли пользователь автором поста
func (p *Post) IsOwnedBy(userID uint) bool {
	return userID != 0 && p.UserID == userID
}
