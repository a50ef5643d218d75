package domain

// DefaultImageFile — картинка профиля, которую получает каждый новый пользователь
const DefaultImageFile = "default.jpg"

// User представляет модель пользователя в системе.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"size:20;uniqueIndex;not null" json:"username"`
	Email     string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	ImageFile string `gorm:"size:32;not null;default:'default.jpg'" json:"image_file"`
	Password  string `gorm:"size:60;not null" json:"-"`
	Posts     []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

func (User) TableName() string {
	return "users"
}
