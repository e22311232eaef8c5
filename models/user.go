package models

import "time"

const RoleUser = "ROLE_USER"

type User struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	Username      string    `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	Email         string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password      string    `json:"-" gorm:"not null"`
	ProfileImgURL string    `json:"profileImgUrl"`
	Roles         []string  `json:"roles" gorm:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UserRole is one row of a user's role set.
type UserRole struct {
	UserID uint   `gorm:"primaryKey"`
	Role   string `gorm:"primaryKey;type:varchar(50)"`
}

// PostLike records that a user liked a post. One row per (user, post).
type PostLike struct {
	UserID    uint `gorm:"primaryKey"`
	PostID    uint `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

func (PostLike) TableName() string {
	return "user_likes"
}
