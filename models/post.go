package models

import "time"

const MaxDescriptionLength = 2000

type Post struct {
	ID            uint       `json:"id" gorm:"primarykey"`
	Title         string     `json:"title" gorm:"type:varchar(255);not null"`
	Description   string     `json:"description" gorm:"type:varchar(2000)"`
	ImageURL      string     `json:"imageUrl" gorm:"not null"`
	ImagePublicID string     `json:"imagePublicId" gorm:"not null"`
	OwnerID       uint       `json:"-" gorm:"column:user_id;not null;index"`
	Owner         *PostOwner `json:"owner" gorm:"-"`
	Tags          []Tag      `json:"tags" gorm:"-"`
	LikeCount     int        `json:"likeCount" gorm:"not null;default:0;check:like_count >= 0"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// PostOwner is the public projection of a User embedded in post responses.
type PostOwner struct {
	ID            uint   `json:"id"`
	Username      string `json:"username"`
	ProfileImgURL string `json:"profileImgUrl"`
}

// PostTag is a row of the post_tags join table.
type PostTag struct {
	PostID uint `gorm:"primaryKey"`
	TagID  uint `gorm:"primaryKey;index"`
}
