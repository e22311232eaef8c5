package models

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

// CreatePostForm is the multipart form of POST /api/posts, validated with validator.v9.
type CreatePostForm struct {
	Title       string   `form:"title" validate:"required,max=255"`
	Description string   `form:"description" validate:"max=2000"`
	Tags        []string `form:"tags" validate:"dive,max=100"`
}

type CreatePostRequest struct {
	Title       string
	Description string
	File        []byte
	Tags        []string
}
