package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pinboard-api/models"
)

type AuthService struct {
	mock.Mock
}

func (m *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*models.AuthResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*models.AuthResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuthService) VerifyToken(tokenString string) (*models.Identity, error) {
	args := m.Called(tokenString)
	if r := args.Get(0); r != nil {
		return r.(*models.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuthService) GetProfile(ctx context.Context, identity models.Identity) (*models.User, error) {
	args := m.Called(ctx, identity)
	if r := args.Get(0); r != nil {
		return r.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuthService) UpdateAvatar(ctx context.Context, identity models.Identity, file []byte) (*models.User, error) {
	args := m.Called(ctx, identity, file)
	if r := args.Get(0); r != nil {
		return r.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuthService) DeleteAccount(ctx context.Context, identity models.Identity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

type PostService struct {
	mock.Mock
}

func (m *PostService) CreatePost(ctx context.Context, owner models.Identity, req models.CreatePostRequest) (*models.Post, error) {
	args := m.Called(ctx, owner, req)
	if r := args.Get(0); r != nil {
		return r.(*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PostService) ListPosts(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PostService) DeletePost(ctx context.Context, id uint, caller models.Identity) error {
	args := m.Called(ctx, id, caller)
	return args.Error(0)
}

func (m *PostService) LikePost(ctx context.Context, id uint, caller models.Identity) (*models.Post, error) {
	args := m.Called(ctx, id, caller)
	if r := args.Get(0); r != nil {
		return r.(*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PostService) UnlikePost(ctx context.Context, id uint, caller models.Identity) (*models.Post, error) {
	args := m.Called(ctx, id, caller)
	if r := args.Get(0); r != nil {
		return r.(*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

type TagService struct {
	mock.Mock
}

func (m *TagService) GetTags(ctx context.Context) ([]models.Tag, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]models.Tag), args.Error(1)
	}
	return nil, args.Error(1)
}
