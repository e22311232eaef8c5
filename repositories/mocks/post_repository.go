package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pinboard-api/models"
)

type PostRepository struct {
	mock.Mock
}

func (m *PostRepository) Create(ctx context.Context, post *models.Post, tagNames []string) error {
	args := m.Called(ctx, post, tagNames)
	return args.Error(0)
}

func (m *PostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PostRepository) ListAll(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.([]models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *PostRepository) Like(ctx context.Context, postID, userID uint) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *PostRepository) Unlike(ctx context.Context, postID, userID uint) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}
