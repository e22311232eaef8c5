package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"pinboard-api/models"
	"pinboard-api/repositories"
)

type TagRepository struct {
	mock.Mock
}

func (m *TagRepository) WithTx(tx *gorm.DB) repositories.TagRepository {
	return m
}

func (m *TagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	args := m.Called(ctx, name)
	if t := args.Get(0); t != nil {
		return t.(*models.Tag), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TagRepository) GetOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	args := m.Called(ctx, name)
	if t := args.Get(0); t != nil {
		return t.(*models.Tag), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TagRepository) GetOrCreateMany(ctx context.Context, names []string) ([]models.Tag, error) {
	args := m.Called(ctx, names)
	if t := args.Get(0); t != nil {
		return t.([]models.Tag), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TagRepository) GetAll(ctx context.Context) ([]models.Tag, error) {
	args := m.Called(ctx)
	if t := args.Get(0); t != nil {
		return t.([]models.Tag), args.Error(1)
	}
	return nil, args.Error(1)
}
