package services

import (
	"context"

	"pinboard-api/models"
	"pinboard-api/repositories"
)

type TagService interface {
	GetTags(ctx context.Context) ([]models.Tag, error)
}

type tagService struct {
	tagRepo repositories.TagRepository
}

func NewTagService(tagRepo repositories.TagRepository) TagService {
	return &tagService{tagRepo: tagRepo}
}

func (s *tagService) GetTags(ctx context.Context) ([]models.Tag, error) {
	return s.tagRepo.GetAll(ctx)
}
