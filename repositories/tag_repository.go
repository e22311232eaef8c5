package repositories

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pinboard-api/models"
)

type TagRepository interface {
	// WithTx returns a repository bound to an open transaction.
	WithTx(tx *gorm.DB) TagRepository
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	GetOrCreate(ctx context.Context, name string) (*models.Tag, error)
	GetOrCreateMany(ctx context.Context, names []string) ([]models.Tag, error)
	GetAll(ctx context.Context) ([]models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) WithTx(tx *gorm.DB) TagRepository {
	return &tagRepository{db: tx}
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).Take(&tag).Error; err != nil {
		return nil, translate(err, "get tag by name")
	}
	return &tag, nil
}

// GetOrCreate returns the tag named name, inserting it if needed.
// A concurrent insert of the same name is absorbed by ON CONFLICT DO NOTHING
// followed by a re-select of the winning row.
func (r *tagRepository) GetOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	tag, err := r.GetByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	created := models.Tag{Name: name}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&created)
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "create tag %q", name)
	}
	if res.RowsAffected == 1 {
		return &created, nil
	}

	return r.GetByName(ctx, name)
}

// GetOrCreateMany resolves names in sorted order so that concurrent
// transactions take the tag locks in the same order. The result follows that order.
func (r *tagRepository) GetOrCreateMany(ctx context.Context, names []string) ([]models.Tag, error) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	tags := make([]models.Tag, 0, len(sorted))
	for _, name := range sorted {
		tag, err := r.GetOrCreate(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

func (r *tagRepository) GetAll(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	err := r.db.WithContext(ctx).Order("name asc").Find(&tags).Error
	return tags, translate(err, "list tags")
}
