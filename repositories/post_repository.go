package repositories

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pinboard-api/models"
)

type PostRepository interface {
	// Create resolves tagNames, then inserts the post and its post_tags rows, all in one transaction.
	Create(ctx context.Context, post *models.Post, tagNames []string) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListAll(ctx context.Context) ([]models.Post, error)
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, postID, userID uint) (bool, error)
	Unlike(ctx context.Context, postID, userID uint) (bool, error)
}

type postRepository struct {
	db      *gorm.DB
	tagRepo TagRepository
}

func NewPostRepository(db *gorm.DB, tagRepo TagRepository) PostRepository {
	return &postRepository{db: db, tagRepo: tagRepo}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post, tagNames []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// holds off a concurrent account delete until this post is committed
		var owner models.User
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).Select("id").Take(&owner, post.OwnerID).Error; err != nil {
			return translate(err, "lock post owner")
		}

		tags, err := r.tagRepo.WithTx(tx).GetOrCreateMany(ctx, tagNames)
		if err != nil {
			return err
		}

		if err := tx.Create(post).Error; err != nil {
			return errors.Wrap(err, "create post")
		}

		links := make([]models.PostTag, 0, len(tags))
		seen := make(map[uint]bool, len(tags))
		post.Tags = make([]models.Tag, 0, len(tags))
		for _, tag := range tags {
			if seen[tag.ID] {
				continue
			}
			seen[tag.ID] = true
			links = append(links, models.PostTag{PostID: post.ID, TagID: tag.ID})
			post.Tags = append(post.Tags, tag)
		}
		if len(links) > 0 {
			if err := tx.Create(&links).Error; err != nil {
				return errors.Wrap(err, "link post tags")
			}
		}
		return nil
	})
	if err != nil {
		post.ID = 0
		post.Tags = nil
		return err
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Take(&post, id).Error; err != nil {
		return nil, translate(err, "get post")
	}

	posts := []models.Post{post}
	if err := r.hydrate(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (r *postRepository) ListAll(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	if err := r.db.WithContext(ctx).Order("id desc").Find(&posts).Error; err != nil {
		return nil, translate(err, "list posts")
	}
	if err := r.hydrate(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

type postTagRow struct {
	PostID uint
	ID     uint
	Name   string
}

// hydrate fills Owner and Tags with one query each, whatever the number of posts.
func (r *postRepository) hydrate(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]uint, 0, len(posts))
	ownerIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		ownerIDs = append(ownerIDs, p.OwnerID)
	}

	db := r.db.WithContext(ctx)

	var owners []models.PostOwner
	if err := db.Model(&models.User{}).
		Select("id", "username", "profile_img_url").
		Where("id IN ?", ownerIDs).
		Find(&owners).Error; err != nil {
		return translate(err, "load post owners")
	}
	ownerByID := make(map[uint]models.PostOwner, len(owners))
	for _, o := range owners {
		ownerByID[o.ID] = o
	}

	var rows []postTagRow
	if err := db.Table("post_tags").
		Select("post_tags.post_id, tags.id, tags.name").
		Joins("JOIN tags ON tags.id = post_tags.tag_id").
		Where("post_tags.post_id IN ?", postIDs).
		Order("tags.name").
		Scan(&rows).Error; err != nil {
		return translate(err, "load post tags")
	}
	tagsByPost := make(map[uint][]models.Tag, len(posts))
	for _, row := range rows {
		tagsByPost[row.PostID] = append(tagsByPost[row.PostID], models.Tag{ID: row.ID, Name: row.Name})
	}

	for i := range posts {
		if owner, ok := ownerByID[posts[i].OwnerID]; ok {
			posts[i].Owner = &owner
		}
		posts[i].Tags = tagsByPost[posts[i].ID]
		if posts[i].Tags == nil {
			posts[i].Tags = []models.Tag{}
		}
	}
	return nil
}

// Delete removes the post with its join rows and likes. Tags are left in place.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return translate(err, "delete post tags")
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return translate(err, "delete post likes")
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return translate(res.Error, "delete post")
		}
		if res.RowsAffected == 0 {
			return errors.Wrap(models.ErrNotFound, "delete post")
		}
		return nil
	})
}

// Like records a like by userID. It reports whether a new like row was written;
// the counter only moves in that case.
func (r *postRepository) Like(ctx context.Context, postID, userID uint) (bool, error) {
	var changed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, postID); err != nil {
			return err
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.PostLike{UserID: userID, PostID: postID})
		if res.Error != nil {
			return errors.Wrap(res.Error, "insert like")
		}
		if res.RowsAffected == 0 {
			return nil
		}

		changed = true
		return translate(
			tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error,
			"increment like count",
		)
	})
	return changed, err
}

func (r *postRepository) Unlike(ctx context.Context, postID, userID uint) (bool, error) {
	var changed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, postID); err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.PostLike{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete like")
		}
		if res.RowsAffected == 0 {
			return nil
		}

		changed = true
		return translate(
			tx.Model(&models.Post{}).Where("id = ? AND like_count > 0", postID).
				UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error,
			"decrement like count",
		)
	})
	return changed, err
}

func lockPost(tx *gorm.DB, postID uint) error {
	var post models.Post
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Take(&post, postID).Error
	return translate(err, "lock post")
}
