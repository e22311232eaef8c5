package repositories

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pinboard-api/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfileImage(ctx context.Context, userID uint, url string) error
	// Delete removes the user with everything it owns and returns the image ids of the deleted posts.
	Delete(ctx context.Context, userID uint) ([]string, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user together with its role rows.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if len(user.Roles) == 0 {
			return nil
		}
		roles := make([]models.UserRole, 0, len(user.Roles))
		for _, role := range user.Roles {
			roles = append(roles, models.UserRole{UserID: user.ID, Role: role})
		}
		return tx.Create(&roles).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrapf(models.ErrDuplicateUser, "create user %q", user.Username)
	}
	return translate(err, "create user")
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	db := r.db.WithContext(ctx)
	if err := db.Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, translate(err, "get user by username")
	}

	user.Roles = []string{}
	if err := db.Model(&models.UserRole{}).Where("user_id = ?", user.ID).Order("role").Pluck("role", &user.Roles).Error; err != nil {
		return nil, translate(err, "load user roles")
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, translate(err, "check username")
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, translate(err, "check email")
}

func (r *userRepository) UpdateProfileImage(ctx context.Context, userID uint, url string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("profile_img_url", url)
	if res.Error != nil {
		return translate(res.Error, "update profile image")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(models.ErrNotFound, "update profile image")
	}
	return nil
}

// Delete removes the user and everything that hangs off it: likes given,
// owned posts with their join rows and likes, and role rows. The user row is
// locked first and the posts are deleted with RETURNING, so the image ids
// returned are exactly those of the posts that were removed.
func (r *userRepository) Delete(ctx context.Context, userID uint) ([]string, error) {
	var publicIDs []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Take(&user, userID).Error; err != nil {
			return translate(err, "lock user")
		}

		// likes this user gave to other people's posts
		if err := tx.Exec(
			"UPDATE posts SET like_count = like_count - 1 WHERE like_count > 0 AND user_id <> ? AND id IN (SELECT post_id FROM user_likes WHERE user_id = ?)",
			userID, userID,
		).Error; err != nil {
			return translate(err, "release likes")
		}

		var deleted []models.Post
		if err := tx.Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}, {Name: "image_public_id"}}}).
			Where("user_id = ?", userID).
			Delete(&deleted).Error; err != nil {
			return translate(err, "delete posts")
		}
		postIDs := make([]uint, 0, len(deleted))
		publicIDs = make([]string, 0, len(deleted))
		for _, p := range deleted {
			postIDs = append(postIDs, p.ID)
			publicIDs = append(publicIDs, p.ImagePublicID)
		}

		if err := tx.Where("user_id = ? OR post_id IN ?", userID, postIDs).Delete(&models.PostLike{}).Error; err != nil {
			return translate(err, "delete likes")
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.PostTag{}).Error; err != nil {
				return translate(err, "delete post tags")
			}
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return translate(err, "delete roles")
		}
		if err := tx.Delete(&models.User{}, userID).Error; err != nil {
			return translate(err, "delete user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return publicIDs, nil
}
