package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"pinboard-api/media"
	"pinboard-api/models"
	"pinboard-api/repositories"
)

type PostService interface {
	CreatePost(ctx context.Context, owner models.Identity, req models.CreatePostRequest) (*models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	DeletePost(ctx context.Context, id uint, caller models.Identity) error
	LikePost(ctx context.Context, id uint, caller models.Identity) (*models.Post, error)
	UnlikePost(ctx context.Context, id uint, caller models.Identity) (*models.Post, error)
}

type postService struct {
	postRepo repositories.PostRepository
	userRepo repositories.UserRepository
	gateway  media.Gateway
	cleaner  AssetCleaner
	folder   string
	log      *logrus.Logger
}

func NewPostService(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	gateway media.Gateway,
	cleaner AssetCleaner,
	folder string,
	log *logrus.Logger,
) PostService {
	return &postService{
		postRepo: postRepo,
		userRepo: userRepo,
		gateway:  gateway,
		cleaner:  cleaner,
		folder:   folder,
		log:      log,
	}
}

// CreatePost validates the request, uploads the image, then stores the post with its tags.
// Nothing is uploaded or written unless validation and owner lookup pass.
// If storing fails after the upload, the uploaded asset is handed to the cleaner.
func (s *postService) CreatePost(ctx context.Context, owner models.Identity, req models.CreatePostRequest) (*models.Post, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title must not be blank", models.ErrValidation)
	}
	if utf8.RuneCountInString(req.Description) > models.MaxDescriptionLength {
		return nil, fmt.Errorf("%w: description must be at most %d characters", models.ErrValidation, models.MaxDescriptionLength)
	}
	if len(req.File) == 0 {
		return nil, fmt.Errorf("%w: file is required", models.ErrValidation)
	}

	user, err := s.userRepo.GetByUsername(ctx, owner.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrOwnerNotFound, owner.Username)
		}
		return nil, err
	}

	logCtx := s.log.WithField("username", user.Username)

	asset, err := s.gateway.Upload(ctx, req.File, s.folder)
	if err != nil {
		logCtx.WithError(err).Warn("Post image upload failed")
		return nil, fmt.Errorf("%w: %v", models.ErrUploadFailed, err)
	}
	if asset == nil || asset.URL == "" || asset.PublicID == "" {
		if asset != nil {
			s.cleanup(ctx, asset.PublicID)
		}
		return nil, fmt.Errorf("%w: incomplete upload result", models.ErrUploadFailed)
	}

	post := &models.Post{
		Title:         title,
		Description:   req.Description,
		ImageURL:      asset.URL,
		ImagePublicID: asset.PublicID,
		OwnerID:       user.ID,
	}
	if err := s.postRepo.Create(ctx, post, uniqueTagNames(req.Tags)); err != nil {
		logCtx.WithError(err).WithField("public_id", asset.PublicID).Error("Failed to store post, releasing uploaded image")
		s.cleanup(ctx, asset.PublicID)
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrOwnerNotFound, owner.Username)
		}
		return nil, err
	}

	post.Owner = &models.PostOwner{ID: user.ID, Username: user.Username, ProfileImgURL: user.ProfileImgURL}
	if post.Tags == nil {
		post.Tags = []models.Tag{}
	}
	logCtx.WithField("post_id", post.ID).Info("Post created")
	return post, nil
}

func (s *postService) ListPosts(ctx context.Context) ([]models.Post, error) {
	return s.postRepo.ListAll(ctx)
}

func (s *postService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

func (s *postService) DeletePost(ctx context.Context, id uint, caller models.Identity) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user, err := s.caller(ctx, caller)
	if err != nil {
		return err
	}
	if post.OwnerID != user.ID {
		s.log.WithFields(logrus.Fields{"username": user.Username, "post_id": id}).Warn("Delete of another user's post refused")
		return fmt.Errorf("%w: post %d belongs to another user", models.ErrForbidden, id)
	}

	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"username": user.Username, "post_id": id}).Info("Post deleted")

	s.cleanup(ctx, post.ImagePublicID)
	return nil
}

func (s *postService) LikePost(ctx context.Context, id uint, caller models.Identity) (*models.Post, error) {
	user, err := s.caller(ctx, caller)
	if err != nil {
		return nil, err
	}
	if _, err := s.postRepo.Like(ctx, id, user.ID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, id)
}

func (s *postService) UnlikePost(ctx context.Context, id uint, caller models.Identity) (*models.Post, error) {
	user, err := s.caller(ctx, caller)
	if err != nil {
		return nil, err
	}
	if _, err := s.postRepo.Unlike(ctx, id, user.ID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, id)
}

func (s *postService) caller(ctx context.Context, identity models.Identity) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, identity.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %q no longer exists", models.ErrInvalidToken, identity.Username)
		}
		return nil, err
	}
	return user, nil
}

// cleanup is detached from request cancellation.
func (s *postService) cleanup(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := s.cleaner.CleanupAsset(context.WithoutCancel(ctx), publicID); err != nil {
		s.log.WithError(err).WithField("public_id", publicID).Error("Asset cleanup failed")
	}
}

// uniqueTagNames drops blank and repeated names (compared exactly) and returns the rest sorted.
func uniqueTagNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
