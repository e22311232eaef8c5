package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"pinboard-api/config"
	"pinboard-api/media"
	"pinboard-api/models"
	"pinboard-api/repositories"
)

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	VerifyToken(tokenString string) (*models.Identity, error)
	GetProfile(ctx context.Context, identity models.Identity) (*models.User, error)
	UpdateAvatar(ctx context.Context, identity models.Identity, file []byte) (*models.User, error)
	DeleteAccount(ctx context.Context, identity models.Identity) error
}

// Claims is the JWT payload. Subject carries the username.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo     repositories.UserRepository
	gateway      media.Gateway
	cleaner      AssetCleaner
	jwt          config.JWTConfig
	avatarFolder string
	log          *logrus.Logger
	now          func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	gateway media.Gateway,
	cleaner AssetCleaner,
	jwtCfg config.JWTConfig,
	avatarFolder string,
	log *logrus.Logger,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		gateway:      gateway,
		cleaner:      cleaner,
		jwt:          jwtCfg,
		avatarFolder: avatarFolder,
		log:          log,
		now:          time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", models.ErrValidation)
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: username %q is taken", models.ErrDuplicateUser, username)
	}
	exists, err = s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email is already registered", models.ErrDuplicateUser)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		Roles:    []string{models.RoleUser},
	}
	// a concurrent registration can still lose the race on the unique index
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.WithField("username", username).Info("User registered")

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token}, nil
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.log.WithField("username", username).Warn("Login with wrong password")
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token}, nil
}

func (s *authService) VerifyToken(tokenString string) (*models.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.jwt.Secret, nil
	})
	if err != nil {
		// claims are checked before the signature, so a forged token can also carry the expired flag
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenMalformed) || errors.Is(err, jwt.ErrTokenUnverifiable) {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, models.ErrInvalidToken
	}

	return &models.Identity{Username: claims.Subject, Roles: claims.Roles}, nil
}

func (s *authService) GetProfile(ctx context.Context, identity models.Identity) (*models.User, error) {
	return s.currentUser(ctx, identity)
}

// UpdateAvatar uploads file to the avatar folder and stores the new URL on the user.
func (s *authService) UpdateAvatar(ctx context.Context, identity models.Identity, file []byte) (*models.User, error) {
	if len(file) == 0 {
		return nil, fmt.Errorf("%w: file is required", models.ErrValidation)
	}
	user, err := s.currentUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	asset, err := s.gateway.Upload(ctx, file, s.avatarFolder)
	if err != nil || asset == nil || asset.URL == "" {
		return nil, fmt.Errorf("%w: %v", models.ErrUploadFailed, err)
	}

	if err := s.userRepo.UpdateProfileImage(ctx, user.ID, asset.URL); err != nil {
		s.cleanup(ctx, asset.PublicID)
		return nil, err
	}
	user.ProfileImgURL = asset.URL
	return user, nil
}

// DeleteAccount deletes the caller and all their posts, then schedules cleanup of the posts' images.
func (s *authService) DeleteAccount(ctx context.Context, identity models.Identity) error {
	user, err := s.currentUser(ctx, identity)
	if err != nil {
		return err
	}

	publicIDs, err := s.userRepo.Delete(ctx, user.ID)
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"username": user.Username, "posts": len(publicIDs)}).Info("Account deleted")

	for _, id := range publicIDs {
		s.cleanup(ctx, id)
	}
	return nil
}

func (s *authService) currentUser(ctx context.Context, identity models.Identity) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, identity.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %q no longer exists", models.ErrInvalidToken, identity.Username)
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) cleanup(ctx context.Context, publicID string) {
	if err := s.cleaner.CleanupAsset(context.WithoutCancel(ctx), publicID); err != nil {
		s.log.WithError(err).WithField("public_id", publicID).Error("Asset cleanup failed")
	}
}

func (s *authService) generateToken(user *models.User) (string, error) {
	now := s.now()

	claims := Claims{
		Roles: user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwt.Expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwt.Secret)
}
