package repositories_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pinboard-api/config"
	"pinboard-api/handlers"
	"pinboard-api/helper"
	"pinboard-api/media"
	"pinboard-api/models"
	"pinboard-api/repositories"
	"pinboard-api/services"
)

// fakeGateway stands in for the remote media service.
type fakeGateway struct {
	mu        sync.Mutex
	seq       int
	destroyed []string
}

func (g *fakeGateway) Upload(ctx context.Context, data []byte, folder string) (*media.Asset, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	id := fmt.Sprintf("%s/%d", folder, g.seq)
	return &media.Asset{URL: "https://cdn.test/" + id + ".png", PublicID: id}, nil
}

func (g *fakeGateway) Destroy(ctx context.Context, publicID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.destroyed = append(g.destroyed, publicID)
	return nil
}

type IntegrationTestSuite struct {
	suite.Suite
	db      *gorm.DB
	gateway *fakeGateway
	users   repositories.UserRepository
	tags    repositories.TagRepository
	posts   repositories.PostRepository
	router  *gin.Engine
}

func (suite *IntegrationTestSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		suite.T().Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		suite.T().Fatal("Failed to connect to test database:", err)
	}
	suite.db = db

	suite.dropTables()
	suite.Require().NoError(config.MigrateDB(db))

	suite.users = repositories.NewUserRepository(db)
	suite.tags = repositories.NewTagRepository(db)
	suite.posts = repositories.NewPostRepository(db, suite.tags)
}

func (suite *IntegrationTestSuite) TearDownSuite() {
	if suite.db != nil {
		suite.dropTables()
	}
}

func (suite *IntegrationTestSuite) dropTables() {
	for _, table := range []string{"user_likes", "post_tags", "posts", "tags", "user_roles", "users"} {
		suite.db.Exec("DROP TABLE IF EXISTS " + table)
	}
}

func (suite *IntegrationTestSuite) SetupTest() {
	suite.db.Exec("TRUNCATE TABLE user_likes, post_tags, posts, tags, user_roles, users RESTART IDENTITY")

	gin.SetMode(gin.TestMode)
	log, _ := test.NewNullLogger()
	suite.gateway = &fakeGateway{}
	cleaner := media.NewInlineCleaner(suite.gateway, log)
	jwtCfg := config.JWTConfig{Secret: []byte("test-secret"), Expiration: time.Hour}

	suite.router = handlers.NewRouter(handlers.RouterDeps{
		AuthService:       services.NewAuthService(suite.users, suite.gateway, cleaner, jwtCfg, "avatars", log),
		PostService:       services.NewPostService(suite.posts, suite.users, suite.gateway, cleaner, "pinboard_posts", log),
		TagService:        services.NewTagService(suite.tags),
		Helper:            helper.NewHTTPHelper(log),
		Log:               log,
		MaxUploadBytes:    1 << 20,
		CORSAllowedOrigin: "*",
	})
}

func (suite *IntegrationTestSuite) createUser(username string) *models.User {
	user := &models.User{Username: username, Email: username + "@example.com", Password: "x", Roles: []string{models.RoleUser}}
	suite.Require().NoError(suite.users.Create(context.Background(), user))
	return user
}

func (suite *IntegrationTestSuite) createPost(owner *models.User, title string, tags ...string) *models.Post {
	post := &models.Post{Title: title, ImageURL: "https://cdn.test/" + title, ImagePublicID: "p/" + title, OwnerID: owner.ID}
	suite.Require().NoError(suite.posts.Create(context.Background(), post, tags))
	return post
}

func (suite *IntegrationTestSuite) countRows(table string) int64 {
	var n int64
	suite.Require().NoError(suite.db.Table(table).Count(&n).Error)
	return n
}

func (suite *IntegrationTestSuite) TestUserCreate_DuplicateAndRoles() {
	ctx := context.Background()
	suite.createUser("alice")

	err := suite.users.Create(ctx, &models.User{Username: "alice", Email: "other@example.com", Password: "x"})
	suite.ErrorIs(err, models.ErrDuplicateUser)

	user, err := suite.users.GetByUsername(ctx, "alice")
	suite.Require().NoError(err)
	suite.Equal([]string{models.RoleUser}, user.Roles)

	exists, err := suite.users.ExistsByEmail(ctx, "alice@example.com")
	suite.NoError(err)
	suite.True(exists)

	_, err = suite.users.GetByUsername(ctx, "ghost")
	suite.ErrorIs(err, models.ErrNotFound)
}

func (suite *IntegrationTestSuite) TestTagsAreSharedAcrossPosts() {
	ctx := context.Background()
	alice := suite.createUser("alice")

	first := suite.createPost(alice, "one", "art", "blue")
	second := suite.createPost(alice, "two", "art")

	suite.Equal(int64(2), suite.countRows("tags"))
	suite.Equal(first.Tags[0].ID, second.Tags[0].ID)

	loaded, err := suite.posts.GetByID(ctx, first.ID)
	suite.Require().NoError(err)
	suite.Equal("alice", loaded.Owner.Username)
	suite.Len(loaded.Tags, 2)
	suite.ElementsMatch([]string{"art", "blue"}, []string{loaded.Tags[0].Name, loaded.Tags[1].Name})

	all, err := suite.posts.ListAll(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(all, 2)
	suite.Equal(second.ID, all[0].ID)
}

func (suite *IntegrationTestSuite) TestCreateReusesExistingTagAndAddsNewOne() {
	ctx := context.Background()
	alice := suite.createUser("alice")
	art, err := suite.tags.GetOrCreate(ctx, "art")
	suite.Require().NoError(err)

	post := suite.createPost(alice, "one", "art", "blue")

	suite.Equal(int64(2), suite.countRows("tags"))
	names := map[string]uint{}
	for _, tag := range post.Tags {
		names[tag.Name] = tag.ID
	}
	suite.Equal(map[string]uint{"art": art.ID, "blue": names["blue"]}, names)
	suite.NotZero(names["blue"])

	again, err := suite.tags.GetOrCreate(ctx, "art")
	suite.Require().NoError(err)
	suite.Equal(art.ID, again.ID)

	all, err := suite.tags.GetAll(ctx)
	suite.Require().NoError(err)
	suite.Equal("art", all[0].Name)
}

func (suite *IntegrationTestSuite) TestConcurrentCreatesShareOneNewTag() {
	alice := suite.createUser("alice")

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			post := &models.Post{Title: fmt.Sprintf("p%d", i), ImageURL: "u", ImagePublicID: fmt.Sprintf("id%d", i), OwnerID: alice.ID}
			errs[i] = suite.posts.Create(context.Background(), post, []string{"fresh"})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		suite.NoError(err)
	}
	suite.Equal(int64(1), suite.countRows("tags"))
	suite.Equal(int64(writers), suite.countRows("post_tags"))
}

func (suite *IntegrationTestSuite) TestConcurrentCreatesWithSwappedTagOrder() {
	alice := suite.createUser("alice")

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tags := []string{"x", "y"}
			if i%2 == 1 {
				tags = []string{"y", "x"}
			}
			post := &models.Post{Title: fmt.Sprintf("p%d", i), ImageURL: "u", ImagePublicID: fmt.Sprintf("id%d", i), OwnerID: alice.ID}
			errs[i] = suite.posts.Create(context.Background(), post, tags)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		suite.NoError(err)
	}
	suite.Equal(int64(2), suite.countRows("tags"))
	suite.Equal(int64(2*writers), suite.countRows("post_tags"))
}

func (suite *IntegrationTestSuite) TestCreatePostForMissingOwner() {
	post := &models.Post{Title: "orphan", ImageURL: "u", ImagePublicID: "p/orphan", OwnerID: 999}
	err := suite.posts.Create(context.Background(), post, []string{"art"})
	suite.ErrorIs(err, models.ErrNotFound)
	suite.Equal(int64(0), suite.countRows("posts"))
	suite.Equal(int64(0), suite.countRows("tags"))
}

func (suite *IntegrationTestSuite) TestDeletePostKeepsTags() {
	ctx := context.Background()
	alice := suite.createUser("alice")
	post := suite.createPost(alice, "one", "art")
	_, err := suite.posts.Like(ctx, post.ID, alice.ID)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.posts.Delete(ctx, post.ID))

	_, err = suite.posts.GetByID(ctx, post.ID)
	suite.ErrorIs(err, models.ErrNotFound)
	suite.ErrorIs(suite.posts.Delete(ctx, post.ID), models.ErrNotFound)
	suite.Equal(int64(1), suite.countRows("tags"))
	suite.Equal(int64(0), suite.countRows("post_tags"))
	suite.Equal(int64(0), suite.countRows("user_likes"))
}

func (suite *IntegrationTestSuite) TestLikesAreIdempotent() {
	ctx := context.Background()
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")
	post := suite.createPost(alice, "one")

	changed, err := suite.posts.Like(ctx, post.ID, bob.ID)
	suite.Require().NoError(err)
	suite.True(changed)
	changed, err = suite.posts.Like(ctx, post.ID, bob.ID)
	suite.Require().NoError(err)
	suite.False(changed)

	loaded, _ := suite.posts.GetByID(ctx, post.ID)
	suite.Equal(1, loaded.LikeCount)

	for i := 0; i < 2; i++ {
		_, err = suite.posts.Unlike(ctx, post.ID, bob.ID)
		suite.Require().NoError(err)
	}
	loaded, _ = suite.posts.GetByID(ctx, post.ID)
	suite.Equal(0, loaded.LikeCount)

	_, err = suite.posts.Like(ctx, 999, bob.ID)
	suite.ErrorIs(err, models.ErrNotFound)
}

func (suite *IntegrationTestSuite) TestDeleteUserCascades() {
	ctx := context.Background()
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")
	alicePost := suite.createPost(alice, "a", "art")
	bobPost := suite.createPost(bob, "b", "art")
	_, _ = suite.posts.Like(ctx, bobPost.ID, alice.ID)
	_, _ = suite.posts.Like(ctx, alicePost.ID, bob.ID)

	ids, err := suite.users.Delete(ctx, alice.ID)
	suite.Require().NoError(err)
	suite.Equal([]string{"p/a"}, ids)

	_, err = suite.posts.GetByID(ctx, alicePost.ID)
	suite.ErrorIs(err, models.ErrNotFound)
	remaining, err := suite.posts.GetByID(ctx, bobPost.ID)
	suite.Require().NoError(err)
	suite.Equal(0, remaining.LikeCount)
	suite.Equal(int64(1), suite.countRows("users"))
	suite.Equal(int64(1), suite.countRows("user_roles"))
	suite.Equal(int64(1), suite.countRows("post_tags"))
	suite.Equal(int64(0), suite.countRows("user_likes"))
	suite.Equal(int64(1), suite.countRows("tags"))

	_, err = suite.users.Delete(ctx, alice.ID)
	suite.ErrorIs(err, models.ErrNotFound)
}

// A post created while the owner is being deleted either lands before the
// delete (and its image id is returned) or fails; it is never orphaned.
func (suite *IntegrationTestSuite) TestDeleteUserRacingCreatePost() {
	ctx := context.Background()
	alice := suite.createUser("alice")
	suite.createPost(alice, "a")

	var (
		wg        sync.WaitGroup
		deleted   []string
		deleteErr error
		createErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		deleted, deleteErr = suite.users.Delete(ctx, alice.ID)
	}()
	go func() {
		defer wg.Done()
		createErr = suite.posts.Create(ctx, &models.Post{Title: "late", ImageURL: "https://cdn.test/late", ImagePublicID: "p/late", OwnerID: alice.ID}, nil)
	}()
	wg.Wait()

	suite.Require().NoError(deleteErr)
	suite.Equal(int64(0), suite.countRows("posts"))
	if createErr == nil {
		suite.ElementsMatch([]string{"p/a", "p/late"}, deleted)
	} else {
		suite.Equal([]string{"p/a"}, deleted)
	}
}

func (suite *IntegrationTestSuite) TestEndToEnd_RegisterCreateGetDelete() {
	body, _ := json.Marshal(models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Require().Equal(http.StatusOK, w.Code)

	var auth models.AuthResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &auth))

	form := &bytes.Buffer{}
	mw := multipart.NewWriter(form)
	_ = mw.WriteField("title", "Sunset")
	_ = mw.WriteField("tags", "art")
	_ = mw.WriteField("tags", "blue")
	_ = mw.WriteField("tags", "art")
	part, _ := mw.CreateFormFile("file", "sunset.png")
	_, _ = part.Write([]byte("png"))
	_ = mw.Close()

	req = httptest.NewRequest(http.MethodPost, "/api/posts", form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var created models.Post
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	suite.Len(created.Tags, 2)
	suite.Equal("pinboard_posts/1", created.ImagePublicID)

	path := fmt.Sprintf("/api/posts/%d", created.ID)
	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	suite.Equal(http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodDelete, path, nil)
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal([]string{"pinboard_posts/1"}, suite.gateway.destroyed)
}

func TestIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
