package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pinboard-api/helper"
	"pinboard-api/middleware"
	"pinboard-api/services"
)

type RouterDeps struct {
	AuthService       services.AuthService
	PostService       services.PostService
	TagService        services.TagService
	Helper            *helper.HTTPHelper
	Log               *logrus.Logger
	MaxUploadBytes    int64
	CORSAllowedOrigin string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	authHandler := NewAuthHandler(deps.AuthService, deps.Helper, deps.MaxUploadBytes)
	postHandler := NewPostHandler(deps.PostService, deps.Helper, deps.MaxUploadBytes)
	tagHandler := NewTagHandler(deps.TagService, deps.Helper)

	router := gin.New()
	router.MaxMultipartMemory = deps.MaxUploadBytes
	router.Use(gin.Recovery(), middleware.Logger(deps.Log), middleware.CORS(deps.CORSAllowedOrigin))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	requireAuth := middleware.AuthMiddleware(deps.AuthService, deps.Helper)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		posts := api.Group("/posts")
		{
			posts.GET("", postHandler.ListPosts)
			posts.GET("/:id", postHandler.GetPost)
			posts.POST("", requireAuth, postHandler.CreatePost)
			posts.DELETE("/:id", requireAuth, postHandler.DeletePost)
			posts.POST("/:id/like", requireAuth, postHandler.LikePost)
			posts.DELETE("/:id/like", requireAuth, postHandler.UnlikePost)
		}

		me := api.Group("/users/me", requireAuth)
		{
			me.GET("", authHandler.GetProfile)
			me.PUT("/avatar", authHandler.UpdateAvatar)
			me.DELETE("", authHandler.DeleteAccount)
		}

		api.GET("/tags", tagHandler.GetTags)
	}

	return router
}
