package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"pinboard-api/helper"
	"pinboard-api/middleware"
	"pinboard-api/models"
	"pinboard-api/services"
)

type PostHandler struct {
	postService    services.PostService
	maxUploadBytes int64
	Helper         *helper.HTTPHelper
}

func NewPostHandler(postService services.PostService, h *helper.HTTPHelper, maxUploadBytes int64) *PostHandler {
	return &PostHandler{postService: postService, Helper: h, maxUploadBytes: maxUploadBytes}
}

func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.postService.ListPosts(c.Request.Context())
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, posts)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}

	post, err := h.postService.GetPost(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, post)
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context")
		return
	}

	limitBody(c, h.maxUploadBytes)
	var form models.CreatePostForm
	if err := c.ShouldBind(&form); err != nil {
		h.Helper.SendError(c, formError(err))
		return
	}
	if !h.Helper.ValidateStruct(c, &form) {
		return
	}

	file, err := readUpload(c, "file", h.maxUploadBytes)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	post, err := h.postService.CreatePost(c.Request.Context(), identity, models.CreatePostRequest{
		Title:       form.Title,
		Description: form.Description,
		File:        file,
		Tags:        form.Tags,
	})
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, post)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context")
		return
	}
	id, ok := h.postID(c)
	if !ok {
		return
	}

	if err := h.postService.DeletePost(c.Request.Context(), id, identity); err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendMessage(c, "Post deleted successfully")
}

func (h *PostHandler) LikePost(c *gin.Context) {
	h.toggleLike(c, h.postService.LikePost)
}

func (h *PostHandler) UnlikePost(c *gin.Context) {
	h.toggleLike(c, h.postService.UnlikePost)
}

type likeFunc func(ctx context.Context, id uint, caller models.Identity) (*models.Post, error)

func (h *PostHandler) toggleLike(c *gin.Context, fn likeFunc) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context")
		return
	}
	id, ok := h.postID(c)
	if !ok {
		return
	}

	post, err := fn(c.Request.Context(), id, identity)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, post)
}

func (h *PostHandler) postID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		h.Helper.SendBadRequest(c, "Invalid post ID")
		return 0, false
	}
	return uint(id), true
}
