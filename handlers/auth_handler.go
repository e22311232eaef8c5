package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pinboard-api/helper"
	"pinboard-api/middleware"
	"pinboard-api/models"
	"pinboard-api/services"
)

type AuthHandler struct {
	authService    services.AuthService
	maxUploadBytes int64
	Helper         *helper.HTTPHelper
}

func NewAuthHandler(authService services.AuthService, h *helper.HTTPHelper, maxUploadBytes int64) *AuthHandler {
	return &AuthHandler{authService: authService, Helper: h, maxUploadBytes: maxUploadBytes}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, err.Error())
		return
	}

	response, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	c.Header("Authorization", "Bearer "+response.Token)
	h.Helper.SendSuccess(c, response)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, err.Error())
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	c.Header("Authorization", "Bearer "+response.Token)
	h.Helper.SendSuccess(c, response)
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context")
		return
	}

	user, err := h.authService.GetProfile(c.Request.Context(), identity)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, user)
}

func (h *AuthHandler) UpdateAvatar(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context")
		return
	}

	limitBody(c, h.maxUploadBytes)
	file, err := readUpload(c, "file", h.maxUploadBytes)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	user, err := h.authService.UpdateAvatar(c.Request.Context(), identity, file)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	h.Helper.SendSuccess(c, user)
}

func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context")
		return
	}

	if err := h.authService.DeleteAccount(c.Request.Context(), identity); err != nil {
		h.Helper.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
