package helper

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinboard-api/models"
)

func TestGetStatusCode(t *testing.T) {
	log, _ := test.NewNullLogger()
	h := NewHTTPHelper(log)

	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{models.ErrDuplicateUser, http.StatusBadRequest},
		{models.ErrOwnerNotFound, http.StatusBadRequest},
		{models.ErrUploadFailed, http.StatusBadRequest},
		{models.ErrValidation, http.StatusBadRequest},
		{models.ErrInvalidCredentials, http.StatusUnauthorized},
		{models.ErrInvalidToken, http.StatusUnauthorized},
		{models.ErrExpiredToken, http.StatusUnauthorized},
		{models.ErrForbidden, http.StatusForbidden},
		{models.ErrNotFound, http.StatusNotFound},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, h.GetStatusCode(tc.err), "%v", tc.err)
	}

	wrapped := fmt.Errorf("get post: %w", models.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, h.GetStatusCode(wrapped))
}

func TestSendError_HidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, hook := test.NewNullLogger()
	h := NewHTTPHelper(log)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/posts", nil)

	h.SendError(c, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Data[logrus.ErrorKey].(error).Error(), "password authentication")
}

type sample struct {
	Title         string   `validate:"required,max=5"`
	ProfileImgURL string   `validate:"omitempty,url"`
	Tags          []string `validate:"dive,max=3"`
}

func TestValidateStruct(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, _ := test.NewNullLogger()
	h := NewHTTPHelper(log)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ok := h.ValidateStruct(c, &sample{Title: "too long", ProfileImgURL: "nope", Tags: []string{"fine", "toolong"}})
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error  string              `json:"error"`
		Fields map[string][]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation error", body.Error)
	assert.Contains(t, body.Fields, "title")
	assert.Contains(t, body.Fields, "profile_img_url")
	assert.Contains(t, body.Fields, "tags")
	assert.True(t, strings.Contains(body.Fields["title"][0], "Title"))

	assert.True(t, h.ValidateStruct(c, &sample{Title: "ok"}))
}

func TestUnderscore(t *testing.T) {
	cases := map[string]string{
		"Title":         "title",
		"ProfileImgURL": "profile_img_url",
		"ImagePublicID": "image_public_id",
		"HTTPServer":    "http_server",
		"already_snake": "already_snake",
	}
	for in, want := range cases {
		assert.Equal(t, want, Underscore(in))
	}
}
