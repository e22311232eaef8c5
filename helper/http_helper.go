package helper

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/sirupsen/logrus"
	"gopkg.in/go-playground/validator.v9"
	en_translations "gopkg.in/go-playground/validator.v9/translations/en"

	"pinboard-api/models"
)

const textInternalError = "internal server error"

// HTTPHelper ...
type HTTPHelper struct {
	Validate   *validator.Validate
	Translator ut.Translator
	Log        *logrus.Logger
}

// NewHTTPHelper builds a helper whose validation messages are rendered in English.
func NewHTTPHelper(log *logrus.Logger) *HTTPHelper {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New()
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		log.WithError(err).Warn("Failed to register validation translations")
	}

	return &HTTPHelper{Validate: validate, Translator: trans, Log: log}
}

// GetStatusCode ...
func (u *HTTPHelper) GetStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, models.ErrDuplicateUser),
		errors.Is(err, models.ErrOwnerNotFound),
		errors.Is(err, models.ErrUploadFailed),
		errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrInvalidToken),
		errors.Is(err, models.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// SendError ...
// Send an error produced by a service. Internal errors are logged and replaced by an opaque message.
func (u *HTTPHelper) SendError(c *gin.Context, err error) {
	status := u.GetStatusCode(err)
	if status == http.StatusInternalServerError {
		u.Log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		u.SendErrorMessage(c, status, textInternalError)
		return
	}
	u.SendErrorMessage(c, status, err.Error())
}

// SendErrorMessage ...
func (u *HTTPHelper) SendErrorMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// SendBadRequest ...
func (u *HTTPHelper) SendBadRequest(c *gin.Context, message string) {
	u.SendErrorMessage(c, http.StatusBadRequest, message)
}

// SendUnauthorizedError ...
func (u *HTTPHelper) SendUnauthorizedError(c *gin.Context, message string) {
	u.SendErrorMessage(c, http.StatusUnauthorized, message)
}

// SendValidationError ...
// Send validation error response to consumers.
func (u *HTTPHelper) SendValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	errorResponse := map[string][]string{}
	errorTranslation := validationErrors.Translate(u.Translator)
	for _, err := range validationErrors {
		errKey := Underscore(strings.SplitN(err.StructField(), "[", 2)[0])
		errorResponse[errKey] = append(errorResponse[errKey], errorTranslation[err.Namespace()])
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"error":  models.ErrValidation.Error(),
		"fields": errorResponse,
	})
}

// ValidateStruct runs the struct validator and answers the request when validation fails.
// It reports whether the handler may continue.
func (u *HTTPHelper) ValidateStruct(c *gin.Context, v interface{}) bool {
	err := u.Validate.Struct(v)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		u.SendValidationError(c, verrs)
	} else {
		u.SendBadRequest(c, err.Error())
	}
	return false
}

// SendSuccess ...
// Send success response to consumers.
func (u *HTTPHelper) SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func (u *HTTPHelper) SendMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}
