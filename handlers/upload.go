package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"pinboard-api/models"
)

// multipartOverhead is the room left above the file limit for form fields and part headers.
const multipartOverhead = 1 << 20

// limitBody caps the request body before anything parses it, so an oversized
// upload is cut off while streaming instead of being spooled to disk first.
func limitBody(c *gin.Context, maxBytes int64) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)
}

// formError maps a failure to parse the request form to a validation error.
func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: request body exceeds %d bytes", models.ErrValidation, tooLarge.Limit)
	}
	return fmt.Errorf("%w: %v", models.ErrValidation, err)
}

// readUpload returns the bytes of the named multipart file, or nil when the field is absent.
func readUpload(c *gin.Context, field string, maxBytes int64) ([]byte, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, formError(err)
	}
	if fh.Size > maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", models.ErrValidation, maxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", models.ErrValidation, maxBytes)
	}
	return data, nil
}
