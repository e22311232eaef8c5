package repositories

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"pinboard-api/models"
)

// translate maps gorm sentinels onto domain errors and wraps everything else with op context.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(models.ErrNotFound, op)
	default:
		return errors.Wrap(err, op)
	}
}
