package media

import (
	"context"

	"github.com/sirupsen/logrus"
)

// InlineCleaner destroys orphaned assets synchronously through the gateway.
// It is used when no job queue is configured.
type InlineCleaner struct {
	gateway Gateway
	log     *logrus.Logger
}

func NewInlineCleaner(gateway Gateway, log *logrus.Logger) *InlineCleaner {
	return &InlineCleaner{gateway: gateway, log: log}
}

func (c *InlineCleaner) CleanupAsset(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	if err := c.gateway.Destroy(ctx, publicID); err != nil {
		c.log.WithError(err).WithField("public_id", publicID).Error("Failed to clean up asset")
		return err
	}
	c.log.WithField("public_id", publicID).Info("Asset cleaned up")
	return nil
}
