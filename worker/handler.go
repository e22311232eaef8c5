package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"pinboard-api/media"
	"pinboard-api/tasks"
)

// AssetCleanupHandler destroys remote assets named by media:cleanup tasks.
type AssetCleanupHandler struct {
	gateway media.Gateway
	log     *logrus.Entry
}

func NewAssetCleanupHandler(gateway media.Gateway, log *logrus.Entry) *AssetCleanupHandler {
	return &AssetCleanupHandler{gateway: gateway, log: log}
}

// ProcessTask implements asynq.Handler.
func (h *AssetCleanupHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	retry, _ := asynq.GetRetryCount(ctx)
	logCtx := h.log.WithFields(logrus.Fields{"task_type": t.Type(), "retry": retry})

	var payload tasks.AssetCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.PublicID == "" {
		logCtx.Error("Cleanup task without public id")
		return fmt.Errorf("empty public id: %w", asynq.SkipRetry)
	}

	logCtx = logCtx.WithField("public_id", payload.PublicID)
	if err := h.gateway.Destroy(ctx, payload.PublicID); err != nil {
		logCtx.WithError(err).Warn("Asset cleanup failed")
		return fmt.Errorf("destroy %s: %w", payload.PublicID, err)
	}

	logCtx.Info("Asset cleanup task processed successfully")
	return nil
}
