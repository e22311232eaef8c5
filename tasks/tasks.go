package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

const (
	TypeAssetCleanup = "media:cleanup"

	assetCleanupMaxRetry = 5
)

// AssetCleanupPayload names a remote asset that no stored row references any more.
type AssetCleanupPayload struct {
	PublicID string `json:"public_id"`
}

func NewAssetCleanupTask(publicID string) (*asynq.Task, error) {
	payload, err := json.Marshal(AssetCleanupPayload{PublicID: publicID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAssetCleanup, payload, asynq.MaxRetry(assetCleanupMaxRetry)), nil
}

// enqueuer is the part of *asynq.Client the scheduler uses.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Scheduler hands asset cleanups to the background worker.
type Scheduler struct {
	client enqueuer
	log    *logrus.Logger
}

func NewScheduler(client *asynq.Client, log *logrus.Logger) *Scheduler {
	return &Scheduler{client: client, log: log}
}

func (s *Scheduler) CleanupAsset(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	task, err := NewAssetCleanupTask(publicID)
	if err != nil {
		return fmt.Errorf("build cleanup task: %w", err)
	}

	info, err := s.client.EnqueueContext(ctx, task)
	if err != nil {
		s.log.WithError(err).WithField("public_id", publicID).Error("Failed to enqueue asset cleanup")
		return fmt.Errorf("enqueue cleanup of %s: %w", publicID, err)
	}
	s.log.WithFields(logrus.Fields{"public_id": publicID, "task_id": info.ID}).Info("Asset cleanup enqueued")
	return nil
}
