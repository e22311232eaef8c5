package services

import "context"

// AssetCleaner removes a remote asset that no stored row references.
// Implementations: tasks.Scheduler (queued) and media.InlineCleaner.
type AssetCleaner interface {
	CleanupAsset(ctx context.Context, publicID string) error
}
