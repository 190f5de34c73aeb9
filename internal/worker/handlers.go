package worker

import (
	"context"
	"fmt"

	"todos-app/backend/internal/assets"
	"todos-app/backend/internal/repositories"

	"github.com/gofrs/uuid"
)

// AssetCleanupHandler deletes the hosted image named in the payload.
func AssetCleanupHandler(store assets.Store) JobHandler {
	return func(ctx context.Context, job *Job) error {
		url := job.Payload["url"]
		if url == "" {
			return fmt.Errorf("asset_cleanup job missing url payload")
		}
		return store.Delete(ctx, url)
	}
}

// TaskPurgeHandler re-runs the owned-task sweep for a deleted account.
// Deleting zero rows is a success, so a purge can run any number of
// times.
func TaskPurgeHandler(tasks repositories.TaskRepository) JobHandler {
	return func(ctx context.Context, job *Job) error {
		raw := job.Payload["owner"]
		owner, err := uuid.FromString(raw)
		if err != nil {
			return fmt.Errorf("task_purge job has invalid owner %q: %w", raw, err)
		}
		_, err = tasks.DeleteByOwner(ctx, owner)
		return err
	}
}
