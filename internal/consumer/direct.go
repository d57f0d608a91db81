package consumer

import (
	"context"
	"time"

	"github.com/fortuna/services/playbyplay-service/pkg/models"
)

// Direct routes artifact writes to a notifier in-process, for deployments
// without a Redis stream between writer and subscribers
type Direct struct {
	notifier Notifier
}

// NewDirect creates an in-process listener
func NewDirect(notifier Notifier) *Direct {
	return &Direct{notifier: notifier}
}

// ArtifactWritten implements storage.ChangeListener
func (d *Direct) ArtifactWritten(ctx context.Context, key, version string) error {
	return Route(ctx, d.notifier, models.ArtifactChange{
		Key:       key,
		Version:   version,
		WrittenAt: time.Now().UTC().Format(time.RFC3339),
	})
}
