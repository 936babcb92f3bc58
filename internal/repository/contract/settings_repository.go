package contract

import (
	"context"

	"subscription-tracker-be/internal/entity"
)

type SettingsRepository interface {
	// Get returns DefaultSettings merged under the stored document; a missing
	// document yields the defaults.
	Get(ctx context.Context) (entity.Settings, error)
	Save(ctx context.Context, settings entity.Settings) error
}
