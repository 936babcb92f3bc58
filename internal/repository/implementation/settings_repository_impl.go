package implementation

import (
	"context"
	"errors"
	"fmt"

	"subscription-tracker-be/internal/entity"
	"subscription-tracker-be/internal/repository/contract"
	"subscription-tracker-be/pkg/kvstore"
)

const SettingsKey = "config"

type SettingsRepositoryImpl struct {
	store kvstore.Store
}

func NewSettingsRepository(store kvstore.Store) contract.SettingsRepository {
	return &SettingsRepositoryImpl{store: store}
}

func (r *SettingsRepositoryImpl) Get(ctx context.Context) (entity.Settings, error) {
	// stored fields decode over the defaults, so documents written by older
	// versions pick up new fields with their default values
	settings := entity.DefaultSettings()
	err := kvstore.GetJSON(ctx, r.store, SettingsKey, &settings)
	if errors.Is(err, kvstore.ErrNotFound) {
		return entity.DefaultSettings(), nil
	}
	if err != nil {
		return entity.DefaultSettings(), fmt.Errorf("load settings: %w", err)
	}
	settings.PaymentHistoryLimit = settings.HistoryLimit()
	if settings.NotificationHours == nil {
		settings.NotificationHours = []string{}
	}
	return settings, nil
}

func (r *SettingsRepositoryImpl) Save(ctx context.Context, settings entity.Settings) error {
	if err := kvstore.PutJSON(ctx, r.store, SettingsKey, settings, 0); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
