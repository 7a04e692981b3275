package service

import (
	"context"

	"github.com/and161185/storekeeper/internal/model"
)

// SettingsService reads and changes the store settings.
type SettingsService interface {
	// Get is public: the login screen shows the store name and login message.
	Get(ctx context.Context) (model.Settings, error)
	// Update merges patch into the settings. Owner only.
	Update(ctx context.Context, actor Actor, patch model.SettingsPatch) (model.Settings, error)
}

type SettingsServiceImpl struct {
	d Deps
}

// NewSettingsService constructs SettingsService.
func NewSettingsService(d Deps) *SettingsServiceImpl {
	return &SettingsServiceImpl{d: d.withDefaults()}
}

func (s *SettingsServiceImpl) Get(ctx context.Context) (model.Settings, error) {
	return s.d.Repo.Settings(ctx)
}

func (s *SettingsServiceImpl) Update(ctx context.Context, actor Actor, patch model.SettingsPatch) (model.Settings, error) {
	if err := requireOwner(actor); err != nil {
		return model.Settings{}, err
	}
	if err := validateStruct(patch); err != nil {
		return model.Settings{}, err
	}
	return s.d.Repo.PatchSettings(ctx, patch)
}
