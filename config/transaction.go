package config

import (
	"errors"

	"ccswitch/config/models"
	"ccswitch/internal/apperr"
	"ccswitch/internal/live"
	"ccswitch/internal/log"
)

// PostCommitAction is the live-file work run after the store was persisted
type PostCommitAction struct {
	App      models.AppType
	Provider models.Provider
	// Backup is the state of the live files before the operation started
	Backup  *live.Snapshot
	SyncMCP bool
	// Refresh reads the written live files back into the stored provider
	Refresh bool
	Common  string
}

type mutation[R any] func(cfg *models.MultiAppConfig) (R, *PostCommitAction, error)

// runTransaction applies fn to the store, persists it and runs the returned
// action. A failure in any step rolls back every step before it: memory,
// then the store file, then the live files.
func runTransaction[R any](m *Manager, fn mutation[R]) (R, error) {
	var (
		zero   R
		result R
		action *PostCommitAction
	)
	original, err := m.store.Mutate(func(cfg *models.MultiAppConfig) error {
		var err error
		result, action, err = fn(cfg)
		return err
	})
	if err != nil {
		return zero, err
	}

	if err := m.store.Save(); err != nil {
		m.store.Replace(original)
		if rbErr := m.store.Save(); rbErr != nil {
			return zero, apperr.Rollback("config.save.rollback_failed", err, rbErr)
		}
		return zero, err
	}

	if action == nil {
		return result, nil
	}
	if err := m.applyPostCommit(action); err != nil {
		log.Warn("%s: rolling back after failed live update: %v", action.App, err)
		m.store.Replace(original)
		var rbErrs []error
		if rbErr := m.store.Save(); rbErr != nil {
			rbErrs = append(rbErrs, rbErr)
		}
		if rbErr := action.Backup.Restore(); rbErr != nil {
			rbErrs = append(rbErrs, rbErr)
		}
		if len(rbErrs) > 0 {
			return zero, apperr.Rollback("post_commit.rollback_failed", err, errors.Join(rbErrs...))
		}
		return zero, err
	}
	return result, nil
}

func (m *Manager) applyPostCommit(a *PostCommitAction) error {
	adapter, err := m.live.Get(a.App)
	if err != nil {
		return err
	}
	if err := adapter.Write(a.Provider, a.Common); err != nil {
		return err
	}
	if a.SyncMCP && m.syncMCP != nil {
		if err := m.syncMCP(a.App); err != nil {
			return err
		}
	}
	if a.Refresh {
		return m.refresh(a.App, a.Provider.ID, adapter)
	}
	return nil
}

// refresh stores what was just written to the live files as the provider's
// snapshot, so the store matches the disk
func (m *Manager) refresh(app models.AppType, id string, adapter live.Adapter) error {
	_, err := m.store.Mutate(func(cfg *models.MultiAppConfig) error {
		mgr := cfg.Manager(app)
		p, ok := mgr.Get(id)
		if !ok {
			return apperr.ProviderNotFound(id)
		}
		settings, err := captureLive(cfg, app, adapter, p)
		if err != nil {
			return err
		}
		p.SettingsConfig = settings
		mgr.Providers.Set(id, p)
		return nil
	})
	if err != nil {
		return err
	}
	return m.store.Save()
}

// captureLive reads the live files into p's settings shape. When the app's
// common snippet is still empty and the adapter can derive one from the live
// files, that snippet is stored first.
func captureLive(cfg *models.MultiAppConfig, app models.AppType, adapter live.Adapter, p models.Provider) (map[string]any, error) {
	common := cfg.CommonConfigSnippets.Get(app)
	if extractor, ok := adapter.(live.CommonExtractor); ok && common == "" {
		extracted, err := extractor.ExtractCommon()
		if err != nil {
			return nil, err
		}
		if extracted != "" {
			log.Detail("%s: captured common config from live files", app)
			cfg.CommonConfigSnippets.Set(app, extracted)
			common = extracted
		}
	}
	return adapter.Capture(p, common)
}
