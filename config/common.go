package config

import (
	"ccswitch/config/models"
	"ccswitch/internal/apperr"
	"ccswitch/internal/commonconfig"
)

// CommonConfigSnippet returns the shared snippet of app, or ""
func (m *Manager) CommonConfigSnippet(app models.AppType) (string, error) {
	var (
		text string
		err  error
	)
	m.store.Read(func(cfg *models.MultiAppConfig) {
		if cfg.Manager(app) == nil {
			err = apperr.AppNotFound(string(app))
			return
		}
		text = cfg.CommonConfigSnippets.Get(app)
	})
	return text, err
}

// SetCommonConfigSnippet stores the shared snippet of app (blank text clears
// it) and rewrites the live files of the current provider with it
func (m *Manager) SetCommonConfigSnippet(app models.AppType, text string) error {
	if _, err := commonconfig.ParseSnippet(app, text); err != nil {
		return err
	}
	_, syncLive, err := m.liveTarget(app)
	if err != nil {
		return err
	}
	backup, err := m.backupFor(app, syncLive)
	if err != nil {
		return err
	}

	_, err = runTransaction(m, func(cfg *models.MultiAppConfig) (struct{}, *PostCommitAction, error) {
		mgr, err := manager(cfg, app)
		if err != nil {
			return struct{}{}, nil, err
		}
		cfg.CommonConfigSnippets.Set(app, text)

		current, ok := mgr.Get(mgr.Current)
		if !ok || !syncLive {
			return struct{}{}, nil, nil
		}
		return struct{}{}, &PostCommitAction{
			App:      app,
			Provider: current.Clone(),
			Backup:   backup,
			Common:   cfg.CommonConfigSnippets.Get(app),
		}, nil
	})
	return err
}
