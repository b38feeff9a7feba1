package config

import (
	"ccswitch/config/models"
	"ccswitch/internal/apperr"
	"ccswitch/internal/live"
	"ccswitch/internal/log"
)

// Switch makes id the current provider of app. The outgoing provider's
// snapshot is first refreshed from the live files so edits made by the tool
// itself survive; then the target is written live, the MCP servers are
// synced and the target's snapshot is read back from disk.
//
// When the app's live files are not to be touched, only the store changes.
func (m *Manager) Switch(app models.AppType, id string) error {
	adapter, syncLive, err := m.liveTarget(app)
	if err != nil {
		return err
	}
	if _, err := m.Get(app, id); err != nil {
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
		target, ok := mgr.Get(id)
		if !ok {
			return struct{}{}, nil, apperr.ProviderNotFound(id)
		}

		if syncLive && mgr.Current != "" && mgr.Current != id {
			if err := backfill(cfg, app, adapter); err != nil {
				return struct{}{}, nil, err
			}
		}
		mgr.Current = id

		if !syncLive {
			log.Detail("%s: live files left untouched", app)
			return struct{}{}, nil, nil
		}
		return struct{}{}, &PostCommitAction{
			App:      app,
			Provider: target.Clone(),
			Backup:   backup,
			SyncMCP:  true,
			Refresh:  true,
			Common:   cfg.CommonConfigSnippets.Get(app),
		}, nil
	})
	return err
}

// backfill stores the live files as the outgoing provider's snapshot
func backfill(cfg *models.MultiAppConfig, app models.AppType, adapter live.Adapter) error {
	mgr := cfg.Manager(app)
	outgoing, ok := mgr.Get(mgr.Current)
	if !ok || !adapter.HasLive() {
		return nil
	}
	settings, err := captureLive(cfg, app, adapter, outgoing)
	if err != nil {
		return err
	}
	outgoing.SettingsConfig = settings
	mgr.Providers.Set(outgoing.ID, outgoing)
	return nil
}
