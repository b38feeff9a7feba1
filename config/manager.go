package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"ccswitch/config/models"
	"ccswitch/config/storage"
	"ccswitch/config/validation"
	"ccswitch/internal/apperr"
	"ccswitch/internal/live"
	"ccswitch/internal/log"
)

// MCPSyncFunc propagates the enabled MCP servers after app's live files changed
type MCPSyncFunc func(app models.AppType) error

// Options configures a Manager
type Options struct {
	// Validator checks provider shape before any mutation; nil uses the built-in checks
	Validator *validation.Validator
	// SyncMCP is called after a switch wrote the live files; may be nil
	SyncMCP MCPSyncFunc
	// LiveSync decides whether live files are touched at all
	LiveSync LiveSyncMode
	Now      func() time.Time
}

// Manager is the provider engine: every operation is a store mutation plus
// an optional live-file update, run as one transaction
type Manager struct {
	store     *Store
	live      *live.Registry
	validator *validation.Validator
	input     *validation.InputValidator
	syncMCP   MCPSyncFunc
	liveSync  LiveSyncMode
	now       func() time.Time
}

// NewManager creates a Manager over an opened store and the live adapters
func NewManager(store *Store, registry *live.Registry, opts Options) *Manager {
	m := &Manager{
		store:     store,
		live:      registry,
		validator: opts.Validator,
		input:     validation.NewInputValidator(),
		syncMCP:   opts.SyncMCP,
		liveSync:  opts.LiveSync,
		now:       opts.Now,
	}
	if m.validator == nil {
		m.validator = validation.NewValidator()
	}
	if m.liveSync == "" {
		m.liveSync = LiveSyncAuto
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Store returns the underlying store
func (m *Manager) Store() *Store {
	return m.store
}

// Live returns the live adapter registry
func (m *Manager) Live() *live.Registry {
	return m.live
}

// liveTarget returns the adapter for app and whether its live files may be written
func (m *Manager) liveTarget(app models.AppType) (live.Adapter, bool, error) {
	adapter, err := m.live.Get(app)
	if err != nil {
		return nil, false, err
	}
	switch m.liveSync {
	case LiveSyncNever:
		return adapter, false, nil
	case LiveSyncAlways:
		return adapter, true, nil
	}
	info, err := os.Stat(adapter.ConfigDir())
	return adapter, err == nil && info.IsDir(), nil
}

// backupFor captures the live files of app when they are going to be written
func (m *Manager) backupFor(app models.AppType, syncLive bool) (*live.Snapshot, error) {
	if !syncLive {
		return nil, nil
	}
	return m.live.Snapshot(app)
}

func manager(cfg *models.MultiAppConfig, app models.AppType) (*models.AppManager, error) {
	mgr := cfg.Manager(app)
	if mgr == nil {
		return nil, apperr.AppNotFound(string(app))
	}
	return mgr, nil
}

// SortProviders orders providers by sort index (unset last), then creation time
func SortProviders(list []models.Provider) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].SortIndex, list[j].SortIndex
		switch {
		case a != nil && b != nil && *a != *b:
			return *a < *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return list[i].CreatedAt < list[j].CreatedAt
	})
}

// List returns copies of app's providers in insertion order
func (m *Manager) List(app models.AppType) ([]models.Provider, error) {
	var (
		list []models.Provider
		err  error
	)
	m.store.Read(func(cfg *models.MultiAppConfig) {
		var mgr *models.AppManager
		if mgr, err = manager(cfg, app); err != nil {
			return
		}
		for _, p := range mgr.List() {
			list = append(list, p.Clone())
		}
	})
	return list, err
}

// Get returns a copy of one provider
func (m *Manager) Get(app models.AppType, id string) (models.Provider, error) {
	var (
		p   models.Provider
		err error
	)
	m.store.Read(func(cfg *models.MultiAppConfig) {
		var mgr *models.AppManager
		if mgr, err = manager(cfg, app); err != nil {
			return
		}
		found, ok := mgr.Get(id)
		if !ok {
			err = apperr.ProviderNotFound(id)
			return
		}
		p = found.Clone()
	})
	return p, err
}

// Current returns the id of app's live provider, "" when none is selected.
// A current id that no longer names a provider is replaced by the first
// provider in sort order, and that choice is persisted.
func (m *Manager) Current(app models.AppType) (string, error) {
	var (
		current string
		healthy bool
		err     error
	)
	m.store.Read(func(cfg *models.MultiAppConfig) {
		var mgr *models.AppManager
		if mgr, err = manager(cfg, app); err != nil {
			return
		}
		current = mgr.Current
		healthy = current == "" || mgr.Has(current)
	})
	if err != nil || healthy {
		return current, err
	}

	return runTransaction(m, func(cfg *models.MultiAppConfig) (string, *PostCommitAction, error) {
		mgr, err := manager(cfg, app)
		if err != nil {
			return "", nil, err
		}
		if mgr.Current == "" || mgr.Has(mgr.Current) {
			return mgr.Current, nil, nil
		}
		list := mgr.List()
		SortProviders(list)
		previous := mgr.Current
		mgr.Current = ""
		if len(list) > 0 {
			mgr.Current = list[0].ID
		}
		log.Warn("%s: current provider %q is missing, selected %q", app, previous, mgr.Current)
		return mgr.Current, nil, nil
	})
}

// prepare normalizes and validates a provider before it enters a transaction
func (m *Manager) prepare(app models.AppType, p models.Provider) (models.Provider, error) {
	p = p.Clone()
	if app == models.AppClaude {
		if settings := p.Settings(); settings != nil {
			normalized, err := live.NormalizeClaudeModels(settings)
			if err != nil {
				return p, err
			}
			p.SettingsConfig = normalized
		}
	}
	if err := m.validator.ValidateProvider(app, p); err != nil {
		return p, err
	}
	return p, nil
}

// Add inserts a new provider. The first provider of an app becomes current
// and is written to the live files.
func (m *Manager) Add(app models.AppType, p models.Provider) (models.Provider, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p, err := m.prepare(app, p)
	if err != nil {
		return p, err
	}
	now := m.now().UnixMilli()
	if p.CreatedAt == 0 {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, syncLive, err := m.liveTarget(app)
	if err != nil {
		return p, err
	}
	backup, err := m.backupFor(app, syncLive)
	if err != nil {
		return p, err
	}

	_, err = runTransaction(m, func(cfg *models.MultiAppConfig) (struct{}, *PostCommitAction, error) {
		mgr, err := manager(cfg, app)
		if err != nil {
			return struct{}{}, nil, err
		}
		if mgr.Has(p.ID) {
			return struct{}{}, nil, apperr.Validation("provider.id.duplicate",
				fmt.Sprintf("供应商 ID 已存在: %s", p.ID),
				fmt.Sprintf("Provider id already exists: %s", p.ID))
		}
		first := mgr.Providers.Len() == 0
		mgr.Providers.Set(p.ID, p.Clone())
		if !first {
			return struct{}{}, nil, nil
		}
		mgr.Current = p.ID
		if !syncLive {
			return struct{}{}, nil, nil
		}
		return struct{}{}, &PostCommitAction{
			App:      app,
			Provider: p.Clone(),
			Backup:   backup,
			Common:   cfg.CommonConfigSnippets.Get(app),
		}, nil
	})
	return p, err
}

// Duplicate stores a copy of provider id under a fresh id, named "<name> copy"
func (m *Manager) Duplicate(app models.AppType, id string) (models.Provider, error) {
	src, err := m.Get(app, id)
	if err != nil {
		return models.Provider{}, err
	}
	dup := src.Clone()
	dup.ID = uuid.NewString()
	dup.Name = strings.TrimSpace(src.Name + " copy")
	dup.CreatedAt = 0
	dup.UpdatedAt = 0
	return m.Add(app, dup)
}

// Update replaces a stored provider. A nil Meta keeps the stored meta; any
// other value replaces it. The live files are rewritten when p is current.
func (m *Manager) Update(app models.AppType, p models.Provider) (models.Provider, error) {
	p, err := m.prepare(app, p)
	if err != nil {
		return p, err
	}
	_, syncLive, err := m.liveTarget(app)
	if err != nil {
		return p, err
	}
	backup, err := m.backupFor(app, syncLive)
	if err != nil {
		return p, err
	}

	return runTransaction(m, func(cfg *models.MultiAppConfig) (models.Provider, *PostCommitAction, error) {
		mgr, err := manager(cfg, app)
		if err != nil {
			return p, nil, err
		}
		existing, ok := mgr.Get(p.ID)
		if !ok {
			return p, nil, apperr.ProviderNotFound(p.ID)
		}
		if p.Meta == nil && existing.Meta != nil {
			p.Meta = existing.Clone().Meta
		}
		if p.CreatedAt == 0 {
			p.CreatedAt = existing.CreatedAt
		}
		p.UpdatedAt = m.now().UnixMilli()
		mgr.Providers.Set(p.ID, p.Clone())

		if mgr.Current != p.ID || !syncLive {
			return p, nil, nil
		}
		return p, &PostCommitAction{
			App:      app,
			Provider: p.Clone(),
			Backup:   backup,
			Common:   cfg.CommonConfigSnippets.Get(app),
		}, nil
	})
}

func deleteCurrentError() error {
	return apperr.Validation("provider.delete.current",
		"不能删除当前正在使用的供应商",
		"Cannot delete the provider currently in use")
}

// Delete removes a provider that is not current, together with the
// per-provider files older versions left next to the live files
func (m *Manager) Delete(app models.AppType, id string) error {
	adapter, err := m.live.Get(app)
	if err != nil {
		return err
	}
	p, err := m.Get(app, id)
	if err != nil {
		return err
	}
	var isCurrent bool
	m.store.Read(func(cfg *models.MultiAppConfig) {
		isCurrent = cfg.Manager(app).Current == id
	})
	if isCurrent {
		return deleteCurrentError()
	}

	for _, path := range adapter.LegacyFiles(p) {
		if err := storage.DeleteFile(path); err != nil {
			log.Warn("failed to delete legacy file %s: %v", path, err)
		}
	}

	_, err = runTransaction(m, func(cfg *models.MultiAppConfig) (struct{}, *PostCommitAction, error) {
		mgr, err := manager(cfg, app)
		if err != nil {
			return struct{}{}, nil, err
		}
		if mgr.Current == id {
			return struct{}{}, nil, deleteCurrentError()
		}
		if _, ok := mgr.Providers.Delete(id); !ok {
			return struct{}{}, nil, apperr.ProviderNotFound(id)
		}
		return struct{}{}, nil, nil
	})
	return err
}

// SortUpdate moves one provider to a new sort index
type SortUpdate struct {
	ID        string `json:"id"`
	SortIndex int    `json:"sortIndex"`
}

// UpdateSortOrder applies the updates; unknown ids are ignored
func (m *Manager) UpdateSortOrder(app models.AppType, updates []SortUpdate) error {
	_, err := runTransaction(m, func(cfg *models.MultiAppConfig) (struct{}, *PostCommitAction, error) {
		mgr, err := manager(cfg, app)
		if err != nil {
			return struct{}{}, nil, err
		}
		for _, u := range updates {
			p, ok := mgr.Get(u.ID)
			if !ok {
				continue
			}
			idx := u.SortIndex
			p.SortIndex = &idx
			mgr.Providers.Set(u.ID, p)
		}
		return struct{}{}, nil, nil
	})
	return err
}

// DefaultProviderID is the id of the provider created by ImportDefault
const DefaultProviderID = "default"

// ImportDefault turns the current live files into a provider named
// "default" when app has no providers yet. It reports whether one was created.
func (m *Manager) ImportDefault(app models.AppType) (bool, error) {
	adapter, err := m.live.Get(app)
	if err != nil {
		return false, err
	}
	var empty bool
	m.store.Read(func(cfg *models.MultiAppConfig) {
		empty = cfg.Manager(app).Providers.Len() == 0
	})
	if !empty {
		return false, nil
	}
	if !adapter.HasLive() {
		if _, err := adapter.Read(); err != nil {
			return false, err
		}
	}

	now := m.now().UnixMilli()
	return runTransaction(m, func(cfg *models.MultiAppConfig) (bool, *PostCommitAction, error) {
		mgr, err := manager(cfg, app)
		if err != nil {
			return false, nil, err
		}
		if mgr.Providers.Len() > 0 {
			return false, nil, nil
		}
		p := models.Provider{
			ID:        DefaultProviderID,
			Name:      DefaultProviderID,
			Category:  "custom",
			CreatedAt: now,
			UpdatedAt: now,
		}
		settings, err := captureLive(cfg, app, adapter, p)
		if err != nil {
			return false, nil, err
		}
		p.SettingsConfig = settings
		if err := m.validator.ValidateProvider(app, p); err != nil {
			return false, nil, err
		}
		mgr.Providers.Set(p.ID, p)
		mgr.Current = p.ID
		return true, nil, nil
	})
}

// ReadLiveSettings returns the live files of app in settings_config shape
func (m *Manager) ReadLiveSettings(app models.AppType) (map[string]any, error) {
	adapter, err := m.live.Get(app)
	if err != nil {
		return nil, err
	}
	return adapter.Read()
}
