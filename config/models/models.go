package models

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// AppType identifies one of the supported coding-assistant CLIs
type AppType string

const (
	AppClaude AppType = "claude"
	AppCodex  AppType = "codex"
	AppGemini AppType = "gemini"
)

// AllApps lists every supported app type in display order
var AllApps = []AppType{AppClaude, AppCodex, AppGemini}

// ParseAppType parses a user supplied app name (case-insensitive)
func ParseAppType(s string) (AppType, error) {
	switch AppType(strings.ToLower(strings.TrimSpace(s))) {
	case AppClaude:
		return AppClaude, nil
	case AppCodex:
		return AppCodex, nil
	case AppGemini:
		return AppGemini, nil
	}
	return "", fmt.Errorf("unknown app type: %q (expected claude, codex or gemini)", s)
}

// CustomEndpoint is a user-added alternative endpoint for a provider
type CustomEndpoint struct {
	URL      string `json:"url"`
	AddedAt  int64  `json:"addedAt"`
	LastUsed *int64 `json:"lastUsed,omitempty"`
}

// ProviderMeta holds optional per-provider metadata
type ProviderMeta struct {
	// ApplyCommonConfig set to false opts the provider out of the common config snippet
	ApplyCommonConfig   *bool                     `json:"applyCommonConfig,omitempty"`
	IsPartner           *bool                     `json:"isPartner,omitempty"`
	PartnerPromotionKey string                    `json:"partnerPromotionKey,omitempty"`
	CustomEndpoints     map[string]CustomEndpoint `json:"custom_endpoints,omitempty"`
}

// Provider is one named profile for an app type.
//
// SettingsConfig mirrors the app's live files: a JSON object for Claude and
// Gemini, and {"auth": object, "config": "<toml snippet>"} for Codex.
type Provider struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	SettingsConfig any           `json:"settingsConfig"`
	WebsiteURL     string        `json:"websiteUrl,omitempty"`
	Category       string        `json:"category,omitempty"`
	CreatedAt      int64         `json:"createdAt,omitempty"` // unix millis
	UpdatedAt      int64         `json:"updatedAt,omitempty"` // unix millis
	SortIndex      *int          `json:"sortIndex,omitempty"`
	Meta           *ProviderMeta `json:"meta,omitempty"`
}

// Settings returns SettingsConfig as an object, or nil when it is not one
func (p *Provider) Settings() map[string]any {
	m, _ := p.SettingsConfig.(map[string]any)
	return m
}

// UsesCommonConfig reports whether the common config snippet applies to this provider
func (p *Provider) UsesCommonConfig() bool {
	if p.Meta == nil || p.Meta.ApplyCommonConfig == nil {
		return true
	}
	return *p.Meta.ApplyCommonConfig
}

// ProviderMap keeps providers in insertion order
type ProviderMap = orderedmap.OrderedMap[string, Provider]

// NewProviderMap returns an empty ordered provider map
func NewProviderMap() *ProviderMap {
	return orderedmap.New[string, Provider]()
}

// AppManager holds the providers of one app type and the id of the live one
type AppManager struct {
	Current   string       `json:"current"`
	Providers *ProviderMap `json:"providers"`
}

// NewAppManager returns an empty manager
func NewAppManager() *AppManager {
	return &AppManager{Providers: NewProviderMap()}
}

// Get returns the provider with the given id
func (m *AppManager) Get(id string) (Provider, bool) {
	return m.Providers.Get(id)
}

// Has reports whether id is a known provider
func (m *AppManager) Has(id string) bool {
	_, ok := m.Providers.Get(id)
	return ok
}

// List returns providers in insertion order
func (m *AppManager) List() []Provider {
	list := make([]Provider, 0, m.Providers.Len())
	for pair := m.Providers.Oldest(); pair != nil; pair = pair.Next() {
		list = append(list, pair.Value)
	}
	return list
}

// CommonConfigSnippets holds the raw shared snippet per app type
type CommonConfigSnippets struct {
	Claude *string `json:"claude,omitempty"`
	Codex  *string `json:"codex,omitempty"`
	Gemini *string `json:"gemini,omitempty"`
}

func (c *CommonConfigSnippets) slot(app AppType) **string {
	switch app {
	case AppClaude:
		return &c.Claude
	case AppCodex:
		return &c.Codex
	case AppGemini:
		return &c.Gemini
	}
	return nil
}

// Get returns the trimmed snippet for app, or "" when unset
func (c *CommonConfigSnippets) Get(app AppType) string {
	s := c.slot(app)
	if s == nil || *s == nil {
		return ""
	}
	return strings.TrimSpace(**s)
}

// Set stores the snippet for app; an empty text clears it
func (c *CommonConfigSnippets) Set(app AppType, text string) {
	s := c.slot(app)
	if s == nil {
		return
	}
	if strings.TrimSpace(text) == "" {
		*s = nil
		return
	}
	*s = &text
}

// CurrentVersion is the store format version written by this tool
const CurrentVersion = 2

// MultiAppConfig is the persisted store
type MultiAppConfig struct {
	Version              int                  `json:"version"`
	Claude               *AppManager          `json:"claude"`
	Codex                *AppManager          `json:"codex"`
	Gemini               *AppManager          `json:"gemini"`
	CommonConfigSnippets CommonConfigSnippets `json:"common_config_snippets"`
}

// NewMultiAppConfig returns an empty store with a manager for every app
func NewMultiAppConfig() *MultiAppConfig {
	cfg := &MultiAppConfig{Version: CurrentVersion}
	cfg.Normalize()
	return cfg
}

// Normalize fills in managers and maps missing from a loaded file
func (c *MultiAppConfig) Normalize() {
	if c.Version == 0 {
		c.Version = CurrentVersion
	}
	for _, app := range AllApps {
		m := c.managerSlot(app)
		if *m == nil {
			*m = NewAppManager()
		}
		if (*m).Providers == nil {
			(*m).Providers = NewProviderMap()
		}
	}
}

func (c *MultiAppConfig) managerSlot(app AppType) **AppManager {
	switch app {
	case AppClaude:
		return &c.Claude
	case AppCodex:
		return &c.Codex
	case AppGemini:
		return &c.Gemini
	}
	return nil
}

// Manager returns the manager for app, or nil for an unknown app type
func (c *MultiAppConfig) Manager(app AppType) *AppManager {
	m := c.managerSlot(app)
	if m == nil {
		return nil
	}
	return *m
}

// Clone returns a deep copy that shares no mutable state with c
func (c *MultiAppConfig) Clone() *MultiAppConfig {
	out := &MultiAppConfig{Version: c.Version}
	for _, app := range AllApps {
		src := c.Manager(app)
		if src == nil {
			continue
		}
		dst := &AppManager{Current: src.Current, Providers: NewProviderMap()}
		if src.Providers != nil {
			for pair := src.Providers.Oldest(); pair != nil; pair = pair.Next() {
				dst.Providers.Set(pair.Key, pair.Value.Clone())
			}
		}
		*out.managerSlot(app) = dst
	}
	for _, app := range AllApps {
		if s := *c.CommonConfigSnippets.slot(app); s != nil {
			text := *s
			*out.CommonConfigSnippets.slot(app) = &text
		}
	}
	return out
}

// Clone returns a deep copy of the provider
func (p Provider) Clone() Provider {
	out := p
	out.SettingsConfig = CloneValue(p.SettingsConfig)
	if p.SortIndex != nil {
		idx := *p.SortIndex
		out.SortIndex = &idx
	}
	if p.Meta != nil {
		meta := *p.Meta
		if p.Meta.ApplyCommonConfig != nil {
			v := *p.Meta.ApplyCommonConfig
			meta.ApplyCommonConfig = &v
		}
		if p.Meta.IsPartner != nil {
			v := *p.Meta.IsPartner
			meta.IsPartner = &v
		}
		if p.Meta.CustomEndpoints != nil {
			meta.CustomEndpoints = make(map[string]CustomEndpoint, len(p.Meta.CustomEndpoints))
			for k, ep := range p.Meta.CustomEndpoints {
				if ep.LastUsed != nil {
					used := *ep.LastUsed
					ep.LastUsed = &used
				}
				meta.CustomEndpoints[k] = ep
			}
		}
		out.Meta = &meta
	}
	return out
}

// CloneValue deep-copies a decoded JSON/TOML value
func CloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = CloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CloneValue(item)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(val))
		for i, item := range val {
			out[i] = CloneValue(item).(map[string]any)
		}
		return out
	default:
		return v
	}
}
