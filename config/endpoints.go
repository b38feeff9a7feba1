package config

import (
	"sort"

	"ccswitch/config/models"
	"ccswitch/internal/apperr"
	"ccswitch/internal/live"
	"ccswitch/internal/utils"
)

// CustomEndpoints lists a provider's custom endpoints, newest first
func (m *Manager) CustomEndpoints(app models.AppType, id string) ([]models.CustomEndpoint, error) {
	p, err := m.Get(app, id)
	if err != nil {
		return nil, err
	}
	var list []models.CustomEndpoint
	if p.Meta != nil {
		for _, ep := range p.Meta.CustomEndpoints {
			list = append(list, ep)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AddedAt != list[j].AddedAt {
			return list[i].AddedAt > list[j].AddedAt
		}
		return list[i].URL < list[j].URL
	})
	return list, nil
}

// AddCustomEndpoint records rawURL for a provider; adding a known URL is a no-op
func (m *Manager) AddCustomEndpoint(app models.AppType, id, rawURL string) error {
	url := utils.NormalizeURL(rawURL)
	if err := m.input.ValidateEndpointURL(url); err != nil {
		return err
	}
	return m.editEndpoints(app, id, func(endpoints map[string]models.CustomEndpoint) {
		if _, ok := endpoints[url]; !ok {
			endpoints[url] = models.CustomEndpoint{URL: url, AddedAt: m.now().UnixMilli()}
		}
	})
}

// RemoveCustomEndpoint forgets rawURL; removing an unknown URL is a no-op
func (m *Manager) RemoveCustomEndpoint(app models.AppType, id, rawURL string) error {
	url := utils.NormalizeURL(rawURL)
	return m.editEndpoints(app, id, func(endpoints map[string]models.CustomEndpoint) {
		delete(endpoints, url)
	})
}

// TouchCustomEndpoint records that rawURL was just used
func (m *Manager) TouchCustomEndpoint(app models.AppType, id, rawURL string) error {
	url := utils.NormalizeURL(rawURL)
	return m.editEndpoints(app, id, func(endpoints map[string]models.CustomEndpoint) {
		if ep, ok := endpoints[url]; ok {
			used := m.now().UnixMilli()
			ep.LastUsed = &used
			endpoints[url] = ep
		}
	})
}

func (m *Manager) editEndpoints(app models.AppType, id string, edit func(map[string]models.CustomEndpoint)) error {
	_, err := runTransaction(m, func(cfg *models.MultiAppConfig) (struct{}, *PostCommitAction, error) {
		mgr, err := manager(cfg, app)
		if err != nil {
			return struct{}{}, nil, err
		}
		p, ok := mgr.Get(id)
		if !ok {
			return struct{}{}, nil, apperr.ProviderNotFound(id)
		}
		if p.Meta == nil {
			p.Meta = &models.ProviderMeta{}
		}
		if p.Meta.CustomEndpoints == nil {
			p.Meta.CustomEndpoints = make(map[string]models.CustomEndpoint)
		}
		edit(p.Meta.CustomEndpoints)
		if len(p.Meta.CustomEndpoints) == 0 {
			p.Meta.CustomEndpoints = nil
		}
		mgr.Providers.Set(id, p)
		return struct{}{}, nil, nil
	})
	return err
}

// EndpointURLs returns the provider's API URL followed by its custom
// endpoints, without duplicates. The API URL is omitted when the provider
// uses the app's built-in endpoint.
func (m *Manager) EndpointURLs(app models.AppType, id string) ([]string, error) {
	p, err := m.Get(app, id)
	if err != nil {
		return nil, err
	}
	endpoints, err := m.CustomEndpoints(app, id)
	if err != nil {
		return nil, err
	}
	var urls []string
	seen := make(map[string]bool)
	if u := utils.NormalizeURL(live.APIEndpoint(app, p)); u != "" {
		urls = append(urls, u)
		seen[u] = true
	}
	for _, ep := range endpoints {
		if !seen[ep.URL] {
			urls = append(urls, ep.URL)
			seen[ep.URL] = true
		}
	}
	return urls, nil
}
