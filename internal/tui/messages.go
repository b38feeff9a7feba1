package tui

import (
	"ccswitch/config/models"
	"ccswitch/internal/speedtest"
)

// ProvidersLoadedMsg is sent when an app's providers are loaded
type ProvidersLoadedMsg struct {
	App       models.AppType
	Providers []models.Provider
	Current   string
	Err       error
}

// ProviderSwitchedMsg is sent when the current provider is switched
type ProviderSwitchedMsg struct {
	ID  string
	Err error
}

// ProviderUpdatedMsg is sent when a provider is edited
type ProviderUpdatedMsg struct {
	ID  string
	Err error
}

// ProviderDeletedMsg is sent when a provider is deleted
type ProviderDeletedMsg struct {
	ID  string
	Err error
}

// ProviderDuplicatedMsg is sent when a provider is duplicated
type ProviderDuplicatedMsg struct {
	Provider models.Provider
	Err      error
}

// SpeedtestResultMsg is sent when a speed test completes
type SpeedtestResultMsg struct {
	ID      string
	Results []speedtest.Result
	Err     error
}
