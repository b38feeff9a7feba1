package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"ccswitch/config"
	"ccswitch/internal/live"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// openManager loads settings and the provider store and wires the live adapters
func openManager() (*config.Manager, error) {
	settingsPath, err := config.DefaultSettingsPath()
	if err != nil {
		return nil, err
	}
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}
	storePath, err := config.DefaultStorePath()
	if err != nil {
		return nil, err
	}
	store, err := config.OpenStore(storePath)
	if err != nil {
		return nil, err
	}
	paths, err := live.DefaultPaths(settings.ConfigDirOverride)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directories: %w", err)
	}
	return config.NewManager(store, live.NewRegistry(paths), config.Options{
		LiveSync: settings.LiveSync,
	}), nil
}
