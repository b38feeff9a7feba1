package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"ccswitch/config"
	"ccswitch/config/models"
	"ccswitch/internal/apperr"
)

// Run starts the interactive provider picker on app
func Run(manager *config.Manager, app models.AppType, lang apperr.Language) error {
	if !isTerminal() {
		return fmt.Errorf("cc-switch pick requires a terminal. Use subcommands for non-interactive mode")
	}

	p := tea.NewProgram(NewModel(manager, app, lang), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// isTerminal checks if stdin is a terminal
func isTerminal() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
