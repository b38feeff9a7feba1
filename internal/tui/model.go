// Package tui provides the interactive provider picker
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"ccswitch/config"
	"ccswitch/config/models"
	"ccswitch/internal/apperr"
	"ccswitch/internal/speedtest"
)

// ViewState represents the current view state
type ViewState int

const (
	ViewMain      ViewState = iota // Provider list
	ViewDetail                     // Provider details
	ViewEdit                       // Edit form
	ViewDelete                     // Delete confirmation dialog
	ViewHelp                       // Help panel
	ViewSpeedtest                  // Speed test progress and results
)

// Model is the core state model for the TUI
type Model struct {
	manager *config.Manager
	tester  *speedtest.Tester
	lang    apperr.Language
	keys    KeyMap

	apps      []models.AppType
	appIndex  int
	providers []models.Provider // sorted for display
	current   string
	cursor    int
	viewState ViewState

	// Form related
	formInputs []textinput.Model
	formFocus  int
	formError  string

	// Messages and errors
	message  string
	errorMsg string

	// Window size
	width  int
	height int

	scrollOffset int

	// Speed test state
	testing      bool
	speedTarget  string
	speedResults []speedtest.Result
}

// NewModel creates a TUI model showing app's providers
func NewModel(manager *config.Manager, app models.AppType, lang apperr.Language) Model {
	m := Model{
		manager: manager,
		tester:  speedtest.NewTester(speedtest.DefaultTimeout),
		lang:    lang,
		keys:    DefaultKeyMap(),
		apps:    models.AllApps,
	}
	for i, a := range m.apps {
		if a == app {
			m.appIndex = i
		}
	}
	return m
}

// App returns the app whose providers are shown
func (m Model) App() models.AppType {
	return m.apps[m.appIndex]
}

func (m Model) selected() (models.Provider, bool) {
	if m.cursor < 0 || m.cursor >= len(m.providers) {
		return models.Provider{}, false
	}
	return m.providers[m.cursor], true
}

func (m Model) localize(err error) string {
	return apperr.Localize(err, m.lang)
}

// Init loads the providers of the initial app
func (m Model) Init() tea.Cmd {
	return loadProviders(m.manager, m.App())
}

// Update handles incoming messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.adjustScrollOffset()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case ProvidersLoadedMsg:
		if msg.App != m.App() {
			// the user moved to another app while loading
			return m, nil
		}
		if msg.Err != nil {
			m.providers = nil
			m.errorMsg = m.localize(msg.Err)
			return m, nil
		}
		m.providers = msg.Providers
		m.current = msg.Current
		if m.cursor >= len(m.providers) {
			m.cursor = len(m.providers) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.adjustScrollOffset()
		return m, nil

	case ProviderSwitchedMsg:
		if msg.Err != nil {
			m.errorMsg = m.localize(msg.Err)
			return m, nil
		}
		m.errorMsg = ""
		m.message = fmt.Sprintf("✓ 已切换到: %s", msg.ID)
		return m, loadProviders(m.manager, m.App())

	case ProviderUpdatedMsg:
		if msg.Err != nil {
			m.formError = m.localize(msg.Err)
			return m, nil
		}
		m.viewState = ViewMain
		m.formInputs = nil
		m.errorMsg = ""
		m.message = fmt.Sprintf("✓ 已更新: %s", msg.ID)
		return m, loadProviders(m.manager, m.App())

	case ProviderDeletedMsg:
		m.viewState = ViewMain
		if msg.Err != nil {
			m.errorMsg = m.localize(msg.Err)
			return m, nil
		}
		m.errorMsg = ""
		m.message = fmt.Sprintf("✓ 已删除: %s", msg.ID)
		return m, loadProviders(m.manager, m.App())

	case ProviderDuplicatedMsg:
		if msg.Err != nil {
			m.errorMsg = m.localize(msg.Err)
			return m, nil
		}
		m.errorMsg = ""
		m.message = fmt.Sprintf("✓ 已复制为: %s", msg.Provider.Name)
		return m, loadProviders(m.manager, m.App())

	case SpeedtestResultMsg:
		if msg.ID != m.speedTarget {
			return m, nil
		}
		m.testing = false
		m.speedResults = msg.Results
		if msg.Err != nil {
			m.errorMsg = m.localize(msg.Err)
		}
		return m, nil
	}

	return m, nil
}

// handleKeyMsg dispatches key presses by view
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.viewState {
	case ViewDetail:
		return m.handleDetailViewKeys(msg)
	case ViewEdit:
		return m.handleFormViewKeys(msg)
	case ViewDelete:
		return m.handleDeleteViewKeys(msg)
	case ViewHelp:
		return m.handleHelpViewKeys(msg)
	case ViewSpeedtest:
		return m.handleSpeedtestViewKeys(msg)
	default:
		return m.handleMainViewKeys(msg)
	}
}

func (m Model) handleMainViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveUp()

	case key.Matches(msg, m.keys.Down):
		m.moveDown()

	case key.Matches(msg, m.keys.Top):
		m.moveToTop()

	case key.Matches(msg, m.keys.Bottom):
		m.moveToBottom()

	case key.Matches(msg, m.keys.NextApp):
		return m.changeApp(1)

	case key.Matches(msg, m.keys.PrevApp):
		return m.changeApp(-1)

	case key.Matches(msg, m.keys.Help):
		m.viewState = ViewHelp

	case key.Matches(msg, m.keys.Select):
		if _, ok := m.selected(); ok {
			m.viewState = ViewDetail
		}

	default:
		return m.handleProviderAction(msg)
	}
	return m, nil
}

// handleProviderAction handles the keys shared by the list and detail views
func (m Model) handleProviderAction(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p, ok := m.selected()
	if !ok {
		return m, nil
	}
	m.message = ""
	m.errorMsg = ""

	switch {
	case key.Matches(msg, m.keys.Switch):
		if p.ID == m.current {
			m.message = fmt.Sprintf("%s 已是当前供应商", p.Name)
			return m, nil
		}
		return m, switchProvider(m.manager, m.App(), p.ID)

	case key.Matches(msg, m.keys.Edit):
		m.initEditForm(p)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Delete):
		m.viewState = ViewDelete

	case key.Matches(msg, m.keys.Duplicate):
		return m, duplicateProvider(m.manager, m.App(), p.ID)

	case key.Matches(msg, m.keys.Speedtest):
		m.viewState = ViewSpeedtest
		m.testing = true
		m.speedTarget = p.ID
		m.speedResults = nil
		return m, runSpeedtest(m.manager, m.tester, m.App(), p.ID)
	}
	return m, nil
}

func (m Model) handleDetailViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.viewState = ViewMain
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.viewState = ViewHelp
		return m, nil
	}
	next, cmd := m.handleProviderAction(msg)
	nm := next.(Model)
	if nm.viewState == ViewDetail && cmd != nil {
		// switch and duplicate report on the list
		nm.viewState = ViewMain
	}
	return nm, cmd
}

func (m Model) handleFormViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewState = ViewMain
		m.formInputs = nil
		m.formError = ""
		return m, nil

	case "tab", "down":
		m.formFocus = focusInput(m.formInputs, m.formFocus+1)
		return m, nil

	case "shift+tab", "up":
		m.formFocus = focusInput(m.formInputs, m.formFocus-1)
		return m, nil

	case "enter":
		data := GetFormData(m.formInputs)
		if err := data.Validate(); err != nil {
			m.formError = err.Error()
			return m, nil
		}
		p, ok := m.selected()
		if !ok {
			m.viewState = ViewMain
			return m, nil
		}
		m.formError = ""
		return m, updateProvider(m.manager, m.App(), data.Apply(p))
	}

	var cmd tea.Cmd
	m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
	return m, cmd
}

func (m *Model) initEditForm(p models.Provider) {
	m.formInputs = FormInputs()
	SetFormData(m.formInputs, FormData{Name: p.Name, Website: p.WebsiteURL, Category: p.Category})
	m.formFocus = FormFieldName
	m.formError = ""
	m.viewState = ViewEdit
}

func (m Model) handleDeleteViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if p, ok := m.selected(); ok {
			return m, deleteProvider(m.manager, m.App(), p.ID)
		}
		m.viewState = ViewMain
	case "n", "N", "esc":
		m.viewState = ViewMain
		m.message = ""
		m.errorMsg = ""
	}
	return m, nil
}

func (m Model) handleHelpViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.viewState = ViewMain
	}
	return m, nil
}

func (m Model) handleSpeedtestViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Confirm):
		m.viewState = ViewMain
	}
	return m, nil
}

func (m Model) changeApp(delta int) (tea.Model, tea.Cmd) {
	n := len(m.apps)
	m.appIndex = ((m.appIndex+delta)%n + n) % n
	m.providers = nil
	m.current = ""
	m.cursor = 0
	m.scrollOffset = 0
	m.message = ""
	m.errorMsg = ""
	return m, loadProviders(m.manager, m.App())
}

func (m *Model) moveUp() {
	if m.cursor > 0 {
		m.cursor--
		m.adjustScrollOffset()
	}
}

func (m *Model) moveDown() {
	if m.cursor < len(m.providers)-1 {
		m.cursor++
		m.adjustScrollOffset()
	}
}

func (m *Model) moveToTop() {
	m.cursor = 0
	m.scrollOffset = 0
}

func (m *Model) moveToBottom() {
	if len(m.providers) > 0 {
		m.cursor = len(m.providers) - 1
		m.adjustScrollOffset()
	}
}

// getVisibleListHeight returns how many provider lines fit on screen
func (m *Model) getVisibleListHeight() int {
	if m.height <= 0 {
		return 10
	}
	// title, tabs, separators, status bar and help
	visible := m.height - 9
	if visible < 3 {
		return 3
	}
	return visible
}

// adjustScrollOffset keeps the cursor inside the visible window
func (m *Model) adjustScrollOffset() {
	visible := m.getVisibleListHeight()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor - visible + 1
	}
	if maxOffset := len(m.providers) - visible; m.scrollOffset > maxOffset {
		m.scrollOffset = maxOffset
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

// View renders the UI
func (m Model) View() string {
	switch m.viewState {
	case ViewHelp:
		return m.RenderHelpView()
	case ViewDetail:
		return m.RenderDetailView()
	case ViewEdit:
		return RenderForm("编辑供应商", m.formInputs, m.formFocus, m.formError)
	case ViewDelete:
		return m.RenderDeleteConfirm()
	case ViewSpeedtest:
		return m.RenderSpeedtestView()
	default:
		return m.RenderMainView()
	}
}

// loadProviders creates a command to load app's providers in display order
func loadProviders(manager *config.Manager, app models.AppType) tea.Cmd {
	return func() tea.Msg {
		providers, err := manager.List(app)
		if err != nil {
			return ProvidersLoadedMsg{App: app, Err: err}
		}
		current, err := manager.Current(app)
		if err != nil {
			return ProvidersLoadedMsg{App: app, Err: err}
		}
		config.SortProviders(providers)
		return ProvidersLoadedMsg{App: app, Providers: providers, Current: current}
	}
}

func switchProvider(manager *config.Manager, app models.AppType, id string) tea.Cmd {
	return func() tea.Msg {
		return ProviderSwitchedMsg{ID: id, Err: manager.Switch(app, id)}
	}
}

func updateProvider(manager *config.Manager, app models.AppType, p models.Provider) tea.Cmd {
	return func() tea.Msg {
		_, err := manager.Update(app, p)
		return ProviderUpdatedMsg{ID: p.ID, Err: err}
	}
}

func deleteProvider(manager *config.Manager, app models.AppType, id string) tea.Cmd {
	return func() tea.Msg {
		return ProviderDeletedMsg{ID: id, Err: manager.Delete(app, id)}
	}
}

func duplicateProvider(manager *config.Manager, app models.AppType, id string) tea.Cmd {
	return func() tea.Msg {
		p, err := manager.Duplicate(app, id)
		return ProviderDuplicatedMsg{Provider: p, Err: err}
	}
}

func runSpeedtest(manager *config.Manager, tester *speedtest.Tester, app models.AppType, id string) tea.Cmd {
	return func() tea.Msg {
		urls, err := manager.EndpointURLs(app, id)
		if err != nil {
			return SpeedtestResultMsg{ID: id, Err: err}
		}
		return SpeedtestResultMsg{ID: id, Results: tester.Test(context.Background(), urls)}
	}
}
