package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	Up        key.Binding // k - move up
	Down      key.Binding // j - move down
	Top       key.Binding // g - jump to top
	Bottom    key.Binding // G - jump to bottom
	Select    key.Binding // Enter - details
	Switch    key.Binding // s - make provider current
	Edit      key.Binding // e - edit provider
	Delete    key.Binding // d - delete provider
	Duplicate key.Binding // c - duplicate provider
	Speedtest key.Binding // t - endpoint speed test
	NextApp   key.Binding // tab - next app
	PrevApp   key.Binding // shift+tab - previous app
	Help      key.Binding // ? - help
	Quit      key.Binding // q - quit
	Cancel    key.Binding // Esc - cancel
	Confirm   key.Binding // Enter - confirm (in form)
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "向上"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "向下"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "跳到顶部"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "跳到底部"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "详情"),
		),
		Switch: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "切换供应商"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "编辑供应商"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "删除供应商"),
		),
		Duplicate: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "复制供应商"),
		),
		Speedtest: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "测速"),
		),
		NextApp: key.NewBinding(
			key.WithKeys("tab", "]"),
			key.WithHelp("Tab/]", "下一个应用"),
		),
		PrevApp: key.NewBinding(
			key.WithKeys("shift+tab", "["),
			key.WithHelp("[", "上一个应用"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "帮助"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "退出"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "取消"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "确认"),
		),
	}
}

// ShortHelp returns short help text
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Switch, k.NextApp, k.Help, k.Quit}
}

// FullHelp returns full help text
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Select, k.Switch, k.Edit, k.Delete},
		{k.Duplicate, k.Speedtest, k.NextApp, k.PrevApp},
		{k.Help, k.Quit, k.Cancel},
	}
}
