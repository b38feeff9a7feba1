package tui

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"ccswitch/config/models"
	"ccswitch/internal/live"
	"ccswitch/internal/utils"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	activeSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).
				Background(lipgloss.Color("57")).
				Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(14)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

func (m Model) separator() string {
	return separatorStyle.Render(strings.Repeat("─", m.getEffectiveWidth(50)))
}

// getEffectiveWidth returns the width to render with, capped for readability
func (m Model) getEffectiveWidth(defaultWidth int) int {
	if m.width <= 0 {
		return defaultWidth
	}
	if m.width < 80 {
		return m.width - 2
	}
	return 80
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(m.apps))
	for i, app := range m.apps {
		if i == m.appIndex {
			tabs = append(tabs, activeTabStyle.Render(string(app)))
		} else {
			tabs = append(tabs, tabStyle.Render(string(app)))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// RenderMainView renders the provider list
func (m Model) RenderMainView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("CC Switch"))
	b.WriteString("  ")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.separator())
	b.WriteString("\n\n")

	if len(m.providers) == 0 {
		b.WriteString(dimStyle.Render("暂无供应商，使用 'cc-switch add' 或 'cc-switch import' 添加"))
		b.WriteString("\n")
	} else {
		visible := m.getVisibleListHeight()
		start := m.scrollOffset
		end := start + visible
		if end > len(m.providers) {
			end = len(m.providers)
		}
		if start > 0 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ↑ 还有 %d 项...", start)))
			b.WriteString("\n")
		}
		for i := start; i < end; i++ {
			b.WriteString(m.renderProviderLine(i, m.providers[i]))
			b.WriteString("\n")
		}
		if end < len(m.providers) {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ↓ 还有 %d 项...", len(m.providers)-end)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.separator())
	b.WriteString("\n")
	b.WriteString(m.RenderStatusBar())
	return b.String()
}

func (m Model) renderProviderLine(index int, p models.Provider) string {
	isSelected := index == m.cursor
	isActive := p.ID == m.current

	cursor := "  "
	if isSelected {
		cursor = "> "
	}
	marker := "  "
	if isActive {
		marker = "● "
	}

	apiURL := live.APIEndpoint(m.App(), p)
	if apiURL == "" {
		apiURL = "(default)"
	}
	line := fmt.Sprintf("%s%s%s  %s", cursor, marker, p.Name, dimStyle.Render(m.truncateText(apiURL, 40)))

	switch {
	case isSelected && isActive:
		return activeSelectedStyle.Render(line)
	case isSelected:
		return selectedStyle.Render(line)
	case isActive:
		return activeStyle.Render(line)
	}
	return normalStyle.Render(line)
}

func (m Model) truncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) <= maxWidth {
		return text
	}
	if maxWidth <= 3 {
		return string(runes[:maxWidth])
	}
	return string(runes[:maxWidth-3]) + "..."
}

// RenderDetailView renders the selected provider
func (m Model) RenderDetailView() string {
	p, ok := m.selected()
	if !ok {
		return m.RenderMainView()
	}
	var b strings.Builder

	b.WriteString(titleStyle.Render("供应商详情"))
	b.WriteString("\n")
	b.WriteString(m.separator())
	b.WriteString("\n\n")

	row := func(label, value string) {
		if value == "" {
			value = dimStyle.Render("-")
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(normalStyle.Render(value))
		b.WriteString("\n")
	}

	status := "否"
	if p.ID == m.current {
		status = activeStyle.Render("是")
	}
	sortIndex := ""
	if p.SortIndex != nil {
		sortIndex = fmt.Sprint(*p.SortIndex)
	}
	created := ""
	if p.CreatedAt > 0 {
		created = time.UnixMilli(p.CreatedAt).Format(time.DateTime)
	}
	common := "是"
	if !p.UsesCommonConfig() {
		common = "否"
	}
	endpoints := 0
	if p.Meta != nil {
		endpoints = len(p.Meta.CustomEndpoints)
	}

	row("ID", p.ID)
	row("名称", p.Name)
	row("当前", status)
	row("API 地址", live.APIEndpoint(m.App(), p))
	row("网站", p.WebsiteURL)
	row("分类", p.Category)
	row("排序", sortIndex)
	row("创建时间", created)
	row("通用配置", common)
	row("自定义端点", fmt.Sprint(endpoints))

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("配置内容:"))
	b.WriteString("\n")
	data, err := json.MarshalIndent(utils.MaskSecrets(p.SettingsConfig), "", "  ")
	if err != nil {
		b.WriteString(errorStyle.Render(err.Error()))
	} else {
		width := m.getEffectiveWidth(60)
		for _, line := range strings.Split(string(data), "\n") {
			b.WriteString(normalStyle.Render(m.truncateText(line, width)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.separator())
	b.WriteString("\n")
	b.WriteString(m.renderKeys(m.keys.Switch, m.keys.Edit, m.keys.Delete, m.keys.Speedtest, m.keys.Cancel))
	return b.String()
}

// RenderDeleteConfirm renders the delete confirmation dialog
func (m Model) RenderDeleteConfirm() string {
	p, _ := m.selected()
	var b strings.Builder

	b.WriteString(titleStyle.Render("删除供应商"))
	b.WriteString("\n")
	b.WriteString(m.separator())
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("确定要删除供应商 %s (%s) 吗？\n\n", p.Name, p.ID))
	if p.ID == m.current {
		b.WriteString(errorStyle.Render("这是当前正在使用的供应商，请先切换到其他供应商"))
		b.WriteString("\n\n")
	}
	b.WriteString(helpKeyStyle.Render("y"))
	b.WriteString(" 确认  ")
	b.WriteString(helpKeyStyle.Render("n/Esc"))
	b.WriteString(" 取消")
	return b.String()
}

// RenderHelpView renders every key binding
func (m Model) RenderHelpView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("快捷键"))
	b.WriteString("\n")
	b.WriteString(m.separator())
	b.WriteString("\n\n")
	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			b.WriteString(renderHelpLine(binding.Help().Key, binding.Help().Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("按 ? 或 Esc 返回"))
	return b.String()
}

func renderHelpLine(k, desc string) string {
	return fmt.Sprintf("  %s  %s\n", helpKeyStyle.Width(12).Render(k), desc)
}

// RenderSpeedtestView renders speed test progress or results
func (m Model) RenderSpeedtestView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("端点测速: " + m.speedTarget))
	b.WriteString("\n")
	b.WriteString(m.separator())
	b.WriteString("\n\n")

	switch {
	case m.testing:
		b.WriteString(dimStyle.Render("测速中..."))
		b.WriteString("\n")
	case m.errorMsg != "":
		b.WriteString(errorStyle.Render("✗ " + m.errorMsg))
		b.WriteString("\n")
	case len(m.speedResults) == 0:
		b.WriteString(dimStyle.Render("该供应商使用应用的默认地址，没有可测试的端点"))
		b.WriteString("\n")
	}
	for _, r := range m.speedResults {
		switch {
		case r.Error != "":
			b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s  %s", r.URL, r.Error)))
		case r.OK():
			b.WriteString(messageStyle.Render(fmt.Sprintf("✓ %s  %dms", r.URL, *r.LatencyMs)))
		default:
			b.WriteString(normalStyle.Render(fmt.Sprintf("~ %s  %dms (HTTP %d)", r.URL, *r.LatencyMs, r.StatusCode)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("按 Enter 或 Esc 返回"))
	return b.String()
}

// RenderStatusBar renders the message line and the short help
func (m Model) RenderStatusBar() string {
	var b strings.Builder
	switch {
	case m.errorMsg != "":
		b.WriteString(errorStyle.Render("✗ " + m.errorMsg))
		b.WriteString("\n")
	case m.message != "":
		b.WriteString(messageStyle.Render(m.message))
		b.WriteString("\n")
	}
	b.WriteString(m.renderKeys(m.keys.ShortHelp()...))
	return b.String()
}

func (m Model) renderKeys(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		parts = append(parts, helpKeyStyle.Render(h.Key)+" "+dimStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
