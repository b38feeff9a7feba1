package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"ccswitch/config/models"
	"ccswitch/internal/utils"
)

// FormField represents the index of each form field
const (
	FormFieldName = iota
	FormFieldWebsite
	FormFieldCategory
	FormFieldCount // Total number of fields
)

// FormData represents the data collected from the edit form
type FormData struct {
	Name     string
	Website  string
	Category string
}

// Validate validates the form data
func (f *FormData) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("名称不能为空")
	}
	if w := strings.TrimSpace(f.Website); w != "" && !utils.ValidateURL(w) {
		return errors.New("无效的网站 URL")
	}
	return nil
}

// Apply copies the form values onto p
func (f *FormData) Apply(p models.Provider) models.Provider {
	p.Name = strings.TrimSpace(f.Name)
	p.WebsiteURL = strings.TrimSpace(f.Website)
	p.Category = strings.TrimSpace(f.Category)
	return p
}

// Form styles
var (
	formLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(10)

	formInputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	formFocusedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	formErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	formHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)
)

// FormInputs creates the edit form inputs, focused on the name
func FormInputs() []textinput.Model {
	inputs := make([]textinput.Model, FormFieldCount)

	inputs[FormFieldName] = textinput.New()
	inputs[FormFieldName].Placeholder = "供应商名称"
	inputs[FormFieldName].CharLimit = 100
	inputs[FormFieldName].Width = 40
	inputs[FormFieldName].Prompt = ""

	inputs[FormFieldWebsite] = textinput.New()
	inputs[FormFieldWebsite].Placeholder = "https://example.com"
	inputs[FormFieldWebsite].CharLimit = 256
	inputs[FormFieldWebsite].Width = 40
	inputs[FormFieldWebsite].Prompt = ""

	inputs[FormFieldCategory] = textinput.New()
	inputs[FormFieldCategory].Placeholder = "custom"
	inputs[FormFieldCategory].CharLimit = 64
	inputs[FormFieldCategory].Width = 40
	inputs[FormFieldCategory].Prompt = ""

	inputs[FormFieldName].Focus()
	return inputs
}

// SetFormData fills the inputs from data
func SetFormData(inputs []textinput.Model, data FormData) {
	inputs[FormFieldName].SetValue(data.Name)
	inputs[FormFieldWebsite].SetValue(data.Website)
	inputs[FormFieldCategory].SetValue(data.Category)
}

// GetFormData reads the inputs
func GetFormData(inputs []textinput.Model) FormData {
	return FormData{
		Name:     inputs[FormFieldName].Value(),
		Website:  inputs[FormFieldWebsite].Value(),
		Category: inputs[FormFieldCategory].Value(),
	}
}

// focusInput moves focus to index, wrapping around
func focusInput(inputs []textinput.Model, index int) int {
	n := len(inputs)
	index = ((index % n) + n) % n
	for i := range inputs {
		if i == index {
			inputs[i].Focus()
		} else {
			inputs[i].Blur()
		}
	}
	return index
}

var formLabels = [FormFieldCount]string{"名称", "网站", "分类"}

// RenderForm renders the inputs with labels
func RenderForm(title string, inputs []textinput.Model, focus int, errText string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	for i, input := range inputs {
		label := formLabelStyle.Render(formLabels[i])
		if i == focus {
			label = formFocusedStyle.Width(10).Render(formLabels[i])
		}
		b.WriteString(label)
		b.WriteString(formInputStyle.Render(input.View()))
		b.WriteString("\n")
	}
	if errText != "" {
		b.WriteString("\n")
		b.WriteString(formErrorStyle.Render("✗ " + errText))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(formHintStyle.Render("Tab/↓ 下一项 · ↑ 上一项 · Enter 保存 · Esc 取消"))
	b.WriteString("\n")
	b.WriteString(formHintStyle.Render("配置内容请使用 cc-switch edit --settings 修改"))
	return b.String()
}
