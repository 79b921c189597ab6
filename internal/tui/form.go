package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"orderwarden/internal/model"
)

// addForm collects a new order. Carrier may stay empty for auto-detection.
type addForm struct {
	inputs []textinput.Model
	focus  int
}

const (
	fieldOrderID = iota
	fieldTracking
	fieldCarrier
)

func newAddForm() *addForm {
	placeholders := []string{"Order ID", "Tracking number", "Carrier (blank to auto-detect)"}
	f := &addForm{inputs: make([]textinput.Model, len(placeholders))}
	for i, p := range placeholders {
		in := textinput.New()
		in.Placeholder = p
		in.CharLimit = 64
		in.Width = 40
		in.Prompt = "> "
		f.inputs[i] = in
	}
	f.inputs[0].Focus()
	return f
}

func (f *addForm) value() model.NewOrder {
	return model.NewOrder{
		OrderID:        strings.TrimSpace(f.inputs[fieldOrderID].Value()),
		TrackingNumber: strings.TrimSpace(f.inputs[fieldTracking].Value()),
		Carrier:        strings.TrimSpace(f.inputs[fieldCarrier].Value()),
	}
}

func (f *addForm) next(step int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + step + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

func (f *addForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *addForm) view(s Styles) string {
	var sb strings.Builder
	sb.WriteString(s.Header.Render("Add order"))
	sb.WriteString("\n")
	for _, in := range f.inputs {
		sb.WriteString(in.View())
		sb.WriteString("\n")
	}
	sb.WriteString(s.Help.Render("tab next field · enter save · esc cancel"))
	return s.Form.Render(sb.String())
}
