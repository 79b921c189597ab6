package tui

import (
	"github.com/charmbracelet/lipgloss"

	"orderwarden/internal/model"
	"orderwarden/internal/notify"
)

var (
	colorHealthy   = lipgloss.Color("#8BC34A")
	colorAttention = lipgloss.Color("#FFC107")
	colorHigh      = lipgloss.Color("#e53935")
	colorInfo      = lipgloss.Color("#2196F3")
	colorMuted     = lipgloss.Color("#7a8599")
	colorAccent    = lipgloss.Color("#101F38")
)

type Styles struct {
	Title     lipgloss.Style
	Header    lipgloss.Style
	Muted     lipgloss.Style
	Bold      lipgloss.Style
	Help      lipgloss.Style
	Healthy   lipgloss.Style
	Attention lipgloss.Style
	HighRisk  lipgloss.Style
	Unknown   lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Info      lipgloss.Style
	Form      lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f2f2f2")).Background(colorAccent).Padding(0, 1),
		Header:    lipgloss.NewStyle().Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(colorMuted),
		Bold:      lipgloss.NewStyle().Bold(true),
		Help:      lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
		Healthy:   lipgloss.NewStyle().Foreground(colorHealthy),
		Attention: lipgloss.NewStyle().Foreground(colorAttention),
		HighRisk:  lipgloss.NewStyle().Foreground(colorHigh).Bold(true),
		Unknown:   lipgloss.NewStyle().Foreground(colorMuted),
		Success:   lipgloss.NewStyle().Foreground(colorHealthy).Bold(true),
		Error:     lipgloss.NewStyle().Foreground(colorHigh).Bold(true),
		Info:      lipgloss.NewStyle().Foreground(colorInfo),
		Form:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1),
	}
}

func (s Styles) Risk(r model.RiskLevel) lipgloss.Style {
	switch r {
	case model.RiskHealthy:
		return s.Healthy
	case model.RiskAttention:
		return s.Attention
	case model.RiskHigh:
		return s.HighRisk
	default:
		return s.Unknown
	}
}

func (s Styles) notification(k notify.Kind) lipgloss.Style {
	switch k {
	case notify.KindSuccess:
		return s.Success
	case notify.KindError:
		return s.Error
	default:
		return s.Info
	}
}
