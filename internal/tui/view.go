package tui

import (
	"fmt"
	"strings"

	"orderwarden/internal/model"
	"orderwarden/internal/viewmodel"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("OrderWarden"))
	sb.WriteString("  ")
	sb.WriteString(m.etsyLine())
	sb.WriteString("\n")

	switch {
	case m.signedOut:
		sb.WriteString(m.styles.Error.Render("Not signed in. Sign in and restart the dashboard."))
		sb.WriteString("\n")
		return sb.String()
	case m.loading:
		sb.WriteString(m.styles.Muted.Render("Loading orders..."))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(m.summaryLine())
	sb.WriteString("\n")
	sb.WriteString(m.filterLine())
	sb.WriteString("\n")
	if m.searching || m.snap.Search != "" {
		sb.WriteString(m.search.View())
		sb.WriteString("\n")
	}

	if m.form != nil {
		sb.WriteString(m.form.view(m.styles))
		sb.WriteString("\n")
	} else if len(m.snap.Visible) == 0 {
		if m.snap.Summary.Total == 0 {
			sb.WriteString(m.styles.Muted.Render("No orders yet. Press n to add one or S to sync from Etsy."))
		} else {
			sb.WriteString(m.styles.Muted.Render("No orders match the current filters."))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString(m.table.View())
		sb.WriteString("\n")
	}

	if n, ok := m.dash.Notifications().Latest(); ok {
		sb.WriteString(m.styles.notification(n.Kind).Render(n.Message))
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.Help.Render(
		"/ search · r risk · s status · d date · o sort · O reverse · space select · a all · c check · x delete · X delete selected · n add · R refresh · S sync · E connect Etsy · q quit"))
	return sb.String()
}

func (m Model) etsyLine() string {
	e := m.snap.Etsy
	if !e.Connected {
		return m.styles.Muted.Render("Etsy: not connected")
	}
	line := "Etsy: " + e.ShopName
	if e.LastSyncAt != nil {
		line += " (synced " + e.LastSyncAt.Local().Format("2006-01-02 15:04") + ")"
	}
	if m.dash.Pending("sync") {
		line += " syncing..."
	}
	return m.styles.Info.Render(line)
}

func (m Model) summaryLine() string {
	s := m.snap.Summary
	parts := []string{
		m.styles.Bold.Render(fmt.Sprintf("%d orders", s.Total)),
		m.styles.Risk(model.RiskHealthy).Render(fmt.Sprintf("%d healthy", s.Healthy)),
		m.styles.Risk(model.RiskAttention).Render(fmt.Sprintf("%d attention", s.Attention)),
		m.styles.Risk(model.RiskHigh).Render(fmt.Sprintf("%d high risk", s.HighRisk)),
		m.styles.Unknown.Render(fmt.Sprintf("%d unknown", s.Unknown)),
	}
	if n := len(m.snap.Selected); n > 0 {
		parts = append(parts, m.styles.Bold.Render(fmt.Sprintf("%d selected", n)))
	}
	return strings.Join(parts, "  ")
}

func (m Model) filterLine() string {
	risk := "all"
	if m.snap.RiskFilter != viewmodel.FilterAll {
		risk = model.RiskLevel(m.snap.RiskFilter).Label()
	}
	status := "all"
	if m.snap.StatusFilter != viewmodel.FilterAll {
		status = model.Status(m.snap.StatusFilter).Label()
	}
	return m.styles.Muted.Render(fmt.Sprintf("risk: %s · status: %s · created: %s · sort: %s %s",
		risk, status, m.snap.DateFilter.Label(), m.snap.SortField, m.snap.SortDir))
}
