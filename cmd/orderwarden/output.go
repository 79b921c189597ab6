package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"orderwarden/internal/dashboard"
	"orderwarden/internal/model"
	"orderwarden/internal/tui"
)

const riskColumn = 4

func renderOrders(orders []model.Order) string {
	if len(orders) == 0 {
		return "No orders match."
	}

	styles := tui.DefaultStyles()
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		updated := "never"
		if o.LastUpdateAt != nil {
			updated = o.LastUpdateAt.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			o.ID,
			o.OrderID,
			o.TrackingNumber,
			o.LastStatus.Label(),
			o.RiskLevel.Label(),
			updated,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Order", "Tracking", "Status", "Risk", "Last update").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			cell := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return styles.Header.Padding(0, 1)
			case col == riskColumn && row >= 0 && row < len(orders):
				return styles.Risk(orders[row].RiskLevel).Padding(0, 1)
			}
			return cell
		})
	return t.String()
}

func renderSummary(s dashboard.Snapshot) string {
	return fmt.Sprintf("%d shown of %d: %d healthy, %d attention, %d high risk, %d unknown | sort %s %s",
		len(s.Visible), s.Summary.Total,
		s.Summary.Healthy, s.Summary.Attention, s.Summary.HighRisk, s.Summary.Unknown,
		s.SortField, s.SortDir,
	)
}
