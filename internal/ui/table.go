package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	tableBorderStyle = lipgloss.NewStyle().Foreground(PrimaryColor)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableKeyStyle    = lipgloss.NewStyle().Foreground(MutedColor).PaddingRight(2)
)

// RenderTable renders rows under a header row in a rounded box
func RenderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle.Padding(0, 1)
			}
			return tableCellStyle
		}).
		Render()
}

// RenderKeyValues renders "key: value" pairs as two aligned columns
func RenderKeyValues(pairs []Detail) string {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p.Key + ":", p.Value})
	}
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		Rows(rows...).
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == 0 {
				return tableKeyStyle
			}
			return ResultValueStyle
		}).
		Render()
}
