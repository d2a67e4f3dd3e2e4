package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/khrees2412/applytrack/pkg/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginTop(1).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
)

var statusColors = map[models.DisplayStatus]lipgloss.Color{
	models.StatusApplied:     lipgloss.Color("7"),
	models.StatusToReview:    lipgloss.Color("14"),
	models.StatusShortlisted: lipgloss.Color("12"),
	models.StatusToInterview: lipgloss.Color("13"),
	models.StatusInterviewed: lipgloss.Color("5"),
	models.StatusSelected:    lipgloss.Color("10"),
	models.StatusHired:       lipgloss.Color("2"),
	models.StatusRejected:    lipgloss.Color("9"),
}

func statusStyle(s models.DisplayStatus) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	if color, ok := statusColors[s]; ok {
		style = style.Foreground(color)
	}
	return style
}
