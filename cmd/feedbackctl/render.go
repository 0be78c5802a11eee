package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/tui"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	badgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	columnStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1).
			Width(30)

	severityStyles = map[string]lipgloss.Style{
		domain.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		domain.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		domain.SeveritySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		domain.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

func heading(w io.Writer, title string, demo bool) {
	line := headingStyle.Render(title)
	if demo {
		line += " " + tui.DemoBadge
	}
	fmt.Fprintln(w, line)
}

func renderBoard(w io.Writer, b domain.Board) {
	cols := make([]string, 0, len(b.Columns))
	for _, col := range b.Columns {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s (%d)\n", headingStyle.Render(col.Status), len(col.Opportunities))
		for _, op := range col.Opportunities {
			sb.WriteString("\n" + op.Title)
			var badges []string
			if op.TribeName != "" {
				badges = append(badges, op.TribeName)
			}
			if op.SquadName != "" {
				badges = append(badges, op.SquadName)
			}
			if len(badges) > 0 {
				sb.WriteString("\n" + badgeStyle.Render(strings.Join(badges, " / ")))
			}
			sb.WriteString("\n")
		}
		cols = append(cols, columnStyle.Render(sb.String()))
	}
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, cols...))
}

func renderInsights(w io.Writer, rows []domain.InsightView) {
	if len(rows) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No active insights."))
		return
	}
	for _, in := range rows {
		sev := severityStyles[in.Severity].Render(fmt.Sprintf("[%s]", in.Severity))
		fmt.Fprintf(w, "%s %s %s\n", sev, in.Title, dimStyle.Render(in.ID))
		if in.Description != "" {
			fmt.Fprintf(w, "    %s\n", in.Description)
		}
		if len(in.Tags) > 0 {
			fmt.Fprintf(w, "    %s\n", badgeStyle.Render(strings.Join(in.Tags, ", ")))
		}
		for _, fb := range in.Feedbacks {
			fmt.Fprintf(w, "    %s %s (%s)\n", dimStyle.Render("-"), fb.Title, fb.Source)
		}
	}
}
