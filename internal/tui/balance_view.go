package tui

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/energyprophet/internal/balancer"
	"github.com/rshade/energyprophet/internal/engine"
	"github.com/rshade/energyprophet/internal/greenops"
	"github.com/rshade/energyprophet/internal/narrative"
)

// Column widths for the technology table.
const (
	techNameWidth  = 16
	techValueWidth = 10
	minTruncateLen = 3
	percent        = 100
)

// deltaEpsilon is the smallest delta shown as a change.
const deltaEpsilon = 0.005

// RenderGenerationDelta renders a TWh delta with sign and direction arrow.
func RenderGenerationDelta(delta float64) string {
	var icon string
	var color lipgloss.Color

	switch {
	case delta >= deltaEpsilon:
		icon = IconArrowUp
		color = ColorHighlight
	case delta <= -deltaEpsilon:
		icon = IconArrowDown
		color = ColorWarning
	default:
		icon = IconArrowRight
		color = ColorMuted
	}

	style := lipgloss.NewStyle().Foreground(color).Bold(true)
	return style.Render(fmt.Sprintf("%s TWh %s", engine.FormatSignedTWh(delta, 2), icon))
}

// RenderBalanceHeader renders the title block for the balancer.
func RenderBalanceHeader(countryName, countryID string, targetYear int, target float64) string {
	var sb strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorHeader).
		Border(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)
	sb.WriteString(titleStyle.Render("Energy Mix Balancer"))
	sb.WriteString("\n\n")

	if countryName == "" {
		countryName = countryID
	}
	sb.WriteString(LabelStyle.Render("Country: "))
	sb.WriteString(ValueStyle.Render(countryName))
	sb.WriteString("\n")
	sb.WriteString(LabelStyle.Render(fmt.Sprintf("Required production in %d: ", targetYear)))
	sb.WriteString(ValueStyle.Render(greenops.FormatFloat(target, 2) + " TWh"))

	return sb.String()
}

// RenderBalanceStatus renders the running total against the target and the
// debounced balance state.
func RenderBalanceStatus(s balancer.Session, state balancer.State) string {
	var status string
	switch state {
	case balancer.StateBalanced:
		status = OKStyle.Render(IconCheck + " balanced")
	case balancer.StatePending:
		status = InfoStyle.Render(IconPending + " checking")
	case balancer.StateUnbalanced:
		remaining := s.Remaining()
		if remaining > 0 {
			status = WarningStyle.Render(greenops.FormatFloat(remaining, 2) + " TWh still to assign")
		} else {
			status = WarningStyle.Render(greenops.FormatFloat(-remaining, 2) + " TWh over target")
		}
	}

	return fmt.Sprintf("%s %s / %s TWh  %s",
		LabelStyle.Render("Total:"),
		ValueStyle.Render(greenops.FormatFloat(s.Total(), 2)),
		greenops.FormatFloat(s.Target(), 2),
		status,
	)
}

// RenderTechnologyTable renders one row per technology with the focused row
// highlighted.
func RenderTechnologyTable(s balancer.Session, focused int) string {
	var sb strings.Builder

	sb.WriteString(HeaderStyle.Render(fmt.Sprintf("  %-*s %*s %*s  %s",
		techNameWidth, "Technology", techValueWidth, "Today", techValueWidth, "New", "Change")))
	sb.WriteString("\n")

	cursorStyle := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	for i, id := range s.IDs() {
		cursor := "  "
		if i == focused {
			cursor = cursorStyle.Render(IconCursor) + " "
		}
		name := truncate(s.Name(id), techNameWidth)
		row := fmt.Sprintf("%-*s %*s %*s  %s",
			techNameWidth, name,
			techValueWidth, greenops.FormatFloat(s.Original(id), 2),
			techValueWidth, greenops.FormatFloat(math.Max(0, s.Generation(id)), 2),
			RenderGenerationDelta(s.Delta(id)),
		)
		if i == focused {
			row = lipgloss.NewStyle().Bold(true).Render(row)
		}
		sb.WriteString(cursor + row + "\n")
	}
	return sb.String()
}

// RenderAnalysisResult renders the summary table and the narrative, or the
// failure message when no narrative is available.
func RenderAnalysisResult(result *engine.AnalysisResult, width int) string {
	if result == nil || result.Summary == nil {
		return InfoStyle.Render("No analysis to display.")
	}

	var table bytes.Buffer
	if err := engine.RenderSummaryAsTable(&table, result.Summary); err != nil {
		return ErrorStyle.Render("Error: " + err.Error())
	}

	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render("SCENARIO ANALYSIS"))
	sb.WriteString("\n\n")
	sb.WriteString(table.String())
	sb.WriteString("\n")

	if result.NarrativeAvailable {
		sb.WriteString(result.Narrative)
	} else {
		sb.WriteString(WarningStyle.Render(narrative.FailureMessage))
	}

	if width > 0 {
		return lipgloss.NewStyle().Width(width).Render(sb.String())
	}
	return sb.String()
}

// RenderAnalyzingIndicator renders the in-flight analysis message.
func RenderAnalyzingIndicator() string {
	return lipgloss.NewStyle().Foreground(ColorSpinner).Bold(true).Render("Analyzing scenario...")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= minTruncateLen {
		return string(r[:n])
	}
	return string(r[:n-minTruncateLen]) + "..."
}
