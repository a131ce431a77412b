package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shanep/canvas-tools/internal/provisioning"
	"github.com/shanep/canvas-tools/internal/provisioning/fleet"
)

var (
	resultColorGreen  = lipgloss.Color("#22c55e")
	resultColorRed    = lipgloss.Color("#ef4444")
	resultColorYellow = lipgloss.Color("#eab308")
	resultColorDim    = lipgloss.Color("#6b7280")
	resultColorWhite  = lipgloss.Color("#f9fafb")
)

var (
	resultTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(resultColorWhite)

	resultDimStyle = lipgloss.NewStyle().
			Foreground(resultColorDim)

	resultGreenStyle = lipgloss.NewStyle().
				Foreground(resultColorGreen)

	resultRedStyle = lipgloss.NewStyle().
			Foreground(resultColorRed)

	resultYellowStyle = lipgloss.NewStyle().
				Foreground(resultColorYellow)
)

// styledStatus colors a status cell: green for success outcomes, yellow
// for skips, red for errors.
func styledStatus(s provisioning.Status) string {
	switch s {
	case provisioning.StatusError:
		return resultRedStyle.Render(string(s))
	case provisioning.StatusSkipped:
		return resultYellowStyle.Render(string(s))
	default:
		return resultGreenStyle.Render(string(s))
	}
}

// renderResults produces a styled per-student result table with a summary
// line. The status column is rendered last so the color escape codes do
// not break column alignment.
func renderResults(title string, results []provisioning.Result) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(resultTitleStyle.Render(fmt.Sprintf("  canvastools %s", title)))
	b.WriteString("\n")
	b.WriteString(resultDimStyle.Render("  " + strings.Repeat("═", 60)))
	b.WriteString("\n")

	if len(results) == 0 {
		b.WriteString(resultDimStyle.Render("  nothing to do"))
		b.WriteString("\n")
		return b.String()
	}

	counts := make(map[provisioning.Status]int)
	for _, r := range results {
		counts[r.Status]++

		who := r.Account
		if who == "" {
			who = r.Email
		}
		b.WriteString(fmt.Sprintf("  %-20s %-20s %-16s %s\n",
			who, r.InstanceID, r.PublicIP, styledStatus(r.Status)))
		if r.Err != "" {
			b.WriteString(resultDimStyle.Render(fmt.Sprintf("      %s", r.Err)))
			b.WriteString("\n")
		}
	}

	b.WriteString(resultDimStyle.Render("  " + strings.Repeat("─", 60)))
	b.WriteString("\n")

	parts := make([]string, 0, len(counts))
	for _, s := range []provisioning.Status{
		provisioning.StatusCreated,
		provisioning.StatusLaunched,
		provisioning.StatusConfigured,
		provisioning.StatusRotated,
		provisioning.StatusUpdated,
		provisioning.StatusTerminated,
		provisioning.StatusDeleted,
		provisioning.StatusSkipped,
		provisioning.StatusError,
	} {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	b.WriteString(fmt.Sprintf("  %d students: %s\n", len(results), strings.Join(parts, ", ")))

	return b.String()
}

// renderCheckReport produces a styled summary of a launch check.
func renderCheckReport(report *fleet.CheckReport) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(resultTitleStyle.Render("  canvastools vms check"))
	b.WriteString("\n")
	b.WriteString(resultDimStyle.Render("  " + strings.Repeat("═", 40)))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("  Instance: %s\n", report.InstanceID))
	b.WriteString(fmt.Sprintf("  Address:  %s\n", report.PublicIP))
	b.WriteString(fmt.Sprintf("  User:     %s\n", report.User))
	if report.Output != "" {
		b.WriteString(fmt.Sprintf("  Output:   %s\n", strings.ReplaceAll(report.Output, "\n", " / ")))
	}

	if report.Status == provisioning.StatusPassed {
		b.WriteString("  Result:   ")
		b.WriteString(resultGreenStyle.Render("passed"))
	} else {
		b.WriteString("  Result:   ")
		b.WriteString(resultRedStyle.Render("failed"))
		if report.Err != "" {
			b.WriteString("\n")
			b.WriteString(resultDimStyle.Render("      " + report.Err))
		}
	}
	b.WriteString("\n")
	b.WriteString(resultDimStyle.Render("  Note: the check instance keeps running; remove it with \"vms cleanup-check\"."))
	b.WriteString("\n")

	return b.String()
}
