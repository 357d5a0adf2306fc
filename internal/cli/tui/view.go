package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the dashboard
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string

	sections = append(sections, m.renderTitleBar())
	sections = append(sections, "")
	sections = append(sections, m.renderSession())
	sections = append(sections, "")
	sections = append(sections, m.renderProgress())

	if len(m.history) > 1 {
		sections = append(sections, "")
		sections = append(sections, m.renderErrorBar())
	}

	sections = append(sections, "")
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar() string {
	title := titleStyle.Render("2B2Q TRAINING")

	help := helpStyle.Render("q:stop & save")
	if m.quitting {
		help = haltedStyle.Render("stopping after current batch...")
	}

	spacing := m.width - lipgloss.Width(title) - lipgloss.Width(help) - 2
	if spacing < 1 {
		spacing = 1
	}

	return fmt.Sprintf("%s%s%s", title, strings.Repeat(" ", spacing), help)
}

func (m Model) renderSession() string {
	topology := make([]string, len(m.config.Topology))
	for i, w := range m.config.Topology {
		topology[i] = fmt.Sprintf("%d", w)
	}

	mode := "single run"
	if m.config.Loop {
		mode = "looping"
	}
	halts := strings.Join(m.config.Halts, ", ")
	if halts == "" {
		halts = "until cancelled"
	}

	lines := []string{
		sectionHeaderStyle.Render("  Session"),
		fmt.Sprintf("  %s %s", labelStyle.Render("Model:"), valueStyle.Render(m.config.ModelPath)),
		fmt.Sprintf("  %s %s", labelStyle.Render("Topology:"), valueStyle.Render(strings.Join(topology, "-"))),
		fmt.Sprintf("  %s %s (%d samples)", labelStyle.Render("Data:"), valueStyle.Render(m.config.DataDir), m.config.Samples),
		fmt.Sprintf("  %s %s, %s", labelStyle.Render("Halts:"), valueStyle.Render(halts), valueStyle.Render(mode)),
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderProgress() string {
	header := sectionHeaderStyle.Render("  Progress")
	if m.snap == nil {
		return header + "\n  " + labelStyle.Render("waiting for the first batch...")
	}

	snap := m.snap
	state := lipgloss.NewStyle().Foreground(stateColor(snap.State)).Bold(true).Render(snap.State)

	lines := []string{
		header,
		fmt.Sprintf("  %s %s    %s %d    %s %d    %s %d",
			labelStyle.Render("State:"), state,
			labelStyle.Render("Iteration:"), snap.Iteration,
			labelStyle.Render("Epoch:"), snap.Epoch,
			labelStyle.Render("Batch:"), snap.Batch),
		fmt.Sprintf("  %s %.6f    %s %.6f    %s %s    %s %d",
			labelStyle.Render("Error:"), snap.Err,
			labelStyle.Render("Best:"), snap.BestErr,
			labelStyle.Render("Elapsed:"), formatElapsed(snap.Elapsed()),
			labelStyle.Render("Checkpoints:"), snap.Checkpoints),
	}

	if snap.RSSBytes > 0 {
		lines = append(lines, fmt.Sprintf("  %s %.1f%%    %s %.1f MB",
			labelStyle.Render("CPU:"), snap.CPUPercent,
			labelStyle.Render("RSS:"), float64(snap.RSSBytes)/1024/1024))
	}

	return strings.Join(lines, "\n")
}

// renderErrorBar draws the recent error readings as a column chart scaled
// to the window width.
func (m Model) renderErrorBar() string {
	var max float64
	for _, e := range m.history {
		if e > max {
			max = e
		}
	}
	if max == 0 {
		max = 1
	}

	levels := []rune(" ▁▂▃▄▅▆▇█")
	var b strings.Builder
	for _, e := range m.history {
		idx := int(e / max * float64(len(levels)-1))
		if idx >= len(levels) {
			idx = len(levels) - 1
		}
		b.WriteRune(levels[idx])
	}

	return sectionHeaderStyle.Render("  Error") + "\n  " +
		barEmptyStyle.Render("[") + valueStyle.Render(b.String()) + barEmptyStyle.Render("]") +
		labelStyle.Render(fmt.Sprintf(" peak %.6f", max))
}

func (m Model) renderFooter() string {
	return helpStyle.Render(fmt.Sprintf("  running for %s", formatElapsed(time.Since(m.started))))
}

func formatElapsed(d time.Duration) string {
	return d.Truncate(time.Second).String()
}
