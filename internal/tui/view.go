package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ashureev/symbient-academy/internal/domain"
	"github.com/ashureev/symbient-academy/internal/training"
)

const progressBarWidth = 30

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#B388FF"))
	descStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
	statsStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	barFullStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	labelStyle   = lipgloss.NewStyle().Bold(true)

	facilitatorPane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Padding(0, 1)
	partnerPane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#B388FF")).
			Padding(0, 1)
)

// View renders the trainer.
func (m *Model) View() string {
	info := m.stageInfo(m.session.Stage)

	header := titleStyle.Render("Symbient Academy · "+info.Title) + "\n" +
		descStyle.Render(info.Description)

	stats := statsStyle.Render(fmt.Sprintf("%s %3.0f%%   Exchanges: %d   Time: %s",
		progressBar(info.Progress), info.Progress, m.session.ExchangeCount, formatElapsed(m.session.Elapsed())))

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		facilitatorPane.Render(labelStyle.Render("Facilitator")+"\n"+m.facilitator.View()),
		partnerPane.Render(labelStyle.Render("Partner")+"\n"+m.partner.View()),
	)

	return strings.Join([]string{
		header,
		stats,
		panes,
		m.statusLine(),
		m.input.View(),
		helpStyle.Render("enter send · pgup/pgdown scroll · ctrl+r reset · esc quit"),
	}, "\n")
}

func (m *Model) statusLine() string {
	switch {
	case m.confirmQuit:
		return errorStyle.Render("Leave the session? Progress will be lost. (y/n)")
	case m.sending:
		return m.spinner.View() + " Facilitator and Partner are responding..."
	case m.statusErr:
		return errorStyle.Render(m.status)
	case m.session.Complete():
		return noticeStyle.Render("Training complete. Your partnership session has reached its final stage.")
	default:
		return statsStyle.Render(m.status)
	}
}

func (m *Model) stageInfo(stage domain.Stage) training.StageInfo {
	if info, ok := m.stages[stage]; ok {
		return info
	}
	return training.StageInfo{Stage: stage, Title: "Unknown Stage", Description: "Processing...", Progress: stage.Progress()}
}

func renderTurn(label, content string, width int) string {
	body := lipgloss.NewStyle().Width(max(10, width)).Render(content)
	return labelStyle.Render(label+":") + "\n" + body
}

func progressBar(percent float64) string {
	filled := int(percent / 100 * progressBarWidth)
	filled = min(max(filled, 0), progressBarWidth)
	return barFullStyle.Render(strings.Repeat("█", filled)) +
		barStyle.Render(strings.Repeat("░", progressBarWidth-filled))
}

func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
