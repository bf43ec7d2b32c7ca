// Package tui is the terminal trainer: a bubbletea front end that holds the
// session state and talks to the training server.
//
// The server is stateless, so everything about a session lives here: the
// stage pointer, the exchange count and the turn history sent with every
// request.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ashureev/symbient-academy/internal/agent"
	"github.com/ashureev/symbient-academy/internal/domain"
	"github.com/ashureev/symbient-academy/internal/training"
)

// Backend is the part of the training API the trainer uses.
type Backend interface {
	Chat(ctx context.Context, req agent.ChatRequest) (*agent.ChatResponse, error)
	Welcome(ctx context.Context) (map[domain.Agent]string, error)
}

const (
	defaultWidth  = 100
	defaultHeight = 30
	// header, stats, status, input, help and pane borders
	chromeHeight = 11
)

type welcomeMsg struct {
	welcome map[domain.Agent]string
	err     error
}

type replyMsg struct {
	message string
	resp    *agent.ChatResponse
	err     error
}

type tickMsg time.Time

// Model is the trainer's bubbletea model.
type Model struct {
	backend Backend
	stages  map[domain.Stage]training.StageInfo
	session *domain.Session
	welcome map[domain.Agent]string

	facilitator viewport.Model
	partner     viewport.Model
	input       textinput.Model
	spinner     spinner.Model

	sending     bool
	confirmQuit bool
	status      string
	statusErr   bool
	pending     string

	width  int
	height int
}

// New creates a trainer model. stages supplies titles and descriptions for the header.
func New(backend Backend, stages []training.StageInfo) *Model {
	in := textinput.New()
	in.Placeholder = "Share what you notice..."
	in.CharLimit = 2000
	in.Prompt = "› "
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	byStage := make(map[domain.Stage]training.StageInfo, len(stages))
	for _, s := range stages {
		byStage[s.Stage] = s
	}

	m := &Model{
		backend:     backend,
		stages:      byStage,
		session:     domain.NewSession(),
		welcome:     map[domain.Agent]string{},
		facilitator: viewport.New(0, 0),
		partner:     viewport.New(0, 0),
		input:       in,
		spinner:     sp,
	}
	m.resize(defaultWidth, defaultHeight)
	return m
}

// Init fetches the welcome messages and starts the session timer.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetchWelcome(), tick())
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case welcomeMsg:
		if msg.err != nil {
			m.setError("Could not load welcome messages: " + msg.err.Error())
		} else {
			m.welcome = msg.welcome
		}
		m.refreshPanes()
		return m, nil

	case tickMsg:
		return m, tick()

	case spinner.TickMsg:
		if !m.sending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case replyMsg:
		return m, m.handleReply(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmQuit {
		switch msg.String() {
		case "y", "Y", "enter":
			return m, tea.Quit
		default:
			m.confirmQuit = false
			return m, nil
		}
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.session.ExchangeCount > 0 {
			m.confirmQuit = true
			return m, nil
		}
		return m, tea.Quit
	case "ctrl+r":
		if m.sending {
			return m, nil
		}
		m.session.Reset()
		m.setStatus("Session reset.")
		m.input.Reset()
		m.refreshPanes()
		return m, nil
	case "enter":
		return m, m.send()
	case "pgup", "pgdown":
		var fcmd, pcmd tea.Cmd
		m.facilitator, fcmd = m.facilitator.Update(msg)
		m.partner, pcmd = m.partner.Update(msg)
		return m, tea.Batch(fcmd, pcmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send starts an exchange with the current input. Input stays disabled until the reply arrives.
func (m *Model) send() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if m.sending || text == "" {
		return nil
	}

	req := agent.ChatRequest{
		Message:             text,
		SessionID:           m.session.ID,
		CurrentStage:        m.session.Stage,
		ConversationHistory: m.session.HistorySnapshot(),
	}

	m.sending = true
	m.pending = text
	m.setStatus("")
	m.input.Reset()
	m.input.Blur()
	m.refreshPanes()

	backend := m.backend
	chat := func() tea.Msg {
		resp, err := backend.Chat(context.Background(), req)
		return replyMsg{message: text, resp: resp, err: err}
	}
	return tea.Batch(m.spinner.Tick, chat)
}

// handleReply applies an exchange outcome. Input is re-enabled on every path.
func (m *Model) handleReply(msg replyMsg) tea.Cmd {
	m.sending = false
	m.pending = ""
	cmd := m.input.Focus()

	if msg.err != nil {
		m.setError("Exchange failed: " + msg.err.Error())
		m.input.SetValue(msg.message)
		m.input.CursorEnd()
		m.refreshPanes()
		return cmd
	}

	m.session.Record(msg.message, msg.resp.Facilitator, msg.resp.Partner, msg.resp.CurrentStage, msg.resp.SessionID)
	m.refreshPanes()
	return cmd
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func (m *Model) fetchWelcome() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		welcome, err := backend.Welcome(context.Background())
		return welcomeMsg{welcome: welcome, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	paneWidth := max(20, width/2-2)
	paneHeight := max(5, height-chromeHeight)
	m.facilitator.Width = paneWidth - 2
	m.facilitator.Height = paneHeight
	m.partner.Width = paneWidth - 2
	m.partner.Height = paneHeight
	m.input.Width = max(10, width-4)
	m.refreshPanes()
}

// refreshPanes rebuilds both transcripts from the session history.
// User turns appear in both panes; each agent turn only in its own.
func (m *Model) refreshPanes() {
	m.facilitator.SetContent(m.transcript(domain.AgentFacilitator, m.facilitator.Width))
	m.facilitator.GotoBottom()
	m.partner.SetContent(m.transcript(domain.AgentPartner, m.partner.Width))
	m.partner.GotoBottom()
}

func (m *Model) transcript(a domain.Agent, width int) string {
	var blocks []string
	if w := m.welcome[a]; w != "" {
		blocks = append(blocks, renderTurn(agentLabel(a), w, width))
	}
	for _, t := range m.session.History {
		switch {
		case t.Role == domain.RoleUser:
			blocks = append(blocks, renderTurn("You", t.Content, width))
		case t.Agent == a:
			blocks = append(blocks, renderTurn(agentLabel(a), t.Content, width))
		}
	}
	if m.pending != "" {
		blocks = append(blocks, renderTurn("You", m.pending, width))
	}
	return strings.Join(blocks, "\n\n")
}

func agentLabel(a domain.Agent) string {
	if a == domain.AgentFacilitator {
		return "Facilitator"
	}
	return "Partner"
}
