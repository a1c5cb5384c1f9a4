// Package tui is a terminal rendition of the dashboard chat panel.
package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nexus/internal/domain"
	"nexus/internal/usecase"
)

// Conversation is satisfied by *usecase.ConversationStore.
type Conversation interface {
	Submit(text string) (usecase.Receipt, error)
	Snapshot() domain.Snapshot
	Subscribe() (<-chan domain.Snapshot, func())
}

// snapshotMsg carries a conversation change into the update loop.
type snapshotMsg domain.Snapshot

type subscriptionClosedMsg struct{}

func waitForSnapshot(ch <-chan domain.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return subscriptionClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

// chrome is the number of rows outside the viewport: title, typing line,
// status line, bordered input (3) and help.
const chrome = 7

type Model struct {
	conv        Conversation
	updates     <-chan domain.Snapshot
	unsubscribe func()

	snap     domain.Snapshot
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	status   string
	width    int
	height   int
	quitting bool
}

func NewModel(conv Conversation) Model {
	updates, cancel := conv.Subscribe()

	ti := textinput.New()
	ti.Placeholder = "Ask Nexus AI..."
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(typingStyle))

	m := Model{
		conv:        conv,
		updates:     updates,
		unsubscribe: cancel,
		snap:        conv.Snapshot(),
		viewport:    viewport.New(80, 20),
		input:       ti,
		spinner:     sp,
		width:       80,
		height:      20 + chrome,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForSnapshot(m.updates))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-chrome)
		m.input.Width = max(10, msg.Width-8)
		m.refresh()
		return m, nil

	case snapshotMsg:
		if domain.Snapshot(msg).Version >= m.snap.Version {
			m.snap = domain.Snapshot(msg)
			m.refresh()
		}
		return m, waitForSnapshot(m.updates)

	case subscriptionClosedMsg:
		m.status = "conversation closed"
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.unsubscribe()
			return m, tea.Quit
		case "enter":
			return m.submit(), nil
		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the input to the conversation. The input is cleared only when
// the submission was accepted, so a refused prompt can be sent again.
func (m Model) submit() Model {
	rc, err := m.conv.Submit(m.input.Value())
	switch {
	case errors.Is(err, usecase.ErrAwaitingReply):
		m.status = "Nexus AI is still replying"
	case errors.Is(err, usecase.ErrQueueFull):
		m.status = "too many prompts waiting"
	case errors.Is(err, usecase.ErrClosed):
		m.status = "conversation closed"
	case err != nil:
		m.status = err.Error()
	case rc.Accepted:
		m.status = ""
		m.input.Reset()
		m.snap = m.conv.Snapshot()
		m.refresh()
	}
	return m
}

// refresh re-renders the transcript and pins the viewport to the latest entry.
func (m *Model) refresh() {
	m.viewport.SetContent(renderTranscript(m.snap.Messages, m.viewport.Width))
	m.viewport.GotoBottom()
}

func renderTranscript(msgs []domain.Message, width int) string {
	body := lipgloss.NewStyle().Width(max(10, width-2)).PaddingLeft(1)
	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		label := assistantRoleStyle.Render(" Nexus AI ")
		if msg.Role == domain.RoleUser {
			label = userRoleStyle.Render(" You ")
		}
		b.WriteString(label + " " + timeStyle.Render(msg.Timestamp.Format("15:04")) + "\n")
		b.WriteString(body.Render(msg.Content) + "\n")
	}
	return b.String()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Nexus AI") + "\n")
	b.WriteString(m.viewport.View() + "\n")

	if m.snap.Pending {
		b.WriteString(m.spinner.View() + typingStyle.Render(" Nexus AI is typing..."))
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status) + "\n")
	b.WriteString(inputStyle.Width(max(10, m.width-2)).Render(m.input.View()) + "\n")
	b.WriteString(helpStyle.Render("  Enter: send  PgUp/PgDn: scroll  Esc: quit"))
	return b.String()
}

// Pending reports whether the panel is showing the typing indicator.
func (m Model) Pending() bool { return m.snap.Pending }
