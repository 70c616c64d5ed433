package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/toyagent/cli/internal/api"
)

// PickResult is the outcome of the chat picker.
type PickResult struct {
	// ChatID is the selected conversation, empty when StartNew is set or
	// the picker was aborted.
	ChatID string

	// StartNew is true when the user chose to start a fresh conversation.
	StartNew bool

	// Aborted is true when the user quit without choosing.
	Aborted bool
}

// RunChatPicker shows the conversation picker and returns the selection.
//
// Parameters:
//   - client: The backend API client
//
// Returns:
//   - PickResult: The user's choice
//   - error: Any error from the Bubble Tea runtime or the chat list fetch
func RunChatPicker(client *api.Client) (PickResult, error) {
	p := tea.NewProgram(newPickerModel(client))
	final, err := p.Run()
	if err != nil {
		return PickResult{Aborted: true}, err
	}

	m := final.(pickerModel)
	if m.err != nil {
		return PickResult{Aborted: true}, m.err
	}
	return m.result, nil
}

// pickerModel is the Bubble Tea model for the conversation picker.
type pickerModel struct {
	client  *api.Client
	spin    spinner.Model
	loading bool
	chats   []api.ChatSummary
	cursor  int
	result  PickResult
	err     error
}

func newPickerModel(client *api.Client) pickerModel {
	return pickerModel{
		client:  client,
		spin:    newSpinner(),
		loading: true,
	}
}

// fetchChats loads the chat list in the background.
func (m pickerModel) fetchChats() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	chats, err := m.client.ListChats(ctx, 20)
	return ChatListMsg{Chats: chats, Err: err}
}

func (m pickerModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.fetchChats)
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ChatListMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, tea.Quit
		}
		m.chats = msg.Chats
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.result = PickResult{Aborted: true}
			return m, tea.Quit

		case "n":
			m.result = PickResult{StartNew: true}
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "j":
			if m.cursor < len(m.chats)-1 {
				m.cursor++
			}
			return m, nil

		case "enter":
			if m.loading {
				return m, nil
			}
			if len(m.chats) == 0 {
				m.result = PickResult{StartNew: true}
			} else {
				m.result = PickResult{ChatID: m.chats[m.cursor].ID}
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := titleStyle.Render("ToyAgent") + dimStyle.Render("  pick a conversation") + "\n\n"

	if m.loading {
		return s + fmt.Sprintf("%s loading chats...\n", m.spin.View())
	}
	if m.err != nil {
		return s + errorStyle.Render("failed to load chats: "+m.err.Error()) + "\n"
	}
	if len(m.chats) == 0 {
		s += dimStyle.Render("No conversations yet.") + "\n\n"
		s += helpStyle.Render("enter/n: start new • q: quit") + "\n"
		return s
	}

	for i, c := range m.chats {
		title := c.Title
		if title == "" {
			title = c.ID
		}
		line := fmt.Sprintf("%s  %s", title,
			dimStyle.Render(fmt.Sprintf("%d messages", c.MessageCount)))
		if i == m.cursor {
			s += selectedStyle.Render("❯ "+line) + "\n"
		} else {
			s += normalStyle.Render("  "+line) + "\n"
		}
	}

	s += "\n" + helpStyle.Render("↑/↓: move • enter: resume • n: new chat • q: quit") + "\n"
	return s
}
