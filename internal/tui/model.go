// Package tui is the interactive question-answering screen.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/domain"
)

// QAPort is the TUI-facing subset of the answer service.
type QAPort interface {
	Answer(ctx context.Context, question string) (string, []domain.SearchResult, error)
}

// Model is the Bubble Tea model for the query screen.
type Model struct {
	service  QAPort
	input    textinput.Model
	viewport viewport.Model
	answer   string
	sources  []domain.SearchResult
	status   string
	ready    bool
}

// New creates a new TUI model instance.
func New(service QAPort) Model {
	ti := textinput.New()
	ti.Prompt = "? "
	ti.Placeholder = "Ask any question about the PDFs and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, input: ti, viewport: vp, status: "Index loaded. Ask away."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ah := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header + status + input frame + spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-ah)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				// the completion call blocks; the screen freezes for its
				// duration, same as the batch stages
				answer, sources, err := m.service.Answer(context.Background(), q)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.answer = ""
					m.sources = nil
				} else {
					m.status = fmt.Sprintf("Answer for %q", q)
					m.answer = answer
					m.sources = sources
				}
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current answer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("PDF Question Answering")
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	body := answerBoxStyle.Render(m.viewport.View())
	return header + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if m.answer == "" {
		return "No answer yet."
	}
	var sb strings.Builder
	sb.WriteString(m.answer)
	if len(m.sources) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(sourceHeaderStyle.Render("Sources"))
		sb.WriteString("\n")
		for i, s := range m.sources {
			sb.WriteString(fmt.Sprintf("%d. d=%.3f %s\n", i+1, s.Distance, sourceStyle.Render(s.Unit.Meta.String())))
		}
	}
	return sb.String()
}

var (
	answerBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	sourceHeaderStyle = lipgloss.NewStyle().Bold(true)
	sourceStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
