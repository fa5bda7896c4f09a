// Package tui — минимальный терминальный чат поверх chat.Orchestrator.
//
// Нужен для локальной проверки бота без Discord: тот же оркестратор,
// та же история и инструменты, но ввод/вывод — терминал.
//
// # Layout
//
//	┌─────────────────────────────────────────────┐
//	│ 🤖 poncho-bot | Model: gpt-4o              │ ← Status Bar
//	├─────────────────────────────────────────────┤
//	│  User: what is in this video? ...           │
//	│  Bot: Working on it...                      │
//	│  Bot: The video discusses...                │
//	├─────────────────────────────────────────────┤
//	│ > user input here                           │ ← Input Area
//	└─────────────────────────────────────────────┘
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/ilkoid/poncho-bot/pkg/chat"
)

// LocalPrefix — префикс адресации в локальном чате.
// Подставляется к каждому вводу, чтобы форматтер отработал как в Discord.
const LocalPrefix = "@bot "

// localThreadID — ключ истории локальной сессии.
const localThreadID = "local"

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	userStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	botStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// lineMsg — чанк ответа бота (Sender доставляет их по одному).
type lineMsg string

// doneMsg — обработка упоминания завершена.
type doneMsg struct{ err error }

// ChatModel — bubbletea модель локального чата.
type ChatModel struct {
	orch  *chat.Orchestrator
	title string
	model string

	viewport viewport.Model
	textarea textarea.Model

	// lines — канал доставки чанков от Sender'а в UI
	lines chan string

	messages []string
	ready    bool
	busy     bool
}

// Проверка что ChatModel реализует tea.Model
var _ tea.Model = (*ChatModel)(nil)

// NewChatModel создаёт модель локального чата.
func NewChatModel(orch *chat.Orchestrator, modelName string) *ChatModel {
	ta := textarea.New()
	ta.Placeholder = "Введите запрос..."
	ta.Focus()
	ta.Prompt = "> "
	ta.CharLimit = 500
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	vp := viewport.New(0, 0)

	return &ChatModel{
		orch:     orch,
		title:    "🤖 poncho-bot (local)",
		model:    modelName,
		viewport: vp,
		textarea: ta,
		lines:    make(chan string),
		messages: []string{"Local chat session. Ctrl+C to quit."},
	}
}

// Run запускает TUI (блокирующий вызов).
func (m *ChatModel) Run() error {
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// Init реализует tea.Model интерфейс.
func (m *ChatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitForLine())
}

// waitForLine ждёт очередной чанк ответа от Sender'а.
func (m *ChatModel) waitForLine() tea.Cmd {
	return func() tea.Msg {
		return lineMsg(<-m.lines)
	}
}

// submit запускает обработку ввода через Orchestrator.
//
// Выполняется как tea.Cmd в отдельной горутине: Sender пишет чанки
// в m.lines, которые параллельно вычитывает waitForLine.
func (m *ChatModel) submit(input string) tea.Cmd {
	return func() tea.Msg {
		ev := chat.MentionEvent{
			Content:  LocalPrefix + input,
			Author:   "local",
			ThreadID: localThreadID,
		}
		err := m.orch.HandleMention(context.Background(), ev, chanSender{m.lines})
		return doneMsg{err: err}
	}
}

// Update реализует tea.Model интерфейс.
func (m *ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)

	switch msg := msg.(type) {
	case lineMsg:
		m.appendMessage(botStyle.Render("Bot: ") + strings.TrimRight(string(msg), "\n"))
		return m, m.waitForLine()

	case doneMsg:
		m.busy = false
		if msg.err != nil {
			m.appendMessage(errStyle.Render("ERROR: " + msg.err.Error()))
		}
		m.textarea.Focus()
		return m, nil

	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" || m.busy {
				return m, nil
			}
			m.textarea.Reset()
			m.busy = true
			m.appendMessage(userStyle.Render("User: ") + input)
			return m, m.submit(input)
		}
	}

	return m, tea.Batch(tiCmd, vpCmd)
}

// handleWindowSize обрабатывает изменение размера терминала.
func (m *ChatModel) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	footerHeight := m.textarea.Height() + 1
	vpHeight := msg.Height - 1 - footerHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	m.viewport.Width = msg.Width
	m.viewport.Height = vpHeight
	m.textarea.SetWidth(msg.Width)

	if !m.ready {
		m.ready = true
	}
	m.refreshViewport()

	return m, nil
}

// View реализует tea.Model интерфейс.
func (m *ChatModel) View() string {
	status := statusStyle.Render(fmt.Sprintf("%s | Model: %s", m.title, m.model))
	return fmt.Sprintf("%s\n%s\n%s", status, m.viewport.View(), m.textarea.View())
}

// appendMessage добавляет строку в лог и прокручивает вниз.
func (m *ChatModel) appendMessage(line string) {
	m.messages = append(m.messages, line)
	m.refreshViewport()
}

// refreshViewport перерисовывает содержимое с word-wrap под текущую ширину.
func (m *ChatModel) refreshViewport() {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	content := wordwrap.String(strings.Join(m.messages, "\n"), width)
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

// chanSender реализует chat.Sender поверх канала чанков.
type chanSender struct {
	lines chan<- string
}

// Send доставляет один чанк в UI.
func (s chanSender) Send(ctx context.Context, text string) error {
	select {
	case s.lines <- text:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
