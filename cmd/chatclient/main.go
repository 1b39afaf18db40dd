// Command chatclient is the interactive chat widget for the hotel assistant:
// a terminal transcript with text input, push-to-talk voice turns, and
// clickable suggestion/option affordances via number keys.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/rettel/hotel-admin/chatbot"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// transcriptMsg signals the controller changed the transcript.
type transcriptMsg struct{}

// turnDoneMsg signals an async controller action finished.
type turnDoneMsg struct{ err error }

// navigateMsg asks the UI to surface a suggestion link.
type navigateMsg struct{ link string }

type model struct {
	ctrl    *chatbot.Controller
	updates chan struct{}

	viewport viewport.Model
	input    textinput.Model

	width   int
	height  int
	busy    bool
	status  string
	lastErr string
}

func newModel(ctrl *chatbot.Controller, updates chan struct{}) model {
	input := textinput.New()
	input.Placeholder = "Type your message..."
	input.Focus()

	return model{
		ctrl:     ctrl,
		updates:  updates,
		viewport: viewport.New(80, 20),
		input:    input,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForUpdate())
}

// waitForUpdate resumes the event loop whenever the controller mutates the
// transcript from another goroutine.
func (m model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		<-m.updates
		return transcriptMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		m.input.Width = msg.Width - 4
		m.refresh()
		return m, nil

	case transcriptMsg:
		m.refresh()
		return m, m.waitForUpdate()

	case turnDoneMsg:
		m.busy = false
		m.status = ""
		if msg.err != nil {
			m.lastErr = msg.err.Error()
		}
		m.refresh()
		return m, nil

	case navigateMsg:
		m.status = "open: " + msg.link
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.lastErr = ""

		if n, err := strconv.Atoi(text); err == nil {
			return m.selectAffordance(n)
		}

		m.busy = true
		m.status = "sending..."
		ctrl := m.ctrl
		return m, func() tea.Msg {
			return turnDoneMsg{err: ctrl.SendText(context.Background(), text)}
		}

	case "ctrl+r":
		return m.toggleRecording()

	case "ctrl+l":
		ctrl := m.ctrl
		return m, func() tea.Msg {
			return turnDoneMsg{err: ctrl.ClearChat(context.Background())}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// selectAffordance routes a typed number at the most recent bot suggestions
// or options message.
func (m model) selectAffordance(n int) (tea.Model, tea.Cmd) {
	msgs := m.ctrl.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		msg := msgs[i]
		if msg.Sender != chatbot.SenderBot {
			continue
		}

		if len(msg.Options) > 0 {
			if n < 1 || n > len(msg.Options) {
				m.lastErr = fmt.Sprintf("no option %d", n)
				return m, nil
			}
			opt := msg.Options[n-1]
			m.busy = true
			m.status = "sending..."
			ctrl := m.ctrl
			return m, func() tea.Msg {
				return turnDoneMsg{err: ctrl.SelectOption(context.Background(), opt)}
			}
		}

		if len(msg.Suggestions) > 0 {
			if n < 1 || n > len(msg.Suggestions) {
				m.lastErr = fmt.Sprintf("no suggestion %d", n)
				return m, nil
			}
			sug := msg.Suggestions[n-1]
			m.busy = true
			m.status = "sending..."
			ctrl := m.ctrl
			return m, func() tea.Msg {
				link, err := ctrl.SelectSuggestion(context.Background(), sug)
				if err != nil {
					return turnDoneMsg{err: err}
				}
				if link != "" {
					return navigateMsg{link: link}
				}
				return turnDoneMsg{}
			}
		}
	}

	m.lastErr = "nothing to select"
	return m, nil
}

func (m model) toggleRecording() (tea.Model, tea.Cmd) {
	ctrl := m.ctrl
	if !m.ctrl.Recording() {
		if err := m.ctrl.StartRecording(context.Background()); err != nil {
			m.lastErr = err.Error()
			return m, nil
		}
		m.status = "recording... ctrl+r to stop"
		m.refresh()
		return m, nil
	}

	m.busy = true
	m.status = "transcribing..."
	return m, func() tea.Msg {
		return turnDoneMsg{err: ctrl.StopRecording(context.Background())}
	}
}

func (m *model) refresh() {
	width := m.viewport.Width
	if width == 0 {
		width = 80
	}
	m.viewport.SetContent(chatbot.RenderTranscript(m.ctrl.Messages(), width))
	m.viewport.GotoBottom()
}

func (m model) View() string {
	title := titleStyle.Render("Hotel Assistant")

	status := m.status
	if status == "" {
		status = "enter to send, a number to pick, ctrl+r voice, ctrl+l clear, esc to quit"
	}
	line := statusStyle.Render(status)
	if m.lastErr != "" {
		line = errorStyle.Render(m.lastErr)
	}

	return title + "\n" + m.viewport.View() + "\n" + m.input.View() + "\n" + line
}

func main() {
	_ = godotenv.Load()

	baseURL := flag.String("api", os.Getenv("HOTEL_APIBASEURL"), "API base URL")
	token := flag.String("token", os.Getenv("HOTEL_TOKEN"), "bearer token (optional)")
	stateDir := flag.String("state", "", "state directory (default ~/.hotel-admin)")
	protocol := flag.String("protocol", "voice", "chat protocol: voice, session, or stream")
	speak := flag.Bool("speak", false, "voice bot replies through the system synthesizer")
	flag.Parse()

	if *baseURL == "" {
		fmt.Println("Error: -api or HOTEL_APIBASEURL is required")
		flag.Usage()
		os.Exit(1)
	}

	dir := *stateDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalln("Could not locate home directory:", err)
		}
		dir = filepath.Join(home, ".hotel-admin")
	}

	store, err := chatbot.NewSQLiteStore(filepath.Join(dir, "chat.db"))
	if err != nil {
		log.Fatalln("Could not open chat state:", err)
	}
	defer store.Close()

	var transport chatbot.Transport
	switch *protocol {
	case "voice":
		transport = chatbot.NewClient(*baseURL, *token)
	case "session":
		transport = chatbot.NewSessionClient(*baseURL, *token)
	case "stream":
		transport = chatbot.NewStreamClient(*baseURL, *token)
	default:
		log.Fatalln("Unknown protocol:", *protocol)
	}

	ctrl, err := chatbot.NewController(store, transport, &chatbot.ExecRecorder{})
	if err != nil {
		log.Fatalln("Could not start chat:", err)
	}
	if *speak {
		ctrl.Speaker = &chatbot.ExecSpeaker{}
	}

	updates := make(chan struct{}, 16)
	ctrl.OnUpdate = func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	}

	p := tea.NewProgram(newModel(ctrl, updates), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalln("Chat UI failed:", err)
	}

	// give fire-and-forget side effects a beat to finish
	time.Sleep(50 * time.Millisecond)
}
