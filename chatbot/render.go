package chatbot

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	userBubble = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)

	botBubble = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	chipStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// RenderTranscript maps the message list to terminal output: user turns
// right-aligned, bot turns left-aligned, suggestions and options as numbered
// affordances the caller routes back into the controller. It is a pure
// function of its arguments and renders the same input to the same output.
func RenderTranscript(messages []Message, width int) string {
	if width < 20 {
		width = 20
	}

	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, renderMessage(m, width))
	}
	return strings.Join(parts, "\n")
}

func renderMessage(m Message, width int) string {
	body := messageBody(m)

	maxBubble := width * 3 / 4
	if m.Sender == SenderUser {
		bubble := userBubble.MaxWidth(maxBubble).Render(body)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble)
	}
	return botBubble.MaxWidth(maxBubble).Render(body)
}

func messageBody(m Message) string {
	var b strings.Builder
	if m.Text != "" {
		b.WriteString(m.Text)
	}

	for i, s := range m.Suggestions {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		label := s.Name
		if s.Link != "" && s.Link != InertLink {
			label = fmt.Sprintf("%s (%s)", s.Name, s.Link)
		}
		b.WriteString(chipStyle.Render(fmt.Sprintf("[%d] %s", i+1, label)))
	}

	for i, o := range m.Options {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(chipStyle.Render(fmt.Sprintf("(%d) %s", i+1, o.Label)))
	}

	return b.String()
}
