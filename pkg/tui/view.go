package tui

import (
	"strings"

	"github.com/andrew/rag-webapp/pkg/chat"
	"github.com/andrew/rag-webapp/pkg/models"
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("RAG Chat"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("terminal → webhook → answer"))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.state.Error != "" {
		b.WriteString(errorStyle.Width(max(m.width-4, 10)).Render(errorLabel(m.state.Error)))
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.state.InFlight:
		b.WriteString(m.spinner.View() + loadingStyle.Render(" Processing..."))
	case m.notice != "":
		b.WriteString(dimStyle.Render(m.notice))
	}
	b.WriteString("\n")

	b.WriteString(infoStyle.Render("Webhook: " + webhookLabel(m.ctrl.WebhookURL())))
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))

	return b.String()
}

// renderBody draws the transcript in conversation mode and the latest answer in single mode
func (m Model) renderBody() string {
	if m.ctrl.Mode() == chat.ModeSingle {
		if m.state.Answer == "" {
			return dimStyle.Render("The answer will appear here.")
		}
		return answerTitleStyle.Render("Answer:") + "\n" + m.renderAnswer(m.state.Answer)
	}

	if len(m.state.Transcript) == 0 {
		return dimStyle.Render("No messages yet. Type a question and press enter.")
	}

	parts := make([]string, 0, len(m.state.Transcript))
	for _, msg := range m.state.Transcript {
		parts = append(parts, m.renderMessage(msg))
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) renderMessage(msg models.Message) string {
	if msg.Role == models.RoleUser {
		body := lipgloss.NewStyle().Width(max(m.width-2, 10)).Render(msg.Text)
		return userRoleStyle.Render("You") + "\n" + body
	}
	return assistantRoleStyle.Render("Assistant") + "\n" + m.renderAnswer(msg.Text)
}

func (m Model) renderAnswer(text string) string {
	if m.renderer != nil {
		out, err := m.renderer.Render(text)
		if err == nil {
			return strings.TrimRight(out, "\n")
		}
		m.logger.Debug().Err(err).Msg("markdown render failed")
	}
	return lipgloss.NewStyle().Width(max(m.width-2, 10)).Render(text)
}

// errorLabel prefixes the message unless it already carries one, as status errors do
func errorLabel(msg string) string {
	if strings.HasPrefix(msg, "Error:") {
		return msg
	}
	return "Error: " + msg
}

func webhookLabel(url string) string {
	if url == "" {
		return "not configured"
	}
	return url
}
