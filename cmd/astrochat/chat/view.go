package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	core "astrochat/internal/chat"
	"astrochat/internal/i18n"
)

// View renders the whole interface.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.screen == screenLevel {
		return m.renderLevelPicker()
	}
	return m.renderChat()
}

func (m Model) renderLevelPicker() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(m.bundle.WelcomeToAstroChat))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Subtitle.Render(m.bundle.SelectLevelPrompt))
	sb.WriteString("\n\n")

	for i, opt := range m.bundle.EducationLevels {
		line := fmt.Sprintf("%s\n%s", string(opt.Name), m.styles.Muted.Render(opt.Description))
		if i == m.levelCursor {
			sb.WriteString(m.styles.LevelSelected.Render(line))
		} else {
			sb.WriteString(m.styles.LevelOption.Render(line))
		}
		sb.WriteString("\n\n")
	}

	if m.banner != nil {
		sb.WriteString(m.renderBanner())
		sb.WriteString("\n")
	}
	sb.WriteString(m.styles.Footer.Render("↑/↓ select · enter confirm · q quit"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}

func (m Model) renderChat() string {
	var sb strings.Builder

	header := m.styles.Header.Render("AstroChat AI") + " " +
		m.styles.Subtitle.Render(m.bundle.HeaderSubtitle) + "  " +
		m.styles.Muted.Render("["+string(m.deps.Machine.Level())+"]") +
		m.renderMusicBadge()
	sb.WriteString(header)
	sb.WriteString("\n\n")

	body := m.viewport.View()
	if m.showTimeline {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderTimelinePane())
	}
	sb.WriteString(body)
	sb.WriteString("\n")

	if m.banner != nil {
		sb.WriteString(m.renderBanner())
		sb.WriteString("\n")
	}
	if m.vizBusy {
		sb.WriteString(m.renderVizWaiting())
		sb.WriteString("\n")
	}
	if m.suggestions && len(m.bundle.PromptSuggestions) > 0 {
		sb.WriteString(m.styles.Suggestion.Render("· " + strings.Join(m.bundle.PromptSuggestions, "  · ")))
		sb.WriteString("\n")
	}

	if m.deps.Machine.Sending() {
		sb.WriteString(m.spinner.View() + " ")
	}
	sb.WriteString(m.styles.InputBox.Render(m.textarea.View()))
	sb.WriteString("\n")

	footer := "/help for commands"
	if m.status != "" {
		footer = m.status
	}
	sb.WriteString(m.styles.Footer.Render(footer))

	return sb.String()
}

func (m Model) renderMusicBadge() string {
	if m.deps.Music == nil {
		return ""
	}
	if m.musicOn {
		return "  " + m.styles.TimelineSelected.Render("♪")
	}
	return "  " + m.styles.Muted.Render("♪")
}

func (m Model) renderBanner() string {
	title := m.styles.ErrorTitle.Render(m.banner.Title)
	return m.styles.ErrorBanner.Render(title + "\n" + m.banner.Message + "\n" + m.styles.Muted.Render("esc to dismiss"))
}

// renderVizWaiting shows the rotating fun fact while the model writes
// visualization code.
func (m Model) renderVizWaiting() string {
	line := m.spinner.View() + " "
	var sel *i18n.CosmicEvent
	if m.engine != nil {
		sel = m.engine.Selected()
	}
	if sel == nil {
		line += m.bundle.VisLoading("The Big Bang")
		return m.styles.InfoBox.Render(line)
	}
	line += m.bundle.VisLoading(sel.Name)
	if len(sel.FunFacts) > 0 {
		fact := sel.FunFacts[m.factIdx%len(sel.FunFacts)]
		line += "\n" + m.styles.Muted.Render(m.bundle.VisFunFactMessage+" "+fact)
	}
	return m.styles.InfoBox.Render(line)
}

// renderHistory formats the transcript for the viewport.
func (m Model) renderHistory() string {
	var sb strings.Builder
	for _, msg := range m.deps.Machine.Transcript() {
		if msg.Role == core.RoleUser {
			sb.WriteString(m.styles.UserLabel.Render("You") + "\n")
			sb.WriteString(m.styles.UserText.Render(msg.Content))
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(m.styles.ModelLabel.Render("AstroChat") + "\n")
		sb.WriteString(m.safeMarkdown(msg.Content))
		sb.WriteString("\n")
	}
	return sb.String()
}

// safeMarkdown renders markdown, falling back to plain text if the
// renderer chokes on a half-streamed fragment.
func (m Model) safeMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()
	if m.renderer != nil && content != "" {
		if rendered, err := m.renderer.Render(content); err == nil {
			return rendered
		}
	}
	return content
}
