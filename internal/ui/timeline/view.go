package timeline

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/voicetrack/internal/tracker"
)

const defaultWidth = 80

func (m Model) View() string {
	width := m.width
	if width == 0 {
		width = defaultWidth
	}
	now := m.now()

	var b strings.Builder
	b.WriteString(m.renderHeader(width))
	b.WriteString("\n\n")
	if len(m.messages) == 0 {
		b.WriteString(dimStyle.Render("  No voice messages yet."))
		b.WriteString("\n")
	}
	for i, msg := range m.visible() {
		b.WriteString(renderRow(msg, m.stateOf(msg.ID), m.offset+i == m.cursor, width, now))
		b.WriteString("\n")
	}
	b.WriteString(m.renderRecording(width))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(errorStyle.Render(ansi.Truncate(m.status, width, "…")))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(ansi.Truncate(m.keys.HelpLine(), width, "…")))
	return b.String()
}

func (m Model) renderHeader(width int) string {
	title := headerStyle.Render("Voice messages")
	flag := dimStyle.Render("○ idle")
	if m.active {
		flag = activeStyle.Render("● active")
	}
	gap := max(width-ansi.StringWidth(title)-ansi.StringWidth(flag), 1)
	return title + strings.Repeat(" ", gap) + flag
}

func (m Model) renderRecording(width int) string {
	switch s := m.stateOf(tracker.RecordingID).(type) {
	case tracker.Recording:
		head := fmt.Sprintf("  %s Recording %3d ", m.spinner.View(), len(s.Amplitudes))
		return head + recordStyle.Render(renderWaveform(s.Amplitudes, width-ansi.StringWidth(head)))
	case tracker.Error:
		return errorStyle.Render("  ✗ recording failed: " + errorText(s))
	default:
		if m.active {
			return dimStyle.Render("  Recording unavailable while playing")
		}
		return dimStyle.Render("  Press r to record")
	}
}
