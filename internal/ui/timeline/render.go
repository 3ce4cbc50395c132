package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/voicetrack/internal/engine"
	"github.com/llehouerou/voicetrack/internal/tracker"
)

const (
	filledBlock = "▓"
	emptyBlock  = "░"
	titleWidth  = 22
	agoWidth    = 16
)

var levels = []rune("▁▂▃▄▅▆▇█")

// renderProgressBar renders a block-style progress bar.
// Format: 1:23  ▓▓▓▓▓░░░░░  4:56
func renderProgressBar(position, length time.Duration, width int) string {
	posStr := formatDuration(position)
	lenStr := formatDuration(length)

	fixedWidth := lipgloss.Width(posStr) + 2 + 2 + lipgloss.Width(lenStr)
	barWidth := width - fixedWidth
	if barWidth < 3 {
		return posStr + " / " + lenStr
	}

	var ratio float64
	if length > 0 {
		ratio = float64(position) / float64(length)
	}
	filled := min(max(int(float64(barWidth)*ratio), 0), barWidth)

	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, barWidth-filled)
	return posStr + "  " + bar + "  " + lenStr
}

// renderWaveform draws the most recent amplitudes (0-100) that fit in width.
func renderWaveform(amplitudes []int, width int) string {
	if width <= 0 {
		return ""
	}
	if len(amplitudes) > width {
		amplitudes = amplitudes[len(amplitudes)-width:]
	}
	var b strings.Builder
	for _, a := range amplitudes {
		i := min(max(a, 0)*len(levels)/101, len(levels)-1)
		b.WriteRune(levels[i])
	}
	return b.String()
}

func formatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func stateIcon(s tracker.State) string {
	switch s.(type) {
	case tracker.Playing:
		return "▶"
	case tracker.Paused:
		return "⏸"
	case tracker.Recording:
		return "●"
	case tracker.Error:
		return "✗"
	case tracker.Idle:
		return "•"
	default:
		panic(fmt.Sprintf("unexpected tracker.State: %#v", s))
	}
}

// renderRow renders one message line:
// > ▶ Title                 0:02  ▓▓░░░░  0:08  5 minutes ago
func renderRow(msg engine.Message, s tracker.State, selected bool, width int, now time.Time) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}
	title := ansi.Truncate(msg.Title, titleWidth, "…")
	title += strings.Repeat(" ", titleWidth-ansi.StringWidth(title))
	ago := ansi.Truncate(humanize.RelTime(msg.SentAt, now, "ago", "from now"), agoWidth, "…")
	ago += strings.Repeat(" ", agoWidth-ansi.StringWidth(ago))

	head := cursor + stateIcon(s) + " " + title + "  "
	rest := width - ansi.StringWidth(head) - agoWidth - 2

	var body string
	switch st := s.(type) {
	case tracker.Playing:
		body = renderProgressBar(st.Position, msg.Length, rest)
	case tracker.Paused:
		body = renderProgressBar(st.Position, msg.Length, rest)
	case tracker.Idle:
		body = renderProgressBar(0, msg.Length, rest)
	case tracker.Recording:
		body = renderWaveform(st.Amplitudes, rest)
	case tracker.Error:
		body = errorStyle.Render(ansi.Truncate("failed: "+errorText(st), max(rest, 0), "…"))
	default:
		panic(fmt.Sprintf("unexpected tracker.State: %#v", s))
	}
	body += strings.Repeat(" ", max(rest-ansi.StringWidth(body), 0))

	if selected {
		head = selectedStyle.Render(head)
	}
	return head + body + "  " + dimStyle.Render(ago)
}

func errorText(e tracker.Error) string {
	if e.Cause == nil {
		return "unknown error"
	}
	return e.Cause.Error()
}
