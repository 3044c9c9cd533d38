package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/haivivi/splittyping/pkg/typing"
)

// Theme defines the color scheme for previews.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Border lipgloss.Style
	Help   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Border: lipgloss.NewStyle().Foreground(t.Primary),
		Help:   lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// Frame renders a bordered box with a title line and content lines.
type Frame struct {
	Styles Styles
	Title  string
	Status string
	Lines  []string
	Help   string
}

// Render renders the frame to a string of the given width.
func (f Frame) Render(width int) string {
	if width < 8 {
		width = 8
	}
	bc := f.Styles.Border
	maxContentWidth := width - 4

	var lines []string
	lines = append(lines, bc.Render("╭"+strings.Repeat("─", width-2)+"╮"))

	// │ title [status]    │
	title := f.Styles.Title.Render(f.Title)
	status := ""
	if f.Status != "" {
		status = f.Styles.Help.Render("[" + f.Status + "]")
	}
	padding := max(0, width-5-lipgloss.Width(title)-lipgloss.Width(status))
	lines = append(lines, bc.Render("│")+" "+title+" "+status+
		strings.Repeat(" ", padding)+" "+bc.Render("│"))
	lines = append(lines, bc.Render("├"+strings.Repeat("─", width-2)+"┤"))

	for _, text := range f.Lines {
		if lipgloss.Width(text) > maxContentWidth {
			text = truncateString(text, maxContentWidth-1) + "…"
		}
		lines = append(lines, bc.Render("│")+" "+text+
			strings.Repeat(" ", max(0, maxContentWidth-lipgloss.Width(text)))+" "+bc.Render("│"))
	}

	lines = append(lines, bc.Render("╰"+strings.Repeat("─", width-2)+"╯"))
	if f.Help != "" {
		lines = append(lines, f.Styles.Help.Render(f.Help))
	}
	return strings.Join(lines, "\n")
}

// RenderStep renders one schedule step as "[i/n] text".
func RenderStep(s Styles, step typing.Step) string {
	label := s.Label.Render(fmt.Sprintf("[%d/%d]", step.Index, step.Total))
	return label + " " + step.Text
}

// RenderTiming renders the typing and pause time of a step.
func RenderTiming(s Styles, step typing.Step) string {
	text := "typing " + FormatDuration(step.Typing)
	if step.Pause > 0 {
		text += ", pause " + FormatDuration(step.Pause)
	}
	return s.Help.Render(text)
}

// RenderSchedule renders all steps of a schedule inside a Frame.
func RenderSchedule(s Styles, title string, steps []typing.Step, width int) string {
	lines := make([]string, 0, len(steps))
	var total time.Duration
	for _, st := range steps {
		lines = append(lines, RenderStep(s, st))
		total += st.Typing + st.Pause
	}
	f := Frame{
		Styles: s,
		Title:  title,
		Status: fmt.Sprintf("%d fragments", len(steps)),
		Lines:  lines,
		Help:   "total " + FormatDuration(total),
	}
	return f.Render(width)
}

// RenderFragments renders plain fragments inside a Frame.
func RenderFragments(s Styles, title string, frags []string, width int) string {
	lines := make([]string, len(frags))
	for i, f := range frags {
		lines[i] = RenderStep(s, typing.Step{Index: i + 1, Total: len(frags), Text: f})
	}
	return Frame{
		Styles: s,
		Title:  title,
		Status: fmt.Sprintf("%d fragments", len(frags)),
		Lines:  lines,
	}.Render(width)
}

// truncateString safely truncates a string to the given width,
// handling multi-byte characters correctly.
func truncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	currentWidth := 0
	for i, r := range runes {
		w := lipgloss.Width(string(r))
		if currentWidth+w > width {
			return string(runes[:i])
		}
		currentWidth += w
	}
	return s
}
