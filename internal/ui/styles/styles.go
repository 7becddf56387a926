package styles

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
)

// Symbols - Unicode with ASCII fallbacks
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolArrow   = "→"
	SymbolEdited  = "●"
)

var forceNoColor atomic.Bool

// SetNoColor disables colors regardless of the environment (--no-color).
func SetNoColor(v bool) {
	forceNoColor.Store(v)
}

// NoColor checks if colors should be disabled
func NoColor() bool {
	return forceNoColor.Load() || os.Getenv("NO_COLOR") != "" || os.Getenv("SHEETVIEW_NO_COLOR") != ""
}

// IsAccessible checks if accessibility mode is enabled
// When enabled: no animations, no spinner, simplified output
func IsAccessible() bool {
	return os.Getenv("SHEETVIEW_ACCESSIBLE") == "1" || os.Getenv("SHEETVIEW_ACCESSIBLE") == "true"
}

// Base text styles
var (
	Bold      = lipgloss.NewStyle().Bold(true)
	Dim       = lipgloss.NewStyle().Foreground(Muted)
	Underline = lipgloss.NewStyle().Underline(true)
)

// Semantic styles - use these instead of raw colors
var (
	// Message types
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	InfoStyle    = lipgloss.NewStyle().Foreground(Info)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)

	// Table
	HeaderStyle = lipgloss.NewStyle().Bold(true)
	IDStyle     = lipgloss.NewStyle().Foreground(ColorID)
	EditedStyle = lipgloss.NewStyle().Foreground(ColorEdited)
	FilterStyle = lipgloss.NewStyle().Foreground(ColorFilter)
	SortStyle   = lipgloss.NewStyle().Foreground(ColorSort).Bold(true)

	// Diff display
	DiffInsert = lipgloss.NewStyle().Foreground(ColorDiffAdd).Underline(true)
	DiffDelete = lipgloss.NewStyle().Foreground(ColorDiffRemove).Strikethrough(true)
	DiffEqual  = lipgloss.NewStyle().Foreground(ColorDiffEqual)

	// Interactive TUI
	SelectedStyle = lipgloss.NewStyle().
			Background(BgHighlight).
			Foreground(TextPrimary)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(0, 1)

	// Help bar
	HelpKey   = lipgloss.NewStyle().Foreground(Accent)
	HelpValue = lipgloss.NewStyle().Foreground(Muted)
)

// ═══════════════════════════════════════════════════════════════════════════
// Render functions - centralized formatting with NoColor support
// ═══════════════════════════════════════════════════════════════════════════

// Render applies a style if colors are enabled
func Render(s lipgloss.Style, text string) string {
	if NoColor() {
		return text
	}
	return s.Render(text)
}

// ID formats a row identity
func ID(id string) string {
	return Render(IDStyle, id)
}

// Header formats a column header with its sort indicator and filter text
func Header(name, indicator, filter string) string {
	out := Render(HeaderStyle, name)
	if indicator != "" {
		out += " " + Render(SortStyle, indicator)
	}
	if filter != "" {
		out += " " + Render(FilterStyle, "/"+filter)
	}
	return out
}

// ═══════════════════════════════════════════════════════════════════════════
// Message formatters - structured output
// ═══════════════════════════════════════════════════════════════════════════

// SuccessMsg formats a success message with checkmark
func SuccessMsg(msg string) string {
	symbol := SymbolSuccess
	if NoColor() {
		symbol = "+"
	}
	return fmt.Sprintf("%s %s", Render(SuccessStyle, symbol), msg)
}

// ErrorMsg formats an error message
func ErrorMsg(title string) string {
	return Render(ErrorStyle, "Error: "+title)
}

// WarningMsg formats a warning message
func WarningMsg(msg string) string {
	symbol := SymbolWarning
	if NoColor() {
		symbol = "!"
	}
	return fmt.Sprintf("%s %s", Render(WarningStyle, symbol), msg)
}

// MutedMsg formats muted/secondary text
func MutedMsg(msg string) string {
	return Render(MutedStyle, msg)
}

// SectionHeader formats a section header
func SectionHeader(title string) string {
	return Render(Bold, title)
}

// HelpLine formats a help line (key description)
func HelpLine(key, description string) string {
	return fmt.Sprintf("%s %s", Render(HelpKey, key), Render(HelpValue, description))
}

// Indent returns text indented by n spaces
func Indent(text string, n int) string {
	prefix := strings.Repeat(" ", n)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func Yellow(s string) string { return Render(EditedStyle, s) }
func Green(s string) string  { return Render(SuccessStyle, s) }
func Red(s string) string    { return Render(ErrorStyle, s) }
func Cyan(s string) string   { return Render(InfoStyle, s) }
func Mute(s string) string   { return Render(MutedStyle, s) }

// Printf-style color functions
func Mutef(format string, a ...any) string    { return Mute(fmt.Sprintf(format, a...)) }
func Errorf(format string, a ...any) string   { return Red(fmt.Sprintf(format, a...)) }
func Successf(format string, a ...any) string { return Green(fmt.Sprintf(format, a...)) }
