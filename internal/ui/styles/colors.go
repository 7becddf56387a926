package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
// Dark mode optimized, semantic colors
var (
	// Primary semantic colors
	Accent  = lipgloss.Color("#7C3AED") // violet-500 - highlights, interactive
	Success = lipgloss.Color("#10B981") // emerald-500 - success, additions
	Warning = lipgloss.Color("#F59E0B") // amber-500 - warnings, edited cells
	Error   = lipgloss.Color("#EF4444") // red-500 - errors, removals
	Info    = lipgloss.Color("#3B82F6") // blue-500 - info, identities
	Muted   = lipgloss.Color("#6B7280") // gray-500 - secondary text

	// Text colors
	TextPrimary   = lipgloss.Color("#F9FAFB") // gray-50 - main text
	TextSecondary = lipgloss.Color("#9CA3AF") // gray-400 - descriptions

	// Background colors
	BgHighlight = lipgloss.Color("#1F2937") // gray-800 - selected items
	BgBorder    = lipgloss.Color("#374151") // gray-700 - borders
)

// Semantic color aliases for clarity
var (
	// Table cells
	ColorID     = Info    // identity column
	ColorEdited = Warning // cells that differ from the loaded value
	ColorFilter = Accent  // active filter text in headers
	ColorSort   = Success // sort indicator

	// Diff colors
	ColorDiffAdd    = Success // inserted text
	ColorDiffRemove = Error   // deleted text
	ColorDiffEqual  = Muted   // unchanged text
)
