package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple (violet-400)
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red (red-400)
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	SurfaceColor   = lipgloss.Color("#1F2937") // Dark surface
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray (gray-500)
	BlueColor      = lipgloss.Color("#60A5FA") // Blue

	// Convenience styles for colors
	Primary   = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning   = lipgloss.NewStyle().Foreground(WarningColor)
	Error     = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted     = lipgloss.NewStyle().Foreground(MutedColor)
	Text      = lipgloss.NewStyle().Foreground(TextColor)

	// Header
	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(BorderColor).
		MarginBottom(1).
		PaddingBottom(1)

	// Role badge shown next to the identity in the header
	RoleBadge = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor).
			Background(PrimaryColor).
			Padding(0, 1).
			MarginLeft(1)

	// Batch list
	BatchSeq = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(6)

	BatchArgs = lipgloss.NewStyle().
			Foreground(TextColor)

	BatchMeta = lipgloss.NewStyle().
			Foreground(MutedColor).
			MarginLeft(1)

	EmptyList = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// Footer / status bar
	StatusBar = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(SurfaceColor).
			Padding(0, 1)

	// Help bar
	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)
)

// Layout line counts consumed by the header and footer in View().
const (
	// HeaderLines is text (1) + PaddingBottom (1) + BorderBottom (1) + MarginBottom (1).
	HeaderLines = 4
	// StatusBarLines is the single status line.
	StatusBarLines = 1
	// HelpBarLines is MarginTop (1) + text (1).
	HelpBarLines = 2
	// HeaderFooterReserved is the total number of lines not available to the batch list.
	HeaderFooterReserved = HeaderLines + StatusBarLines + HelpBarLines
)

// StatusColor returns the color for a status level.
func StatusColor(level string) lipgloss.Color {
	switch level {
	case "info":
		return SecondaryColor
	case "warn":
		return WarningColor
	case "error":
		return ErrorColor
	case "debug":
		return BlueColor
	default:
		return MutedColor
	}
}
