package styles

import "github.com/charmbracelet/lipgloss"

var (
	PrimaryColor   lipgloss.Color
	SecondaryColor lipgloss.Color
	WarningColor   lipgloss.Color
	ErrorColor     lipgloss.Color
	MutedColor     lipgloss.Color
	SurfaceColor   lipgloss.Color
	TextColor      lipgloss.Color
	BorderColor    lipgloss.Color
	ProColor       lipgloss.Color
	ConColor       lipgloss.Color
	AIColor        lipgloss.Color

	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Text      lipgloss.Style

	Title    lipgloss.Style
	Subtitle lipgloss.Style

	// Framed content
	ContentBox lipgloss.Style
	ErrorBox   lipgloss.Style
	NoticeBox  lipgloss.Style

	// Help bar
	HelpKey      lipgloss.Style
	HelpText     lipgloss.Style
	HelpDisabled lipgloss.Style

	// Choice lists
	Selected   lipgloss.Style
	Unselected lipgloss.Style
)

var active *ColorPalette

func init() {
	ApplyPalette(DefaultPalette())
}

// SetActiveTheme switches the global styles to a built-in theme.
//
// Not thread-safe; call it before the program starts or from the Bubble Tea
// event loop.
func SetActiveTheme(name ThemeName) {
	ApplyPalette(GetPalette(name))
}

// ActivePalette returns the palette the global styles were built from.
func ActivePalette() *ColorPalette {
	return active
}

// ApplyPalette rebuilds every global style from p.
func ApplyPalette(p *ColorPalette) {
	active = p

	PrimaryColor = p.Primary
	SecondaryColor = p.Secondary
	WarningColor = p.Warning
	ErrorColor = p.Error
	MutedColor = p.Muted
	SurfaceColor = p.Surface
	TextColor = p.Text
	BorderColor = p.Border
	ProColor = p.Pro
	ConColor = p.Con
	AIColor = p.AI

	Primary = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning = lipgloss.NewStyle().Foreground(WarningColor)
	Error = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted = lipgloss.NewStyle().Foreground(MutedColor)
	Text = lipgloss.NewStyle().Foreground(TextColor)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)

	Subtitle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	ContentBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1)

	ErrorBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ErrorColor).
		Foreground(ErrorColor).
		Padding(0, 1)

	NoticeBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(WarningColor).
		Foreground(WarningColor).
		Padding(0, 1)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)

	HelpText = lipgloss.NewStyle().
		Foreground(MutedColor)

	HelpDisabled = lipgloss.NewStyle().
		Foreground(BorderColor).
		Strikethrough(true)

	Selected = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextColor).
		Background(PrimaryColor).
		Padding(0, 1)

	Unselected = lipgloss.NewStyle().
		Foreground(MutedColor).
		Padding(0, 1)
}
