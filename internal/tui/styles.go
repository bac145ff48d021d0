package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/quireapp/quire/internal/config"
)

const AppName = "quire"

// ASCII art logo lines for quire - canonical definition
var LogoLines = []string{
	" ▄████▄ ██  ██ ██ ▄████▄  ▄████▄",
	"██    ██ ██ ██ ██ ██   ██ ██▄▄▄▄",
	"██    ██ ██ ██ ██ ██▀▀█▄  ██▀▀▀▀",
	" ▀████▀▄ ▀███▀ ██ ██   ██ ▀█████",
	"      ▀▀                        ",
}

const CompactLogo = `quire ›`

// Banner gradient colors
var BannerColors = []lipgloss.Color{
	lipgloss.Color("#FFB454"),
	lipgloss.Color("#FFD173"),
	lipgloss.Color("#95E1D3"),
	lipgloss.Color("#7FD1B9"),
	lipgloss.Color("#FFB454"),
}

// Brand colors: warm lamplight on paper over a night desk. The defaults
// match the shipped config; ApplyTheme overrides them from the user's
// [ui.colors] section.
var (
	PrimaryColor   = lipgloss.Color("#FFB454") // Amber - lamplight
	SecondaryColor = lipgloss.Color("#7FD1B9") // Sea green - cloth cover
	AccentColor    = lipgloss.Color("#95E1D3") // Mint - ribbon marker

	BackgroundColor = lipgloss.Color("#1A1B26") // Night desk
	SurfaceColor    = lipgloss.Color("#24283B") // Blotter blue
	TextColor       = lipgloss.Color("#EAEAEA") // Soft white
	MutedColor      = lipgloss.Color("#94A3B8") // Muted gray-blue

	ErrorColor   = lipgloss.Color("#F87171") // Red
	SuccessColor = lipgloss.Color("#4ADE80") // Green
)

// Styled components, rebuilt whenever the palette changes.
var (
	LogoStyle  lipgloss.Style
	TitleStyle lipgloss.Style

	HeaderStyle    lipgloss.Style
	StatusBarStyle lipgloss.Style
	HelpStyle      lipgloss.Style

	ModalTextStyle      lipgloss.Style
	ModalHighlightStyle lipgloss.Style
	ErrorMessageStyle   lipgloss.Style
	SeparatorStyle      lipgloss.Style

	StatusInfoStyle    lipgloss.Style
	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style

	// Reader surfaces
	PlaceholderStyle lipgloss.Style
	DividerStyle     lipgloss.Style
	SweepStyle       lipgloss.Style

	// Outline entries that only group children and cannot be opened.
	OutlineGroupStyle lipgloss.Style

	EmptyStyle = lipgloss.NewStyle()
)

func init() {
	rebuildStyles()
}

// ApplyTheme overrides the palette with any colors the config sets and
// rebuilds the derived styles.
func ApplyTheme(c config.UIColors) {
	setColor(&PrimaryColor, c.Primary)
	setColor(&SecondaryColor, c.Secondary)
	setColor(&AccentColor, c.Accent)
	setColor(&BackgroundColor, c.Background)
	setColor(&SurfaceColor, c.Surface)
	setColor(&TextColor, c.Text)
	setColor(&MutedColor, c.Muted)
	setColor(&ErrorColor, c.Error)
	setColor(&SuccessColor, c.Success)
	rebuildStyles()
}

func setColor(dst *lipgloss.Color, value string) {
	if value != "" {
		*dst = lipgloss.Color(value)
	}
}

func rebuildStyles() {
	LogoStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	TitleStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Bold(true).
		Padding(0, 2)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	ModalTextStyle = lipgloss.NewStyle().
		Foreground(TextColor)

	ModalHighlightStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	ErrorMessageStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	SeparatorStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusInfoStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessColor)

	StatusWarnStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	PlaceholderStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	DividerStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	SweepStyle = lipgloss.NewStyle().
		Foreground(AccentColor).
		Bold(true)

	OutlineGroupStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)
}

// ContentWrapper returns a style for wrapping content with width and height constraints
func ContentWrapper(width, height int) lipgloss.Style {
	return EmptyStyle.Width(width).Height(height).MaxHeight(height)
}

func GetWelcomeMessage() string {
	return GetCompactBanner("Pick a PDF below, or run: quire <file.pdf>")
}

func GetCompactBanner(message string) string {
	// Use the canonical logo lines
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

func ShowBanner(version string) {
	// Start with the canonical logo lines and add empty line
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)
	lines[len(LogoLines)] = ""

	// Dynamic version tagline
	versionTag := version
	if versionTag != "" && versionTag != "dev" {
		// prefix with 'v' if not already prefixed
		if versionTag[0] != 'v' && versionTag[0] != 'V' {
			versionTag = "v" + versionTag
		}
		lines = append(lines, fmt.Sprintf("    Terminal Document Viewer %s", versionTag))
	} else {
		lines = append(lines, "    Terminal Document Viewer")
	}

	// Apply gradient coloring to each line
	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}

		// Pick color based on line index
		colorIdx := i % len(BannerColors)
		style := lipgloss.NewStyle().
			Foreground(BannerColors[colorIdx]).
			Bold(i < len(LogoLines)) // Bold for logo, normal for tagline

		coloredLines = append(coloredLines, style.Render(line))
	}

	borderChars := lipgloss.Border{
		Top:         "═",
		Bottom:      "═",
		Left:        "║",
		Right:       "║",
		TopLeft:     "╔",
		TopRight:    "╗",
		BottomLeft:  "╚",
		BottomRight: "╝",
	}

	borderStyle := lipgloss.NewStyle().
		Border(borderChars).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		MarginTop(1)

	// Join all lines and render with border
	banner := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)
	output := borderStyle.Render(banner)

	// Center the entire banner
	fmt.Println(lipgloss.NewStyle().
		Width(70).
		Align(lipgloss.Center).
		Render(output))

	// Add a subtle separator line below
	separator := lipgloss.NewStyle().
		Foreground(AccentColor).
		Render("◆ ◇ ◆ ◇ ◆")

	fmt.Println(lipgloss.NewStyle().
		Width(70).
		Align(lipgloss.Center).
		MarginBottom(1).
		Render(separator))
}
