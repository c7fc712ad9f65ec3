package style

import (
	"github.com/arthur-debert/pkgmerge/pkg/fsentry"
	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle   = lipgloss.NewStyle().Foreground(HeadingColor).Bold(true)
	MutedStyle   = lipgloss.NewStyle().Foreground(MutedColor)
	PathStyle    = lipgloss.NewStyle().Foreground(PrimaryColor)
	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
)

var kindStyles = map[fsentry.Kind]lipgloss.Style{
	fsentry.KindFile:    lipgloss.NewStyle().Foreground(FileColor),
	fsentry.KindDir:     lipgloss.NewStyle().Foreground(DirColor).Bold(true),
	fsentry.KindSymlink: lipgloss.NewStyle().Foreground(SymlinkColor).Italic(true),
	fsentry.KindDevice:  lipgloss.NewStyle().Foreground(DeviceColor),
	fsentry.KindFifo:    lipgloss.NewStyle().Foreground(FifoColor),
}

// KindStyle returns the style used for entries of kind k.
func KindStyle(k fsentry.Kind) lipgloss.Style {
	if s, ok := kindStyles[k]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

// Diff markers
var (
	AddedIndicator   = SuccessStyle.Render("+")
	RemovedIndicator = ErrorStyle.Render("-")
	ChangedIndicator = WarningStyle.Render("~")
)

func Indent(s string, level int) string {
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(s)
}

func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}
