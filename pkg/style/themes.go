package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Color definitions using AdaptiveColor for automatic light/dark mode switching
var (
	PrimaryColor = lipgloss.AdaptiveColor{Light: "#007ACC", Dark: "#3D9EFF"}
	MutedColor   = lipgloss.AdaptiveColor{Light: "#6C757D", Dark: "#ADB5BD"}
	HeadingColor = lipgloss.AdaptiveColor{Light: "#212529", Dark: "#F8F9FA"}

	SuccessColor = lipgloss.AdaptiveColor{Light: "#28A745", Dark: "#4CDD76"}
	ErrorColor   = lipgloss.AdaptiveColor{Light: "#DC3545", Dark: "#FF6B7D"}
	WarningColor = lipgloss.AdaptiveColor{Light: "#FFC107", Dark: "#FFD54F"}
)

// Entry kind colors
var (
	FileColor    = lipgloss.AdaptiveColor{Light: "#495057", Dark: "#E9ECEF"}
	DirColor     = lipgloss.AdaptiveColor{Light: "#0EA5E9", Dark: "#38BDF8"}
	SymlinkColor = lipgloss.AdaptiveColor{Light: "#8B5CF6", Dark: "#A78BFA"}
	DeviceColor  = lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#FBBF24"}
	FifoColor    = lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"}
)
