// Package style renders pkgmerge's terminal output.
//
// Colors are lipgloss adaptive colors; tables and prefixed messages come
// from pterm. DetectFormat decides whether styling is used at all, based on
// NO_COLOR, whether the output is a terminal and its color profile.
package style
