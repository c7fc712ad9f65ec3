package style

import (
	"os"
	"strings"
	"text/template"
)

// HelpFuncs returns the template helpers used by command help. Headings are
// only styled when output resolves to the terminal format.
func HelpFuncs(output *os.File) template.FuncMap {
	styled := DetectFormat(output) == FormatTerminal
	heading := func(s string) string {
		s = strings.ToUpper(s)
		if !styled {
			return s
		}
		return Bold(s)
	}
	return template.FuncMap{
		"heading": heading,
		"muted": func(s string) string {
			if !styled {
				return s
			}
			return MutedStyle.Render(s)
		},
	}
}
