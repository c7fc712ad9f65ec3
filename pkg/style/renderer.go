package style

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/pkgmerge/pkg/contents"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/fsentry"
	"github.com/pterm/pterm"
)

// Renderer turns domain values into printable text.
type Renderer interface {
	RenderEntries(entries []fsentry.Entry) string
	RenderDiff(d contents.Diff) string
	RenderProblems(problems []contents.Problem) string
	RenderWarnings(warnings []string) string
	RenderTable(header []string, rows [][]string) string
	RenderError(err error) string
}

// NewRenderer returns the renderer for a resolved format.
func NewRenderer(f Format) Renderer {
	if f == FormatTerminal {
		return NewTerminalRenderer()
	}
	return NewPlainRenderer()
}

// TerminalRenderer implements Renderer with rich terminal output
type TerminalRenderer struct{}

func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{}
}

func (r *TerminalRenderer) RenderEntries(entries []fsentry.Entry) string {
	if len(entries) == 0 {
		return MutedStyle.Render("No entries")
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		v := ViewOf(e)
		name := KindStyle(e.Kind()).Render(v.Location)
		if v.Target != "" {
			name += MutedStyle.Render(" -> " + v.Target)
		}
		rows = append(rows, []string{v.Kind, name, v.Mode, detail(v)})
	}
	return r.RenderTable([]string{"KIND", "LOCATION", "MODE", "DETAIL"}, rows)
}

func (r *TerminalRenderer) RenderDiff(d contents.Diff) string {
	if d.Empty() {
		return SuccessStyle.Render("No differences")
	}
	var b strings.Builder
	for _, e := range d.Removed {
		fmt.Fprintf(&b, "%s %s\n", RemovedIndicator, KindStyle(e.Kind()).Render(e.Location()))
	}
	for _, e := range d.Added {
		fmt.Fprintf(&b, "%s %s\n", AddedIndicator, KindStyle(e.Kind()).Render(e.Location()))
	}
	for _, e := range d.Changed {
		fmt.Fprintf(&b, "%s %s\n", ChangedIndicator, KindStyle(e.Kind()).Render(e.Location()))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *TerminalRenderer) RenderProblems(problems []contents.Problem) string {
	if len(problems) == 0 {
		return SuccessStyle.Render("✓") + " all entries match"
	}
	rows := make([][]string, 0, len(problems))
	for _, p := range problems {
		rows = append(rows, []string{ErrorStyle.Render(p.Kind.String()), PathStyle.Render(p.Location), p.Expected, p.Actual})
	}
	return r.RenderTable([]string{"PROBLEM", "LOCATION", "RECORDED", "FOUND"}, rows)
}

func (r *TerminalRenderer) RenderWarnings(warnings []string) string {
	var b strings.Builder
	for _, w := range warnings {
		b.WriteString(pterm.Warning.Sprintln(w))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *TerminalRenderer) RenderTable(header []string, rows [][]string) string {
	data := pterm.TableData{header}
	data = append(data, rows...)
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return NewPlainRenderer().RenderTable(header, rows)
	}
	return out
}

func (r *TerminalRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		return fmt.Sprintf("%s Error [%s]: %s",
			pterm.Error.Prefix.Text,
			pterm.Error.MessageStyle.Sprint(string(code)),
			err.Error())
	}
	return fmt.Sprintf("%s %s", pterm.Error.Prefix.Text, pterm.Error.MessageStyle.Sprint(err.Error()))
}

// PlainRenderer implements Renderer with plain text output (no styling)
type PlainRenderer struct{}

func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

func (r *PlainRenderer) RenderEntries(entries []fsentry.Entry) string {
	if len(entries) == 0 {
		return "No entries"
	}
	var b strings.Builder
	for _, e := range entries {
		v := ViewOf(e)
		line := fmt.Sprintf("%-7s %s", v.Kind, v.Location)
		if v.Target != "" {
			line += " -> " + v.Target
		}
		if d := detail(v); d != "" {
			line += " " + d
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *PlainRenderer) RenderDiff(d contents.Diff) string {
	if d.Empty() {
		return "No differences"
	}
	var b strings.Builder
	for _, e := range d.Removed {
		fmt.Fprintf(&b, "- %s\n", e.Location())
	}
	for _, e := range d.Added {
		fmt.Fprintf(&b, "+ %s\n", e.Location())
	}
	for _, e := range d.Changed {
		fmt.Fprintf(&b, "~ %s\n", e.Location())
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *PlainRenderer) RenderProblems(problems []contents.Problem) string {
	if len(problems) == 0 {
		return "all entries match"
	}
	lines := make([]string, len(problems))
	for i, p := range problems {
		lines[i] = p.String()
	}
	return strings.Join(lines, "\n")
}

func (r *PlainRenderer) RenderWarnings(warnings []string) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = "WARNING: " + w
	}
	return strings.Join(lines, "\n")
}

func (r *PlainRenderer) RenderTable(header []string, rows [][]string) string {
	lines := []string{strings.Join(header, "\t")}
	for _, row := range rows {
		lines = append(lines, strings.Join(row, "\t"))
	}
	return strings.Join(lines, "\n")
}

func (r *PlainRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", err.Error())
}

func detail(v EntryView) string {
	switch {
	case v.MD5 != "":
		return v.MD5
	case v.Major != nil:
		return fmt.Sprintf("%d,%d", *v.Major, *v.Minor)
	}
	return ""
}
