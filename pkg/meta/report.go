package meta

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Faint(true)
	savedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	grewStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	fileIndent  = "  "
	arrowColumn = " -> "
)

// RenderText renders the metadata record for console display.
func (m *ProcessMetadata) RenderText() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s)", m.Operation, m.ID)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("archive: "))
	b.WriteString(string(m.Archive))
	b.WriteString(labelStyle.Render("  compression: "))
	b.WriteString(string(m.Algorithm))
	b.WriteString(labelStyle.Render("  duration: "))
	b.WriteString(fmt.Sprintf("%dms", m.DurationMs))
	b.WriteString("\n")

	for _, f := range m.Files {
		b.WriteString(fileIndent)
		b.WriteString(f.Name)
		b.WriteString(arrowColumn)
		b.WriteString(humanize.Bytes(uint64(f.OriginalSize)))
		b.WriteString(" / ")
		b.WriteString(humanize.Bytes(uint64(f.CompressedSize)))
		if f.Method != "" {
			b.WriteString(labelStyle.Render(" (" + f.Method + ")"))
		}
		b.WriteString("\n")
	}

	style := savedStyle
	if m.Totals.Ratio < 0 {
		style = grewStyle
	}
	b.WriteString(labelStyle.Render("total: "))
	b.WriteString(fmt.Sprintf("%s / %s ",
		humanize.Bytes(uint64(m.Totals.Original)),
		humanize.Bytes(uint64(m.Totals.Compressed))))
	b.WriteString(style.Render(fmt.Sprintf("(%.1f%% saved)", m.Totals.Ratio*100)))
	b.WriteString("\n")

	return b.String()
}
