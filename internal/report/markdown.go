package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/fraudeda-cli/internal/analysis"
)

// Markdown renders the report as plain Markdown tables, one heading per
// section.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[REPORT SUMMARY]\n")
	if r.Dataset != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Dataset))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", r.Columns))
	if !r.GeneratedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	}
	if r.RunID != "" {
		b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	}

	for _, sec := range r.Sections {
		b.WriteString(fmt.Sprintf("\n## %s – %s\n", sec.Name, sec.Title))
		if sec.Failed {
			b.WriteString(fmt.Sprintf("\n> Section failed: %s\n", safeVal(sec.Error)))
			continue
		}
		for _, t := range sec.Tables {
			writeMarkdownTable(&b, t)
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- " + safeVal(w) + "\n")
		}
	}
	return b.String()
}

func writeMarkdownTable(b *strings.Builder, t analysis.Table) {
	b.WriteString("\n")
	if t.Title != "" {
		b.WriteString(fmt.Sprintf("### %s\n\n", safeVal(t.Title)))
	}
	if t.Note != "" {
		b.WriteString(fmt.Sprintf("_%s_\n\n", safeVal(t.Note)))
	}
	if len(t.Columns) == 0 {
		return
	}
	b.WriteString("|")
	for _, c := range t.Columns {
		b.WriteString(" " + safeVal(c) + " |")
	}
	b.WriteString("\n|")
	for range t.Columns {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range t.Rows {
		b.WriteString("|")
		for i := range t.Columns {
			var v any
			if i < len(row.Cells) {
				v = row.Cells[i]
			}
			cell := cellText(v)
			if i == 0 && (row.Flagged || row.Level >= analysis.LevelHigh) {
				cell = "**" + cell + "**"
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
	}
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return safeVal(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return safeVal(fmt.Sprint(x))
	}
}

// safeVal keeps a value on one table line.
func safeVal(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "/")
}
