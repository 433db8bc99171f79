package report

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/KaramelBytes/fraudeda-cli/internal/analysis"
	"github.com/xuri/excelize/v2"
)

const (
	colorDarkBlue  = "1F3864"
	colorMedBlue   = "2E75B6"
	colorLightBlue = "D6E4F0"
	colorOrange    = "C55A11"
	colorYellow    = "FFD966"
	colorLightGrey = "F2F2F2"
	colorRedLight  = "FCE4D6"
	colorWhite     = "FFFFFF"
	colorBorder    = "B8B8B8"
	colorMuted     = "7F7F7F"

	minColWidth = 10
	maxColWidth = 60
)

type xlsxStyles struct {
	title     int
	subtitle  int
	section   int
	note      int
	header    int
	failed    int
	body      [2]int
	undefined int
	level     map[analysis.Level]int
}

type styleDef struct {
	dst   *int
	style *excelize.Style
}

func border() []excelize.Border {
	out := make([]excelize.Border, 0, 4)
	for _, side := range []string{"left", "right", "top", "bottom"} {
		out = append(out, excelize.Border{Type: side, Color: colorBorder, Style: 1})
	}
	return out
}

func solid(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

func newXLSXStyles(f *excelize.File) (*xlsxStyles, error) {
	left := &excelize.Alignment{Horizontal: "left", Vertical: "center", WrapText: true}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
	body := func(bg, fg string, bold, italic bool) *excelize.Style {
		return &excelize.Style{
			Font:      &excelize.Font{Family: "Calibri", Size: 10, Color: fg, Bold: bold, Italic: italic},
			Fill:      solid(bg),
			Alignment: left,
			Border:    border(),
		}
	}
	var defs []styleDef
	s := &xlsxStyles{level: map[analysis.Level]int{}}
	add := func(dst *int, st *excelize.Style) { defs = append(defs, styleDef{dst, st}) }

	add(&s.title, &excelize.Style{Font: &excelize.Font{Family: "Calibri", Size: 14, Bold: true, Color: colorDarkBlue}, Alignment: left})
	add(&s.subtitle, &excelize.Style{Font: &excelize.Font{Family: "Calibri", Size: 9, Italic: true, Color: colorMuted}, Alignment: left})
	add(&s.section, &excelize.Style{
		Font: &excelize.Font{Family: "Calibri", Size: 10, Bold: true, Color: colorWhite}, Fill: solid(colorMedBlue),
		Alignment: left, Border: border(),
	})
	add(&s.note, &excelize.Style{Font: &excelize.Font{Family: "Calibri", Size: 9, Italic: true}, Alignment: left})
	add(&s.header, &excelize.Style{
		Font: &excelize.Font{Family: "Calibri", Size: 11, Bold: true, Color: colorWhite}, Fill: solid(colorDarkBlue),
		Alignment: center, Border: border(),
	})
	add(&s.failed, body(colorOrange, colorWhite, true, false))
	add(&s.body[0], body(colorLightBlue, "000000", false, false))
	add(&s.body[1], body(colorWhite, "000000", false, false))
	add(&s.undefined, body(colorLightGrey, colorMuted, false, true))

	var low, medium, high, critical int
	add(&low, body(colorLightGrey, "000000", false, false))
	add(&medium, body(colorYellow, "000000", false, false))
	add(&high, body(colorRedLight, "000000", true, false))
	add(&critical, body(colorOrange, colorWhite, true, false))

	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return nil, fmt.Errorf("xlsx style: %w", err)
		}
		*d.dst = id
	}
	s.level[analysis.LevelLow] = low
	s.level[analysis.LevelMedium] = medium
	s.level[analysis.LevelHigh] = high
	s.level[analysis.LevelCritical] = critical
	return s, nil
}

// rowStyle picks the fill for a data row: level first, then the
// undefined-ratio marker, then alternating bands.
func (s *xlsxStyles) rowStyle(r analysis.Row, i int) int {
	if id, ok := s.level[r.Level]; ok {
		return id
	}
	if r.Flagged {
		return s.level[analysis.LevelHigh]
	}
	if r.Undefined {
		return s.undefined
	}
	return s.body[i%2]
}

// Workbook renders the report with one sheet per section in canonical
// order. The caller closes the returned file.
func (r *Report) Workbook() (*excelize.File, error) {
	f := excelize.NewFile()
	st, err := newXLSXStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	for i, sec := range r.Sections {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sec.Name); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sec.Name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("new sheet %s: %w", sec.Name, err)
		}
		if err := r.writeSheet(f, st, sec, i == 0); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("sheet %s: %w", sec.Name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// WriteXLSX writes the workbook to w.
func (r *Report) WriteXLSX(w io.Writer) error {
	f, err := r.Workbook()
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

type sheetWriter struct {
	f      *excelize.File
	st     *xlsxStyles
	name   string
	row    int
	widths map[int]int
}

func (w *sheetWriter) cell(col int) string {
	name, _ := excelize.CoordinatesToCellName(col, w.row)
	return name
}

func (w *sheetWriter) put(col int, v any, style int) error {
	ref := w.cell(col)
	if v != nil {
		if err := w.f.SetCellValue(w.name, ref, v); err != nil {
			return err
		}
	}
	if n := utf8.RuneCountInString(fmt.Sprint(v)); v != nil && n > w.widths[col] {
		w.widths[col] = n
	}
	return w.f.SetCellStyle(w.name, ref, ref, style)
}

// banner writes a single styled cell that does not widen its column.
func (w *sheetWriter) banner(text string, style int) error {
	ref := w.cell(1)
	if err := w.f.SetCellValue(w.name, ref, text); err != nil {
		return err
	}
	if err := w.f.SetCellStyle(w.name, ref, ref, style); err != nil {
		return err
	}
	w.row++
	return nil
}

func (w *sheetWriter) table(t analysis.Table) error {
	if t.Title != "" {
		if err := w.banner(t.Title, w.st.section); err != nil {
			return err
		}
	}
	if t.Note != "" {
		if err := w.banner(t.Note, w.st.note); err != nil {
			return err
		}
	}
	for c, name := range t.Columns {
		if err := w.put(c+1, name, w.st.header); err != nil {
			return err
		}
	}
	w.row++
	for i, r := range t.Rows {
		style := w.st.rowStyle(r, i)
		for c := range t.Columns {
			var v any
			if c < len(r.Cells) {
				v = r.Cells[c]
			}
			if err := w.put(c+1, v, style); err != nil {
				return err
			}
		}
		w.row++
	}
	w.row++
	return nil
}

func (r *Report) writeSheet(f *excelize.File, st *xlsxStyles, sec Section, first bool) error {
	w := &sheetWriter{f: f, st: st, name: sec.Name, row: 1, widths: map[int]int{}}
	if err := w.banner(sec.Title, st.title); err != nil {
		return err
	}
	sub := fmt.Sprintf("%s · %d rows × %d columns · generated %s · run %s",
		r.Dataset, r.Rows, r.Columns, r.GeneratedAt.Format("2006-01-02 15:04:05 MST"), r.RunID)
	if err := w.banner(sub, st.subtitle); err != nil {
		return err
	}
	w.row++
	if sec.Failed {
		if err := w.banner("Section failed: "+sec.Error, st.failed); err != nil {
			return err
		}
	}
	for _, t := range sec.Tables {
		if err := w.table(t); err != nil {
			return err
		}
	}
	if first && len(r.Warnings) > 0 {
		wt := analysis.Table{Title: "Run Warnings", Columns: []string{"Warning"}}
		for _, msg := range r.Warnings {
			wt.Rows = append(wt.Rows, analysis.Row{Cells: []any{msg}})
		}
		if err := w.table(wt); err != nil {
			return err
		}
	}

	for col, n := range w.widths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		width := float64(n + 2)
		if width < minColWidth {
			width = minColWidth
		}
		if width > maxColWidth {
			width = maxColWidth
		}
		if err := f.SetColWidth(sec.Name, name, name, width); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sec.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      2,
		TopLeftCell: "A3",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	hide := false
	return f.SetSheetView(sec.Name, 0, &excelize.ViewOptions{ShowGridLines: &hide})
}
