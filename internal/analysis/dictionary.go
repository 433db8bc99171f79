package analysis

import "github.com/KaramelBytes/fraudeda-cli/internal/catalog"

// DictionaryRow documents one dataset column.
type DictionaryRow struct {
	Column     string
	DataType   string
	Group      string
	Definition string
	Formula    string
	Known      bool
}

// DictionaryResult is the data dictionary in dataset column order.
type DictionaryResult struct {
	Rows []DictionaryRow
	// Unknown lists columns without a catalog entry.
	Unknown []string
}

// Dictionary joins the dataset schema with catalog metadata.
func Dictionary(in Input) (*DictionaryResult, error) {
	res := &DictionaryResult{}
	for _, c := range in.Data.Columns() {
		e, ok := in.Catalog.Lookup(c.Name)
		dt := e.DataType
		if !ok {
			dt = c.Kind.String()
			res.Unknown = append(res.Unknown, c.Name)
		}
		res.Rows = append(res.Rows, DictionaryRow{
			Column:     c.Name,
			DataType:   dt,
			Group:      e.Group,
			Definition: e.Definition,
			Formula:    e.Formula,
			Known:      ok,
		})
	}
	return res, nil
}

func (r *DictionaryResult) Tables() []Table {
	t := Table{
		Title:   "Data Dictionary – All Features",
		Columns: []string{"Column Name", "Data Type", "Feature Group", "Definition", "Derivation / Formula"},
	}
	for _, d := range r.Rows {
		row := Row{Cells: []any{d.Column, d.DataType, d.Group, d.Definition, d.Formula}}
		if !d.Known {
			row.Level = LevelLow
		}
		t.add(row)
	}
	return []Table{t}
}

// FormulasResult is the catalog's list of engineered-feature derivations.
type FormulasResult struct {
	Formulas []catalog.Formula
}

// Formulas lists the catalog's feature derivations.
func Formulas(in Input) (*FormulasResult, error) {
	return &FormulasResult{Formulas: in.Catalog.Formulas}, nil
}

func (r *FormulasResult) Tables() []Table {
	t := Table{
		Title:   "Feature Engineering – Formulas & AML Intuition",
		Columns: []string{"Feature Group", "Feature Name", "Mathematical Formula", "AML / Fraud Intuition", "Fraud Types Targeted"},
	}
	for _, f := range r.Formulas {
		t.add(Row{Cells: []any{f.Group, f.Feature, f.Formula, f.Intuition, f.Targets}})
	}
	return []Table{t}
}
