package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string, sheets map[string][][]any, order []string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func TestLoadXLSX_SheetSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "txns.xlsx")
	writeWorkbook(t, path, map[string][][]any{
		"notes": {{"readme"}},
		"data": {
			{"label", "fraud_type", "amount"},
			{1, "smurfing", 9500},
			{0, "normal", 120.25},
			{0, "normal", ""},
		},
	}, []string{"notes", "data"})

	opt := DefaultOptions()
	opt.SheetName = "DATA"
	ds, err := LoadFile(path, opt)
	require.NoError(t, err)
	assert.Equal(t, "txns", ds.Name)
	assert.Equal(t, 3, ds.Rows())
	amt, _ := ds.Column("amount")
	assert.Equal(t, KindFloat, amt.Kind)
	assert.Equal(t, 1, amt.NullCount())

	opt = DefaultOptions()
	opt.SheetIndex = 2
	ds, err = LoadXLSX(path, opt)
	require.NoError(t, err)
	assert.True(t, ds.Has("fraud_type"))

	opt.SheetIndex = 5
	_, err = LoadXLSX(path, opt)
	assert.ErrorContains(t, err, "out of range")

	opt = DefaultOptions()
	opt.SheetName = "missing"
	_, err = LoadXLSX(path, opt)
	assert.ErrorContains(t, err, "not found")
}
