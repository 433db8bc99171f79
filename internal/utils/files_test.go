package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/fraudeda-cli/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFileReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.md")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, utils.SafeWriteFile(path, []byte("new")))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(b))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be gone")
}

func TestSafeWriteFileMissingDir(t *testing.T) {
	err := utils.SafeWriteFile(filepath.Join(t.TempDir(), "nope", "out.md"), []byte("x"))
	assert.ErrorContains(t, err, "write temp file")
}

func TestReportPath(t *testing.T) {
	assert.Equal(t, "Stem", utils.Stem("/data/Stem.tar"))
	assert.Equal(t, filepath.Join("out", "EDA_txns.xlsx"), utils.ReportPath("out", "/data/txns.csv", ".xlsx"))
	assert.Equal(t, filepath.Join("out", "EDA_warehouse.json"), utils.ReportPath("out", "warehouse", ".json"))
}

func TestPrettyJSON(t *testing.T) {
	b, err := utils.PrettyJSON(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(b))

	_, err = utils.PrettyJSON(make(chan int))
	assert.ErrorContains(t, err, "marshal json")
}
