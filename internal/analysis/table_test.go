package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/KaramelBytes/fraudeda-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
)

func TestNumGuards(t *testing.T) {
	assert.False(t, Div(1, 0).Valid)
	assert.False(t, Some(math.NaN()).Valid)
	assert.False(t, Some(math.Inf(1)).Valid)
	assert.False(t, DivNum(Some(1), Num{}).Valid)
	assert.Equal(t, 0.5, Div(1, 2).Value)

	var undef Num
	assert.Equal(t, "N/A", undef.Format("%.2f"))
	assert.Nil(t, undef.Cell(4))
	assert.Equal(t, 7.0, undef.Or(7))
	assert.Equal(t, "N/A", ratioText(undef))
	assert.Equal(t, "1.50x", ratioText(Some(1.5)))
}

func TestRoundingAndPercent(t *testing.T) {
	assert.Equal(t, 2.35, Round(2.345, 2))
	assert.Equal(t, -1.01, Round(-1.005, 2))
	assert.Equal(t, 0.1235, Round(0.12345, 4))

	assert.Equal(t, "60.0%", pct2(60))
	assert.Equal(t, "33.33%", pct2(33.3333))
	assert.Equal(t, "0.0%", pct2(0))
	assert.Equal(t, "12.5%", pct2(12.5))
	assert.Equal(t, "60.00%", pct(60, 2))
}

func TestQuantileInterpolation(t *testing.T) {
	s := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.75, quantile(s, 0.25).Value)
	assert.Equal(t, 2.5, quantile(s, 0.5).Value)
	assert.Equal(t, 4.0, quantile(s, 1).Value)
	assert.False(t, quantile(nil, 0.5).Valid)
	assert.Equal(t, 9.0, quantile([]float64{9}, 0.99).Value)
}

func TestPearsonUndefined(t *testing.T) {
	flat := dataset.NewNumeric("flat", dataset.KindInt, []float64{2, 2, 2}, nil)
	y := dataset.NewNumeric("y", dataset.KindInt, []float64{0, 1, 0}, nil)
	_, _, ok := pearson(flat, y)
	assert.False(t, ok)

	one := dataset.NewNumeric("one", dataset.KindInt, []float64{1, 2, 3}, []bool{true, false, false})
	_, n, ok := pearson(one, y)
	assert.False(t, ok)
	assert.Equal(t, 1, n)
}

func TestMomentsSampleStd(t *testing.T) {
	m := momentsOf([]float64{5})
	assert.Equal(t, 5.0, m.Mean().Value)
	assert.False(t, m.Std().Valid, "std needs two values")
	m.add(7)
	assert.InDelta(t, math.Sqrt2, m.Std().Value, 1e-12)
}

func TestRowLevelMarshalsByName(t *testing.T) {
	b, err := json.Marshal(Row{Cells: []any{"x"}, Level: LevelHigh})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"cells":["x"],"level":"high"}`, string(b))
}
