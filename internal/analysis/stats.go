package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/fraudeda-cli/internal/dataset"
)

// moments accumulates count, mean and M2 with Welford's method.
type moments struct {
	n    int
	mean float64
	m2   float64
	min  float64
	max  float64
}

func (m *moments) add(x float64) {
	if m.n == 0 {
		m.min, m.max = x, x
	}
	m.n++
	d := x - m.mean
	m.mean += d / float64(m.n)
	m.m2 += d * (x - m.mean)
	if x < m.min {
		m.min = x
	}
	if x > m.max {
		m.max = x
	}
}

func (m *moments) Mean() Num {
	if m.n == 0 {
		return Num{}
	}
	return Some(m.mean)
}

// Std is the sample standard deviation (n-1 denominator).
func (m *moments) Std() Num {
	if m.n < 2 {
		return Num{}
	}
	return Some(math.Sqrt(m.m2 / float64(m.n-1)))
}

func (m *moments) Min() Num {
	if m.n == 0 {
		return Num{}
	}
	return Some(m.min)
}

func (m *moments) Max() Num {
	if m.n == 0 {
		return Num{}
	}
	return Some(m.max)
}

func momentsOf(vals []float64) moments {
	var m moments
	for _, v := range vals {
		m.add(v)
	}
	return m
}

// quantile interpolates linearly between the order statistics of sorted.
func quantile(sorted []float64, q float64) Num {
	if len(sorted) == 0 {
		return Num{}
	}
	if q <= 0 {
		return Some(sorted[0])
	}
	if q >= 1 {
		return Some(sorted[len(sorted)-1])
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return Some(sorted[lo])
	}
	w := pos - float64(lo)
	return Some(sorted[lo]*(1-w) + sorted[hi]*w)
}

// quantitative reports int and float columns; booleans are numeric for rate
// arithmetic but are not summarized as quantities.
func quantitative(c *dataset.Column) bool {
	return c.Kind == dataset.KindInt || c.Kind == dataset.KindFloat
}

func sortedCopy(vals []float64) []float64 {
	out := append([]float64(nil), vals...)
	sort.Float64s(out)
	return out
}

// pearson computes r over rows where both x and y are present.
// ok is false with fewer than two complete rows or zero variance.
func pearson(x, y *dataset.Column) (r float64, n int, ok bool) {
	var xs, ys []float64
	for i := 0; i < x.Len(); i++ {
		a, okA := x.Float(i)
		b, okB := y.Float(i)
		if okA && okB {
			xs = append(xs, a)
			ys = append(ys, b)
		}
	}
	n = len(xs)
	if n < 2 {
		return 0, n, false
	}
	mx := momentsOf(xs).mean
	my := momentsOf(ys).mean
	var sxy, sxx, syy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, n, false
	}
	r = sxy / math.Sqrt(sxx*syy)
	if math.IsNaN(r) {
		return 0, n, false
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, n, true
}

// labelStats accumulates label outcomes for a group of rows.
type labelStats struct {
	rows    int // all rows in the group
	labeled int // rows with a non-null label
	fraud   float64
	zeros   int
}

func (s *labelStats) add(label *dataset.Column, i int) {
	s.rows++
	if v, ok := label.Float(i); ok {
		s.labeled++
		s.fraud += v
		if v == 0 {
			s.zeros++
		}
	}
}

// Rate is the mean label, 0 when no row is labeled.
func (s *labelStats) Rate() float64 {
	return Div(s.fraud, float64(s.labeled)).Or(0)
}

func (s *labelStats) FraudCount() int { return int(math.Round(s.fraud)) }

// group is one distinct key value with its label outcomes.
type group struct {
	key   string
	num   float64
	null  bool
	stats labelStats
}

// groupBy partitions rows by the key column. Numeric keys sort ascending by
// value, text keys lexically; the null group, when kept, sorts last.
func groupBy(key, label *dataset.Column, keepNull bool) []*group {
	idx := map[string]*group{}
	var nullGroup *group
	var out []*group
	for i := 0; i < key.Len(); i++ {
		if key.IsNull(i) {
			if !keepNull {
				continue
			}
			if nullGroup == nil {
				nullGroup = &group{null: true}
			}
			nullGroup.stats.add(label, i)
			continue
		}
		k, _ := key.String(i)
		g, ok := idx[k]
		if !ok {
			g = &group{key: k}
			g.num, _ = key.Float(i)
			idx[k] = g
			out = append(out, g)
		}
		g.stats.add(label, i)
	}
	numeric := key.Kind.Numeric()
	sort.SliceStable(out, func(a, b int) bool {
		if numeric {
			return out[a].num < out[b].num
		}
		return out[a].key < out[b].key
	})
	if nullGroup != nil {
		out = append(out, nullGroup)
	}
	return out
}

// mode returns the most frequent non-null value among rows; ties go to the
// smallest value.
func mode(col *dataset.Column, rows []int) (string, bool) {
	counts := map[string]int{}
	for _, i := range rows {
		if s, ok := col.String(i); ok {
			counts[s]++
		}
	}
	best, bestN := "", 0
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best, bestN > 0
}

// meanOver averages the non-null numeric values of col at the given rows.
func meanOver(col *dataset.Column, rows []int) Num {
	var m moments
	for _, i := range rows {
		if v, ok := col.Float(i); ok {
			m.add(v)
		}
	}
	return m.Mean()
}

func medianOver(col *dataset.Column, rows []int) Num {
	var vals []float64
	for _, i := range rows {
		if v, ok := col.Float(i); ok {
			vals = append(vals, v)
		}
	}
	sort.Float64s(vals)
	return quantile(vals, 0.5)
}

// distinct counts non-null distinct values.
func distinct(col *dataset.Column) int {
	seen := map[string]struct{}{}
	for i := 0; i < col.Len(); i++ {
		if s, ok := col.String(i); ok {
			seen[s] = struct{}{}
		}
	}
	return len(seen)
}

// firstSeen lists distinct non-null values in order of first appearance.
func firstSeen(col *dataset.Column) []string {
	seen := map[string]struct{}{}
	var out []string
	for i := 0; i < col.Len(); i++ {
		s, ok := col.String(i)
		if !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
