package tree

import (
	"cmp"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Split is the best partition found for a node.
type Split struct {
	Feature   int
	Threshold float64
	// Score is the reduction in summed squared error.
	Score float64
	Left  []int
	Right []int
}

// samples is the read-only training set shared by every node of a build.
type samples struct {
	x     []float64 // row-major, rows*cols
	y     []float64
	rows  int
	cols  int
	order [][]int // per-feature global sort order, nil unless presorted
}

func (s *samples) at(row, feature int) float64 {
	return s.x[row*s.cols+feature]
}

// presort sorts every feature once by (value, row).
func (s *samples) presort() {
	s.order = make([][]int, s.cols)
	for f := 0; f < s.cols; f++ {
		rows := make([]int, s.rows)
		for i := range rows {
			rows[i] = i
		}
		slices.SortFunc(rows, func(a, b int) int {
			if c := cmp.Compare(s.at(a, f), s.at(b, f)); c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		})
		s.order[f] = rows
	}
}

// meanSSE returns the mean target and the summed squared error around it.
func (s *samples) meanSSE(indices []int) (mean, sse float64) {
	for _, i := range indices {
		mean += s.y[i]
	}
	mean /= float64(len(indices))
	for _, i := range indices {
		d := s.y[i] - mean
		sse += d * d
	}
	return mean, sse
}

type valueRow struct {
	value float64
	row   int
}

// splitter searches exhaustively over features and midpoints between
// consecutive distinct values.
type splitter struct {
	data            *samples
	minSamplesSplit int
	minGain         float64
}

func newSplitter(data *samples, cfg Config) *splitter {
	return &splitter{
		data:            data,
		minSamplesSplit: cfg.MinSamplesSplit,
		minGain:         cfg.MinGain,
	}
}

// bestSplit returns the split with the highest score over indices. Ties keep
// the lowest feature and then the lowest position. The bool is false when no
// candidate beats minGain.
func (s *splitter) bestSplit(indices []int) (Split, bool) {
	n := len(indices)
	if n < 2*s.minSamplesSplit {
		return Split{}, false
	}

	mean, parentSSE := s.data.meanSSE(indices)
	var total float64
	for _, i := range indices {
		total += s.data.y[i] - mean
	}

	var member *roaring.Bitmap
	if s.data.order != nil {
		member = roaring.New()
		for _, i := range indices {
			member.Add(uint32(i))
		}
	}

	var (
		best  Split
		found bool
		pairs = make([]valueRow, n)
	)

	for f := 0; f < s.data.cols; f++ {
		s.sortedPairs(f, indices, member, pairs)

		// Prefix sums over targets centred on the parent mean.
		var sumLeft, sqLeft float64
		for k := 1; k < n; k++ {
			c := s.data.y[pairs[k-1].row] - mean
			sumLeft += c
			sqLeft += c * c

			if k < s.minSamplesSplit || n-k < s.minSamplesSplit {
				continue
			}
			lo, hi := pairs[k-1].value, pairs[k].value
			if lo == hi {
				continue
			}

			sumRight := total - sumLeft
			sqRight := parentSSE - sqLeft
			sseLeft := max(sqLeft-sumLeft*sumLeft/float64(k), 0)
			sseRight := max(sqRight-sumRight*sumRight/float64(n-k), 0)
			score := max(parentSSE-(sseLeft+sseRight), 0)

			if score <= s.minGain || (found && score <= best.Score) {
				continue
			}
			found = true
			best = Split{Feature: f, Threshold: midpoint(lo, hi), Score: score}
		}
	}

	if !found {
		return Split{}, false
	}
	best.Left, best.Right = s.partition(indices, best.Feature, best.Threshold)
	return best, true
}

// sortedPairs fills pairs with (x[f], row) for indices ordered by value and
// then by row.
func (s *splitter) sortedPairs(f int, indices []int, member *roaring.Bitmap, pairs []valueRow) {
	if member != nil {
		k := 0
		for _, row := range s.data.order[f] {
			if member.Contains(uint32(row)) {
				pairs[k] = valueRow{value: s.data.at(row, f), row: row}
				k++
			}
		}
		return
	}

	for i, row := range indices {
		pairs[i] = valueRow{value: s.data.at(row, f), row: row}
	}
	slices.SortFunc(pairs, func(a, b valueRow) int {
		if c := cmp.Compare(a.value, b.value); c != 0 {
			return c
		}
		return cmp.Compare(a.row, b.row)
	})
}

// partition routes x[f] <= threshold to the left, keeping the input order.
func (s *splitter) partition(indices []int, f int, threshold float64) (left, right []int) {
	left = make([]int, 0, len(indices))
	right = make([]int, 0, len(indices))
	for _, i := range indices {
		if s.data.at(i, f) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

// midpoint returns a threshold t with lo <= t < hi.
func midpoint(lo, hi float64) float64 {
	t := lo + (hi-lo)/2
	if t >= hi {
		return lo
	}
	return t
}
