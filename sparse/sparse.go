// Package sparse is the runtime that generated Go procedures build their
// results with: a triplet accumulator finalised into compressed sparse rows.
package sparse

import (
	"fmt"
	"sort"
)

// Builder accumulates (row, col, value) triplets.
type Builder struct {
	rows, cols int
	entries    []entry
}

type entry struct {
	row, col int
	val      float64
}

// NewBuilder starts a rows×cols matrix with room for capacity triplets.
func NewBuilder(rows, cols, capacity int) *Builder {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("sparse: negative shape %dx%d", rows, cols))
	}
	return &Builder{rows: rows, cols: cols, entries: make([]entry, 0, capacity)}
}

// Add records v at (i, j). Repeated positions are summed by Build.
func (b *Builder) Add(i, j int, v float64) {
	if i < 0 || i >= b.rows || j < 0 || j >= b.cols {
		panic(fmt.Sprintf("sparse: index (%d, %d) out of range for %dx%d", i, j, b.rows, b.cols))
	}
	b.entries = append(b.entries, entry{row: i, col: j, val: v})
}

// Len returns the number of triplets added so far.
func (b *Builder) Len() int { return len(b.entries) }

// Build finalises the triplets. Duplicates are summed; explicit zeros are
// kept as stored entries, as structural nonzeros.
func (b *Builder) Build() *Matrix {
	es := append([]entry(nil), b.entries...)
	sort.SliceStable(es, func(x, y int) bool {
		if es[x].row != es[y].row {
			return es[x].row < es[y].row
		}
		return es[x].col < es[y].col
	})
	m := &Matrix{rows: b.rows, cols: b.cols, rowPtr: make([]int, b.rows+1)}
	for k, e := range es {
		if k > 0 && es[k-1].row == e.row && es[k-1].col == e.col {
			m.vals[len(m.vals)-1] += e.val
			continue
		}
		m.colIdx = append(m.colIdx, e.col)
		m.vals = append(m.vals, e.val)
		m.rowPtr[e.row+1]++
	}
	for i := 0; i < b.rows; i++ {
		m.rowPtr[i+1] += m.rowPtr[i]
	}
	return m
}

// Matrix is an immutable compressed-sparse-row matrix.
type Matrix struct {
	rows, cols int
	rowPtr     []int
	colIdx     []int
	vals       []float64
}

func (m *Matrix) Dims() (rows, cols int) { return m.rows, m.cols }

// NonZeros returns the number of stored entries.
func (m *Matrix) NonZeros() int { return len(m.vals) }

// At returns the value at (i, j), zero if nothing is stored there.
func (m *Matrix) At(i, j int) float64 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("sparse: index (%d, %d) out of range for %dx%d", i, j, m.rows, m.cols))
	}
	lo, hi := m.rowPtr[i], m.rowPtr[i+1]
	k := lo + sort.SearchInts(m.colIdx[lo:hi], j)
	if k < hi && m.colIdx[k] == j {
		return m.vals[k]
	}
	return 0
}

// Do calls fn for every stored entry in row-major order.
func (m *Matrix) Do(fn func(i, j int, v float64)) {
	for i := 0; i < m.rows; i++ {
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			fn(i, m.colIdx[k], m.vals[k])
		}
	}
}

// Dense expands the matrix into row slices.
func (m *Matrix) Dense() [][]float64 {
	out := make([][]float64, m.rows)
	for i := range out {
		out[i] = make([]float64, m.cols)
	}
	m.Do(func(i, j int, v float64) { out[i][j] = v })
	return out
}
