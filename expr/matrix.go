package expr

import (
	"fmt"
	"math"
	"strings"
)

// Matrix is a rows×cols grid of expressions stored row-major. A nil cell is
// a structural zero.
type Matrix struct {
	rows, cols int
	cells      []Node
}

func NewMatrix(rows, cols int) *Matrix {
	if !validShape(rows, cols) {
		panic(fmt.Sprintf("expr: invalid matrix shape %dx%d", rows, cols))
	}
	return &Matrix{rows: rows, cols: cols, cells: make([]Node, rows*cols)}
}

// validShape reports whether rows×cols is non-negative and its cell count
// fits in an int.
func validShape(rows, cols int) bool {
	if rows < 0 || cols < 0 {
		return false
	}
	return cols == 0 || rows <= math.MaxInt/cols
}

// MatrixOf builds a matrix from row-major entries.
func MatrixOf(rows, cols int, entries ...Node) *Matrix {
	if len(entries) != rows*cols {
		panic(fmt.Sprintf("expr: MatrixOf needs %d entries, got %d", rows*cols, len(entries)))
	}
	m := NewMatrix(rows, cols)
	copy(m.cells, entries)
	return m
}

// Column builds an n×1 matrix, the shape of a vector-valued function.
func Column(entries ...Node) *Matrix { return MatrixOf(len(entries), 1, entries...) }

// Row builds a 1×n matrix.
func Row(entries ...Node) *Matrix { return MatrixOf(1, len(entries), entries...) }

func (m *Matrix) checkBounds(row, col int) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("expr: matrix index out of range [%d,%d] for %dx%d", row, col, m.rows, m.cols))
	}
}

func (m *Matrix) At(row, col int) Node {
	m.checkBounds(row, col)
	return m.cells[row*m.cols+col]
}

func (m *Matrix) Set(row, col int, n Node) {
	m.checkBounds(row, col)
	m.cells[row*m.cols+col] = n
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

// NonZeros counts the cells that are not structural zeros.
func (m *Matrix) NonZeros() int {
	n := 0
	for _, c := range m.cells {
		if !IsZero(c) {
			n++
		}
	}
	return n
}

func (m *Matrix) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("[")
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			if c := m.cells[i*m.cols+j]; c != nil {
				sb.WriteString(c.String())
			} else {
				sb.WriteString("0")
			}
		}
		sb.WriteString("]")
	}
	sb.WriteString("]")
	return sb.String()
}
