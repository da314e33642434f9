package cipher

import (
	"errors"
	"math/big"
)

var (
	ErrEmptySystem     = errors.New("empty system")
	ErrUnderdetermined = errors.New("underdetermined system")
	ErrSingular        = errors.New("singular matrix")
	ErrInconsistent    = errors.New("inconsistent system")
	ErrNotIntegral     = errors.New("solution is not integral")
)

// LinearSystem is a system of linear equations over the rationals.
// Each equation is sum(coeffs[i] * vars[i]) = constant.
type LinearSystem struct {
	coeffs    [][]*big.Rat
	constants []*big.Rat
	vars      []string
}

// NewLinearSystem creates an empty system
func NewLinearSystem() *LinearSystem {
	return &LinearSystem{}
}

// AddVariable adds a variable and returns its column index
func (ls *LinearSystem) AddVariable(name string) int {
	ls.vars = append(ls.vars, name)
	return len(ls.vars) - 1
}

// AddEquation adds an equation; coeffs maps variable index to coefficient.
// Variables must all be added before the first equation.
func (ls *LinearSystem) AddEquation(coeffs map[int]int64, constant int64) {
	row := make([]*big.Rat, len(ls.vars))
	for i := range row {
		row[i] = new(big.Rat)
	}
	for idx, c := range coeffs {
		if idx < len(row) {
			row[idx].SetInt64(c)
		}
	}
	ls.coeffs = append(ls.coeffs, row)
	ls.constants = append(ls.constants, new(big.Rat).SetInt64(constant))
}

// Solve runs Gaussian elimination with partial (first non-zero) pivoting
// and returns the unique solution keyed by variable name.
func (ls *LinearSystem) Solve() (map[string]*big.Rat, error) {
	if len(ls.coeffs) == 0 || len(ls.vars) == 0 {
		return nil, ErrEmptySystem
	}

	rows := len(ls.coeffs)
	cols := len(ls.vars)
	if rows < cols {
		return nil, ErrUnderdetermined
	}

	// augmented [A|b]
	matrix := make([][]*big.Rat, rows)
	for i := range matrix {
		matrix[i] = make([]*big.Rat, cols+1)
		for j := 0; j < cols; j++ {
			matrix[i][j] = new(big.Rat).Set(ls.coeffs[i][j])
		}
		matrix[i][cols] = new(big.Rat).Set(ls.constants[i])
	}

	tmp := new(big.Rat)
	for col := 0; col < cols; col++ {
		pivotRow := -1
		for row := col; row < rows; row++ {
			if matrix[row][col].Sign() != 0 {
				pivotRow = row
				break
			}
		}
		if pivotRow == -1 {
			return nil, ErrSingular
		}
		matrix[col], matrix[pivotRow] = matrix[pivotRow], matrix[col]

		pivotInv := new(big.Rat).Inv(matrix[col][col])
		for j := col; j <= cols; j++ {
			matrix[col][j].Mul(matrix[col][j], pivotInv)
		}

		for row := 0; row < rows; row++ {
			if row == col || matrix[row][col].Sign() == 0 {
				continue
			}
			factor := new(big.Rat).Set(matrix[row][col])
			for j := col; j <= cols; j++ {
				tmp.Mul(factor, matrix[col][j])
				matrix[row][j].Sub(matrix[row][j], tmp)
			}
		}
	}

	// Surplus rows must have reduced to 0 = 0.
	for row := cols; row < rows; row++ {
		if matrix[row][cols].Sign() != 0 {
			return nil, ErrInconsistent
		}
	}

	result := make(map[string]*big.Rat, cols)
	for i, name := range ls.vars {
		result[name] = matrix[i][cols]
	}
	return result, nil
}

// CanSolve returns true if the system has enough equations
func (ls *LinearSystem) CanSolve() bool {
	return len(ls.coeffs) >= len(ls.vars)
}

// NumEquations returns the number of equations
func (ls *LinearSystem) NumEquations() int {
	return len(ls.coeffs)
}

// NumVariables returns the number of variables
func (ls *LinearSystem) NumVariables() int {
	return len(ls.vars)
}

// SolveMatrix solves m·x = rhs exactly and returns x when it is integral.
func SolveMatrix(m Matrix, rhs Vector) (Vector, error) {
	ls := NewLinearSystem()
	names := [3]string{"x0", "x1", "x2"}
	for _, n := range names {
		ls.AddVariable(n)
	}
	for i := 0; i < 3; i++ {
		ls.AddEquation(map[int]int64{0: m[i][0], 1: m[i][1], 2: m[i][2]}, rhs[i])
	}

	sol, err := ls.Solve()
	if err != nil {
		return Vector{}, err
	}

	var x Vector
	for i, n := range names {
		r := sol[n]
		if !r.IsInt() || !r.Num().IsInt64() {
			return Vector{}, ErrNotIntegral
		}
		x[i] = r.Num().Int64()
	}
	return x, nil
}
