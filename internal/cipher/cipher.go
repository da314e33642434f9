package cipher

// Matrix is a 3x3 integer matrix, row-major
type Matrix [3][3]int64

// Vector is a 3-component integer column vector
type Vector [3]int64

// MulVec returns m·v
func (m Matrix) MulVec(v Vector) Vector {
	return Vector{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// Column returns the i-th column of m
func (m Matrix) Column(i int) Vector {
	return Vector{m[0][i], m[1][i], m[2][i]}
}

// Det returns the determinant of m
func (m Matrix) Det() int64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Sub returns v - w componentwise
func (v Vector) Sub(w Vector) Vector {
	return Vector{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

// Add returns v + w componentwise
func (v Vector) Add(w Vector) Vector {
	return Vector{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Within reports whether every component lies in [lo, hi)
func (v Vector) Within(lo, hi int64) bool {
	return v[0] >= lo && v[0] < hi &&
		v[1] >= lo && v[1] < hi &&
		v[2] >= lo && v[2] < hi
}
