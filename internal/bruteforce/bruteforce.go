package bruteforce

import (
	"fmt"

	"matrix-bruteforce/internal/cipher"
)

// Sink receives one informational line per accepted match.
// *logger.Logger satisfies it.
type Sink interface {
	Info(format string, args ...interface{})
}

type nopSink struct{}

func (nopSink) Info(string, ...interface{}) {}

// NopSink discards everything
var NopSink Sink = nopSink{}

// Range is the half-open integer interval [Lo, Hi)
type Range struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// Len returns the number of integers in the range
func (r Range) Len() int {
	if r.Hi <= r.Lo {
		return 0
	}
	return r.Hi - r.Lo
}

// Params bounds the search grid and the accepted residual range
type Params struct {
	Rand1    Range `json:"rand1"`
	Rand2    Range `json:"rand2"`
	Residual Range `json:"residual"`
}

// DefaultParams enumerates rand1, rand2 in [0, 101) and accepts residual
// components in [0, 100).
func DefaultParams() Params {
	return Params{
		Rand1:    Range{Lo: 0, Hi: 101},
		Rand2:    Range{Lo: 0, Hi: 101},
		Residual: Range{Lo: 0, Hi: 100},
	}
}

// Validate rejects empty ranges
func (p Params) Validate() error {
	if p.Rand1.Len() == 0 {
		return fmt.Errorf("%w: empty rand1 range %v", ErrInvalidParams, p.Rand1)
	}
	if p.Rand2.Len() == 0 {
		return fmt.Errorf("%w: empty rand2 range %v", ErrInvalidParams, p.Rand2)
	}
	if p.Residual.Len() == 0 {
		return fmt.Errorf("%w: empty residual range %v", ErrInvalidParams, p.Residual)
	}
	return nil
}

// Checks returns the number of feasibility checks a search over n
// ciphertext vectors performs.
func (p Params) Checks(n int) int64 {
	return int64(p.Rand1.Len()) * int64(p.Rand2.Len()) * int64(n)
}

// Match is an accepted (rand1, rand2, possible_r) triple. Ciphertext is the
// index of the vector the residual was derived from.
type Match struct {
	Rand1      int           `json:"rand1"`
	Rand2      int           `json:"rand2"`
	Residual   cipher.Vector `json:"possible_r"`
	Ciphertext int           `json:"ciphertext"`
}

func (m Match) String() string {
	return fmt.Sprintf("(%d, %d, [%d, %d, %d])", m.Rand1, m.Rand2, m.Residual[0], m.Residual[1], m.Residual[2])
}

// Searcher runs the brute-force search against a fixed matrix
type Searcher struct {
	matrix cipher.Matrix
	params Params
	sink   Sink
}

// New creates a searcher over the public matrix with default parameters.
// A nil sink discards match logs.
func New(sink Sink) *Searcher {
	if sink == nil {
		sink = NopSink
	}
	return &Searcher{
		matrix: cipher.PublicMatrix(),
		params: DefaultParams(),
		sink:   sink,
	}
}

// WithMatrix replaces the transform matrix
func (s *Searcher) WithMatrix(m cipher.Matrix) *Searcher {
	s.matrix = m
	return s
}

// WithParams replaces the search bounds
func (s *Searcher) WithParams(p Params) *Searcher {
	s.params = p
	return s
}

// Matrix returns the transform matrix
func (s *Searcher) Matrix() cipher.Matrix {
	return s.matrix
}

// Params returns the search bounds
func (s *Searcher) Params() Params {
	return s.params
}

// Search is shorthand for New(sink).Search(ciphertexts, target).
func Search(ciphertexts []cipher.Vector, target string, sink Sink) ([]Match, error) {
	return New(sink).Search(ciphertexts, target)
}

// Search enumerates rand1 ascending, then rand2 ascending, then the
// ciphertexts in input order, and returns every accepted match in that order.
// The only error is an *InputError for the target, or ErrInvalidParams.
func (s *Searcher) Search(ciphertexts []cipher.Vector, target string) ([]Match, error) {
	code, err := CharCode(target)
	if err != nil {
		return nil, err
	}
	if err := s.params.Validate(); err != nil {
		return nil, err
	}
	return s.scan(int64(code), ciphertexts, s.params.Rand1.Lo, s.params.Rand1.Hi), nil
}

// scan searches rand1 in [lo, hi) over the full rand2 range.
func (s *Searcher) scan(code int64, ciphertexts []cipher.Vector, lo, hi int) []Match {
	matches := []Match{}
	rlo, rhi := int64(s.params.Residual.Lo), int64(s.params.Residual.Hi)

	for rand1 := lo; rand1 < hi; rand1++ {
		for rand2 := s.params.Rand2.Lo; rand2 < s.params.Rand2.Hi; rand2++ {
			v := s.matrix.MulVec(cipher.Vector{code, int64(rand1), int64(rand2)})

			for i, c := range ciphertexts {
				r := c.Sub(v)
				if !r.Within(rlo, rhi) {
					continue
				}
				s.sink.Info("Match found: rand1=%d, rand2=%d, possible_r=%v", rand1, rand2, r)
				matches = append(matches, Match{
					Rand1:      rand1,
					Rand2:      rand2,
					Residual:   r,
					Ciphertext: i,
				})
			}
		}
	}
	return matches
}
