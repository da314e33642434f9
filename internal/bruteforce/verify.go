package bruteforce

import (
	"fmt"

	"matrix-bruteforce/internal/cipher"
)

// Shift is the change in every derived vector v per unit increase of the
// target code point: the first column of the matrix.
func Shift(m cipher.Matrix) cipher.Vector {
	return m.Column(0)
}

// Verify checks that m is reproducible from target and ciphertexts: the
// residual must equal c - P·[code, rand1, rand2] exactly and lie in range,
// and for an invertible matrix the exact preimage of c - r must be the
// plaintext-guess vector itself.
func (s *Searcher) Verify(m Match, ciphertexts []cipher.Vector, target string) error {
	code, err := CharCode(target)
	if err != nil {
		return err
	}
	if m.Ciphertext < 0 || m.Ciphertext >= len(ciphertexts) {
		return fmt.Errorf("%w: ciphertext index %d out of range", ErrMismatch, m.Ciphertext)
	}

	guess := cipher.Vector{int64(code), int64(m.Rand1), int64(m.Rand2)}
	c := ciphertexts[m.Ciphertext]

	if r := c.Sub(s.matrix.MulVec(guess)); r != m.Residual {
		return fmt.Errorf("%w: residual %v, recomputed %v", ErrMismatch, m.Residual, r)
	}
	if !m.Residual.Within(int64(s.params.Residual.Lo), int64(s.params.Residual.Hi)) {
		return fmt.Errorf("%w: residual %v outside %v", ErrMismatch, m.Residual, s.params.Residual)
	}

	if s.matrix.Det() == 0 {
		return nil
	}
	x, err := cipher.SolveMatrix(s.matrix, c.Sub(m.Residual))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMismatch, err)
	}
	if x != guess {
		return fmt.Errorf("%w: preimage %v, want %v", ErrMismatch, x, guess)
	}
	return nil
}
