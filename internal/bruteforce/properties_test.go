package bruteforce

import (
	"context"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"matrix-bruteforce/internal/cipher"
)

type planted struct {
	rand1, rand2 int
	r            cipher.Vector
}

func drawPlanted(t *rapid.T, label string) planted {
	return planted{
		rand1: rapid.IntRange(0, 100).Draw(t, label+".rand1"),
		rand2: rapid.IntRange(0, 100).Draw(t, label+".rand2"),
		r: cipher.Vector{
			rapid.Int64Range(0, 99).Draw(t, label+".r0"),
			rapid.Int64Range(0, 99).Draw(t, label+".r1"),
			rapid.Int64Range(0, 99).Draw(t, label+".r2"),
		},
	}
}

func drawNoise(t *rapid.T, label string) cipher.Vector {
	return cipher.Vector{
		rapid.Int64Range(-15000, 15000).Draw(t, label+".c0"),
		rapid.Int64Range(-15000, 15000).Draw(t, label+".c1"),
		rapid.Int64Range(-15000, 15000).Draw(t, label+".c2"),
	}
}

func drawInput(t *rapid.T, code rune) ([]cipher.Vector, []planted) {
	n := rapid.IntRange(1, 3).Draw(t, "n")
	var input []cipher.Vector
	var plants []planted
	for i := 0; i < n; i++ {
		if rapid.Bool().Draw(t, "plant") {
			p := drawPlanted(t, "p")
			plants = append(plants, p)
			input = append(input, encrypt(code, p.rand1, p.rand2, p.r))
		} else {
			plants = append(plants, planted{rand1: -1})
			input = append(input, drawNoise(t, "noise"))
		}
	}
	return input, plants
}

func drawCode(t *rapid.T) rune {
	return rune(rapid.IntRange(32, 0xD7FE).Draw(t, "code"))
}

func TestProperty_BoundedAndReproducible(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		code := drawCode(t)
		input, _ := drawInput(t, code)
		s := New(nil)

		matches, err := s.Search(input, string(code))
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		for _, m := range matches {
			for _, x := range m.Residual {
				if x < 0 || x >= 100 {
					t.Fatalf("residual component %d out of range in %v", x, m)
				}
			}
			if err := s.Verify(m, input, string(code)); err != nil {
				t.Fatalf("Verify(%v): %v", m, err)
			}
		}

		again, _ := s.Search(input, string(code))
		if !reflect.DeepEqual(matches, again) {
			t.Fatalf("non-deterministic: %v vs %v", matches, again)
		}
	})
}

func TestProperty_CompleteAndOrdered(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		code := drawCode(t)
		input, plants := drawInput(t, code)

		matches, err := Search(input, string(code), nil)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}

		for i, p := range plants {
			if p.rand1 < 0 {
				continue
			}
			want := Match{Rand1: p.rand1, Rand2: p.rand2, Residual: p.r, Ciphertext: i}
			count := 0
			for _, m := range matches {
				if m == want {
					count++
				}
			}
			if count != 1 {
				t.Fatalf("planted %v found %d times in %v", want, count, matches)
			}
		}

		for i := 1; i < len(matches); i++ {
			a, b := matches[i-1], matches[i]
			ordered := a.Rand1 < b.Rand1 ||
				(a.Rand1 == b.Rand1 && a.Rand2 < b.Rand2) ||
				(a.Rand1 == b.Rand1 && a.Rand2 == b.Rand2 && a.Ciphertext < b.Ciphertext)
			if !ordered {
				t.Fatalf("matches %d and %d out of order: %v, %v", i-1, i, a, b)
			}
		}
	})
}

func TestProperty_ParallelEqualsSequential(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		code := drawCode(t)
		input, _ := drawInput(t, code)
		workers := rapid.IntRange(2, 16).Draw(t, "workers")
		s := New(nil)

		sequential, err := s.Search(input, string(code))
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		parallel, err := s.SearchParallel(context.Background(), input, string(code), workers)
		if err != nil {
			t.Fatalf("SearchParallel failed: %v", err)
		}
		if !reflect.DeepEqual(sequential, parallel) {
			t.Fatalf("workers=%d: %v vs %v", workers, parallel, sequential)
		}
	})
}

// Raising the code point by one moves every v by Shift; moving the
// ciphertexts by the same vector must reproduce the unshifted matches.
func TestProperty_CodeShift(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		code := drawCode(t)
		input, _ := drawInput(t, code)
		shift := Shift(cipher.PublicMatrix())

		shifted := make([]cipher.Vector, len(input))
		for i, c := range input {
			shifted[i] = c.Add(shift)
		}

		base, err := Search(input, string(code), nil)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		next, err := Search(shifted, string(code+1), nil)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if !reflect.DeepEqual(base, next) {
			t.Fatalf("shifted search differs: %v vs %v", next, base)
		}
	})
}
