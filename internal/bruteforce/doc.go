// Package bruteforce recovers candidate blinding values of a 3x3 matrix cipher.
//
// Every ciphertext vector c is assumed to be P·[code, rand1, rand2] + r, where P is
// the public matrix, code is the code point of a known plaintext character, rand1
// and rand2 are small unknowns and r is a blinding vector whose components fall in
// a small range. The search enumerates every (rand1, rand2) pair, recomputes
// v = P·[code, rand1, rand2] and keeps each residual c - v that lands in range.
//
// # Quick Start
//
//	matches, err := bruteforce.Search(cipher.Ciphertexts(), "H", log)
//	if err != nil {
//	    return err // *bruteforce.InputError when "H" is not a single character
//	}
//	for _, m := range matches {
//	    fmt.Println(m)
//	}
//
// # Customization
//
//	searcher := bruteforce.New(log).
//	    WithParams(bruteforce.Params{
//	        Rand1:    bruteforce.Range{Lo: 0, Hi: 101},
//	        Rand2:    bruteforce.Range{Lo: 0, Hi: 101},
//	        Residual: bruteforce.Range{Lo: 0, Hi: 100},
//	    })
//	matches, err := searcher.SearchParallel(ctx, ciphertexts, "T", 8)
//
// SearchParallel shards the rand1 axis and returns exactly what Search returns.
package bruteforce
