package bruteforce

import (
	"context"
	"sync"

	"matrix-bruteforce/internal/cipher"
)

// SearchParallel shards the rand1 axis across workers. Each rand1 row is
// searched independently and the rows are concatenated in ascending order,
// so the result equals Search. Log lines from different rows may interleave.
func (s *Searcher) SearchParallel(ctx context.Context, ciphertexts []cipher.Vector, target string, workers int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if workers <= 1 {
		return s.Search(ciphertexts, target)
	}

	code, err := CharCode(target)
	if err != nil {
		return nil, err
	}
	if err := s.params.Validate(); err != nil {
		return nil, err
	}

	lo, hi := s.params.Rand1.Lo, s.params.Rand1.Hi
	rows := hi - lo
	if workers > rows {
		workers = rows
	}

	partials := make([][]Match, rows)
	workChan := make(chan int, workers*4)

	go func() {
		defer close(workChan)
		for rand1 := lo; rand1 < hi; rand1++ {
			select {
			case <-ctx.Done():
				return
			case workChan <- rand1:
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rand1 := range workChan {
				if ctx.Err() != nil {
					return
				}
				partials[rand1-lo] = s.scan(int64(code), ciphertexts, rand1, rand1+1)
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches := []Match{}
	for _, p := range partials {
		matches = append(matches, p...)
	}
	return matches, nil
}
