package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"matrix-bruteforce/internal/bruteforce"
	"matrix-bruteforce/internal/cipher"
	"matrix-bruteforce/internal/db"
	"matrix-bruteforce/internal/logger"
	"matrix-bruteforce/internal/notify"
	"matrix-bruteforce/internal/report"
	"matrix-bruteforce/internal/retry"
)

// Result is the outcome of one search run
type Result struct {
	RunID     int64              `json:"run_id"`
	Created   bool               `json:"created"`
	Target    string             `json:"target"`
	Code      int                `json:"code"`
	Checks    int64              `json:"checks"`
	Digest    string             `json:"digest"`
	Matches   []bruteforce.Match `json:"matches"`
	ElapsedMs int64              `json:"elapsed_ms"`
}

// Export converts the result to its on-disk form
func (r *Result) Export() *report.Export {
	return &report.Export{
		Target:  r.Target,
		Code:    r.Code,
		Checks:  r.Checks,
		Digest:  r.Digest,
		Matches: r.Matches,
	}
}

// Stats holds counters across all runs of this process
type Stats struct {
	Runs        int    `json:"runs"`
	Matches     int    `json:"matches"`
	Failures    int    `json:"failures"`
	Workers     int    `json:"workers"`
	Ciphertexts int    `json:"ciphertexts"`
	LastTarget  string `json:"last_target,omitempty"`
	LastDigest  string `json:"last_digest,omitempty"`
}

// Scanner runs searches over a fixed ciphertext list and records the results
type Scanner struct {
	db          db.Database
	logger      *logger.Logger
	notifier    *notify.Notifier
	searcher    *bruteforce.Searcher
	ciphertexts []cipher.Vector
	workers     int
	retryCfg    retry.Config

	mu    sync.RWMutex
	stats Stats
}

// New creates a new Scanner. notifier may be nil.
func New(database db.Database, log *logger.Logger, notifier *notify.Notifier, ciphertexts []cipher.Vector, workers int) *Scanner {
	if log == nil {
		log = logger.Discard(100)
	}
	if workers < 1 {
		workers = 1
	}
	cts := make([]cipher.Vector, len(ciphertexts))
	copy(cts, ciphertexts)

	return &Scanner{
		db:          database,
		logger:      log,
		notifier:    notifier,
		searcher:    bruteforce.New(log),
		ciphertexts: cts,
		workers:     workers,
		retryCfg:    retry.DefaultConfig(),
		stats:       Stats{Workers: workers, Ciphertexts: len(cts)},
	}
}

// WithRetryConfig replaces the backoff used for storage and notifications
func (s *Scanner) WithRetryConfig(cfg retry.Config) *Scanner {
	s.retryCfg = cfg
	return s
}

// Params returns the search bounds
func (s *Scanner) Params() bruteforce.Params {
	return s.searcher.Params()
}

func (s *Scanner) search(ctx context.Context, target string) ([]bruteforce.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.workers > 1 {
		return s.searcher.SearchParallel(ctx, s.ciphertexts, target, s.workers)
	}
	return s.searcher.Search(s.ciphertexts, target)
}

// Run searches for target, verifies and digests the matches, stores the run
// and sends a notification. An invalid target fails before anything is
// logged or stored.
func (s *Scanner) Run(ctx context.Context, target string) (*Result, error) {
	code, err := bruteforce.CharCode(target)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	s.logger.Info("[%s] Searching %d ciphertexts (code=%d, workers=%d)", target, len(s.ciphertexts), code, s.workers)

	matches, err := s.search(ctx, target)
	if err != nil {
		s.recordFailure()
		return nil, err
	}
	for _, m := range matches {
		if err := s.searcher.Verify(m, s.ciphertexts, target); err != nil {
			s.recordFailure()
			return nil, fmt.Errorf("verify %v: %w", m, err)
		}
	}

	digest, err := report.DigestHex(matches)
	if err != nil {
		s.recordFailure()
		return nil, err
	}

	res := &Result{
		Target:  target,
		Code:    int(code),
		Checks:  s.searcher.Params().Checks(len(s.ciphertexts)),
		Digest:  digest,
		Matches: matches,
	}

	if s.db != nil {
		run := &db.Run{
			Target:  res.Target,
			Code:    res.Code,
			Checks:  res.Checks,
			Digest:  res.Digest,
			Matches: res.Matches,
		}
		err := retry.Do(ctx, s.retryCfg, func() error {
			var err error
			res.RunID, res.Created, err = s.db.SaveRun(ctx, run)
			return err
		})
		if err != nil {
			s.recordFailure()
			return nil, fmt.Errorf("save run: %w", err)
		}
		if !res.Created {
			s.logger.Info("[%s] Result unchanged, matches run #%d", target, res.RunID)
		}
	}

	res.ElapsedMs = time.Since(start).Milliseconds()
	s.logger.Info("[%s] Search complete: %d matches over %d checks in %dms (digest %s)",
		target, len(matches), res.Checks, res.ElapsedMs, digest)

	s.mu.Lock()
	s.stats.Runs++
	s.stats.Matches += len(matches)
	s.stats.LastTarget = target
	s.stats.LastDigest = digest
	s.mu.Unlock()

	s.notify(ctx, res)
	return res, nil
}

func (s *Scanner) notify(ctx context.Context, res *Result) {
	if s.notifier == nil || !s.notifier.IsEnabled() {
		return
	}
	// a stored duplicate was already announced
	if s.db != nil && !res.Created {
		return
	}
	err := retry.Do(ctx, s.retryCfg, func() error {
		return s.notifier.NotifySearchComplete(res.Target, len(res.Matches), res.Digest)
	})
	if err != nil {
		s.logger.Warn("[NOTIFY] Failed to send search notification: %v", err)
	}
}

func (s *Scanner) recordFailure() {
	s.mu.Lock()
	s.stats.Failures++
	s.mu.Unlock()
}

// Sweep runs every target concurrently. Results come back in the order of
// targets; the first error cancels the remaining runs.
func (s *Scanner) Sweep(ctx context.Context, targets []string) ([]*Result, error) {
	results := make([]*Result, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			res, err := s.Run(ctx, target)
			if err != nil {
				return fmt.Errorf("target %q: %w", target, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Stats returns a snapshot of the run counters
func (s *Scanner) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}
