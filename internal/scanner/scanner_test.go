package scanner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"matrix-bruteforce/internal/bruteforce"
	"matrix-bruteforce/internal/cipher"
	"matrix-bruteforce/internal/db"
	"matrix-bruteforce/internal/logger"
	"matrix-bruteforce/internal/notify"
	"matrix-bruteforce/internal/retry"
)

// Two vectors encrypting 'H' plus one that matches nothing
var testCiphertexts = []cipher.Vector{
	{919, -1742, 5311},
	{-4494, 4443, -3279},
	{-981, 1395, -1668},
}

var expectedH = []bruteforce.Match{
	{Rand1: 10, Rand2: 20, Residual: cipher.Vector{5, 6, 7}, Ciphertext: 0},
	{Rand1: 99, Rand2: 3, Residual: cipher.Vector{0, 99, 42}, Ciphertext: 1},
}

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func newTestScanner(t *testing.T, workers int) (*Scanner, *db.MockDB, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	store := db.NewMock()
	s := New(store, logger.NewWithCore(100, core), nil, testCiphertexts, workers).
		WithRetryConfig(fastRetry())
	return s, store, logs
}

func TestRun_FindsAndStoresMatches(t *testing.T) {
	ctx := context.Background()
	s, store, logs := newTestScanner(t, 1)

	res, err := s.Run(ctx, "H")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !reflect.DeepEqual(res.Matches, expectedH) {
		t.Errorf("matches = %v, want %v", res.Matches, expectedH)
	}
	if res.Code != 72 || res.Checks != 3*101*101 || !res.Created || res.RunID != 1 {
		t.Errorf("unexpected result header: %+v", res)
	}

	stored, err := store.GetRun(ctx, res.RunID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if stored.Digest != res.Digest || !reflect.DeepEqual(stored.Matches, expectedH) {
		t.Errorf("stored run differs: %+v", stored)
	}

	if n := logs.FilterMessageSnippet("Match found").Len(); n != 2 {
		t.Errorf("expected 2 match log lines, got %d", n)
	}
}

func TestRun_DeduplicatesIdenticalResults(t *testing.T) {
	ctx := context.Background()
	s, store, _ := newTestScanner(t, 1)

	first, err := s.Run(ctx, "H")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := s.Run(ctx, "H")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if second.Created || second.RunID != first.RunID || second.Digest != first.Digest {
		t.Errorf("expected duplicate of run %d, got %+v", first.RunID, second)
	}
	stats, _ := store.GetStats(ctx)
	if stats.TotalRuns != 1 {
		t.Errorf("expected 1 stored run, got %d", stats.TotalRuns)
	}
}

func TestRun_InvalidTarget(t *testing.T) {
	ctx := context.Background()
	s, store, logs := newTestScanner(t, 1)

	for _, target := range []string{"", "HT", "\xff"} {
		_, err := s.Run(ctx, target)
		if !errors.Is(err, bruteforce.ErrInvalidTarget) {
			t.Errorf("Run(%q): expected ErrInvalidTarget, got %v", target, err)
		}
	}

	if logs.Len() != 0 {
		t.Errorf("expected no log output, got %d entries", logs.Len())
	}
	if runs, _ := store.GetRuns(ctx, 10); len(runs) != 0 {
		t.Errorf("expected nothing stored, got %d runs", len(runs))
	}
}

func TestRun_NoMatches(t *testing.T) {
	s, _, _ := newTestScanner(t, 1)

	res, err := s.Run(context.Background(), "T")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Matches == nil || len(res.Matches) != 0 {
		t.Errorf("expected empty match list, got %#v", res.Matches)
	}
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	ctx := context.Background()
	seq, _, _ := newTestScanner(t, 1)
	par, _, _ := newTestScanner(t, 4)

	a, err := seq.Run(ctx, "H")
	if err != nil {
		t.Fatalf("sequential Run failed: %v", err)
	}
	b, err := par.Run(ctx, "H")
	if err != nil {
		t.Fatalf("parallel Run failed: %v", err)
	}
	if a.Digest != b.Digest || !reflect.DeepEqual(a.Matches, b.Matches) {
		t.Errorf("parallel result differs: %v vs %v", b.Matches, a.Matches)
	}
}

func TestRun_Cancelled(t *testing.T) {
	s, _, _ := newTestScanner(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Run(ctx, "H"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if s.Stats().Failures != 1 {
		t.Errorf("expected failure to be counted, got %+v", s.Stats())
	}
}

func TestRun_WithoutDatabase(t *testing.T) {
	s := New(nil, nil, nil, testCiphertexts, 1)

	res, err := s.Run(context.Background(), "H")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.RunID != 0 || len(res.Matches) != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestRun_Notifies(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		r.ParseForm()
		if !strings.Contains(r.PostForm.Get("title"), "2 matches") {
			t.Errorf("unexpected title %q", r.PostForm.Get("title"))
		}
	}))
	defer srv.Close()

	n := notify.New("token", "user").WithEndpoint(srv.URL)
	s := New(db.NewMock(), nil, n, testCiphertexts, 1).WithRetryConfig(fastRetry())

	ctx := context.Background()
	if _, err := s.Run(ctx, "H"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// duplicate run is not announced again
	if _, err := s.Run(ctx, "H"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Errorf("expected 1 notification, got %d", got)
	}
}

func TestSweep_PreservesOrder(t *testing.T) {
	s, _, _ := newTestScanner(t, 2)

	targets := []string{"T", "H", "B"}
	results, err := s.Sweep(context.Background(), targets)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if len(results) != len(targets) {
		t.Fatalf("expected %d results, got %d", len(targets), len(results))
	}
	for i, target := range targets {
		if results[i].Target != target {
			t.Errorf("result %d is for %q, want %q", i, results[i].Target, target)
		}
	}
	if !reflect.DeepEqual(results[1].Matches, expectedH) {
		t.Errorf("H matches = %v", results[1].Matches)
	}

	stats := s.Stats()
	if stats.Runs != 3 || stats.Matches != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestSweep_InvalidTarget(t *testing.T) {
	s, _, _ := newTestScanner(t, 1)

	_, err := s.Sweep(context.Background(), []string{"H", "HT"})
	if !errors.Is(err, bruteforce.ErrInvalidTarget) {
		t.Errorf("expected ErrInvalidTarget, got %v", err)
	}
	if !strings.Contains(err.Error(), `"HT"`) {
		t.Errorf("expected failing target in message: %v", err)
	}
}

func TestResult_Export(t *testing.T) {
	s, _, _ := newTestScanner(t, 1)
	res, err := s.Run(context.Background(), "H")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := res.Export().Verify(); err != nil {
		t.Errorf("export digest does not verify: %v", err)
	}
}

func TestNew_CopiesCiphertexts(t *testing.T) {
	input := append([]cipher.Vector(nil), testCiphertexts...)
	s := New(nil, nil, nil, input, 1)
	input[0] = cipher.Vector{}

	res, err := s.Run(context.Background(), "H")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Matches) != 2 {
		t.Errorf("scanner saw caller's mutation: %v", res.Matches)
	}
}
