package bruteforce

import (
	"fmt"
	"sync"

	"matrix-bruteforce/internal/cipher"
)

// recordingSink keeps every line passed to Info
type recordingSink struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingSink) Info(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *recordingSink) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// encrypt builds a ciphertext vector P·[code, rand1, rand2] + r
func encrypt(code rune, rand1, rand2 int, r cipher.Vector) cipher.Vector {
	g := cipher.Vector{int64(code), int64(rand1), int64(rand2)}
	return cipher.PublicMatrix().MulVec(g).Add(r)
}
