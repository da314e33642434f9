package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"

	"matrix-bruteforce/internal/bruteforce"
)

var ErrBadExport = errors.New("report: malformed export")

// Export is the on-disk record of one search
type Export struct {
	Target  string             `json:"target"`
	Code    int                `json:"code"`
	Checks  int64              `json:"checks"`
	Digest  string             `json:"digest"`
	Matches []bruteforce.Match `json:"matches"`
}

// NewExport builds the export record for a finished search
func NewExport(target string, params bruteforce.Params, ciphertexts int, matches []bruteforce.Match) (*Export, error) {
	code, err := bruteforce.CharCode(target)
	if err != nil {
		return nil, err
	}
	digest, err := DigestHex(matches)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []bruteforce.Match{}
	}
	return &Export{
		Target:  target,
		Code:    int(code),
		Checks:  params.Checks(ciphertexts),
		Digest:  digest,
		Matches: matches,
	}, nil
}

// Verify recomputes the digest over the exported matches
func (e *Export) Verify() error {
	digest, err := DigestHex(e.Matches)
	if err != nil {
		return err
	}
	if digest != e.Digest {
		return fmt.Errorf("%w: digest %s, matches hash to %s", ErrBadExport, e.Digest, digest)
	}
	return nil
}

// WriteJSON writes e as indented JSON
func WriteJSON(w io.Writer, e *Export) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// ReadJSON decodes an export and checks its digest
func ReadJSON(r io.Reader) (*Export, error) {
	var e Export
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadExport, err)
	}
	if err := e.Verify(); err != nil {
		return nil, err
	}
	return &e, nil
}

func compressed(path string) bool {
	return strings.HasSuffix(path, ".lz4")
}

// WriteFile writes e to path, lz4-compressed when path ends in .lz4
func WriteFile(path string, e *Export) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !compressed(path) {
		return WriteJSON(f, e)
	}

	zw := lz4.NewWriter(f)
	if err := zw.Apply(lz4.CompressionLevelOption(lz4.Level4)); err != nil {
		return err
	}
	if err := WriteJSON(zw, e); err != nil {
		return err
	}
	return zw.Close()
}

// ReadFile reads an export written by WriteFile
func ReadFile(path string) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if compressed(path) {
		r = lz4.NewReader(f)
	}
	return ReadJSON(r)
}
