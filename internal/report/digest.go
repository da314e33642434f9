package report

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"matrix-bruteforce/internal/bruteforce"
)

// rlpMatch is the canonical encoding of a match. RLP only carries unsigned
// integers, so signed values are stored as their two's complement bits.
type rlpMatch struct {
	Rand1      uint64
	Rand2      uint64
	Ciphertext uint64
	Residual   [3]uint64
}

// Digest hashes the ordered match list. Two searches produce the same digest
// exactly when they return the same matches in the same order.
func Digest(matches []bruteforce.Match) (common.Hash, error) {
	items := make([]rlpMatch, len(matches))
	for i, m := range matches {
		items[i] = rlpMatch{
			Rand1:      uint64(int64(m.Rand1)),
			Rand2:      uint64(int64(m.Rand2)),
			Ciphertext: uint64(int64(m.Ciphertext)),
			Residual: [3]uint64{
				uint64(m.Residual[0]),
				uint64(m.Residual[1]),
				uint64(m.Residual[2]),
			},
		}
	}

	enc, err := rlp.EncodeToBytes(items)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encode matches: %w", err)
	}
	return crypto.Keccak256Hash(enc), nil
}

// DigestHex returns the 0x-prefixed digest
func DigestHex(matches []bruteforce.Match) (string, error) {
	h, err := Digest(matches)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(h.Bytes()), nil
}
