package pow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"hashvote/util"
)

// timestampLayout pins the hashed timestamp to microsecond precision, UTC.
// Postgres stores microseconds, so the hashed input survives a round trip
// through the ledger unchanged.
const timestampLayout = "2006-01-02T15:04:05.000000"

// deadlineCheckStride is how many hash attempts pass between deadline and
// cancellation checks.
const deadlineCheckStride = 512

// Fields are the hashed block fields, excluding the nonce.
type Fields struct {
	PollId    string
	VoterHash string
	Choice    string
	Timestamp time.Time
	PrevHash  string
}

// HashBlock computes the SHA-256 digest of the block fields concatenated in
// canonical order, as a 64-character lowercase hex string.
func HashBlock(f Fields, nonce uint64) string {
	data := fmt.Sprintf("%s%s%s%s%s%d",
		f.PollId, f.VoterHash, f.Choice,
		f.Timestamp.UTC().Format(timestampLayout),
		f.PrevHash, nonce)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// Target returns the threshold for difficultyBits leading zero bits: a digest
// succeeds iff its big-endian integer value is below 2^(256-difficultyBits).
// Zero bits yields the maximal target.
func Target(difficultyBits int) *big.Int {
	return new(big.Int).Rsh(util.Pow256, uint(difficultyBits))
}

// TargetHex returns the 32-byte hex form of the difficulty target.
func TargetHex(difficultyBits int) string {
	zeroBytes := difficultyBits / 8
	remainder := difficultyBits % 8

	target := strings.Repeat("00", zeroBytes)
	if remainder > 0 {
		target += fmt.Sprintf("%02x", (1<<(8-remainder))-1)
		target += strings.Repeat("ff", 31-zeroBytes)
	} else {
		target += strings.Repeat("ff", 32-zeroBytes)
	}
	return target
}

// Verify recomputes the block hash and applies the same success predicate the
// nonce search uses.
func Verify(f Fields, nonce uint64, difficultyBits int) bool {
	return util.Hash2big(HashBlock(f, nonce)).Cmp(Target(difficultyBits)) < 0
}

// SearchNonce scans nonce = 0, 1, 2, ... until the digest value falls below
// the target. Identical inputs always find the identical nonce. Deadline
// expiry or context cancellation returns found=false; that is an expected
// outcome, not an error.
func SearchNonce(ctx context.Context, f Fields, difficultyBits int, timeout time.Duration) (uint64, bool) {
	target := Target(difficultyBits)
	deadline := time.Now().Add(timeout)

	for nonce := uint64(0); ; nonce++ {
		if nonce%deadlineCheckStride == 0 {
			if time.Now().After(deadline) {
				return 0, false
			}
			select {
			case <-ctx.Done():
				return 0, false
			default:
			}
		}
		if util.Hash2big(HashBlock(f, nonce)).Cmp(target) < 0 {
			return nonce, true
		}
	}
}

// SearchNonceParallel partitions the nonce space across workers, worker w
// scanning nonces congruent to w modulo workers. It preserves the sequential
// guarantee and returns the smallest valid nonce: once a candidate is found
// the bound closes, every worker finishes its remaining candidates below the
// bound, and the minimum wins. Candidates are only accepted through Verify.
func SearchNonceParallel(ctx context.Context, f Fields, difficultyBits int, timeout time.Duration, workers int) (uint64, bool) {
	if workers <= 1 {
		return SearchNonce(ctx, f, difficultyBits, timeout)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Smallest valid nonce found so far. Workers stop once their next
	// candidate cannot improve on it, so every nonce below the final bound
	// has been scanned by somebody.
	bound := uint64(math.MaxUint64)

	var wg sync.WaitGroup
	found := make(chan uint64, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(offset uint64) {
			defer wg.Done()

			step := uint64(workers)
			for nonce, i := offset, 0; ; nonce, i = nonce+step, i+1 {
				if nonce >= atomic.LoadUint64(&bound) {
					return
				}
				// Once a candidate exists the remaining scan below the
				// bound is finite; only bail out on the deadline while
				// nothing has been found.
				if i%deadlineCheckStride == 0 && atomic.LoadUint64(&bound) == math.MaxUint64 {
					select {
					case <-ctx.Done():
						return
					default:
					}
				}
				if Verify(f, nonce, difficultyBits) {
					for {
						cur := atomic.LoadUint64(&bound)
						if nonce >= cur || atomic.CompareAndSwapUint64(&bound, cur, nonce) {
							break
						}
					}
					found <- nonce
					return
				}
			}
		}(uint64(w))
	}
	wg.Wait()
	close(found)

	best, ok := uint64(0), false
	for nonce := range found {
		if !ok || nonce < best {
			best, ok = nonce, true
		}
	}
	return best, ok
}
