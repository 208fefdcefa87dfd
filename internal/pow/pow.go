// Package pow implements the proof-of-work rate-limiting token used to
// gate the notify RPC (spec.md §4.6): a client must present a token whose
// hash has a configured number of trailing zero bytes and that was issued
// within a short lifetime, making it cheap to check but not free to mint
// at scale.
package pow

import (
	"crypto/sha256"
	"encoding/binary"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Token is a proof-of-work credential: a nonce whose hash, combined with
// the issuance timestamp, satisfies the configured difficulty.
type Token struct {
	Nonce        uint64
	IssuedAtUnix int64
}

// Generate searches for a valid token at the given difficulty, parallelizing
// the nonce search across GOMAXPROCS workers. The token's issuance time is
// stamped once, before the search starts, since it is part of the hashed
// input.
func Generate(difficulty int) Token {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 1
	}

	issuedAt := time.Now().Unix()
	found := make(chan uint64, 1)
	var done atomic.Bool
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(start uint64) {
			defer wg.Done()
			for nonce := start; !done.Load(); nonce += uint64(numWorkers) {
				if hasTrailingZeroBytes(digest(nonce, issuedAt), difficulty) {
					if done.CompareAndSwap(false, true) {
						found <- nonce
					}
					return
				}
			}
		}(uint64(w))
	}

	nonce := <-found
	wg.Wait()
	return Token{Nonce: nonce, IssuedAtUnix: issuedAt}
}

// Verify reports whether tok is both within its lifetime (relative to
// now) and satisfies the given difficulty.
func Verify(tok Token, difficulty int, lifetime time.Duration, now time.Time) bool {
	age := now.Unix() - tok.IssuedAtUnix
	if age < 0 || time.Duration(age)*time.Second > lifetime {
		return false
	}
	return hasTrailingZeroBytes(digest(tok.Nonce, tok.IssuedAtUnix), difficulty)
}

func digest(nonce uint64, issuedAt int64) [sha256.Size]byte {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], nonce)
	binary.BigEndian.PutUint64(buf[8:16], uint64(issuedAt))
	return sha256.Sum256(buf[:])
}

func hasTrailingZeroBytes(h [sha256.Size]byte, difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	if difficulty > len(h) {
		difficulty = len(h)
	}
	for i := 0; i < difficulty; i++ {
		if h[len(h)-1-i] != 0 {
			return false
		}
	}
	return true
}
