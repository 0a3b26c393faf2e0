// internal/rng/csprng.go
package rng

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
)

// CSPRNG uses AES-CTR under the hood. It is seeded once from crypto/rand.
type CSPRNG struct {
	mu     sync.Mutex
	stream cipher.Stream
}

// NewCSPRNG initializes an AES-CTR generator seeded from crypto/rand.
func NewCSPRNG() (*CSPRNG, error) {
	return newCSPRNGFrom(rand.Reader)
}

// newCSPRNGFrom draws the 256-bit key and 128-bit IV from seed.
func newCSPRNGFrom(seed io.Reader) (*CSPRNG, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(seed, key); err != nil {
		return nil, fmt.Errorf("rng: failed to read key seed: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("rng: aes.NewCipher failed: %w", err)
	}

	var iv [aes.BlockSize]byte
	if _, err := io.ReadFull(seed, iv[:]); err != nil {
		return nil, fmt.Errorf("rng: failed to read IV seed: %w", err)
	}

	return &CSPRNG{stream: cipher.NewCTR(block, iv[:])}, nil
}

// Read fills buf with keystream bytes.
func (c *CSPRNG) Read(buf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(buf)
	c.stream.XORKeyStream(buf, buf)
	return len(buf), nil
}

// Uint64 returns a single 64-bit random word.
func (c *CSPRNG) Uint64() (uint64, error) {
	var b [8]byte
	if _, err := c.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}
